package domain

// PaymentMethod — способ оплаты заказа.
type PaymentMethod string

const (
	// PaymentMethodCOD — оплата наличными при получении. Метод по умолчанию.
	PaymentMethodCOD PaymentMethod = "cod"
	// PaymentMethodBkash — мобильный платёж bKash, покупатель передаёт transaction id.
	PaymentMethodBkash PaymentMethod = "bkash"
	// PaymentMethodNagad — мобильный платёж Nagad.
	PaymentMethodNagad PaymentMethod = "nagad"
)

// Valid проверяет, что способ оплаты поддерживается.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodBkash, PaymentMethodNagad:
		return true
	default:
		return false
	}
}

// Payment хранит платёжные реквизиты заказа. Для COD TrxID пуст; для
// мобильных платежей администратор сверяет TrxID вручную и выставляет Verified.
type Payment struct {
	Method   PaymentMethod
	TrxID    string
	Verified bool
}

// Validate проверяет платёжные реквизиты. Пустой метод трактуется как COD.
func (p Payment) Validate() []error {
	var errs []error

	if p.Method != "" && !p.Method.Valid() {
		errs = append(errs, ErrPaymentMethodInvalid)
	}
	if (p.Method == PaymentMethodBkash || p.Method == PaymentMethodNagad) && p.TrxID == "" {
		errs = append(errs, ErrPaymentTrxIDRequired)
	}

	return errs
}
