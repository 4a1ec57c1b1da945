package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка пустого названия товара.
	ErrProductTitleRequired = errors.New("product title is required")
	// Ошибка отрицательной цены товара.
	ErrProductPriceNegative = errors.New("product price must be non-negative")
	// Ошибка отрицательного стока товара.
	ErrProductStockNegative = errors.New("product stock must be non-negative")
	// Ошибка отрицательного веса товара.
	ErrProductWeightNegative = errors.New("product weight must be non-negative")

	// Ошибка отсутствующего имени получателя.
	ErrCustomerNameRequired = errors.New("customer name is required")
	// Ошибка отсутствующего телефона получателя.
	ErrCustomerPhoneRequired = errors.New("customer phone is required")
	// Ошибка отсутствующего адреса доставки.
	ErrCustomerAddressRequired = errors.New("customer address is required")

	// Ошибка отсутствующего кода валюты.
	ErrCurrencyRequired = errors.New("currency is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной стоимости доставки.
	ErrDeliveryNegative = errors.New("delivery fee must be non-negative")
	// Ошибка позиции без идентификатора товара.
	ErrItemProductRequired = errors.New("item product id is required")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка несоответствия сохранённых сумм и пересчёта по позициям.
	ErrAmountMismatch = errors.New("order amount does not match items sum")

	// Ошибка неподдерживаемого способа оплаты.
	ErrPaymentMethodInvalid = errors.New("payment method is not supported")
	// Ошибка отсутствующего transaction id для мобильного платежа.
	ErrPaymentTrxIDRequired = errors.New("payment trx id is required")

	// ErrProductNotFound возвращается, если товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock сигнализирует о нехватке стока при оформлении заказа.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrProductVersionConflict сигнализирует о конфликте версий при сохранении товара.
	ErrProductVersionConflict = errors.New("product version conflict")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении заказа.
	ErrOrderVersionConflict = errors.New("order version conflict")
	// ErrOrderNotCancellable возвращается при попытке отменить заказ не в статусе pending.
	ErrOrderNotCancellable = errors.New("order is not cancellable")
	// ErrInvalidStatusTransition возвращается при недопустимом переходе статуса заказа.
	ErrInvalidStatusTransition = errors.New("invalid order status transition")

	// ErrCartNotFound возвращается, если корзина отсутствует в хранилище.
	ErrCartNotFound = errors.New("cart not found")

	// ErrTxConflict — конфликт сериализации, транзакция будет повторена хранилищем.
	ErrTxConflict = errors.New("transaction serialization conflict")
	// ErrTxExhausted возвращается после исчерпания повторов атомарной транзакции.
	ErrTxExhausted = errors.New("transaction retries exhausted")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")

	// ErrIdempotencyKeyRequired — пустой idempotency-key.
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	// ErrIdempotencyRequestHashRequired — пустой hash запроса.
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	// ErrIdempotencyKeyNotFound — запись по ключу отсутствует.
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
	// ErrIdempotencyKeyAlreadyExists — ключ уже зарегистрирован.
	ErrIdempotencyKeyAlreadyExists = errors.New("idempotency key already exists")
	// ErrIdempotencyHashMismatch — ключ переиспользован с другим телом запроса.
	ErrIdempotencyHashMismatch = errors.New("idempotency key reused with different request")
)

// ProductNotFoundError уточняет ErrProductNotFound идентификатором товара,
// чтобы вызывающий мог показать осмысленное сообщение.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrProductNotFound).
func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

// InsufficientStockError уточняет ErrInsufficientStock: какой товар,
// сколько запрошено и сколько доступно.
type InsufficientStockError struct {
	ProductID string
	Requested int32
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict) || errors.Is(err, ErrProductVersionConflict)
}

// IsBusinessError отличает бизнес-ошибки транзакции от инфраструктурных:
// бизнес-ошибка не повторяется, она детерминированно повторится на свежих чтениях.
func IsBusinessError(err error) bool {
	switch {
	case errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrOrderNotCancellable),
		errors.Is(err, ErrInvalidStatusTransition):
		return true
	default:
		return false
	}
}
