package domain

import (
	"strings"
	"time"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, сток списан, обработка ещё не началась.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing — заказ взят в работу администратором.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ доставлен покупателю. Терминальный статус.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён, сток восстановлен. Терминальный статус.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// DefaultCurrency — валюта всех цен магазина.
const DefaultCurrency = "BDT"

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal сообщает, допускает ли статус дальнейшие переходы.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransition проверяет допустимость перехода между статусами:
// pending → {processing, shipped, delivered, cancelled},
// processing → {shipped, delivered}, shipped → {delivered}.
// Отмена возможна только из pending — для уже исполняемого заказа
// компенсация стока не определена.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if !to.Valid() || s.Terminal() || s == to {
		return false
	}
	if to == OrderStatusCancelled {
		return s == OrderStatusPending
	}
	switch s {
	case OrderStatusPending:
		return true
	case OrderStatusProcessing:
		return to == OrderStatusShipped || to == OrderStatusDelivered
	case OrderStatusShipped:
		return to == OrderStatusDelivered
	default:
		return false
	}
}

// Customer — контактные данные получателя заказа.
type Customer struct {
	Name    string
	Phone   string
	Address string
}

// Validate проверяет, что все контактные поля заполнены после trim.
func (c Customer) Validate() []error {
	var errs []error

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, ErrCustomerNameRequired)
	}
	if strings.TrimSpace(c.Phone) == "" {
		errs = append(errs, ErrCustomerPhoneRequired)
	}
	if strings.TrimSpace(c.Address) == "" {
		errs = append(errs, ErrCustomerAddressRequired)
	}

	return errs
}

// OrderItem — снимок позиции корзины на момент оформления заказа.
// Цена и название копируются из корзины: заказ не должен меняться
// при последующем редактировании товара.
type OrderItem struct {
	ProductID   string
	Title       string
	PriceMinor  int64
	Qty         int32
	WeightGrams int32
	Image       string
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID string
	// UserID пуст для гостевого заказа и сохраняется в БД как NULL.
	UserID        string
	Customer      Customer
	Items         []OrderItem
	SubtotalMinor int64
	DeliveryMinor int64
	TotalMinor    int64
	Currency      string
	Status        OrderStatus
	Payment       Payment
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CancelledAt   time.Time
	// CancelledBy — метка инициатора отмены ("customer" или "admin").
	CancelledBy string
}

// Subtotal считает сумму позиций: Σ qty × price.
func Subtotal(items []OrderItem) int64 {
	var sum int64
	for _, item := range items {
		sum += int64(item.Qty) * item.PriceMinor
	}
	return sum
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	errs = append(errs, o.Customer.Validate()...)

	if o.Currency == "" {
		errs = append(errs, ErrCurrencyRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.DeliveryMinor < 0 {
		errs = append(errs, ErrDeliveryNegative)
	}

	for _, item := range o.Items {
		if item.ProductID == "" {
			errs = append(errs, ErrItemProductRequired)
		}
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}

	// Сверяем сохранённые суммы с пересчётом по позициям.
	if o.SubtotalMinor != Subtotal(o.Items) {
		errs = append(errs, ErrAmountMismatch)
	}
	if o.TotalMinor != o.SubtotalMinor+o.DeliveryMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}
