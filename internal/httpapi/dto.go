package httpapi

import (
	"time"

	"github.com/rakibhasan/dokan/internal/domain"
)

type ProductResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	PriceMinor  int64     `json:"price_minor"`
	Stock       int32     `json:"stock"`
	Active      bool      `json:"active"`
	WeightGrams int32     `json:"weight_grams"`
	Images      []string  `json:"images,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	PriceMinor  int64    `json:"price_minor"`
	Stock       int32    `json:"stock"`
	Active      bool     `json:"active"`
	WeightGrams int32    `json:"weight_grams"`
	Images      []string `json:"images"`
}

type CartLineResponse struct {
	ProductID   string `json:"product_id"`
	Title       string `json:"title"`
	PriceMinor  int64  `json:"price_minor"`
	Qty         int32  `json:"qty"`
	WeightGrams int32  `json:"weight_grams"`
	Image       string `json:"image,omitempty"`
}

type CartResponse struct {
	ID            string             `json:"id"`
	UserID        string             `json:"user_id,omitempty"`
	Lines         []CartLineResponse `json:"lines"`
	SubtotalMinor int64              `json:"subtotal_minor"`
	WeightGrams   int32              `json:"weight_grams"`
	Currency      string             `json:"currency"`
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
	Qty       int32  `json:"qty"`
}

type SetCartQtyRequest struct {
	Qty int32 `json:"qty"`
}

type CustomerDTO struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type PaymentDTO struct {
	Method   string `json:"method"`
	TrxID    string `json:"trx_id,omitempty"`
	Verified bool   `json:"verified,omitempty"`
}

type CheckoutRequest struct {
	CartID   string      `json:"cart_id"`
	Zone     string      `json:"zone"`
	Customer CustomerDTO `json:"customer"`
	Payment  PaymentDTO  `json:"payment"`
}

type OrderItemResponse struct {
	ProductID  string `json:"product_id"`
	Title      string `json:"title"`
	PriceMinor int64  `json:"price_minor"`
	Qty        int32  `json:"qty"`
	Image      string `json:"image,omitempty"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id,omitempty"`
	Customer      CustomerDTO         `json:"customer"`
	Items         []OrderItemResponse `json:"items"`
	SubtotalMinor int64               `json:"subtotal_minor"`
	DeliveryMinor int64               `json:"delivery_minor"`
	TotalMinor    int64               `json:"total_minor"`
	Currency      string              `json:"currency"`
	Status        string              `json:"status"`
	Payment       PaymentDTO          `json:"payment"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	CancelledAt   *time.Time          `json:"cancelled_at,omitempty"`
	CancelledBy   string              `json:"cancelled_by,omitempty"`
}

type QuoteResponse struct {
	Zone          string `json:"zone"`
	WeightGrams   int32  `json:"weight_grams"`
	DeliveryMinor int64  `json:"delivery_minor"`
	Currency      string `json:"currency"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type TimelineEventResponse struct {
	Type     string    `json:"type"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred_at"`
}

type ShippingSettingsDTO struct {
	BaseInsideMinor  int64     `json:"base_inside_minor"`
	BaseOutsideMinor int64     `json:"base_outside_minor"`
	PerKgMinor       int64     `json:"per_kg_minor"`
	UpdatedAt        time.Time `json:"updated_at,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapProduct(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		PriceMinor:  p.PriceMinor,
		Stock:       p.Stock,
		Active:      p.Active,
		WeightGrams: p.WeightGrams,
		Images:      p.Images,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func mapProducts(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = mapProduct(p)
	}
	return out
}

func mapCart(c domain.Cart) CartResponse {
	lines := make([]CartLineResponse, len(c.Lines))
	for i, line := range c.Lines {
		lines[i] = CartLineResponse{
			ProductID:   line.ProductID,
			Title:       line.Title,
			PriceMinor:  line.PriceMinor,
			Qty:         line.Qty,
			WeightGrams: line.WeightGrams,
			Image:       line.Image,
		}
	}
	return CartResponse{
		ID:            c.ID,
		UserID:        c.UserID,
		Lines:         lines,
		SubtotalMinor: c.SubtotalMinor(),
		WeightGrams:   c.WeightGramsTotal(),
		Currency:      domain.DefaultCurrency,
	}
}

func mapOrder(o domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID:  item.ProductID,
			Title:      item.Title,
			PriceMinor: item.PriceMinor,
			Qty:        item.Qty,
			Image:      item.Image,
		}
	}

	resp := OrderResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		Customer:      CustomerDTO{Name: o.Customer.Name, Phone: o.Customer.Phone, Address: o.Customer.Address},
		Items:         items,
		SubtotalMinor: o.SubtotalMinor,
		DeliveryMinor: o.DeliveryMinor,
		TotalMinor:    o.TotalMinor,
		Currency:      o.Currency,
		Status:        string(o.Status),
		Payment:       PaymentDTO{Method: string(o.Payment.Method), TrxID: o.Payment.TrxID, Verified: o.Payment.Verified},
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		CancelledBy:   o.CancelledBy,
	}
	if !o.CancelledAt.IsZero() {
		cancelledAt := o.CancelledAt
		resp.CancelledAt = &cancelledAt
	}
	return resp
}

func mapOrders(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = mapOrder(o)
	}
	return out
}

func mapTimeline(events []domain.TimelineEvent) []TimelineEventResponse {
	out := make([]TimelineEventResponse, len(events))
	for i, event := range events {
		out[i] = TimelineEventResponse{
			Type:     event.Type,
			Reason:   event.Reason,
			Occurred: event.Occurred,
		}
	}
	return out
}
