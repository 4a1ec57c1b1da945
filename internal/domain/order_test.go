package domain_test

import (
	"testing"
	"time"

	"github.com/rakibhasan/dokan/internal/domain"
)

// helper для создания базового заказа с одной позицией.
func makeOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:     "order-1",
		UserID: "user-1",
		Customer: domain.Customer{
			Name:    "Rahim Uddin",
			Phone:   "01711000000",
			Address: "House 12, Road 5, Dhanmondi, Dhaka",
		},
		Items: []domain.OrderItem{
			{
				ProductID:   "product-1",
				Title:       "Cotton Panjabi",
				PriceMinor:  120000,
				Qty:         2,
				WeightGrams: 400,
			},
		},
		SubtotalMinor: 240000,
		DeliveryMinor: 6000,
		TotalMinor:    246000,
		Currency:      domain.DefaultCurrency,
		Status:        domain.OrderStatusPending,
		Version:       0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
	}{
		{
			name: "no customer name",
			mut: func(o *domain.Order) {
				o.Customer.Name = "   "
			},
		},
		{
			name: "no phone",
			mut: func(o *domain.Order) {
				o.Customer.Phone = ""
			},
		},
		{
			name: "no address",
			mut: func(o *domain.Order) {
				o.Customer.Address = ""
			},
		},
		{
			name: "no items",
			mut: func(o *domain.Order) {
				o.Items = nil
			},
		},
		{
			name: "qty invalid",
			mut: func(o *domain.Order) {
				o.Items[0].Qty = 0
			},
		},
		{
			name: "price invalid",
			mut: func(o *domain.Order) {
				o.Items[0].PriceMinor = -5
			},
		},
		{
			name: "negative delivery",
			mut: func(o *domain.Order) {
				o.DeliveryMinor = -1
			},
		},
		{
			name: "subtotal mismatch",
			mut: func(o *domain.Order) {
				o.SubtotalMinor = 999
			},
		},
		{
			name: "total mismatch",
			mut: func(o *domain.Order) {
				o.TotalMinor = o.SubtotalMinor
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			// Изменяем состояние согласно сценарию.
			mutOrder := order
			tc.mut(&mutOrder)

			if len(mutOrder.ValidateInvariants()) == 0 {
				t.Fatalf("expected validation errors for case %s", tc.name)
			}
		})
	}
}

func TestSubtotal(t *testing.T) {
	items := []domain.OrderItem{
		{ProductID: "a", PriceMinor: 1000, Qty: 2},
		{ProductID: "b", PriceMinor: 500, Qty: 1},
	}
	if got := domain.Subtotal(items); got != 2500 {
		t.Fatalf("expected subtotal 2500, got %d", got)
	}
}

func TestOrderStatusCanTransition(t *testing.T) {
	cases := []struct {
		from domain.OrderStatus
		to   domain.OrderStatus
		want bool
	}{
		{domain.OrderStatusPending, domain.OrderStatusProcessing, true},
		{domain.OrderStatusPending, domain.OrderStatusShipped, true},
		{domain.OrderStatusPending, domain.OrderStatusDelivered, true},
		{domain.OrderStatusPending, domain.OrderStatusCancelled, true},
		{domain.OrderStatusProcessing, domain.OrderStatusShipped, true},
		{domain.OrderStatusProcessing, domain.OrderStatusDelivered, true},
		{domain.OrderStatusProcessing, domain.OrderStatusCancelled, false},
		{domain.OrderStatusShipped, domain.OrderStatusDelivered, true},
		{domain.OrderStatusShipped, domain.OrderStatusCancelled, false},
		{domain.OrderStatusDelivered, domain.OrderStatusCancelled, false},
		{domain.OrderStatusCancelled, domain.OrderStatusPending, false},
		{domain.OrderStatusCancelled, domain.OrderStatusProcessing, false},
		{domain.OrderStatusPending, domain.OrderStatus("unknown"), false},
		{domain.OrderStatusPending, domain.OrderStatusPending, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Errorf("CanTransition(%s → %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCustomerValidate(t *testing.T) {
	customer := domain.Customer{Name: "Karim", Phone: "01800000000", Address: "Chattogram"}
	if errs := customer.Validate(); len(errs) != 0 {
		t.Fatalf("expected valid customer, got %v", errs)
	}

	empty := domain.Customer{}
	if errs := empty.Validate(); len(errs) != 3 {
		t.Fatalf("expected 3 validation errors, got %d: %v", len(errs), errs)
	}
}
