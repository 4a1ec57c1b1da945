package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakibhasan/dokan/internal/domain"
	"github.com/rakibhasan/dokan/internal/service/checkout"
	"github.com/rakibhasan/dokan/internal/service/orders"
	"github.com/rakibhasan/dokan/internal/storage/memory"
)

type fixture struct {
	store    *memory.Store
	repo     domain.OrderRepository
	timeline domain.TimelineRepository
	service  *orders.Service
}

func newFixture(t *testing.T, extra ...orders.Option) *fixture {
	t.Helper()

	store := memory.NewStore()
	repo := memory.NewOrderRepository(store)
	timeline := memory.NewTimelineRepository(store)
	options := append([]orders.Option{
		orders.WithOutbox(memory.NewOutboxRepository(store)),
		orders.WithTimeline(timeline),
		orders.WithRetry(3, 0),
	}, extra...)
	return &fixture{
		store:    store,
		repo:     repo,
		timeline: timeline,
		service:  orders.NewService(repo, options...),
	}
}

func (f *fixture) placeOrder(t *testing.T, payment domain.Payment) string {
	t.Helper()

	products := memory.NewProductRepository(f.store)
	err := products.Create(context.Background(), domain.Product{
		ID: "p1", Title: "Product p1", PriceMinor: 1000, Stock: 100, Active: true,
	})
	require.NoError(t, err)

	orderID, err := checkout.NewService(f.store).PlaceOrder(context.Background(), checkout.PlaceOrderInput{
		Lines: []domain.CartLine{{ProductID: "p1", Title: "Product p1", PriceMinor: 1000, Qty: 1}},
		Customer: domain.Customer{
			Name: "Karim", Phone: "01811000000", Address: "Agrabad, Chattogram",
		},
		Payment: payment,
	})
	require.NoError(t, err)
	return orderID
}

func TestUpdateStatus_WalksTheStateMachine(t *testing.T) {
	f := newFixture(t)
	orderID := f.placeOrder(t, domain.Payment{})

	for _, to := range []domain.OrderStatus{
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
	} {
		order, err := f.service.UpdateStatus(context.Background(), orderID, to)
		require.NoError(t, err, "transition to %s", to)
		assert.Equal(t, to, order.Status)
	}

	// Терминальный статус не допускает дальнейших переходов.
	_, err := f.service.UpdateStatus(context.Background(), orderID, domain.OrderStatusShipped)
	require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	events, err := f.timeline.List(orderID)
	require.NoError(t, err)
	assert.Len(t, events, 3)
	for _, event := range events {
		assert.Equal(t, orders.EventStatusChanged, event.Type)
	}
}

func TestUpdateStatus_RejectsBackwardTransition(t *testing.T) {
	f := newFixture(t)
	orderID := f.placeOrder(t, domain.Payment{})

	_, err := f.service.UpdateStatus(context.Background(), orderID, domain.OrderStatusShipped)
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(context.Background(), orderID, domain.OrderStatusProcessing)
	require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestUpdateStatus_RejectsCancelled(t *testing.T) {
	f := newFixture(t)
	orderID := f.placeOrder(t, domain.Payment{})

	// Отмена идёт только через компенсатор, который восстанавливает сток.
	_, err := f.service.UpdateStatus(context.Background(), orderID, domain.OrderStatusCancelled)
	require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	order, err := f.repo.Get(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestUpdateStatus_UnknownOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.UpdateStatus(context.Background(), "missing", domain.OrderStatusProcessing)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	f := newFixture(t)
	orderID := f.placeOrder(t, domain.Payment{})

	_, err := f.service.UpdateStatus(context.Background(), orderID, domain.OrderStatus("lost"))
	require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestVerifyPayment(t *testing.T) {
	f := newFixture(t)
	orderID := f.placeOrder(t, domain.Payment{
		Method: domain.PaymentMethodBkash,
		TrxID:  "BK123456",
	})

	order, err := f.service.VerifyPayment(context.Background(), orderID)
	require.NoError(t, err)
	assert.True(t, order.Payment.Verified)

	persisted, err := f.repo.Get(context.Background(), orderID)
	require.NoError(t, err)
	assert.True(t, persisted.Payment.Verified)

	events, err := f.timeline.List(orderID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, orders.EventPaymentVerified, events[0].Type)
}

func TestVerifyPayment_RejectsCOD(t *testing.T) {
	f := newFixture(t)
	orderID := f.placeOrder(t, domain.Payment{})

	_, err := f.service.VerifyPayment(context.Background(), orderID)
	require.ErrorIs(t, err, domain.ErrPaymentMethodInvalid)
}

// conflictingOrders имитирует конфликт версий на первых сохранениях.
type conflictingOrders struct {
	domain.OrderRepository
	failures int
	saves    int
}

func (r *conflictingOrders) Save(ctx context.Context, order domain.Order) error {
	r.saves++
	if r.saves <= r.failures {
		return domain.ErrOrderVersionConflict
	}
	return r.OrderRepository.Save(ctx, order)
}

func TestUpdateStatus_RetriesVersionConflict(t *testing.T) {
	f := newFixture(t)
	orderID := f.placeOrder(t, domain.Payment{})

	conflicting := &conflictingOrders{OrderRepository: f.repo, failures: 2}
	service := orders.NewService(conflicting,
		orders.WithRetry(3, time.Millisecond))

	order, err := service.UpdateStatus(context.Background(), orderID, domain.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, order.Status)
	assert.Equal(t, 3, conflicting.saves)
}

func TestUpdateStatus_ExhaustsRetries(t *testing.T) {
	f := newFixture(t)
	orderID := f.placeOrder(t, domain.Payment{})

	conflicting := &conflictingOrders{OrderRepository: f.repo, failures: 10}
	service := orders.NewService(conflicting,
		orders.WithRetry(3, time.Millisecond))

	_, err := service.UpdateStatus(context.Background(), orderID, domain.OrderStatusProcessing)
	require.ErrorIs(t, err, domain.ErrOrderVersionConflict)
}
