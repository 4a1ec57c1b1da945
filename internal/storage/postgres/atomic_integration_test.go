package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rakibhasan/dokan/internal/domain"
)

func seedProductForIntegrationTest(t *testing.T, store *Store, id string, priceMinor int64, stock int32) {
	t.Helper()

	products := NewProductRepository(store)
	err := products.Create(context.Background(), domain.Product{
		ID:         id,
		Title:      "Product " + id,
		PriceMinor: priceMinor,
		Stock:      stock,
		Active:     true,
	})
	if err != nil {
		t.Fatalf("seed product %s: %v", id, err)
	}
}

func placeOrderTx(store *Store, order domain.Order, qty map[string]int32) error {
	return store.RunAtomic(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		for id, want := range qty {
			product, err := tx.GetProduct(ctx, id)
			if err != nil {
				return err
			}
			if product.Stock < want {
				return &domain.InsufficientStockError{
					ProductID: id,
					Requested: want,
					Available: product.Stock,
				}
			}
			if err := tx.UpdateProductStock(ctx, id, product.Stock-want); err != nil {
				return err
			}
		}
		return tx.InsertOrder(ctx, order)
	})
}

func validIntegrationOrder(id string, items []domain.OrderItem) domain.Order {
	subtotal := domain.Subtotal(items)
	return domain.Order{
		ID:            id,
		Customer:      domain.Customer{Name: "Rahim", Phone: "01711000000", Address: "Dhanmondi, Dhaka"},
		Items:         items,
		SubtotalMinor: subtotal,
		TotalMinor:    subtotal,
		Currency:      domain.DefaultCurrency,
		Status:        domain.OrderStatusPending,
		Payment:       domain.Payment{Method: domain.PaymentMethodCOD},
	}
}

func TestRunAtomicIntegration_CommitAppliesAllWrites(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedProductForIntegrationTest(t, store, "p1", 1000, 10)

	order := validIntegrationOrder("order-1", []domain.OrderItem{
		{ProductID: "p1", Title: "Product p1", PriceMinor: 1000, Qty: 3},
	})

	if err := placeOrderTx(store, order, map[string]int32{"p1": 3}); err != nil {
		t.Fatalf("place order tx: %v", err)
	}

	products := NewProductRepository(store)
	product, err := products.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 7 {
		t.Fatalf("expected stock 7, got %d", product.Stock)
	}

	orders := NewOrderRepository(store)
	persisted, err := orders.Get(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if persisted.Status != domain.OrderStatusPending {
		t.Fatalf("unexpected order status: %s", persisted.Status)
	}
	if persisted.CreatedAt.IsZero() {
		t.Fatal("expected commit-time created_at")
	}
	if len(persisted.Items) != 1 || persisted.Items[0].Qty != 3 {
		t.Fatalf("unexpected order items: %+v", persisted.Items)
	}
}

func TestRunAtomicIntegration_BusinessErrorDiscardsWrites(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedProductForIntegrationTest(t, store, "p1", 1000, 10)
	seedProductForIntegrationTest(t, store, "p2", 500, 1)

	order := validIntegrationOrder("order-1", []domain.OrderItem{
		{ProductID: "p1", Title: "Product p1", PriceMinor: 1000, Qty: 2},
		{ProductID: "p2", Title: "Product p2", PriceMinor: 500, Qty: 3},
	})

	// Порядок обхода map не определён: сток p1 мог быть списан до отказа
	// по p2, транзакция обязана откатить всё.
	err := placeOrderTx(store, order, map[string]int32{"p1": 2, "p2": 3})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	products := NewProductRepository(store)
	for id, want := range map[string]int32{"p1": 10, "p2": 1} {
		product, err := products.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("get product %s: %v", id, err)
		}
		if product.Stock != want {
			t.Fatalf("product %s: expected stock %d, got %d", id, want, product.Stock)
		}
	}

	orders := NewOrderRepository(store)
	if _, err := orders.Get(context.Background(), "order-1"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected no order after rollback, got %v", err)
	}
}

func TestRunAtomicIntegration_ConcurrentLastUnit(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedProductForIntegrationTest(t, store, "p1", 1000, 1)

	buy := func(orderID string) error {
		order := validIntegrationOrder(orderID, []domain.OrderItem{
			{ProductID: "p1", Title: "Product p1", PriceMinor: 1000, Qty: 1},
		})
		return placeOrderTx(store, order, map[string]int32{"p1": 1})
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = buy([]string{"order-a", "order-b"}[i])
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		if !errors.Is(err, domain.ErrInsufficientStock) && !errors.Is(err, domain.ErrTxExhausted) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}

	products := NewProductRepository(store)
	product, err := products.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", product.Stock)
	}
}

func TestRunAtomicIntegration_OutboxEnqueuedWithCommit(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedProductForIntegrationTest(t, store, "p1", 1000, 5)

	order := validIntegrationOrder("order-1", []domain.OrderItem{
		{ProductID: "p1", Title: "Product p1", PriceMinor: 1000, Qty: 1},
	})

	err := store.RunAtomic(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		product, err := tx.GetProduct(ctx, "p1")
		if err != nil {
			return err
		}
		if err := tx.UpdateProductStock(ctx, "p1", product.Stock-1); err != nil {
			return err
		}
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		return tx.EnqueueOutbox(ctx, domain.OutboxMessage{
			AggregateType: "order",
			AggregateID:   order.ID,
			EventType:     "order.placed",
			Payload:       []byte(`{"order_id":"order-1"}`),
		})
	})
	if err != nil {
		t.Fatalf("atomic tx: %v", err)
	}

	outbox := NewOutboxRepository(store)
	pending, err := outbox.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 1 || pending[0].EventType != "order.placed" {
		t.Fatalf("unexpected pending outbox: %+v", pending)
	}
}

func TestStoreIntegration_PingAndMigrationStatus(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)

	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("migration status: %v", err)
	}
	if version == 0 || count == 0 {
		t.Fatalf("expected applied migrations, got version=%d count=%d", version, count)
	}
}
