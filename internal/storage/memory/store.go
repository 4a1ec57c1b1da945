package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rakibhasan/dokan/internal/domain"
)

// Store — in-memory хранилище для локальной разработки и тестов.
// Репозитории-представления (NewProductRepository и т.д.) работают с теми же
// данными, что и атомарные транзакции RunAtomic.
type Store struct {
	mu       sync.Mutex
	products map[string]domain.Product
	orders   map[string]domain.Order
	outbox   map[string]*outboxRecord
	timeline map[string][]domain.TimelineEvent
}

// NewStore создаёт пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		products: make(map[string]domain.Product),
		orders:   make(map[string]domain.Order),
		outbox:   make(map[string]*outboxRecord),
		timeline: make(map[string][]domain.TimelineEvent),
	}
}

// RunAtomic исполняет fn на staged-копии состояния под общим mutex.
// Ошибка fn отбрасывает все staged-записи, успех применяет их одним куском —
// частично применённых транзакций не бывает. Mutex сериализует транзакции,
// поэтому из двух конкурентных оформлений последней единицы товара выигрывает
// первая, вторая детерминированно получает InsufficientStockError.
func (s *Store) RunAtomic(ctx context.Context, fn func(ctx context.Context, tx domain.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:           s,
		stagedProducts:  make(map[string]domain.Product),
		stagedOrders:    make(map[string]domain.Order),
		insertedOrderID: make(map[string]struct{}),
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}

	tx.commit(time.Now().UTC())
	return nil
}

// memTx накапливает записи транзакции, не трогая хранилище до commit.
type memTx struct {
	store           *Store
	stagedProducts  map[string]domain.Product
	stagedOrders    map[string]domain.Order
	insertedOrderID map[string]struct{}
	stagedOutbox    []domain.OutboxMessage
}

func (t *memTx) GetProduct(_ context.Context, id string) (domain.Product, error) {
	if staged, ok := t.stagedProducts[id]; ok {
		return copyProduct(staged), nil
	}
	product, ok := t.store.products[id]
	if !ok {
		return domain.Product{}, &domain.ProductNotFoundError{ProductID: id}
	}
	return copyProduct(product), nil
}

func (t *memTx) UpdateProductStock(_ context.Context, id string, stock int32) error {
	product, ok := t.stagedProducts[id]
	if !ok {
		product, ok = t.store.products[id]
		if !ok {
			return &domain.ProductNotFoundError{ProductID: id}
		}
		product = copyProduct(product)
	}
	product.Stock = stock
	t.stagedProducts[id] = product
	return nil
}

func (t *memTx) InsertOrder(_ context.Context, order domain.Order) error {
	if _, exists := t.store.orders[order.ID]; exists {
		return domain.ErrOrderVersionConflict
	}
	if _, exists := t.insertedOrderID[order.ID]; exists {
		return domain.ErrOrderVersionConflict
	}
	t.insertedOrderID[order.ID] = struct{}{}
	t.stagedOrders[order.ID] = copyOrder(order)
	return nil
}

func (t *memTx) GetOrder(_ context.Context, id string) (domain.Order, error) {
	if staged, ok := t.stagedOrders[id]; ok {
		return copyOrder(staged), nil
	}
	order, ok := t.store.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return copyOrder(order), nil
}

func (t *memTx) UpdateOrder(_ context.Context, order domain.Order) error {
	if _, staged := t.stagedOrders[order.ID]; !staged {
		if _, ok := t.store.orders[order.ID]; !ok {
			return domain.ErrOrderNotFound
		}
	}
	t.stagedOrders[order.ID] = copyOrder(order)
	return nil
}

func (t *memTx) EnqueueOutbox(_ context.Context, msg domain.OutboxMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	t.stagedOutbox = append(t.stagedOutbox, msg)
	return nil
}

// commit применяет staged-записи к хранилищу. Вызывается под mutex.
func (t *memTx) commit(now time.Time) {
	for id, product := range t.stagedProducts {
		product.Version++
		product.UpdatedAt = now
		t.store.products[id] = product
	}
	for id, order := range t.stagedOrders {
		if _, inserted := t.insertedOrderID[id]; inserted {
			// CreatedAt — время коммита транзакции, не клиентские часы.
			order.CreatedAt = now
		} else {
			order.Version++
		}
		order.UpdatedAt = now
		t.store.orders[id] = order
	}
	for _, msg := range t.stagedOutbox {
		t.store.outbox[msg.ID] = &outboxRecord{
			msg:       msg,
			status:    outboxStatusPending,
			createdAt: now,
			updatedAt: now,
		}
	}
}

func copyProduct(p domain.Product) domain.Product {
	p.Images = append([]string(nil), p.Images...)
	return p
}

func copyOrder(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return o
}

var _ domain.AtomicStore = (*Store)(nil)
