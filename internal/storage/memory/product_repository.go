package memory

import (
	"context"
	"sort"
	"time"

	"github.com/rakibhasan/dokan/internal/domain"
)

// productRepositoryInMemory — представление каталога поверх общего Store.
type productRepositoryInMemory struct {
	store *Store
}

// NewProductRepository возвращает in-memory репозиторий каталога.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepositoryInMemory{store: store}
}

// Create сохраняет новый товар, если ID ещё не занят.
func (r *productRepositoryInMemory) Create(_ context.Context, product domain.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.products[product.ID]; exists {
		return domain.ErrProductVersionConflict
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.store.products[product.ID] = copyProduct(product)
	return nil
}

// Get возвращает товар или ErrProductNotFound.
func (r *productRepositoryInMemory) Get(_ context.Context, id string) (domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	product, ok := r.store.products[id]
	if !ok {
		return domain.Product{}, &domain.ProductNotFoundError{ProductID: id}
	}
	return copyProduct(product), nil
}

// List возвращает товары каталога, новые первыми.
func (r *productRepositoryInMemory) List(_ context.Context, activeOnly bool) ([]domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	result := make([]domain.Product, 0, len(r.store.products))
	for _, product := range r.store.products {
		if activeOnly && !product.Active {
			continue
		}
		result = append(result, copyProduct(product))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

// Save перезаписывает товар, проверяя версию (optimistic locking).
// Сток через Save не меняется: единственный путь к стоку — RunAtomic.
func (r *productRepositoryInMemory) Save(_ context.Context, product domain.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.products[product.ID]
	if !ok {
		return &domain.ProductNotFoundError{ProductID: product.ID}
	}
	if current.Version != product.Version {
		return domain.ErrProductVersionConflict
	}
	product.Stock = current.Stock
	product.Version++
	product.CreatedAt = current.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	r.store.products[product.ID] = copyProduct(product)
	return nil
}

// Delete удаляет товар из каталога.
func (r *productRepositoryInMemory) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.products[id]; !ok {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	delete(r.store.products, id)
	return nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
