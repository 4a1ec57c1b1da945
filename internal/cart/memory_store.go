package cart

import (
	"context"
	"sync"

	"github.com/rakibhasan/dokan/internal/domain"
)

// MemoryStore хранит корзины в памяти процесса. Используется в тестах
// и при запуске без Redis.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

// NewMemoryStore создаёт пустое хранилище корзин.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]domain.Cart)}
}

var _ domain.CartStore = (*MemoryStore)(nil)

func (s *MemoryStore) Load(_ context.Context, cartID string) (domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[cartID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	return copyCart(cart), nil
}

func (s *MemoryStore) Save(_ context.Context, cart domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[cart.ID] = copyCart(cart)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, cartID)
	return nil
}

func copyCart(cart domain.Cart) domain.Cart {
	clone := cart
	clone.Lines = append([]domain.CartLine(nil), cart.Lines...)
	return clone
}
