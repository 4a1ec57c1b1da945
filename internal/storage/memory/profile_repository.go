package memory

import (
	"context"
	"sync"

	"github.com/rakibhasan/dokan/internal/domain"
)

// profileRepositoryInMemory хранит контактные данные профилей. Заменяет
// внешний сервис идентификации в локальной разработке и тестах.
type profileRepositoryInMemory struct {
	mu       sync.RWMutex
	contacts map[string]domain.Customer
}

// NewProfileRepository создаёт in-memory реализацию ProfileService.
func NewProfileRepository() *profileRepositoryInMemory {
	return &profileRepositoryInMemory{contacts: make(map[string]domain.Customer)}
}

// SaveContact сохраняет контактные данные пользователя.
func (r *profileRepositoryInMemory) SaveContact(_ context.Context, userID string, customer domain.Customer) error {
	if userID == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.contacts[userID] = customer
	return nil
}

// Contact возвращает сохранённые контакты (используется в тестах).
func (r *profileRepositoryInMemory) Contact(userID string) (domain.Customer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.contacts[userID]
	return customer, ok
}

var _ domain.ProfileService = (*profileRepositoryInMemory)(nil)
