package memory

import (
	"time"

	"github.com/rakibhasan/dokan/internal/domain"
)

// timelineRepositoryInMemory хранит события жизненного цикла заказов поверх Store.
type timelineRepositoryInMemory struct {
	store *Store
}

// NewTimelineRepository возвращает in-memory реализацию TimelineRepository.
func NewTimelineRepository(store *Store) domain.TimelineRepository {
	return &timelineRepositoryInMemory{store: store}
}

// Append добавляет событие в хронологию заказа.
func (r *timelineRepositoryInMemory) Append(event domain.TimelineEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if event.Occurred.IsZero() {
		event.Occurred = time.Now().UTC()
	}
	r.store.timeline[event.OrderID] = append(r.store.timeline[event.OrderID], event)
	return nil
}

// List возвращает события заказа в порядке наступления.
func (r *timelineRepositoryInMemory) List(orderID string) ([]domain.TimelineEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	events := r.store.timeline[orderID]
	return append([]domain.TimelineEvent(nil), events...), nil
}

var _ domain.TimelineRepository = (*timelineRepositoryInMemory)(nil)
