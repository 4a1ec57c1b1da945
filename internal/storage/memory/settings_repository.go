package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rakibhasan/dokan/internal/domain"
)

// Тариф по умолчанию: 60/120 така базово, 20 така за каждый следующий кг.
var defaultShippingSettings = domain.ShippingSettings{
	BaseInsideMinor:  6000,
	BaseOutsideMinor: 12000,
	PerKgMinor:       2000,
}

type settingsRepositoryInMemory struct {
	mu       sync.RWMutex
	settings domain.ShippingSettings
}

// NewShippingSettingsRepository создаёт in-memory хранилище тарифа доставки.
func NewShippingSettingsRepository() domain.ShippingSettingsRepository {
	return &settingsRepositoryInMemory{settings: defaultShippingSettings}
}

// Get возвращает текущий тариф.
func (r *settingsRepositoryInMemory) Get(_ context.Context) (domain.ShippingSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings, nil
}

// Save перезаписывает тариф.
func (r *settingsRepositoryInMemory) Save(_ context.Context, settings domain.ShippingSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings.UpdatedAt = time.Now().UTC()
	r.settings = settings
	return nil
}

var _ domain.ShippingSettingsRepository = (*settingsRepositoryInMemory)(nil)
