package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rakibhasan/dokan/internal/domain"
)

type settingsRepository struct {
	db *sql.DB
}

// NewShippingSettingsRepository создаёт PostgreSQL-реализацию
// ShippingSettingsRepository. Тариф хранится одной строкой.
func NewShippingSettingsRepository(store *Store) domain.ShippingSettingsRepository {
	return &settingsRepository{db: store.DB()}
}

var _ domain.ShippingSettingsRepository = (*settingsRepository)(nil)

func (r *settingsRepository) Get(ctx context.Context) (domain.ShippingSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var settings domain.ShippingSettings
	err := r.db.QueryRowContext(ctx, `
		SELECT base_inside_minor, base_outside_minor, per_kg_minor, updated_at
		FROM shipping_settings
		WHERE id = 1
	`).Scan(
		&settings.BaseInsideMinor,
		&settings.BaseOutsideMinor,
		&settings.PerKgMinor,
		&settings.UpdatedAt,
	)
	if err != nil {
		return domain.ShippingSettings{}, fmt.Errorf("select shipping settings: %w", err)
	}

	return settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings domain.ShippingSettings) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO shipping_settings (id, base_inside_minor, base_outside_minor, per_kg_minor, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET base_inside_minor = EXCLUDED.base_inside_minor,
		    base_outside_minor = EXCLUDED.base_outside_minor,
		    per_kg_minor = EXCLUDED.per_kg_minor,
		    updated_at = EXCLUDED.updated_at
	`,
		settings.BaseInsideMinor,
		settings.BaseOutsideMinor,
		settings.PerKgMinor,
		time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("save shipping settings: %w", err)
	}

	return nil
}
