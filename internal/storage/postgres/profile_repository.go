package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rakibhasan/dokan/internal/domain"
)

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository создаёт PostgreSQL-реализацию ProfileService.
func NewProfileRepository(store *Store) domain.ProfileService {
	return &profileRepository{db: store.DB()}
}

var _ domain.ProfileService = (*profileRepository)(nil)

// SaveContact перезаписывает контактные данные профиля последним заказом.
func (r *profileRepository) SaveContact(ctx context.Context, userID string, customer domain.Customer) error {
	if userID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO user_contacts (user_id, name, phone, address, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET name = EXCLUDED.name,
		    phone = EXCLUDED.phone,
		    address = EXCLUDED.address,
		    updated_at = EXCLUDED.updated_at
	`,
		userID, customer.Name, customer.Phone, customer.Address, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("save user contact: %w", err)
	}

	return nil
}
