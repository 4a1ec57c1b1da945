package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rakibhasan/dokan/internal/domain"
)

const opTimeout = 5 * time.Second

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

var _ domain.ProductRepository = (*productRepository)(nil)

func (r *productRepository) Create(ctx context.Context, product domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	images, err := encodeImages(product.Images)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO products (
			id, title, description, price_minor, stock, active,
			weight_grams, images, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,0,NOW(),NOW())
	`,
		product.ID, product.Title, product.Description,
		product.PriceMinor, product.Stock, product.Active,
		product.WeightGrams, images,
	); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *productRepository) Get(ctx context.Context, id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return scanProduct(r.db.QueryRowContext(ctx, productSelectSQL+` WHERE id = $1`, id), id)
}

func (r *productRepository) List(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := productSelectSQL
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows, "")
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// Save обновляет карточку товара с optimistic locking. Сток через этот
// метод не меняется — только атомарной транзакцией.
func (r *productRepository) Save(ctx context.Context, product domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	images, err := encodeImages(product.Images)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET title = $2,
		    description = $3,
		    price_minor = $4,
		    active = $5,
		    weight_grams = $6,
		    images = $7,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1
		  AND version = $8
	`,
		product.ID, product.Title, product.Description,
		product.PriceMinor, product.Active, product.WeightGrams,
		images, product.Version,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, err := r.exists(ctx, product.ID)
		if err != nil {
			return err
		}
		if !exists {
			return &domain.ProductNotFoundError{ProductID: product.ID}
		}
		return domain.ErrProductVersionConflict
	}

	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	return nil
}

func (r *productRepository) exists(ctx context.Context, id string) (bool, error) {
	var found string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM products WHERE id = $1`, id).Scan(&found)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check product exists: %w", err)
}

func encodeImages(images []string) ([]byte, error) {
	if len(images) == 0 {
		return []byte(`[]`), nil
	}
	data, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("encode product images: %w", err)
	}
	return data, nil
}
