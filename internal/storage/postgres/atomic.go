package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rakibhasan/dokan/internal/domain"
)

const (
	txMaxAttempts = 5
	txBaseDelay   = 20 * time.Millisecond
)

var _ domain.AtomicStore = (*Store)(nil)

// RunAtomic исполняет fn в serializable-транзакции. Конфликт сериализации
// (SQLSTATE 40001/40P01) приводит к повтору fn с exponential backoff;
// бизнес-ошибки пробрасываются сразу. После исчерпания повторов
// возвращается ErrTxExhausted.
func (s *Store) RunAtomic(ctx context.Context, fn func(ctx context.Context, tx domain.Tx) error) error {
	var lastErr error

	for attempt := 0; attempt < txMaxAttempts; attempt++ {
		err := s.runAtomicOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if domain.IsBusinessError(err) || !isSerializationFailure(err) {
			return err
		}

		lastErr = err
		delay := txBaseDelay * time.Duration(1<<uint(attempt))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%w: %v", domain.ErrTxExhausted, lastErr)
}

func (s *Store) runAtomicOnce(ctx context.Context, fn func(ctx context.Context, tx domain.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin atomic tx: %w", err)
	}

	if err := fn(ctx, &pgTx{tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit atomic tx: %w", err)
	}
	return nil
}

// isSerializationFailure распознаёт конфликт сериализации и deadlock.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// pgTx реализует domain.Tx поверх открытой SQL-транзакции.
type pgTx struct {
	tx *sql.Tx
}

var _ domain.Tx = (*pgTx)(nil)

func (t *pgTx) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return scanProduct(t.tx.QueryRowContext(ctx, productSelectSQL+` WHERE id = $1`, id), id)
}

func (t *pgTx) UpdateProductStock(ctx context.Context, id string, stock int32) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE products
		SET stock = $2,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1
	`, id, stock)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
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

func (t *pgTx) InsertOrder(ctx context.Context, order domain.Order) error {
	// created_at выставляется временем коммита, а не клиентскими часами.
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, customer_name, customer_phone, customer_address,
			subtotal_minor, delivery_minor, total_minor, currency, status,
			payment_method, payment_trx_id, payment_verified,
			version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,0,NOW(),NOW())
	`,
		order.ID, nullableUserID(order.UserID),
		order.Customer.Name, order.Customer.Phone, order.Customer.Address,
		order.SubtotalMinor, order.DeliveryMinor, order.TotalMinor,
		order.Currency, string(order.Status),
		string(order.Payment.Method), order.Payment.TrxID, order.Payment.Verified,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, item := range order.Items {
		if _, err := t.tx.ExecContext(ctx, `
			INSERT INTO order_items (
				order_id, position, product_id, title, price_minor, qty, weight_grams, image
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
			order.ID, i, item.ProductID, item.Title, item.PriceMinor,
			item.Qty, item.WeightGrams, item.Image,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return nil
}

func (t *pgTx) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	order, err := scanOrder(t.tx.QueryRowContext(ctx, orderSelectSQL+` WHERE id = $1`, id))
	if err != nil {
		return domain.Order{}, err
	}

	items, err := loadOrderItems(ctx, t.tx, id)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items
	return order, nil
}

func (t *pgTx) UpdateOrder(ctx context.Context, order domain.Order) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $2,
		    payment_method = $3,
		    payment_trx_id = $4,
		    payment_verified = $5,
		    cancelled_at = $6,
		    cancelled_by = $7,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1
	`,
		order.ID, string(order.Status),
		string(order.Payment.Method), order.Payment.TrxID, order.Payment.Verified,
		nullableTime(order.CancelledAt), order.CancelledBy,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (t *pgTx) EnqueueOutbox(ctx context.Context, msg domain.OutboxMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	payload := msg.Payload
	if len(payload) == 0 {
		payload = []byte(`{}`)
	}

	if _, err := t.tx.ExecContext(ctx, `
		INSERT INTO outbox_messages (
			id, aggregate_type, aggregate_id, event_type, payload,
			status, attempt_count, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,'pending',0,NOW(),NOW())
	`,
		msg.ID, msg.AggregateType, msg.AggregateID, msg.EventType, payload,
	); err != nil {
		return fmt.Errorf("enqueue outbox message: %w", err)
	}
	return nil
}

func nullableUserID(userID string) sql.NullString {
	return sql.NullString{String: userID, Valid: userID != ""}
}

func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

const productSelectSQL = `
	SELECT id, title, description, price_minor, stock, active,
	       weight_grams, images, version, created_at, updated_at
	FROM products`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, id string) (domain.Product, error) {
	var (
		product domain.Product
		images  []byte
	)
	err := row.Scan(
		&product.ID, &product.Title, &product.Description,
		&product.PriceMinor, &product.Stock, &product.Active,
		&product.WeightGrams, &images, &product.Version,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, &domain.ProductNotFoundError{ProductID: id}
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("scan product: %w", err)
	}

	if len(images) > 0 {
		if err := json.Unmarshal(images, &product.Images); err != nil {
			return domain.Product{}, fmt.Errorf("decode product images: %w", err)
		}
	}
	return product, nil
}

const orderSelectSQL = `
	SELECT id, user_id, customer_name, customer_phone, customer_address,
	       subtotal_minor, delivery_minor, total_minor, currency, status,
	       payment_method, payment_trx_id, payment_verified,
	       version, created_at, updated_at, cancelled_at, cancelled_by
	FROM orders`

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order       domain.Order
		userID      sql.NullString
		status      string
		method      string
		cancelledAt sql.NullTime
	)
	err := row.Scan(
		&order.ID, &userID,
		&order.Customer.Name, &order.Customer.Phone, &order.Customer.Address,
		&order.SubtotalMinor, &order.DeliveryMinor, &order.TotalMinor,
		&order.Currency, &status,
		&method, &order.Payment.TrxID, &order.Payment.Verified,
		&order.Version, &order.CreatedAt, &order.UpdatedAt,
		&cancelledAt, &order.CancelledBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("scan order: %w", err)
	}

	order.UserID = userID.String
	order.Status = domain.OrderStatus(status)
	order.Payment.Method = domain.PaymentMethod(method)
	if cancelledAt.Valid {
		order.CancelledAt = cancelledAt.Time.UTC()
	}
	return order, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadOrderItems(ctx context.Context, q querier, orderID string) ([]domain.OrderItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT product_id, title, price_minor, qty, weight_grams, image
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ProductID, &item.Title, &item.PriceMinor,
			&item.Qty, &item.WeightGrams, &item.Image,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}
