package domain

import (
	"context"
	"time"
)

// Tx — набор операций, доступных телу атомарной транзакции. Все чтения
// и записи внутри одного вызова RunAtomic видят и изменяют согласованное
// состояние хранилища.
type Tx interface {
	// GetProduct возвращает товар или ErrProductNotFound.
	GetProduct(ctx context.Context, id string) (Product, error)
	// UpdateProductStock выставляет новое значение стока товара.
	UpdateProductStock(ctx context.Context, id string, stock int32) error
	// InsertOrder сохраняет новый заказ вместе с позициями. CreatedAt
	// выставляется временем коммита транзакции, а не клиентскими часами.
	InsertOrder(ctx context.Context, order Order) error
	// GetOrder возвращает заказ или ErrOrderNotFound.
	GetOrder(ctx context.Context, id string) (Order, error)
	// UpdateOrder перезаписывает изменяемые поля заказа (статус, отмена, платёж).
	UpdateOrder(ctx context.Context, order Order) error
	// EnqueueOutbox ставит событие в transactional outbox той же транзакцией,
	// что и бизнес-записи: событие существует тогда и только тогда, когда
	// закоммичены породившие его изменения.
	EnqueueOutbox(ctx context.Context, msg OutboxMessage) error
}

// AtomicStore исполняет fn как одну атомарную транзакцию: либо применяются
// все записи, либо ни одна. Конфликт с конкурентной транзакцией приводит к
// прозрачному повтору fn на свежих чтениях, поэтому fn обязана быть чистой —
// никаких побочных эффектов вне Tx. Исчерпание повторов возвращает
// ErrTxExhausted; бизнес-ошибки из fn пробрасываются без повторов.
type AtomicStore interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// ProductRepository описывает нетранзакционный доступ к каталогу.
// Сток через этот интерфейс не меняется — только через AtomicStore.
type ProductRepository interface {
	Create(ctx context.Context, product Product) error
	Get(ctx context.Context, id string) (Product, error)
	// List возвращает товары каталога; activeOnly скрывает снятые с витрины.
	List(ctx context.Context, activeOnly bool) ([]Product, error)
	// Save применяет обновления к товару с учётом optimistic locking.
	Save(ctx context.Context, product Product) error
	Delete(ctx context.Context, id string) error
}

// OrderRepository описывает read-path и админские обновления заказов.
type OrderRepository interface {
	Get(ctx context.Context, id string) (Order, error)
	// ListByUser возвращает заказы пользователя, новые первыми.
	ListByUser(ctx context.Context, userID string, limit int) ([]Order, error)
	// List возвращает все заказы для админки, новые первыми.
	List(ctx context.Context, limit int) ([]Order, error)
	// Save применяет обновления к заказу с учётом optimistic locking.
	Save(ctx context.Context, order Order) error
}

// CartStore хранит корзины с явными границами load/save.
type CartStore interface {
	// Load возвращает корзину или ErrCartNotFound.
	Load(ctx context.Context, cartID string) (Cart, error)
	Save(ctx context.Context, cart Cart) error
	Delete(ctx context.Context, cartID string) error
}

// ProfileService сохраняет контактные данные в профиле пользователя.
// Запись best-effort: её ошибка логируется и никогда не влияет на заказ.
type ProfileService interface {
	SaveContact(ctx context.Context, userID string, customer Customer) error
}

// ShippingSettingsRepository хранит параметры расчёта стоимости доставки.
type ShippingSettingsRepository interface {
	Get(ctx context.Context) (ShippingSettings, error)
	Save(ctx context.Context, settings ShippingSettings) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации
// вне атомарной транзакции (для best-effort событий админки).
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID string) ([]TimelineEvent, error)
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key string, responseBody []byte, httpStatus int) error
	MarkFailed(key string, responseBody []byte, httpStatus int) error
	DeleteExpired(before time.Time, limit int) (int, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// ShippingSettings — параметры тарифа доставки в минимальных единицах.
type ShippingSettings struct {
	// BaseInsideMinor — базовый тариф по Дакке за первый килограмм.
	BaseInsideMinor int64
	// BaseOutsideMinor — базовый тариф за пределы Дакки за первый килограмм.
	BaseOutsideMinor int64
	// PerKgMinor — доплата за каждый начатый килограмм сверх первого.
	PerKgMinor int64
	UpdatedAt  time.Time
}
