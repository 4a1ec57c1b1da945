package app

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/rakibhasan/dokan/internal/cart"
	"github.com/rakibhasan/dokan/internal/domain"
	"github.com/rakibhasan/dokan/internal/storage/memory"
	"github.com/rakibhasan/dokan/internal/storage/postgres"
)

// Dependencies держит инфраструктурные зависимости приложения.
// В зависимости от конфигурации это либо Postgres и Redis,
// либо их in-memory аналоги для локальной разработки и тестов.
type Dependencies struct {
	Store    domain.AtomicStore
	Products domain.ProductRepository
	Orders   domain.OrderRepository
	Outbox   domain.OutboxRepository
	Timeline domain.TimelineRepository
	Profiles domain.ProfileService
	Settings domain.ShippingSettingsRepository
	Idem     domain.IdempotencyRepository

	CartStore domain.CartStore

	pg     *postgres.Store
	redis  *redis.Client
	logger *log.Entry
}

// NewDependencies собирает зависимости согласно конфигурации.
// Пустой DatabaseURL переключает хранилище на память, пустой RedisAddr —
// корзины на память процесса.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	deps := &Dependencies{logger: logger}

	if cfg.DatabaseURL == "" {
		logger.Warn("DOKAN_DATABASE_URL is empty, using in-memory storage")
		store := memory.NewStore()
		deps.Store = store
		deps.Products = memory.NewProductRepository(store)
		deps.Orders = memory.NewOrderRepository(store)
		deps.Outbox = memory.NewOutboxRepository(store)
		deps.Timeline = memory.NewTimelineRepository(store)
		deps.Profiles = memory.NewProfileRepository()
		deps.Settings = memory.NewShippingSettingsRepository()
		deps.Idem = memory.NewIdempotencyRepository()
	} else {
		pg, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		deps.pg = pg
		deps.Store = pg
		deps.Products = postgres.NewProductRepository(pg)
		deps.Orders = postgres.NewOrderRepository(pg)
		deps.Outbox = postgres.NewOutboxRepository(pg)
		deps.Timeline = postgres.NewTimelineRepository(pg)
		deps.Profiles = postgres.NewProfileRepository(pg)
		deps.Settings = postgres.NewShippingSettingsRepository(pg)
		deps.Idem = postgres.NewIdempotencyRepository(pg)
		logger.Info("connected to postgres")
	}

	if cfg.RedisAddr == "" {
		logger.Warn("DOKAN_REDIS_ADDR is empty, carts live in process memory")
		deps.CartStore = cart.NewMemoryStore()
	} else {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			deps.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		deps.redis = client
		deps.CartStore = cart.NewRedisStore(client)
		logger.WithField("addr", cfg.RedisAddr).Info("connected to redis")
	}

	return deps, nil
}

// PingPostgres проверяет соединение с базой. Для in-memory режима всегда nil.
func (d *Dependencies) PingPostgres(ctx context.Context) error {
	if d.pg == nil {
		return nil
	}
	return d.pg.Ping(ctx)
}

// PingRedis проверяет соединение с Redis. Для in-memory режима всегда nil.
func (d *Dependencies) PingRedis(ctx context.Context) error {
	if d.redis == nil {
		return nil
	}
	return d.redis.Ping(ctx).Err()
}

// Close закрывает внешние соединения. Безопасно вызывать на частично
// собранных зависимостях.
func (d *Dependencies) Close() {
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			d.logger.WithError(err).Error("failed to close redis client")
		}
	}
	if d.pg != nil {
		if err := d.pg.Close(); err != nil {
			d.logger.WithError(err).Error("failed to close postgres store")
		}
	}
}
