package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/rakibhasan/dokan/internal/cart"
	healthcheck "github.com/rakibhasan/dokan/internal/health"
	"github.com/rakibhasan/dokan/internal/httpapi"
	"github.com/rakibhasan/dokan/internal/messaging/kafka"
	"github.com/rakibhasan/dokan/internal/metrics"
	"github.com/rakibhasan/dokan/internal/service/checkout"
	"github.com/rakibhasan/dokan/internal/service/idempotency"
	"github.com/rakibhasan/dokan/internal/service/orders"
	"github.com/rakibhasan/dokan/internal/service/outbox"
	"github.com/rakibhasan/dokan/internal/shipping"
	"github.com/rakibhasan/dokan/internal/version"
)

// Run собирает приложение и блокируется до отмены контекста
// или падения HTTP-сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	logger.Info(version.String())

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	kafkaProducer := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(kafkaProducer, logger)

	checkoutMetrics := metrics.NewCheckoutMetrics()
	adminMetrics := metrics.NewAdminMetrics()

	cartSvc := cart.NewService(deps.CartStore, deps.Products, logger.WithField("component", "cart"))
	checkoutSvc := checkout.NewService(deps.Store,
		checkout.WithTimeline(deps.Timeline),
		checkout.WithProfiles(deps.Profiles),
		checkout.WithMetrics(checkoutMetrics),
		checkout.WithLogger(logger.WithField("component", "checkout")),
	)
	ordersSvc := orders.NewService(deps.Orders,
		orders.WithOutbox(deps.Outbox),
		orders.WithTimeline(deps.Timeline),
		orders.WithMetrics(adminMetrics),
		orders.WithLogger(logger.WithField("component", "orders")),
	)
	quoter := shipping.NewQuoter(deps.Settings)

	handler := httpapi.NewHandler(httpapi.Deps{
		Store:       deps.Store,
		Products:    deps.Products,
		Carts:       cartSvc,
		Checkout:    checkoutSvc,
		Orders:      ordersSvc,
		Quoter:      quoter,
		Settings:    deps.Settings,
		Idempotency: deps.Idem,
		Logger:      logger.WithField("component", "http"),
	})

	// Фоновые воркеры: публикация outbox и чистка идемпотентных ключей.
	var wg sync.WaitGroup
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	if kafkaProducer != nil {
		publisher := kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicOrderEvents)
		dlqPublisher := kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicDeadLetterQueue)
		worker := outbox.NewWorker(deps.Outbox, publisher,
			outbox.WithLogger(logger.WithField("component", "outbox_worker")),
			outbox.WithDLQPublisher(dlqPublisher),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Run(workerCtx)
		}()
	}

	cleanup := idempotency.NewCleanupWorker(deps.Idem,
		idempotency.WithLogger(logger.WithField("component", "idempotency_cleanup")),
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		cleanup.Run(workerCtx)
	}()

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("postgres", healthcheck.NewPingChecker("postgres", deps.PingPostgres))
	healthHandler.RegisterChecker("redis", healthcheck.NewPingChecker("redis", deps.PingRedis))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	apiSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP сервер слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, cfg.ShutdownTimeout, logger)
		shutdownHTTP(metricsSrv, cfg.ShutdownTimeout, logger)
		stopWorkers()
		wg.Wait()
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, cfg.ShutdownTimeout, logger)
		stopWorkers()
		wg.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus
// вместе с health-эндпоинтами.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, 5*time.Second, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, timeout time.Duration, logger *log.Entry) {
	if srv == nil {
		return
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
