// Package orders реализует админские операции над заказами: переходы
// статуса по машине состояний и подтверждение мобильных платежей.
// Отмена заказа сюда не входит — она требует компенсации стока и
// выполняется сервисом checkout.
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rakibhasan/dokan/internal/domain"
	"github.com/rakibhasan/dokan/internal/metrics"
)

// Типы событий админских операций в outbox/timeline.
const (
	EventStatusChanged   = "order.status_changed"
	EventPaymentVerified = "order.payment_verified"
)

// Service обновляет заказы с optimistic locking и повторами при конфликте версий.
type Service struct {
	orders   domain.OrderRepository
	outbox   domain.OutboxRepository
	timeline domain.TimelineRepository
	logger   *log.Entry
	metrics  *metrics.AdminMetrics

	maxRetries int
	baseDelay  time.Duration
}

// Option настраивает Service.
type Option func(*Service)

// WithOutbox включает публикацию админских событий через outbox.
func WithOutbox(outbox domain.OutboxRepository) Option {
	return func(s *Service) { s.outbox = outbox }
}

// WithTimeline включает запись событий в хронологию заказа.
func WithTimeline(timeline domain.TimelineRepository) Option {
	return func(s *Service) { s.timeline = timeline }
}

// WithMetrics включает метрики админских операций.
func WithMetrics(m *metrics.AdminMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) { s.logger = logger }
}

// WithRetry настраивает повторы при конфликте версий.
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(s *Service) {
		s.maxRetries = maxRetries
		s.baseDelay = baseDelay
	}
}

// NewService создаёт сервис админских операций над заказами.
func NewService(orders domain.OrderRepository, options ...Option) *Service {
	s := &Service{
		orders:     orders,
		maxRetries: 3,
		baseDelay:  10 * time.Millisecond,
	}
	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "orders")
	}
	return s
}

// Get возвращает заказ по идентификатору.
func (s *Service) Get(ctx context.Context, orderID string) (domain.Order, error) {
	return s.orders.Get(ctx, orderID)
}

// List возвращает заказы для админки, новые первыми.
func (s *Service) List(ctx context.Context, limit int) ([]domain.Order, error) {
	return s.orders.List(ctx, limit)
}

// ListByUser возвращает заказы пользователя, новые первыми.
func (s *Service) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID, limit)
}

// Timeline возвращает хронологию событий заказа.
func (s *Service) Timeline(ctx context.Context, orderID string) ([]domain.TimelineEvent, error) {
	if s.timeline == nil {
		return nil, nil
	}
	if _, err := s.orders.Get(ctx, orderID); err != nil {
		return nil, err
	}
	return s.timeline.List(orderID)
}

// UpdateStatus переводит заказ в новый статус по машине состояний.
// Переход в cancelled отклоняется: отмена восстанавливает сток и
// выполняется только через компенсатор checkout.Cancel.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, to domain.OrderStatus) (domain.Order, error) {
	if to == domain.OrderStatusCancelled {
		s.recordStatusChangeFailed("use_cancel")
		return domain.Order{}, domain.ErrInvalidStatusTransition
	}
	if !to.Valid() {
		s.recordStatusChangeFailed("unknown_status")
		return domain.Order{}, domain.ErrInvalidStatusTransition
	}

	order, err := s.save(ctx, orderID, func(order *domain.Order) error {
		if !order.Status.CanTransition(to) {
			return domain.ErrInvalidStatusTransition
		}
		order.Status = to
		return nil
	})
	if err != nil {
		s.recordStatusChangeFailed(statusFailureReason(err))
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordStatusChange(string(to))
	}
	s.emitEvent(order, EventStatusChanged, map[string]any{
		"status": string(to),
	})

	s.logger.WithFields(log.Fields{
		"order_id": orderID,
		"status":   to,
	}).Info("order status changed")

	return order, nil
}

// VerifyPayment помечает мобильный платёж заказа как сверенный
// администратором. Для COD подтверждать нечего.
func (s *Service) VerifyPayment(ctx context.Context, orderID string) (domain.Order, error) {
	order, err := s.save(ctx, orderID, func(order *domain.Order) error {
		method := order.Payment.Method
		if method != domain.PaymentMethodBkash && method != domain.PaymentMethodNagad {
			return domain.ErrPaymentMethodInvalid
		}
		if order.Payment.TrxID == "" {
			return domain.ErrPaymentTrxIDRequired
		}
		order.Payment.Verified = true
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordPaymentVerified()
	}
	s.emitEvent(order, EventPaymentVerified, map[string]any{
		"method": string(order.Payment.Method),
		"trx_id": order.Payment.TrxID,
	})

	s.logger.WithFields(log.Fields{
		"order_id": orderID,
		"method":   order.Payment.Method,
	}).Info("payment verified")

	return order, nil
}

// save применяет mutate к свежей копии заказа и сохраняет её, повторяя
// с exponential backoff при конфликте версий. Бизнес-ошибка из mutate
// возвращается без повторов.
func (s *Service) save(ctx context.Context, orderID string, mutate func(*domain.Order) error) (domain.Order, error) {
	var lastErr error

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		order, err := s.orders.Get(ctx, orderID)
		if err != nil {
			return domain.Order{}, err
		}

		if err := mutate(&order); err != nil {
			return domain.Order{}, err
		}
		order.UpdatedAt = time.Now().UTC()

		if err := s.orders.Save(ctx, order); err != nil {
			if domain.IsVersionConflict(err) && attempt < s.maxRetries-1 {
				s.logger.WithFields(log.Fields{
					"order_id": orderID,
					"attempt":  attempt + 1,
					"version":  order.Version,
				}).Warn("version conflict detected, retrying")

				lastErr = err
				time.Sleep(s.baseDelay * time.Duration(1<<uint(attempt)))
				continue
			}
			return domain.Order{}, err
		}

		order.Version++
		return order, nil
	}

	if lastErr == nil {
		lastErr = domain.ErrOrderVersionConflict
	}
	return domain.Order{}, lastErr
}

func (s *Service) emitEvent(order domain.Order, eventType string, payload map[string]any) {
	if payload == nil {
		payload = make(map[string]any)
	}
	payload["order_id"] = order.ID

	if s.outbox != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id": order.ID,
				"event":    eventType,
			}).Error("marshal event failed")
			return
		}
		msg := domain.OutboxMessage{
			AggregateType: "order",
			AggregateID:   order.ID,
			EventType:     eventType,
			Payload:       data,
		}
		if _, err := s.outbox.Enqueue(msg); err != nil {
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id": order.ID,
				"event":    eventType,
			}).Error("enqueue event failed")
		}
	}

	if s.timeline != nil {
		event := domain.NewTimelineEvent(order.ID, eventType, "")
		if err := s.timeline.Append(event); err != nil {
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id": order.ID,
				"event":    eventType,
			}).Warn("append timeline event failed")
		}
	}
}

func (s *Service) recordStatusChangeFailed(reason string) {
	if s.metrics != nil {
		s.metrics.RecordStatusChangeFailed(reason)
	}
}

func statusFailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		return "invalid_transition"
	case domain.IsVersionConflict(err):
		return "version_conflict"
	default:
		return "store_error"
	}
}
