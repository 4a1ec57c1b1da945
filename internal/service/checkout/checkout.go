// Package checkout реализует оформление заказа и его отмену как две
// атомарные транзакции над хранилищем: сток либо списывается вместе с
// созданием заказа, либо не меняется вовсе.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/rakibhasan/dokan/internal/domain"
	"github.com/rakibhasan/dokan/internal/metrics"
)

// Метки инициатора отмены.
const (
	ActorCustomer = "customer"
	ActorAdmin    = "admin"
)

// Типы событий заказа в outbox/timeline.
const (
	EventOrderPlaced    = "order.placed"
	EventOrderCancelled = "order.cancelled"
)

// PlaceOrderInput — вход оформления заказа: снимок корзины, контакты
// получателя и посчитанная вызывающим стоимость доставки.
type PlaceOrderInput struct {
	Lines    []domain.CartLine
	Customer domain.Customer
	// UserID пуст для гостевого оформления.
	UserID        string
	DeliveryMinor int64
	Payment       domain.Payment
}

// Service — менеджер транзакции заказа и компенсатор отмены.
type Service struct {
	store    domain.AtomicStore
	timeline domain.TimelineRepository
	profiles domain.ProfileService
	logger   *log.Entry
	metrics  *metrics.CheckoutMetrics
}

// Option настраивает Service.
type Option func(*Service)

// WithTimeline включает запись событий в хронологию заказа.
func WithTimeline(timeline domain.TimelineRepository) Option {
	return func(s *Service) { s.timeline = timeline }
}

// WithProfiles включает best-effort сохранение контактов в профиль.
func WithProfiles(profiles domain.ProfileService) Option {
	return func(s *Service) { s.profiles = profiles }
}

// WithMetrics включает метрики оформления.
func WithMetrics(m *metrics.CheckoutMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService создаёт сервис оформления заказов.
func NewService(store domain.AtomicStore, options ...Option) *Service {
	s := &Service{store: store}
	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "checkout")
	}
	return s
}

// PlaceOrder превращает корзину в заказ одной атомарной транзакцией:
// фаза чтения (все товары корзины) полностью предшествует фазе записи
// (списания стока + вставка заказа + outbox-событие). Если хотя бы одна
// позиция не проходит проверку стока, транзакция завершается ошибкой и
// хранилище остаётся нетронутым. Валидация входа выполняется до любого
// обращения к хранилищу.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (string, error) {
	if err := validateInput(in); err != nil {
		s.recordCheckoutFailure("validation")
		return "", err
	}

	start := time.Now()
	orderID := uuid.NewString()
	order := buildOrder(orderID, in)

	err := s.store.RunAtomic(ctx, func(ctx context.Context, tx domain.Tx) error {
		// Фаза чтения: агрегируем количества по товару и читаем все товары
		// в детерминированном порядке, до единственной записи.
		requested := aggregateQty(in.Lines)
		ids := sortedProductIDs(requested)

		stocks := make(map[string]int32, len(ids))
		for _, id := range ids {
			product, err := tx.GetProduct(ctx, id)
			if err != nil {
				return err
			}
			qty := requested[id]
			if product.Stock < qty {
				return &domain.InsufficientStockError{
					ProductID: id,
					Requested: qty,
					Available: product.Stock,
				}
			}
			stocks[id] = product.Stock - qty
		}

		// Фаза записи: все проверки пройдены.
		for _, id := range ids {
			if err := tx.UpdateProductStock(ctx, id, stocks[id]); err != nil {
				return err
			}
		}
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		return tx.EnqueueOutbox(ctx, orderEventMessage(EventOrderPlaced, order))
	})
	if err != nil {
		s.recordCheckoutFailure(failureReason(err))
		return "", err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderPlaced()
		s.metrics.RecordOutboxEvent()
		s.metrics.RecordCheckoutDuration(time.Since(start))
	}
	s.appendTimeline(orderID, EventOrderPlaced, "")
	s.saveProfileContact(in.UserID, in.Customer)

	s.logger.WithFields(log.Fields{
		"order_id":    orderID,
		"user_id":     in.UserID,
		"total_minor": order.TotalMinor,
		"items":       len(order.Items),
	}).Info("order placed")

	return orderID, nil
}

// Cancel отменяет заказ в статусе pending, восстанавливая сток каждой
// позиции той же атомарной транзакцией, что и смена статуса. Авторизацию
// (владелец или админ) проверяет вызывающий слой.
func (s *Service) Cancel(ctx context.Context, orderID, actor string) error {
	if strings.TrimSpace(orderID) == "" {
		return domain.ErrOrderNotFound
	}
	if actor == "" {
		actor = ActorCustomer
	}

	start := time.Now()
	cancelledAt := time.Now().UTC()

	var cancelled domain.Order
	err := s.store.RunAtomic(ctx, func(ctx context.Context, tx domain.Tx) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderStatusPending {
			return domain.ErrOrderNotCancellable
		}

		// Фаза чтения: текущий сток всех товаров заказа. Товар, удалённый
		// из каталога после оформления, пропускается — восстанавливать нечего.
		requested := make(map[string]int32, len(order.Items))
		for _, item := range order.Items {
			requested[item.ProductID] += item.Qty
		}
		ids := sortedProductIDs(requested)

		stocks := make(map[string]int32, len(ids))
		for _, id := range ids {
			product, err := tx.GetProduct(ctx, id)
			if err != nil {
				if errors.Is(err, domain.ErrProductNotFound) {
					continue
				}
				return err
			}
			stocks[id] = product.Stock + requested[id]
		}

		// Фаза записи: возвраты стока и смена статуса одним куском.
		for _, id := range ids {
			stock, ok := stocks[id]
			if !ok {
				continue
			}
			if err := tx.UpdateProductStock(ctx, id, stock); err != nil {
				return err
			}
		}

		order.Status = domain.OrderStatusCancelled
		order.CancelledAt = cancelledAt
		order.CancelledBy = actor
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}

		cancelled = order
		return tx.EnqueueOutbox(ctx, orderEventMessage(EventOrderCancelled, order))
	})
	if err != nil {
		s.recordCancelFailure(failureReason(err))
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCancelled()
		s.metrics.RecordOutboxEvent()
		s.metrics.RecordCancelDuration(time.Since(start))
	}
	s.appendTimeline(orderID, EventOrderCancelled, "cancelled by "+actor)

	s.logger.WithFields(log.Fields{
		"order_id": orderID,
		"actor":    actor,
		"items":    len(cancelled.Items),
	}).Info("order cancelled, stock restored")

	return nil
}

// validateInput проверяет вход до любого обращения к хранилищу.
func validateInput(in PlaceOrderInput) error {
	var errs []error

	if len(in.Lines) == 0 {
		errs = append(errs, domain.ErrItemsRequired)
	}
	for _, line := range in.Lines {
		if line.ProductID == "" {
			errs = append(errs, domain.ErrItemProductRequired)
		}
		if line.Qty <= 0 {
			errs = append(errs, domain.ErrItemQtyInvalid)
		}
		if line.PriceMinor < 0 {
			errs = append(errs, domain.ErrItemPriceInvalid)
		}
	}
	if in.DeliveryMinor < 0 {
		errs = append(errs, domain.ErrDeliveryNegative)
	}
	errs = append(errs, in.Customer.Validate()...)
	errs = append(errs, in.Payment.Validate()...)

	return errors.Join(errs...)
}

func buildOrder(orderID string, in PlaceOrderInput) domain.Order {
	items := make([]domain.OrderItem, 0, len(in.Lines))
	for _, line := range in.Lines {
		items = append(items, domain.OrderItem{
			ProductID:   line.ProductID,
			Title:       line.Title,
			PriceMinor:  line.PriceMinor,
			Qty:         line.Qty,
			WeightGrams: line.WeightGrams,
			Image:       line.Image,
		})
	}

	payment := in.Payment
	if payment.Method == "" {
		payment.Method = domain.PaymentMethodCOD
	}

	subtotal := domain.Subtotal(items)
	return domain.Order{
		ID:     orderID,
		UserID: in.UserID,
		Customer: domain.Customer{
			Name:    strings.TrimSpace(in.Customer.Name),
			Phone:   strings.TrimSpace(in.Customer.Phone),
			Address: strings.TrimSpace(in.Customer.Address),
		},
		Items:         items,
		SubtotalMinor: subtotal,
		DeliveryMinor: in.DeliveryMinor,
		TotalMinor:    subtotal + in.DeliveryMinor,
		Currency:      domain.DefaultCurrency,
		Status:        domain.OrderStatusPending,
		Payment:       payment,
	}
}

func aggregateQty(lines []domain.CartLine) map[string]int32 {
	requested := make(map[string]int32, len(lines))
	for _, line := range lines {
		requested[line.ProductID] += line.Qty
	}
	return requested
}

func sortedProductIDs(requested map[string]int32) []string {
	ids := make([]string, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func orderEventMessage(eventType string, order domain.Order) domain.OutboxMessage {
	payload, err := json.Marshal(map[string]any{
		"order_id":    order.ID,
		"user_id":     order.UserID,
		"status":      string(order.Status),
		"total_minor": order.TotalMinor,
		"currency":    order.Currency,
		"items_count": len(order.Items),
	})
	if err != nil {
		payload = []byte(`{}`)
	}
	return domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     eventType,
		Payload:       payload,
	}
}

// appendTimeline пишет событие в хронологию best-effort.
func (s *Service) appendTimeline(orderID, eventType, reason string) {
	if s.timeline == nil {
		return
	}
	event := domain.NewTimelineEvent(orderID, eventType, reason)
	if err := s.timeline.Append(event); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("append timeline event failed")
		return
	}
	if s.metrics != nil {
		s.metrics.RecordTimelineEvent()
	}
}

// saveProfileContact сохраняет контакты в профиль пользователя отдельной
// best-effort записью: её ошибка логируется и никогда не откатывает заказ.
func (s *Service) saveProfileContact(userID string, customer domain.Customer) {
	if s.profiles == nil || userID == "" {
		return
	}

	profiles := s.profiles
	logger := s.logger
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := profiles.SaveContact(ctx, userID, customer); err != nil {
			logger.WithError(err).WithField("user_id", userID).Warn("profile contact save failed")
		}
	}()
}

func (s *Service) recordCheckoutFailure(reason string) {
	if s.metrics != nil {
		s.metrics.RecordCheckoutFailed(reason)
	}
}

func (s *Service) recordCancelFailure(reason string) {
	if s.metrics != nil {
		s.metrics.RecordCancelFailed(reason)
	}
}

// failureReason сводит ошибку к метке метрики.
func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, domain.ErrOrderNotCancellable):
		return "not_cancellable"
	case errors.Is(err, domain.ErrTxExhausted):
		return "tx_exhausted"
	default:
		return "store_error"
	}
}
