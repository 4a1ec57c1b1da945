package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AdminMetrics содержит метрики админских операций над заказами.
type AdminMetrics struct {
	statusChanges      *prometheus.CounterVec
	statusChangeFailed *prometheus.CounterVec
	paymentsVerified   prometheus.Counter
}

// NewAdminMetrics создаёт новый экземпляр метрик админки.
func NewAdminMetrics() *AdminMetrics {
	return newAdminMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newAdminMetricsWithRegisterer(registerer prometheus.Registerer) *AdminMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &AdminMetrics{
		statusChanges: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "dokan_order_status_changes_total",
			Help: "Total number of order status transitions grouped by target status",
		}, []string{"to"}),
		statusChangeFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "dokan_order_status_change_failed_total",
			Help: "Total number of rejected status transitions grouped by reason",
		}, []string{"reason"}),
		paymentsVerified: registerCounter(registerer, prometheus.CounterOpts{
			Name: "dokan_payments_verified_total",
			Help: "Total number of mobile payments verified by an administrator",
		}),
	}
}

// RecordStatusChange фиксирует успешный переход статуса заказа.
func (m *AdminMetrics) RecordStatusChange(to string) {
	m.statusChanges.WithLabelValues(to).Inc()
}

// RecordStatusChangeFailed фиксирует отклонённый переход статуса.
func (m *AdminMetrics) RecordStatusChangeFailed(reason string) {
	m.statusChangeFailed.WithLabelValues(reason).Inc()
}

// RecordPaymentVerified фиксирует подтверждение мобильного платежа.
func (m *AdminMetrics) RecordPaymentVerified() {
	m.paymentsVerified.Inc()
}
