package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewCheckoutMetrics(t *testing.T) {
	metrics := newCheckoutMetricsWithRegisterer(prometheus.NewRegistry())

	if metrics == nil {
		t.Fatal("newCheckoutMetricsWithRegisterer should not return nil")
	}
	if metrics.ordersPlaced == nil {
		t.Error("ordersPlaced counter should not be nil")
	}
	if metrics.checkoutFailed == nil {
		t.Error("checkoutFailed counter vec should not be nil")
	}
	if metrics.ordersCancelled == nil {
		t.Error("ordersCancelled counter should not be nil")
	}
	if metrics.checkoutDuration == nil {
		t.Error("checkoutDuration histogram should not be nil")
	}
}

func TestCheckoutMetrics_Counters(t *testing.T) {
	// Изолированный registry, чтобы не пересекаться с другими тестами.
	registry := prometheus.NewRegistry()
	metrics := newCheckoutMetricsWithRegisterer(registry)

	metrics.RecordOrderPlaced()
	metrics.RecordOrderPlaced()
	metrics.RecordCheckoutFailed("insufficient_stock")
	metrics.RecordOrderCancelled()
	metrics.RecordCheckoutDuration(25 * time.Millisecond)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	values := map[string]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			if metric.GetCounter() != nil {
				values[family.GetName()] += metric.GetCounter().GetValue()
			}
		}
	}

	if values["dokan_orders_placed_total"] != 2 {
		t.Errorf("expected 2 placed orders, got %v", values["dokan_orders_placed_total"])
	}
	if values["dokan_checkout_failed_total"] != 1 {
		t.Errorf("expected 1 failed checkout, got %v", values["dokan_checkout_failed_total"])
	}
	if values["dokan_orders_cancelled_total"] != 1 {
		t.Errorf("expected 1 cancelled order, got %v", values["dokan_orders_cancelled_total"])
	}

	var histogramSeen bool
	for _, family := range families {
		if family.GetName() == "dokan_checkout_duration_seconds" {
			histogramSeen = true
			if family.GetType() != dto.MetricType_HISTOGRAM {
				t.Errorf("expected histogram type, got %v", family.GetType())
			}
		}
	}
	if !histogramSeen {
		t.Error("expected checkout duration histogram to be registered")
	}
}

func TestCheckoutMetrics_DoubleRegisterReusesCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := newCheckoutMetricsWithRegisterer(registry)
	second := newCheckoutMetricsWithRegisterer(registry)

	first.RecordOrderPlaced()
	second.RecordOrderPlaced()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "dokan_orders_placed_total" {
			continue
		}
		if got := family.GetMetric()[0].GetCounter().GetValue(); got != 2 {
			t.Fatalf("expected shared counter value 2, got %v", got)
		}
	}
}
