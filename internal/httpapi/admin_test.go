package httpapi_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/rakibhasan/dokan/internal/httpapi"
)

var adminHeaders = map[string]string{"X-Admin": "true"}

func TestAdmin_RequiresAdminHeader(t *testing.T) {
	f := newAPIFixture(t)

	for _, path := range []string{
		"/api/admin/products",
		"/api/admin/orders",
		"/api/admin/settings/shipping",
	} {
		if rec := f.do(t, http.MethodGet, path, nil, nil); rec.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403 without admin header, got %d", path, rec.Code)
		}
		headers := map[string]string{"X-Admin": "false"}
		if rec := f.do(t, http.MethodGet, path, nil, headers); rec.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403 for non-admin, got %d", path, rec.Code)
		}
	}
}

func TestAdmin_ProductCRUD(t *testing.T) {
	f := newAPIFixture(t)

	createRec := f.do(t, http.MethodPost, "/api/admin/products", httpapi.ProductRequest{
		Title:       "Panjabi",
		Description: "Eid collection",
		PriceMinor:  250000,
		Stock:       20,
		Active:      true,
		WeightGrams: 400,
	}, adminHeaders)
	if createRec.Code != http.StatusCreated {
		t.Fatalf("create product: status %d body %s", createRec.Code, createRec.Body.String())
	}
	created := decodeBody[httpapi.ProductResponse](t, createRec)
	if created.ID == "" || created.Stock != 20 {
		t.Fatalf("unexpected created product: %+v", created)
	}

	// Без названия товар не проходит валидацию.
	badRec := f.do(t, http.MethodPost, "/api/admin/products", httpapi.ProductRequest{
		PriceMinor: 1000,
	}, adminHeaders)
	if badRec.Code != http.StatusBadRequest {
		t.Fatalf("invalid product: status %d", badRec.Code)
	}

	// Обновление карточки вместе с рестоком.
	path := "/api/admin/products/" + created.ID
	updateRec := f.do(t, http.MethodPut, path, httpapi.ProductRequest{
		Title:       "Panjabi Premium",
		Description: "Eid collection",
		PriceMinor:  300000,
		Stock:       35,
		Active:      true,
		WeightGrams: 400,
	}, adminHeaders)
	if updateRec.Code != http.StatusOK {
		t.Fatalf("update product: status %d body %s", updateRec.Code, updateRec.Body.String())
	}
	updated := decodeBody[httpapi.ProductResponse](t, updateRec)
	if updated.Title != "Panjabi Premium" || updated.PriceMinor != 300000 || updated.Stock != 35 {
		t.Fatalf("unexpected updated product: %+v", updated)
	}

	// Admin-листинг видит и скрытые товары.
	f.seedProduct(t, "hidden", 1000, 1, 100, false)
	listRec := f.do(t, http.MethodGet, "/api/admin/products", nil, adminHeaders)
	all := decodeBody[[]httpapi.ProductResponse](t, listRec)
	if len(all) != 2 {
		t.Fatalf("expected 2 products in admin listing, got %d", len(all))
	}

	if rec := f.do(t, http.MethodDelete, path, nil, adminHeaders); rec.Code != http.StatusNoContent {
		t.Fatalf("delete product: status %d", rec.Code)
	}
	if rec := f.do(t, http.MethodDelete, path, nil, adminHeaders); rec.Code != http.StatusNotFound {
		t.Fatalf("double delete: status %d", rec.Code)
	}
}

func placeTestOrder(t *testing.T, f *apiFixture, payment httpapi.PaymentDTO) httpapi.OrderResponse {
	t.Helper()

	f.do(t, http.MethodPost, "/api/cart/admin-cart/items",
		httpapi.AddCartItemRequest{ProductID: "p1", Qty: 2}, nil)

	req := checkoutRequest("admin-cart")
	req.Payment = payment
	rec := f.do(t, http.MethodPost, "/api/checkout", req, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("place order: status %d body %s", rec.Code, rec.Body.String())
	}
	return decodeBody[httpapi.OrderResponse](t, rec)
}

func TestAdmin_OrderStatusFlow(t *testing.T) {
	f := newAPIFixture(t)
	f.seedProduct(t, "p1", 2500, 10, 400, true)
	order := placeTestOrder(t, f, httpapi.PaymentDTO{Method: "cod"})

	statusPath := fmt.Sprintf("/api/admin/orders/%s/status", order.ID)

	for _, status := range []string{"processing", "shipped", "delivered"} {
		rec := f.do(t, http.MethodPost, statusPath, httpapi.UpdateOrderStatusRequest{Status: status}, adminHeaders)
		if rec.Code != http.StatusOK {
			t.Fatalf("transition to %s: status %d body %s", status, rec.Code, rec.Body.String())
		}
		updated := decodeBody[httpapi.OrderResponse](t, rec)
		if updated.Status != status {
			t.Fatalf("expected status %s, got %s", status, updated.Status)
		}
	}

	// Из терминального статуса переходов нет.
	rec := f.do(t, http.MethodPost, statusPath, httpapi.UpdateOrderStatusRequest{Status: "processing"}, adminHeaders)
	if rec.Code != http.StatusConflict {
		t.Fatalf("transition from delivered: status %d", rec.Code)
	}

	// Хронология накопила события.
	timelineRec := f.do(t, http.MethodGet, fmt.Sprintf("/api/admin/orders/%s/timeline", order.ID), nil, adminHeaders)
	if timelineRec.Code != http.StatusOK {
		t.Fatalf("timeline: status %d", timelineRec.Code)
	}
	events := decodeBody[[]httpapi.TimelineEventResponse](t, timelineRec)
	if len(events) < 4 {
		t.Fatalf("expected placed + 3 transitions in timeline, got %+v", events)
	}
}

func TestAdmin_CancelRestoresStock(t *testing.T) {
	f := newAPIFixture(t)
	f.seedProduct(t, "p1", 2500, 10, 400, true)
	order := placeTestOrder(t, f, httpapi.PaymentDTO{Method: "cod"})

	statusPath := fmt.Sprintf("/api/admin/orders/%s/status", order.ID)
	rec := f.do(t, http.MethodPost, statusPath, httpapi.UpdateOrderStatusRequest{Status: "cancelled"}, adminHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin cancel: status %d body %s", rec.Code, rec.Body.String())
	}
	cancelled := decodeBody[httpapi.OrderResponse](t, rec)
	if cancelled.Status != "cancelled" || cancelled.CancelledBy != "admin" {
		t.Fatalf("unexpected cancelled order: %+v", cancelled)
	}

	product, err := f.products.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 10 {
		t.Fatalf("expected stock restored to 10, got %d", product.Stock)
	}
}

func TestAdmin_VerifyPayment(t *testing.T) {
	f := newAPIFixture(t)
	f.seedProduct(t, "p1", 2500, 10, 400, true)

	codOrder := placeTestOrder(t, f, httpapi.PaymentDTO{Method: "cod"})
	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/admin/orders/%s/verify-payment", codOrder.ID), nil, adminHeaders)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("cod verification must fail with 400, got %d", rec.Code)
	}

	bkashOrder := placeTestOrder(t, f, httpapi.PaymentDTO{Method: "bkash", TrxID: "TRX12345"})
	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/admin/orders/%s/verify-payment", bkashOrder.ID), nil, adminHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("bkash verification: status %d body %s", rec.Code, rec.Body.String())
	}
	verified := decodeBody[httpapi.OrderResponse](t, rec)
	if !verified.Payment.Verified {
		t.Fatalf("payment must be verified: %+v", verified.Payment)
	}
}

func TestAdmin_ShippingSettings(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/admin/settings/shipping", nil, adminHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("get settings: status %d", rec.Code)
	}
	settings := decodeBody[httpapi.ShippingSettingsDTO](t, rec)
	if settings.BaseInsideMinor != 6000 {
		t.Fatalf("unexpected default settings: %+v", settings)
	}

	rec = f.do(t, http.MethodPut, "/api/admin/settings/shipping", httpapi.ShippingSettingsDTO{
		BaseInsideMinor:  7000,
		BaseOutsideMinor: 14000,
		PerKgMinor:       2500,
	}, adminHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("save settings: status %d body %s", rec.Code, rec.Body.String())
	}

	// Новый тариф сразу виден витрине.
	quoteRec := f.do(t, http.MethodGet, "/api/shipping/quote?zone=inside_dhaka&weight_grams=500", nil, nil)
	quote := decodeBody[httpapi.QuoteResponse](t, quoteRec)
	if quote.DeliveryMinor != 7000 {
		t.Fatalf("expected updated tariff 7000, got %d", quote.DeliveryMinor)
	}

	rec = f.do(t, http.MethodPut, "/api/admin/settings/shipping", httpapi.ShippingSettingsDTO{
		BaseInsideMinor: -1,
	}, adminHeaders)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative tariff: status %d", rec.Code)
	}
}
