package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/rakibhasan/dokan/internal/cart"
	"github.com/rakibhasan/dokan/internal/domain"
	"github.com/rakibhasan/dokan/internal/service/checkout"
	"github.com/rakibhasan/dokan/internal/service/orders"
	"github.com/rakibhasan/dokan/internal/shipping"
)

// Deps — зависимости HTTP-слоя. Idempotency опциональна: без неё
// заголовок Idempotency-Key игнорируется.
type Deps struct {
	Store       domain.AtomicStore
	Products    domain.ProductRepository
	Carts       *cart.Service
	Checkout    *checkout.Service
	Orders      *orders.Service
	Quoter      *shipping.Quoter
	Settings    domain.ShippingSettingsRepository
	Idempotency domain.IdempotencyRepository
	Logger      *log.Entry
}

// Handler обслуживает маршруты витрины и админки.
type Handler struct {
	store       domain.AtomicStore
	products    domain.ProductRepository
	carts       *cart.Service
	checkout    *checkout.Service
	orders      *orders.Service
	quoter      *shipping.Quoter
	settings    domain.ShippingSettingsRepository
	idempotency domain.IdempotencyRepository
	logger      *log.Entry
}

// NewHandler создаёт обработчик HTTP API.
func NewHandler(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = log.WithField("component", "httpapi")
	}
	return &Handler{
		store:       deps.Store,
		products:    deps.Products,
		carts:       deps.Carts,
		checkout:    deps.Checkout,
		orders:      deps.Orders,
		quoter:      deps.Quoter,
		settings:    deps.Settings,
		idempotency: deps.Idempotency,
		logger:      logger,
	}
}

// ListProducts отдаёт витрину: только активные товары.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), true)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProducts(products))
}

// GetProduct отдаёт карточку товара; снятый с витрины товар для
// покупателя не существует.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !product.Active {
		writeError(w, http.StatusNotFound, "product_not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(product))
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(c))
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	c, err := h.carts.AddItem(r.Context(), chi.URLParam(r, "cartID"), userID(r), req.ProductID, req.Qty)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(c))
}

func (h *Handler) SetCartItemQty(w http.ResponseWriter, r *http.Request) {
	var req SetCartQtyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	c, err := h.carts.SetQty(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "productID"), req.Qty)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(c))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.RemoveItem(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "productID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(c))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), chi.URLParam(r, "cartID")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// QuoteShipping считает стоимость доставки по зоне и весу без оформления.
func (h *Handler) QuoteShipping(w http.ResponseWriter, r *http.Request) {
	zone := shipping.Zone(r.URL.Query().Get("zone"))
	weight, err := strconv.ParseInt(r.URL.Query().Get("weight_grams"), 10, 32)
	if err != nil || weight < 0 {
		writeError(w, http.StatusBadRequest, "invalid_weight", "weight_grams must be a non-negative integer")
		return
	}

	fee, err := h.quoter.Quote(r.Context(), zone, int32(weight))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, QuoteResponse{
		Zone:          string(zone),
		WeightGrams:   int32(weight),
		DeliveryMinor: fee,
		Currency:      domain.DefaultCurrency,
	})
}

// ListMyOrders отдаёт заказы текущего пользователя, новые первыми.
func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "user_required", "")
		return
	}

	list, err := h.orders.ListByUser(r.Context(), uid, 0)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrders(list))
}

// GetOrder отдаёт заказ владельцу или админу. Чужой заказ для
// пользователя не существует.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !isAdmin(r) && (order.UserID == "" || order.UserID != userID(r)) {
		writeError(w, http.StatusNotFound, "order_not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(order))
}

// CancelOrder отменяет собственный pending-заказ покупателя с
// восстановлением стока.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	order, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if order.UserID == "" || order.UserID != userID(r) {
		writeError(w, http.StatusNotFound, "order_not_found", "")
		return
	}

	if err := h.checkout.Cancel(r.Context(), orderID, checkout.ActorCustomer); err != nil {
		writeDomainError(w, err)
		return
	}

	cancelled, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(cancelled))
}
