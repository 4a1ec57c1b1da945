// Package httpapi публикует HTTP API магазина: витрину для покупателей
// и админку. Идентификация приходит готовой в заголовках X-User-Id и
// X-Admin от внешнего auth-прокси.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter собирает маршруты витрины и админки поверх chi.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)

		r.Route("/cart/{cartID}", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddCartItem)
			r.Put("/items/{productID}", h.SetCartItemQty)
			r.Delete("/items/{productID}", h.RemoveCartItem)
		})

		r.Get("/shipping/quote", h.QuoteShipping)
		r.Post("/checkout", h.Checkout)

		r.Get("/orders", h.ListMyOrders)
		r.Get("/orders/{id}", h.GetOrder)
		r.Post("/orders/{id}/cancel", h.CancelOrder)

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/products", h.AdminListProducts)
			r.Post("/products", h.AdminCreateProduct)
			r.Put("/products/{id}", h.AdminUpdateProduct)
			r.Delete("/products/{id}", h.AdminDeleteProduct)
			r.Get("/orders", h.AdminListOrders)
			r.Get("/orders/{id}", h.AdminGetOrder)
			r.Post("/orders/{id}/status", h.AdminUpdateOrderStatus)
			r.Post("/orders/{id}/verify-payment", h.AdminVerifyPayment)
			r.Get("/orders/{id}/timeline", h.AdminOrderTimeline)
			r.Get("/settings/shipping", h.AdminGetShippingSettings)
			r.Put("/settings/shipping", h.AdminSaveShippingSettings)
		})
	})

	return r
}

// requireAdmin закрывает админские маршруты от обычных пользователей.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAdmin(r) {
			writeError(w, http.StatusForbidden, "admin_required", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}
