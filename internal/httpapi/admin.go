package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/rakibhasan/dokan/internal/domain"
	"github.com/rakibhasan/dokan/internal/service/checkout"
)

func (h *Handler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), false)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProducts(products))
}

func (h *Handler) AdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	product := domain.Product{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		PriceMinor:  req.PriceMinor,
		Stock:       req.Stock,
		Active:      req.Active,
		WeightGrams: req.WeightGrams,
		Images:      req.Images,
	}
	if errs := product.ValidateInvariants(); len(errs) > 0 {
		writeDomainError(w, errors.Join(errs...))
		return
	}

	if err := h.products.Create(r.Context(), product); err != nil {
		writeDomainError(w, err)
		return
	}

	created, err := h.products.Get(r.Context(), product.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapProduct(created))
}

// AdminUpdateProduct обновляет карточку товара. Поля карточки идут через
// optimistic-locking Save; сток меняется только атомарной транзакцией,
// чтобы рестоки не гонялись с оформлением заказов.
func (h *Handler) AdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	product.Title = req.Title
	product.Description = req.Description
	product.PriceMinor = req.PriceMinor
	product.Active = req.Active
	product.WeightGrams = req.WeightGrams
	product.Images = req.Images
	if errs := product.ValidateInvariants(); len(errs) > 0 {
		writeDomainError(w, errors.Join(errs...))
		return
	}

	if err := h.products.Save(r.Context(), product); err != nil {
		writeDomainError(w, err)
		return
	}

	if req.Stock != product.Stock {
		if req.Stock < 0 {
			writeDomainError(w, domain.ErrProductStockNegative)
			return
		}
		if err := h.setStock(r.Context(), id, req.Stock); err != nil {
			writeDomainError(w, err)
			return
		}
	}

	updated, err := h.products.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(updated))
}

func (h *Handler) setStock(ctx context.Context, productID string, stock int32) error {
	return h.store.RunAtomic(ctx, func(ctx context.Context, tx domain.Tx) error {
		if _, err := tx.GetProduct(ctx, productID); err != nil {
			return err
		}
		return tx.UpdateProductStock(ctx, productID, stock)
	})
}

func (h *Handler) AdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.List(r.Context(), 0)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrders(list))
}

func (h *Handler) AdminGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(order))
}

// AdminUpdateOrderStatus переводит заказ в новый статус. Отмена идёт
// отдельным путём: она обязана восстановить сток, поэтому выполняется
// компенсатором, а не прямой сменой статуса.
func (h *Handler) AdminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	orderID := chi.URLParam(r, "id")
	to := domain.OrderStatus(req.Status)

	if to == domain.OrderStatusCancelled {
		if err := h.checkout.Cancel(r.Context(), orderID, checkout.ActorAdmin); err != nil {
			writeDomainError(w, err)
			return
		}
		order, err := h.orders.Get(r.Context(), orderID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapOrder(order))
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), orderID, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(order))
}

func (h *Handler) AdminVerifyPayment(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.VerifyPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(order))
}

func (h *Handler) AdminOrderTimeline(w http.ResponseWriter, r *http.Request) {
	events, err := h.orders.Timeline(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapTimeline(events))
}

func (h *Handler) AdminGetShippingSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ShippingSettingsDTO{
		BaseInsideMinor:  settings.BaseInsideMinor,
		BaseOutsideMinor: settings.BaseOutsideMinor,
		PerKgMinor:       settings.PerKgMinor,
		UpdatedAt:        settings.UpdatedAt,
	})
}

func (h *Handler) AdminSaveShippingSettings(w http.ResponseWriter, r *http.Request) {
	var req ShippingSettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.BaseInsideMinor < 0 || req.BaseOutsideMinor < 0 || req.PerKgMinor < 0 {
		writeError(w, http.StatusBadRequest, "invalid_settings", "tariffs must be non-negative")
		return
	}

	settings := domain.ShippingSettings{
		BaseInsideMinor:  req.BaseInsideMinor,
		BaseOutsideMinor: req.BaseOutsideMinor,
		PerKgMinor:       req.PerKgMinor,
		UpdatedAt:        time.Now().UTC(),
	}
	if err := h.settings.Save(r.Context(), settings); err != nil {
		writeDomainError(w, err)
		return
	}

	h.logger.WithFields(log.Fields{
		"base_inside_minor":  settings.BaseInsideMinor,
		"base_outside_minor": settings.BaseOutsideMinor,
		"per_kg_minor":       settings.PerKgMinor,
	}).Info("shipping settings updated")

	writeJSON(w, http.StatusOK, req)
}
