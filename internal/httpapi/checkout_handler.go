package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rakibhasan/dokan/internal/domain"
	"github.com/rakibhasan/dokan/internal/service/checkout"
	"github.com/rakibhasan/dokan/internal/shipping"
)

const (
	maxCheckoutBodyBytes = 1 << 20
	idempotencyTTL       = 24 * time.Hour
)

// Checkout оформляет заказ из корзины. С заголовком Idempotency-Key
// повтор того же запроса возвращает сохранённый ответ вместо второго
// списания стока; тот же ключ с другим телом отклоняется.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCheckoutBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	var req CheckoutRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	key := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
	recording := key != "" && h.idempotency != nil
	if recording {
		hash := sha256.Sum256(body)
		_, err := h.idempotency.CreateProcessing(key, hex.EncodeToString(hash[:]), time.Now().Add(idempotencyTTL))
		if err != nil {
			h.replayIdempotent(w, key, err)
			return
		}
	}

	status, payload := h.placeOrder(r, req)

	if recording {
		if status < http.StatusBadRequest {
			if err := h.idempotency.MarkDone(key, payload, status); err != nil {
				h.logger.WithError(err).WithField("key", key).Error("failed to mark idempotency key done")
			}
		} else {
			if err := h.idempotency.MarkFailed(key, payload, status); err != nil {
				h.logger.WithError(err).WithField("key", key).Error("failed to mark idempotency key failed")
			}
		}
	}

	writeRaw(w, status, payload)
}

// placeOrder выполняет оформление и возвращает готовый к записи ответ,
// чтобы его можно было сохранить для идемпотентного повтора.
func (h *Handler) placeOrder(r *http.Request, req CheckoutRequest) (int, []byte) {
	ctx := r.Context()

	c, err := h.carts.Get(ctx, req.CartID)
	if err != nil {
		return marshalError(err)
	}

	delivery, err := h.quoter.Quote(ctx, shipping.Zone(req.Zone), c.WeightGramsTotal())
	if err != nil {
		return marshalError(err)
	}

	orderID, err := h.checkout.PlaceOrder(ctx, checkout.PlaceOrderInput{
		Lines: c.Lines,
		Customer: domain.Customer{
			Name:    req.Customer.Name,
			Phone:   req.Customer.Phone,
			Address: req.Customer.Address,
		},
		UserID:        userID(r),
		DeliveryMinor: delivery,
		Payment: domain.Payment{
			Method: domain.PaymentMethod(req.Payment.Method),
			TrxID:  req.Payment.TrxID,
		},
	})
	if err != nil {
		return marshalError(err)
	}

	// Корзина сыграла свою роль; её очистка не влияет на заказ.
	if err := h.carts.Clear(ctx, req.CartID); err != nil {
		h.logger.WithError(err).WithField("cart_id", req.CartID).Warn("failed to clear cart after checkout")
	}

	order, err := h.orders.Get(ctx, orderID)
	if err != nil {
		return marshalError(err)
	}

	payload, err := json.Marshal(mapOrder(order))
	if err != nil {
		return marshalError(err)
	}
	return http.StatusCreated, payload
}

// replayIdempotent обслуживает повторный запрос с уже известным ключом.
func (h *Handler) replayIdempotent(w http.ResponseWriter, key string, createErr error) {
	switch {
	case errors.Is(createErr, domain.ErrIdempotencyHashMismatch):
		writeError(w, http.StatusUnprocessableEntity, "idempotency_key_reused", createErr.Error())
	case errors.Is(createErr, domain.ErrIdempotencyKeyAlreadyExists):
		record, err := h.idempotency.Get(key)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if record.Status == domain.IdempotencyStatusProcessing {
			writeError(w, http.StatusConflict, "request_in_flight", "original request is still being processed")
			return
		}
		writeRaw(w, record.HTTPStatus, record.ResponseBody)
	default:
		writeDomainError(w, createErr)
	}
}

func marshalError(err error) (int, []byte) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = ""
	}
	payload, marshalErr := json.Marshal(ErrorResponse{Error: code, Message: msg})
	if marshalErr != nil {
		payload = []byte(`{"error":"internal_error"}`)
	}
	return status, payload
}
