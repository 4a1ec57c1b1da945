package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rakibhasan/dokan/internal/domain"
)

// Заголовки идентификации, выставляемые внешним auth-прокси.
const (
	HeaderUserID         = "X-User-Id"
	HeaderAdmin          = "X-Admin"
	HeaderIdempotencyKey = "Idempotency-Key"
)

func userID(r *http.Request) string {
	return r.Header.Get(HeaderUserID)
}

func isAdmin(r *http.Request) bool {
	return r.Header.Get(HeaderAdmin) == "true"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}

// validationSentinels — ошибки некорректного входа, транслируемые в 400.
var validationSentinels = []error{
	domain.ErrProductTitleRequired,
	domain.ErrProductPriceNegative,
	domain.ErrProductStockNegative,
	domain.ErrProductWeightNegative,
	domain.ErrCustomerNameRequired,
	domain.ErrCustomerPhoneRequired,
	domain.ErrCustomerAddressRequired,
	domain.ErrCurrencyRequired,
	domain.ErrItemsRequired,
	domain.ErrDeliveryNegative,
	domain.ErrItemProductRequired,
	domain.ErrItemQtyInvalid,
	domain.ErrItemPriceInvalid,
	domain.ErrAmountMismatch,
	domain.ErrPaymentMethodInvalid,
	domain.ErrPaymentTrxIDRequired,
}

func isValidationError(err error) bool {
	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// errorStatus переводит доменную ошибку в HTTP-статус и машинный код.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "product_not_found"
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, "order_not_found"
	case errors.Is(err, domain.ErrCartNotFound):
		return http.StatusNotFound, "cart_not_found"
	case errors.Is(err, domain.ErrOrderNotCancellable):
		return http.StatusConflict, "order_not_cancellable"
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		return http.StatusConflict, "invalid_status_transition"
	case domain.IsVersionConflict(err):
		return http.StatusConflict, "version_conflict"
	case errors.Is(err, domain.ErrTxExhausted):
		return http.StatusConflict, "transaction_conflict"
	case errors.Is(err, domain.ErrIdempotencyHashMismatch):
		return http.StatusUnprocessableEntity, "idempotency_key_reused"
	case isValidationError(err):
		return http.StatusBadRequest, "invalid_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// Внутренние детали наружу не уходят.
		msg = ""
	}
	writeError(w, status, code, msg)
}
