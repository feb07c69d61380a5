package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"gerai-be/internal/address"
	"gerai-be/internal/cart"
	"gerai-be/internal/checkout"
	"gerai-be/internal/logger"
	"gerai-be/internal/order"
	"gerai-be/internal/user"

	"go.uber.org/zap"
)

// Result is the envelope every endpoint answers with. Success responses
// carry Data; failures carry Error and, for validation failures, the
// per-field messages.
type Result struct {
	Success     bool                `json:"success"`
	Data        any                 `json:"data,omitempty"`
	Error       string              `json:"error,omitempty"`
	FieldErrors map[string][]string `json:"fieldErrors,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, Result{Success: true, Data: data})
}

func fail(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, Result{Success: false, Error: msg})
}

func failFields(w http.ResponseWriter, msg string, fields map[string][]string) {
	writeJSON(w, http.StatusBadRequest, Result{Success: false, Error: msg, FieldErrors: fields})
}

// failErr maps domain errors onto HTTP statuses. Unknown errors are
// masked with a generic message; the detail goes to the log only.
func failErr(w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *order.InsufficientStockError
	var transErr *order.InvalidTransitionError

	switch {
	case errors.As(err, &stockErr):
		fail(w, http.StatusConflict, stockErr.Error())
	case errors.As(err, &transErr):
		fail(w, http.StatusConflict, transErr.Error())

	case errors.Is(err, user.ErrInvalidCredentials):
		fail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, user.ErrEmailExists):
		fail(w, http.StatusConflict, err.Error())

	case errors.Is(err, cart.ErrUserNotAuthenticated),
		errors.Is(err, address.ErrUnauthenticated),
		errors.Is(err, order.ErrUnauthorized):
		fail(w, http.StatusUnauthorized, "unauthorized")

	case errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, cart.ErrCartItemNotFound),
		errors.Is(err, checkout.ErrSessionNotFound),
		errors.Is(err, address.ErrAddressNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrAddressNotFound):
		fail(w, http.StatusNotFound, err.Error())

	case errors.Is(err, checkout.ErrSessionExpired):
		fail(w, http.StatusGone, err.Error())

	case errors.Is(err, cart.ErrInsufficientStock):
		fail(w, http.StatusConflict, err.Error())

	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidTarget),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, address.ErrInvalidAddressID),
		errors.Is(err, order.ErrAddressRequired):
		fail(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, order.ErrNotCancellable),
		errors.Is(err, order.ErrStatusConflict):
		fail(w, http.StatusConflict, err.Error())

	default:
		logger.FromCtx(r.Context()).Error("unexpected handler error", zap.Error(err))
		fail(w, http.StatusInternalServerError, "something went wrong")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		fail(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}
