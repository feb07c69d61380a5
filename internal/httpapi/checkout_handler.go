package httpapi

import (
	"net/http"

	"gerai-be/internal/cart"
	"gerai-be/internal/checkout"
	"gerai-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type CheckoutHandler struct {
	sessions checkout.Service
}

func NewCheckoutHandler(sessions checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions}
}

func (h *CheckoutHandler) Register(r chi.Router) {
	r.Post("/sessions", h.create)
	r.Get("/sessions/{id}", h.get)
	r.Patch("/sessions/{id}", h.update)
	r.Delete("/sessions/{id}", h.delete)
}

func (h *CheckoutHandler) create(w http.ResponseWriter, r *http.Request) {
	userID, okAuth := utils.GetUserIDFromContext(r.Context())
	if !okAuth {
		failErr(w, r, cart.ErrUserNotAuthenticated)
		return
	}

	session, err := h.sessions.CreateSession(r.Context(), userID)
	if err != nil {
		failErr(w, r, err)
		return
	}

	ok(w, http.StatusCreated, session)
}

func (h *CheckoutHandler) get(w http.ResponseWriter, r *http.Request) {
	userID, okAuth := utils.GetUserIDFromContext(r.Context())
	if !okAuth {
		failErr(w, r, cart.ErrUserNotAuthenticated)
		return
	}

	session, err := h.sessions.GetSession(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		failErr(w, r, err)
		return
	}

	ok(w, http.StatusOK, session)
}

func (h *CheckoutHandler) update(w http.ResponseWriter, r *http.Request) {
	userID, okAuth := utils.GetUserIDFromContext(r.Context())
	if !okAuth {
		failErr(w, r, cart.ErrUserNotAuthenticated)
		return
	}

	var req struct {
		ShippingAddressID *string `json:"shipping_address_id"`
		BillingAddressID  *string `json:"billing_address_id"`
		PaymentMethod     *string `json:"payment_method"`
		Notes             *string `json:"notes"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := h.sessions.UpdateSession(r.Context(), chi.URLParam(r, "id"), userID,
		checkout.UpdateSessionParams{
			ShippingAddressID: req.ShippingAddressID,
			BillingAddressID:  req.BillingAddressID,
			PaymentMethod:     req.PaymentMethod,
			Notes:             req.Notes,
		})
	if err != nil {
		failErr(w, r, err)
		return
	}

	ok(w, http.StatusOK, session)
}

func (h *CheckoutHandler) delete(w http.ResponseWriter, r *http.Request) {
	userID, okAuth := utils.GetUserIDFromContext(r.Context())
	if !okAuth {
		failErr(w, r, cart.ErrUserNotAuthenticated)
		return
	}

	if err := h.sessions.DeleteSession(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		failErr(w, r, err)
		return
	}

	ok(w, http.StatusOK, nil)
}
