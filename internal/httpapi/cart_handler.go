package httpapi

import (
	"net/http"
	"strconv"

	"gerai-be/internal/cart"
	"gerai-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	carts cart.Service
}

func NewCartHandler(carts cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

func (h *CartHandler) Register(r chi.Router) {
	r.Get("/", h.list)
	r.Delete("/", h.clear)
	r.Post("/items", h.add)
	r.Put("/items", h.updateQuantity)
	r.Delete("/items", h.remove)
}

type cartItemRequest struct {
	ProductID *string `json:"product_id"`
	VariantID *string `json:"variant_id"`
	Quantity  int     `json:"quantity"`
}

func (req cartItemRequest) target() cart.Target {
	return cart.Target{ProductID: req.ProductID, VariantID: req.VariantID}
}

func (req cartItemRequest) validate(requireQuantity bool) map[string][]string {
	fields := map[string][]string{}
	if !req.target().Valid() {
		fields["target"] = append(fields["target"], "exactly one of product_id or variant_id is required")
	}
	if requireQuantity && req.Quantity < 1 {
		fields["quantity"] = append(fields["quantity"], "quantity must be at least 1")
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (h *CartHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, okAuth := utils.GetUserIDFromContext(r.Context())
	if !okAuth {
		failErr(w, r, cart.ErrUserNotAuthenticated)
		return
	}

	q := r.URL.Query()

	var filter cart.CartFilter
	if v := q.Get("in_stock"); v != "" {
		inStock := v == "true"
		filter.InStock = &inStock
	}
	if v := q.Get("search"); v != "" {
		filter.Search = &v
	}

	var sort *cart.CartSort
	if field := q.Get("sort"); field != "" {
		sort = &cart.CartSort{Field: field, Direction: q.Get("direction")}
	}

	limit := parseUint16(q.Get("limit"))
	page := parseUint16(q.Get("page"))

	items, err := h.carts.GetCart(r.Context(), userID, &filter, sort, limit, page)
	if err != nil {
		failErr(w, r, err)
		return
	}

	ok(w, http.StatusOK, items)
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	userID, okAuth := utils.GetUserIDFromContext(r.Context())
	if !okAuth {
		failErr(w, r, cart.ErrUserNotAuthenticated)
		return
	}

	var req cartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if fields := req.validate(true); fields != nil {
		failFields(w, "validation failed", fields)
		return
	}

	item, err := h.carts.AddToCart(r.Context(), cart.AddToCartParams{
		UserID:   userID,
		Target:   req.target(),
		Quantity: req.Quantity,
	})
	if err != nil {
		failErr(w, r, err)
		return
	}

	ok(w, http.StatusCreated, item)
}

func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	userID, okAuth := utils.GetUserIDFromContext(r.Context())
	if !okAuth {
		failErr(w, r, cart.ErrUserNotAuthenticated)
		return
	}

	var req cartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if fields := req.validate(false); fields != nil {
		failFields(w, "validation failed", fields)
		return
	}

	err := h.carts.UpdateCartQuantity(r.Context(), cart.UpdateQuantityParams{
		UserID:   userID,
		Target:   req.target(),
		Quantity: req.Quantity,
	})
	if err != nil {
		failErr(w, r, err)
		return
	}

	ok(w, http.StatusOK, nil)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	userID, okAuth := utils.GetUserIDFromContext(r.Context())
	if !okAuth {
		failErr(w, r, cart.ErrUserNotAuthenticated)
		return
	}

	var req cartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if fields := req.validate(false); fields != nil {
		failFields(w, "validation failed", fields)
		return
	}

	if err := h.carts.RemoveFromCart(r.Context(), userID, req.target()); err != nil {
		failErr(w, r, err)
		return
	}

	ok(w, http.StatusOK, nil)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	userID, okAuth := utils.GetUserIDFromContext(r.Context())
	if !okAuth {
		failErr(w, r, cart.ErrUserNotAuthenticated)
		return
	}

	if err := h.carts.ClearCart(r.Context(), userID); err != nil {
		failErr(w, r, err)
		return
	}

	ok(w, http.StatusOK, nil)
}

func parseUint16(s string) *uint16 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return nil
	}
	v := uint16(n)
	return &v
}
