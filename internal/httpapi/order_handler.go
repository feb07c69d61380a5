package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"gerai-be/internal/order"

	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	orders order.Service
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) Register(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.detail)
	r.Post("/{id}/cancel", h.cancel)
	r.Patch("/{id}/status", h.updateStatus)
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		failFields(w, "validation failed", map[string][]string{
			"session_id": {"session_id is required"},
		})
		return
	}

	o, err := h.orders.CreateOrder(r.Context(), req.SessionID)
	if err != nil {
		failErr(w, r, err)
		return
	}

	ok(w, http.StatusCreated, o)
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter order.OrderFilter
	if v := q.Get("search"); v != "" {
		filter.Search = &v
	}
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	if v := q.Get("date_from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DateFrom = &t
		}
	}
	if v := q.Get("date_to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DateTo = &t
		}
	}

	var sort *order.OrderSort
	if field := q.Get("sort"); field != "" {
		sort = &order.OrderSort{Field: field, Direction: q.Get("direction")}
	}

	limit := parseInt32(q.Get("limit"))
	page := parseInt32(q.Get("page"))

	orders, err := h.orders.GetUserOrders(r.Context(), &filter, sort, limit, page)
	if err != nil {
		failErr(w, r, err)
		return
	}

	ok(w, http.StatusOK, orders)
}

func (h *OrderHandler) detail(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		failErr(w, r, err)
		return
	}

	ok(w, http.StatusOK, o)
}

func (h *OrderHandler) cancel(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.CancelOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		failErr(w, r, err)
		return
	}

	ok(w, http.StatusOK, o)
}

func (h *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Status == "" {
		failFields(w, "validation failed", map[string][]string{
			"status": {"status is required"},
		})
		return
	}

	o, err := h.orders.ProcessOrder(r.Context(), chi.URLParam(r, "id"), order.OrderStatus(req.Status))
	if err != nil {
		failErr(w, r, err)
		return
	}

	ok(w, http.StatusOK, o)
}

func parseInt32(s string) *int32 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return nil
	}
	v := int32(n)
	return &v
}
