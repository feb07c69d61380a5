package httpapi

import (
	"net/http"
	"strconv"

	"gerai-be/internal/product"

	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	products product.Repository
}

func NewProductHandler(products product.Repository) *ProductHandler {
	return &ProductHandler{products: products}
}

func (h *ProductHandler) Register(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.detail)
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, err := h.products.ListProducts(r.Context(), limit, offset)
	if err != nil {
		failErr(w, r, err)
		return
	}

	ok(w, http.StatusOK, items)
}

func (h *ProductHandler) detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.products.GetProductByID(r.Context(), product.GetProductOptions{
		ProductID:  id,
		OnlyActive: true,
	})
	if err != nil {
		failErr(w, r, err)
		return
	}
	if p == nil {
		fail(w, http.StatusNotFound, product.ErrProductNotFound.Error())
		return
	}

	ok(w, http.StatusOK, p)
}
