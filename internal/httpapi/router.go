package httpapi

import (
	"net/http"
	"time"

	"gerai-be/internal/address"
	"gerai-be/internal/cart"
	"gerai-be/internal/checkout"
	"gerai-be/internal/logger"
	"gerai-be/internal/middleware"
	"gerai-be/internal/order"
	"gerai-be/internal/product"
	"gerai-be/internal/user"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Deps are the services the HTTP layer exposes.
type Deps struct {
	Users     user.Service
	Products  product.Repository
	Carts     cart.Service
	Checkouts checkout.Service
	Orders    order.Service
	Addresses address.Service
}

// NewRouter wires the full API surface. Auth tokens are parsed for
// every request; RequireAuth gates the routes that need a user.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.CORS)
	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.AuthMiddleware)
	r.Use(chimw.Timeout(15 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", NewAuthHandler(deps.Users).Register)
		r.Route("/products", NewProductHandler(deps.Products).Register)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Route("/cart", NewCartHandler(deps.Carts).Register)
			r.Route("/checkout", NewCheckoutHandler(deps.Checkouts).Register)
			r.Route("/orders", NewOrderHandler(deps.Orders).Register)
			r.Route("/addresses", NewAddressHandler(deps.Addresses).Register)
		})
	})

	return r
}
