package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gerai-be/internal/cart"
	"gerai-be/internal/checkout"
	"gerai-be/internal/order"
	"gerai-be/internal/user"
	"gerai-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserService struct{ mock.Mock }

func (m *MockUserService) Register(ctx context.Context, email, password string) (string, user.User, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Get(1).(user.User), args.Error(2)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (string, user.User, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Get(1).(user.User), args.Error(2)
}

type MockCartService struct{ mock.Mock }

func (m *MockCartService) AddToCart(ctx context.Context, params cart.AddToCartParams) (*cart.CartItem, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.CartItem), args.Error(1)
}

func (m *MockCartService) GetCart(ctx context.Context, userID uint, filter *cart.CartFilter, sort *cart.CartSort, limit, page *uint16) ([]*cart.CartItem, error) {
	args := m.Called(ctx, userID, filter, sort, limit, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cart.CartItem), args.Error(1)
}

func (m *MockCartService) UpdateCartQuantity(ctx context.Context, params cart.UpdateQuantityParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *MockCartService) RemoveFromCart(ctx context.Context, userID uint, target cart.Target) error {
	return m.Called(ctx, userID, target).Error(0)
}

func (m *MockCartService) ClearCart(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

type MockCheckoutService struct{ mock.Mock }

func (m *MockCheckoutService) CreateSession(ctx context.Context, userID uint) (*checkout.CheckoutSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.CheckoutSession), args.Error(1)
}

func (m *MockCheckoutService) GetSession(ctx context.Context, sessionID string, userID uint) (*checkout.CheckoutSession, error) {
	args := m.Called(ctx, sessionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.CheckoutSession), args.Error(1)
}

func (m *MockCheckoutService) UpdateSession(ctx context.Context, sessionID string, userID uint, params checkout.UpdateSessionParams) (*checkout.CheckoutSession, error) {
	args := m.Called(ctx, sessionID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.CheckoutSession), args.Error(1)
}

func (m *MockCheckoutService) DeleteSession(ctx context.Context, sessionID string, userID uint) error {
	return m.Called(ctx, sessionID, userID).Error(0)
}

type MockOrderService struct{ mock.Mock }

func (m *MockOrderService) CreateOrder(ctx context.Context, sessionID string) (*order.Order, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetUserOrders(ctx context.Context, filter *order.OrderFilter, sort *order.OrderSort, limit, page *int32) ([]*order.Order, error) {
	args := m.Called(ctx, filter, sort, limit, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID string) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, orderID string) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ProcessOrder(ctx context.Context, orderID string, to order.OrderStatus) (*order.Order, error) {
	args := m.Called(ctx, orderID, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

// withUser injects an authenticated user the way the auth middleware
// would.
func withUser(id uint, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := utils.SetUserContext(r.Context(), id, "user@example.com", role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body any) (*httptest.ResponseRecorder, Result) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var res Result
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	}
	return rec, res
}

func TestAuthHandler_Register(t *testing.T) {
	newRouter := func(svc user.Service) http.Handler {
		r := chi.NewRouter()
		r.Route("/auth", NewAuthHandler(svc).Register)
		return r
	}

	t.Run("Success", func(t *testing.T) {
		mockSvc := new(MockUserService)
		mockSvc.On("Register", mock.Anything, "new@example.com", "password123").
			Return("jwt-token", user.User{ID: 1, Email: "new@example.com", Role: user.RoleUser}, nil)

		rec, res := doRequest(t, newRouter(mockSvc), http.MethodPost, "/auth/register",
			map[string]string{"email": "new@example.com", "password": "password123"})

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.True(t, res.Success)

		data := res.Data.(map[string]any)
		assert.Equal(t, "jwt-token", data["token"])
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		rec, res := doRequest(t, newRouter(new(MockUserService)), http.MethodPost, "/auth/register",
			map[string]string{"email": "not-an-email", "password": "short"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, res.Success)
		assert.Contains(t, res.FieldErrors, "email")
		assert.Contains(t, res.FieldErrors, "password")
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mockSvc := new(MockUserService)
		mockSvc.On("Register", mock.Anything, "taken@example.com", "password123").
			Return("", user.User{}, user.ErrEmailExists)

		rec, res := doRequest(t, newRouter(mockSvc), http.MethodPost, "/auth/register",
			map[string]string{"email": "taken@example.com", "password": "password123"})

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.False(t, res.Success)
	})

	t.Run("BadCredentialsOnLogin", func(t *testing.T) {
		mockSvc := new(MockUserService)
		mockSvc.On("Login", mock.Anything, "a@example.com", "password123").
			Return("", user.User{}, user.ErrInvalidCredentials)

		rec, res := doRequest(t, newRouter(mockSvc), http.MethodPost, "/auth/login",
			map[string]string{"email": "a@example.com", "password": "password123"})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, res.Success)
	})
}

func TestCartHandler(t *testing.T) {
	variantID := "var-1"

	newRouter := func(svc cart.Service) http.Handler {
		r := chi.NewRouter()
		r.Use(withUser(7, "USER"))
		r.Route("/cart", NewCartHandler(svc).Register)
		return r
	}

	t.Run("AddSuccess", func(t *testing.T) {
		mockSvc := new(MockCartService)
		mockSvc.On("AddToCart", mock.Anything, cart.AddToCartParams{
			UserID:   7,
			Target:   cart.Target{VariantID: &variantID},
			Quantity: 2,
		}).Return(&cart.CartItem{ID: "ci-1", Quantity: 2}, nil)

		rec, res := doRequest(t, newRouter(mockSvc), http.MethodPost, "/cart/items",
			map[string]any{"variant_id": variantID, "quantity": 2})

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.True(t, res.Success)
		mockSvc.AssertExpectations(t)
	})

	t.Run("AddRejectsAmbiguousTarget", func(t *testing.T) {
		rec, res := doRequest(t, newRouter(new(MockCartService)), http.MethodPost, "/cart/items",
			map[string]any{"product_id": "p-1", "variant_id": variantID, "quantity": 1})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, res.FieldErrors, "target")
	})

	t.Run("AddRejectsZeroQuantity", func(t *testing.T) {
		rec, res := doRequest(t, newRouter(new(MockCartService)), http.MethodPost, "/cart/items",
			map[string]any{"variant_id": variantID, "quantity": 0})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, res.FieldErrors, "quantity")
	})

	t.Run("AddInsufficientStock", func(t *testing.T) {
		mockSvc := new(MockCartService)
		mockSvc.On("AddToCart", mock.Anything, mock.Anything).
			Return(nil, cart.ErrInsufficientStock)

		rec, res := doRequest(t, newRouter(mockSvc), http.MethodPost, "/cart/items",
			map[string]any{"variant_id": variantID, "quantity": 99})

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.False(t, res.Success)
	})

	t.Run("UpdateQuantityZeroRemoves", func(t *testing.T) {
		mockSvc := new(MockCartService)
		mockSvc.On("UpdateCartQuantity", mock.Anything, cart.UpdateQuantityParams{
			UserID: 7,
			Target: cart.Target{VariantID: &variantID},
		}).Return(nil)

		rec, _ := doRequest(t, newRouter(mockSvc), http.MethodPut, "/cart/items",
			map[string]any{"variant_id": variantID, "quantity": 0})

		assert.Equal(t, http.StatusOK, rec.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("Clear", func(t *testing.T) {
		mockSvc := new(MockCartService)
		mockSvc.On("ClearCart", mock.Anything, uint(7)).Return(nil)

		rec, res := doRequest(t, newRouter(mockSvc), http.MethodDelete, "/cart", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, res.Success)
	})
}

func TestCheckoutHandler(t *testing.T) {
	newRouter := func(svc checkout.Service) http.Handler {
		r := chi.NewRouter()
		r.Use(withUser(7, "USER"))
		r.Route("/checkout", NewCheckoutHandler(svc).Register)
		return r
	}

	t.Run("CreateFromEmptyCart", func(t *testing.T) {
		mockSvc := new(MockCheckoutService)
		mockSvc.On("CreateSession", mock.Anything, uint(7)).
			Return(nil, checkout.ErrEmptyCart)

		rec, res := doRequest(t, newRouter(mockSvc), http.MethodPost, "/checkout/sessions", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, res.Success)
	})

	t.Run("GetExpiredSession", func(t *testing.T) {
		mockSvc := new(MockCheckoutService)
		mockSvc.On("GetSession", mock.Anything, "7-abc", uint(7)).
			Return(nil, checkout.ErrSessionExpired)

		rec, _ := doRequest(t, newRouter(mockSvc), http.MethodGet, "/checkout/sessions/7-abc", nil)

		assert.Equal(t, http.StatusGone, rec.Code)
	})

	t.Run("UpdatePassesOnlyProvidedFields", func(t *testing.T) {
		addrID := "addr-1"
		mockSvc := new(MockCheckoutService)
		mockSvc.On("UpdateSession", mock.Anything, "7-abc", uint(7),
			checkout.UpdateSessionParams{ShippingAddressID: &addrID}).
			Return(&checkout.CheckoutSession{ID: "7-abc", ShippingAddressID: &addrID}, nil)

		rec, res := doRequest(t, newRouter(mockSvc), http.MethodPatch, "/checkout/sessions/7-abc",
			map[string]any{"shipping_address_id": addrID})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, res.Success)
		mockSvc.AssertExpectations(t)
	})
}

func TestOrderHandler(t *testing.T) {
	newRouter := func(svc order.Service, role string) http.Handler {
		r := chi.NewRouter()
		r.Use(withUser(7, role))
		r.Route("/orders", NewOrderHandler(svc).Register)
		return r
	}

	t.Run("CreateSuccess", func(t *testing.T) {
		mockSvc := new(MockOrderService)
		mockSvc.On("CreateOrder", mock.Anything, "7-abc").
			Return(&order.Order{ID: "ord-1", Status: order.StatusPending, Total: 144300}, nil)

		rec, res := doRequest(t, newRouter(mockSvc, "USER"), http.MethodPost, "/orders",
			map[string]string{"session_id": "7-abc"})

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.True(t, res.Success)
	})

	t.Run("CreateRequiresSessionID", func(t *testing.T) {
		rec, res := doRequest(t, newRouter(new(MockOrderService), "USER"), http.MethodPost, "/orders",
			map[string]string{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, res.FieldErrors, "session_id")
	})

	t.Run("CreateInsufficientStock", func(t *testing.T) {
		mockSvc := new(MockOrderService)
		mockSvc.On("CreateOrder", mock.Anything, "7-abc").
			Return(nil, &order.InsufficientStockError{ItemName: "Blue Mug", Requested: 3, Available: 1})

		rec, res := doRequest(t, newRouter(mockSvc, "USER"), http.MethodPost, "/orders",
			map[string]string{"session_id": "7-abc"})

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, res.Error, "Blue Mug")
		assert.Contains(t, res.Error, "requested 3")
	})

	t.Run("DetailNotFound", func(t *testing.T) {
		mockSvc := new(MockOrderService)
		mockSvc.On("GetOrder", mock.Anything, "ord-9").
			Return(nil, order.ErrOrderNotFound)

		rec, _ := doRequest(t, newRouter(mockSvc, "USER"), http.MethodGet, "/orders/ord-9", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("CancelNonPending", func(t *testing.T) {
		mockSvc := new(MockOrderService)
		mockSvc.On("CancelOrder", mock.Anything, "ord-1").
			Return(nil, order.ErrNotCancellable)

		rec, _ := doRequest(t, newRouter(mockSvc, "USER"), http.MethodPost, "/orders/ord-1/cancel", nil)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("StatusUpdateInvalidTransition", func(t *testing.T) {
		mockSvc := new(MockOrderService)
		mockSvc.On("ProcessOrder", mock.Anything, "ord-1", order.StatusShipped).
			Return(nil, &order.InvalidTransitionError{From: order.StatusPending, To: order.StatusShipped})

		rec, res := doRequest(t, newRouter(mockSvc, "ADMIN"), http.MethodPatch, "/orders/ord-1/status",
			map[string]string{"status": "SHIPPED"})

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.False(t, res.Success)
	})

	t.Run("StatusUpdateForbiddenForUser", func(t *testing.T) {
		mockSvc := new(MockOrderService)
		mockSvc.On("ProcessOrder", mock.Anything, "ord-1", order.StatusProcessing).
			Return(nil, order.ErrUnauthorized)

		rec, _ := doRequest(t, newRouter(mockSvc, "USER"), http.MethodPatch, "/orders/ord-1/status",
			map[string]string{"status": "PROCESSING"})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
