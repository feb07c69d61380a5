package cart

import (
	"context"
	"testing"

	"gerai-be/internal/product"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetCartItems(
	ctx context.Context,
	userID uint,
	filter *CartFilter,
	sort *CartSort,
	limit, page *uint16,
) ([]*CartItem, error) {
	args := m.Called(ctx, userID, filter, sort, limit, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*CartItem), args.Error(1)
}

func (m *MockRepository) GetCartItemByTarget(ctx context.Context, userID uint, target Target) (*CartItem, error) {
	args := m.Called(ctx, userID, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CartItem), args.Error(1)
}

func (m *MockRepository) CreateCartItem(ctx context.Context, params CreateCartItemParams) (*CartItem, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CartItem), args.Error(1)
}

func (m *MockRepository) UpdateCartItemQuantity(ctx context.Context, cartItemID string, quantity int) (*CartItem, error) {
	args := m.Called(ctx, cartItemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CartItem), args.Error(1)
}

func (m *MockRepository) RemoveFromCart(ctx context.Context, userID uint, target Target) error {
	args := m.Called(ctx, userID, target)
	return args.Error(0)
}

func (m *MockRepository) ClearCart(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetProductByID(ctx context.Context, opts product.GetProductOptions) (*product.Product, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepository) GetProductVariantByID(ctx context.Context, opts product.GetVariantOptions) (*product.Variant, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Variant), args.Error(1)
}

func (m *MockProductRepository) ListProducts(ctx context.Context, limit, offset int) ([]*product.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func TestService_AddToCart(t *testing.T) {
	ctx := context.Background()
	variantTarget := Target{VariantID: strPtr("var-1")}

	t.Run("NewItem", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockProducts := new(MockProductRepository)
		svc := NewService(mockRepo, mockProducts)

		mockProducts.On("GetProductVariantByID", ctx, product.GetVariantOptions{VariantID: "var-1", OnlyActive: true}).
			Return(&product.Variant{ID: "var-1", Stock: 10, Price: 2500}, nil)
		mockRepo.On("GetCartItemByTarget", ctx, uint(7), variantTarget).
			Return(nil, nil)
		mockRepo.On("CreateCartItem", ctx, CreateCartItemParams{UserID: 7, Target: variantTarget, Quantity: 2}).
			Return(&CartItem{ID: "cart-1", UserID: 7, VariantID: strPtr("var-1"), Quantity: 2}, nil)

		item, err := svc.AddToCart(ctx, AddToCartParams{UserID: 7, Target: variantTarget, Quantity: 2})

		assert.NoError(t, err)
		assert.Equal(t, "cart-1", item.ID)
		mockRepo.AssertExpectations(t)
		mockProducts.AssertExpectations(t)
	})

	t.Run("MergesWithExistingLine", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockProducts := new(MockProductRepository)
		svc := NewService(mockRepo, mockProducts)

		mockProducts.On("GetProductVariantByID", ctx, mock.Anything).
			Return(&product.Variant{ID: "var-1", Stock: 10}, nil)
		mockRepo.On("GetCartItemByTarget", ctx, uint(7), variantTarget).
			Return(&CartItem{ID: "cart-1", UserID: 7, Quantity: 3}, nil)
		mockRepo.On("UpdateCartItemQuantity", ctx, "cart-1", 5).
			Return(&CartItem{ID: "cart-1", UserID: 7, Quantity: 5}, nil)

		item, err := svc.AddToCart(ctx, AddToCartParams{UserID: 7, Target: variantTarget, Quantity: 2})

		assert.NoError(t, err)
		assert.Equal(t, 5, item.Quantity)
		mockRepo.AssertExpectations(t)
	})

	t.Run("InsufficientStockCountsExistingQuantity", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockProducts := new(MockProductRepository)
		svc := NewService(mockRepo, mockProducts)

		mockProducts.On("GetProductVariantByID", ctx, mock.Anything).
			Return(&product.Variant{ID: "var-1", Stock: 4}, nil)
		mockRepo.On("GetCartItemByTarget", ctx, uint(7), variantTarget).
			Return(&CartItem{ID: "cart-1", UserID: 7, Quantity: 3}, nil)

		_, err := svc.AddToCart(ctx, AddToCartParams{UserID: 7, Target: variantTarget, Quantity: 2})

		assert.Equal(t, ErrInsufficientStock, err)
		mockRepo.AssertNotCalled(t, "UpdateCartItemQuantity", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("SimpleProduct", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockProducts := new(MockProductRepository)
		svc := NewService(mockRepo, mockProducts)

		target := Target{ProductID: strPtr("prod-1")}

		mockProducts.On("GetProductByID", ctx, product.GetProductOptions{ProductID: "prod-1", OnlyActive: true}).
			Return(&product.Product{ID: "prod-1", Stock: 5, HasVariants: false}, nil)
		mockRepo.On("GetCartItemByTarget", ctx, uint(7), target).
			Return(nil, nil)
		mockRepo.On("CreateCartItem", ctx, mock.Anything).
			Return(&CartItem{ID: "cart-2", UserID: 7, ProductID: strPtr("prod-1"), Quantity: 1}, nil)

		item, err := svc.AddToCart(ctx, AddToCartParams{UserID: 7, Target: target, Quantity: 1})

		assert.NoError(t, err)
		assert.NotNil(t, item.ProductID)
	})

	t.Run("ConfigurableProductAddedByProductIDIsRejected", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockProducts := new(MockProductRepository)
		svc := NewService(mockRepo, mockProducts)

		target := Target{ProductID: strPtr("prod-2")}

		mockProducts.On("GetProductByID", ctx, mock.Anything).
			Return(&product.Product{ID: "prod-2", HasVariants: true}, nil)

		_, err := svc.AddToCart(ctx, AddToCartParams{UserID: 7, Target: target, Quantity: 1})
		assert.Equal(t, ErrProductNotFound, err)
	})

	t.Run("UnknownVariant", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockProducts := new(MockProductRepository)
		svc := NewService(mockRepo, mockProducts)

		mockProducts.On("GetProductVariantByID", ctx, mock.Anything).
			Return(nil, nil)

		_, err := svc.AddToCart(ctx, AddToCartParams{UserID: 7, Target: variantTarget, Quantity: 1})
		assert.Equal(t, ErrProductNotFound, err)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockProductRepository))

		_, err := svc.AddToCart(ctx, AddToCartParams{UserID: 0, Target: variantTarget, Quantity: 1})
		assert.Equal(t, ErrUserNotAuthenticated, err)

		_, err = svc.AddToCart(ctx, AddToCartParams{UserID: 7, Quantity: 1})
		assert.Equal(t, ErrInvalidTarget, err)

		both := Target{ProductID: strPtr("p"), VariantID: strPtr("v")}
		_, err = svc.AddToCart(ctx, AddToCartParams{UserID: 7, Target: both, Quantity: 1})
		assert.Equal(t, ErrInvalidTarget, err)

		_, err = svc.AddToCart(ctx, AddToCartParams{UserID: 7, Target: variantTarget, Quantity: 0})
		assert.Equal(t, ErrInvalidQuantity, err)
	})
}

func TestService_UpdateCartQuantity(t *testing.T) {
	ctx := context.Background()
	target := Target{VariantID: strPtr("var-1")}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockProducts := new(MockProductRepository)
		svc := NewService(mockRepo, mockProducts)

		mockProducts.On("GetProductVariantByID", ctx, mock.Anything).
			Return(&product.Variant{ID: "var-1", Stock: 10}, nil)
		mockRepo.On("GetCartItemByTarget", ctx, uint(7), target).
			Return(&CartItem{ID: "cart-1", Quantity: 2}, nil)
		mockRepo.On("UpdateCartItemQuantity", ctx, "cart-1", 4).
			Return(&CartItem{ID: "cart-1", Quantity: 4}, nil)

		err := svc.UpdateCartQuantity(ctx, UpdateQuantityParams{UserID: 7, Target: target, Quantity: 4})
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ZeroQuantityRemovesLine", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockProducts := new(MockProductRepository)
		svc := NewService(mockRepo, mockProducts)

		mockRepo.On("RemoveFromCart", ctx, uint(7), target).Return(nil)

		err := svc.UpdateCartQuantity(ctx, UpdateQuantityParams{UserID: 7, Target: target, Quantity: 0})
		assert.NoError(t, err)
		mockProducts.AssertNotCalled(t, "GetProductVariantByID", mock.Anything, mock.Anything)
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockProducts := new(MockProductRepository)
		svc := NewService(mockRepo, mockProducts)

		mockProducts.On("GetProductVariantByID", ctx, mock.Anything).
			Return(&product.Variant{ID: "var-1", Stock: 2}, nil)

		err := svc.UpdateCartQuantity(ctx, UpdateQuantityParams{UserID: 7, Target: target, Quantity: 5})
		assert.Equal(t, ErrInsufficientStock, err)
	})

	t.Run("LineNotInCart", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockProducts := new(MockProductRepository)
		svc := NewService(mockRepo, mockProducts)

		mockProducts.On("GetProductVariantByID", ctx, mock.Anything).
			Return(&product.Variant{ID: "var-1", Stock: 10}, nil)
		mockRepo.On("GetCartItemByTarget", ctx, uint(7), target).
			Return(nil, nil)

		err := svc.UpdateCartQuantity(ctx, UpdateQuantityParams{UserID: 7, Target: target, Quantity: 2})
		assert.Equal(t, ErrCartItemNotFound, err)
	})
}

func TestService_RemoveFromCart(t *testing.T) {
	ctx := context.Background()
	target := Target{ProductID: strPtr("prod-1")}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, new(MockProductRepository))

		mockRepo.On("RemoveFromCart", ctx, uint(7), target).Return(nil)

		assert.NoError(t, svc.RemoveFromCart(ctx, 7, target))
	})

	t.Run("RequiresAuth", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockProductRepository))
		assert.Equal(t, ErrUserNotAuthenticated, svc.RemoveFromCart(ctx, 0, target))
	})
}

func TestService_ClearCart(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockRepository)
	svc := NewService(mockRepo, new(MockProductRepository))

	mockRepo.On("ClearCart", ctx, uint(7)).Return(nil)

	assert.NoError(t, svc.ClearCart(ctx, 7))
	assert.Equal(t, ErrUserNotAuthenticated, svc.ClearCart(ctx, 0))
}
