package cart

import (
	"context"

	"gerai-be/internal/logger"
	"gerai-be/internal/product"

	"go.uber.org/zap"
)

// Service defines the business logic for carts.
type Service interface {
	AddToCart(ctx context.Context, params AddToCartParams) (*CartItem, error)
	GetCart(ctx context.Context, userID uint,
		filter *CartFilter,
		sort *CartSort,
		limit, page *uint16) ([]*CartItem, error)
	UpdateCartQuantity(ctx context.Context, params UpdateQuantityParams) error
	RemoveFromCart(ctx context.Context, userID uint, target Target) error
	ClearCart(ctx context.Context, userID uint) error
}

type service struct {
	repo        Repository
	productRepo product.Repository
}

func NewService(repo Repository, productRepo product.Repository) Service {
	return &service{repo: repo, productRepo: productRepo}
}

// availableStock resolves the live stock of the item's target, either a
// variant or a simple product. Only active products count.
func (s *service) availableStock(ctx context.Context, target Target) (int, error) {
	if target.VariantID != nil {
		variant, err := s.productRepo.GetProductVariantByID(ctx, product.GetVariantOptions{
			VariantID:  *target.VariantID,
			OnlyActive: true,
		})
		if err != nil {
			return 0, err
		}
		if variant == nil {
			return 0, ErrProductNotFound
		}
		return variant.Stock, nil
	}

	p, err := s.productRepo.GetProductByID(ctx, product.GetProductOptions{
		ProductID:  *target.ProductID,
		OnlyActive: true,
	})
	if err != nil {
		return 0, err
	}
	if p == nil || p.HasVariants {
		return 0, ErrProductNotFound
	}
	return p.Stock, nil
}

// AddToCart adds a product or variant to the user's cart. Adding a target
// that is already in the cart merges quantities instead of creating a
// second line.
func (s *service) AddToCart(
	ctx context.Context,
	params AddToCartParams,
) (*CartItem, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddToCart"),
		zap.Uint("user_id", params.UserID),
		zap.String("target", params.Target.Key()),
	)

	if params.UserID == 0 {
		return nil, ErrUserNotAuthenticated
	}
	if !params.Target.Valid() {
		return nil, ErrInvalidTarget
	}
	if params.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	stock, err := s.availableStock(ctx, params.Target)
	if err != nil {
		return nil, err
	}

	cartItem, err := s.repo.GetCartItemByTarget(ctx, params.UserID, params.Target)
	if err != nil {
		return nil, err
	}

	finalQty := params.Quantity
	if cartItem != nil {
		finalQty += cartItem.Quantity
	}

	if stock < finalQty {
		log.Debug("rejected add, not enough stock",
			zap.Int("stock", stock),
			zap.Int("requested", finalQty),
		)
		return nil, ErrInsufficientStock
	}

	if cartItem == nil {
		cartItem, err = s.repo.CreateCartItem(ctx, CreateCartItemParams{
			UserID:   params.UserID,
			Target:   params.Target,
			Quantity: params.Quantity,
		})
	} else {
		cartItem, err = s.repo.UpdateCartItemQuantity(ctx, cartItem.ID, finalQty)
	}
	if err != nil {
		return nil, err
	}

	return cartItem, nil
}

func (s *service) GetCart(
	ctx context.Context,
	userID uint,
	filter *CartFilter,
	sort *CartSort,
	limit, page *uint16,
) ([]*CartItem, error) {

	if userID == 0 {
		return nil, ErrUserNotAuthenticated
	}

	return s.repo.GetCartItems(ctx, userID, filter, sort, limit, page)
}

// UpdateCartQuantity sets the quantity of a cart line. A quantity of zero
// or less removes the line.
func (s *service) UpdateCartQuantity(ctx context.Context, params UpdateQuantityParams) error {
	if params.UserID == 0 {
		return ErrUserNotAuthenticated
	}
	if !params.Target.Valid() {
		return ErrInvalidTarget
	}

	if params.Quantity <= 0 {
		return s.repo.RemoveFromCart(ctx, params.UserID, params.Target)
	}

	stock, err := s.availableStock(ctx, params.Target)
	if err != nil {
		return err
	}
	if stock < params.Quantity {
		return ErrInsufficientStock
	}

	cartItem, err := s.repo.GetCartItemByTarget(ctx, params.UserID, params.Target)
	if err != nil {
		return err
	}
	if cartItem == nil {
		return ErrCartItemNotFound
	}

	_, err = s.repo.UpdateCartItemQuantity(ctx, cartItem.ID, params.Quantity)
	return err
}

func (s *service) RemoveFromCart(ctx context.Context, userID uint, target Target) error {
	if userID == 0 {
		return ErrUserNotAuthenticated
	}
	if !target.Valid() {
		return ErrInvalidTarget
	}
	return s.repo.RemoveFromCart(ctx, userID, target)
}

func (s *service) ClearCart(ctx context.Context, userID uint) error {
	if userID == 0 {
		return ErrUserNotAuthenticated
	}
	return s.repo.ClearCart(ctx, userID)
}
