package checkout

import (
	"context"
	"time"

	"gerai-be/internal/address"
	"gerai-be/internal/cart"
	"gerai-be/internal/logger"

	"go.uber.org/zap"
)

// Pricing constants, all in IDR.
const (
	TaxRatePercent  = 11
	FlatShippingFee = 15000
)

type UpdateSessionParams struct {
	ShippingAddressID *string
	BillingAddressID  *string
	PaymentMethod     *string
	Notes             *string
}

// Service owns the checkout session lifecycle: snapshot the cart at
// session creation, collect delivery details, and hand the frozen
// session to order creation.
type Service interface {
	CreateSession(ctx context.Context, userID uint) (*CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string, userID uint) (*CheckoutSession, error)
	UpdateSession(ctx context.Context, sessionID string, userID uint, params UpdateSessionParams) (*CheckoutSession, error)
	DeleteSession(ctx context.Context, sessionID string, userID uint) error
}

type service struct {
	store       Store
	cartSvc     cart.Service
	addressRepo address.Repository
}

func NewService(store Store, cartSvc cart.Service, addressRepo address.Repository) Service {
	return &service{store: store, cartSvc: cartSvc, addressRepo: addressRepo}
}

// CreateSession freezes the user's current cart into a new session.
// Prices are captured here; later catalog price changes do not affect
// an open session.
func (s *service) CreateSession(ctx context.Context, userID uint) (*CheckoutSession, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateSession"),
		zap.Uint("user_id", userID),
	)

	lines, err := s.cartSvc.GetCart(ctx, userID, nil, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]SessionItem, 0, len(lines))
	subtotal := 0
	for _, line := range lines {
		item := SessionItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Name:      line.Name,
			ImageURL:  line.ImageURL,
			Quantity:  line.Quantity,
			Price:     line.Price,
			Subtotal:  line.Price * line.Quantity,
		}
		subtotal += item.Subtotal
		items = append(items, item)
	}

	addrs, err := s.addressRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates := make([]SessionAddress, 0, len(addrs))
	var defaultAddrID *string
	for _, a := range addrs {
		sa := SessionAddress{
			ID:           a.ID.String(),
			Name:         a.Name,
			ReceiverName: a.ReceiverName,
			Phone:        a.Phone,
			AddressLine1: a.Address1,
			AddressLine2: a.Address2,
			City:         a.City,
			Province:     a.Province,
			PostalCode:   a.Postal,
			Country:      a.Country,
			IsDefault:    a.IsDefault,
		}
		if a.IsDefault {
			id := sa.ID
			defaultAddrID = &id
		}
		candidates = append(candidates, sa)
	}

	tax := subtotal * TaxRatePercent / 100
	now := time.Now()

	session := &CheckoutSession{
		ID:        NewSessionID(userID),
		UserID:    userID,
		Items:     items,
		Addresses: candidates,

		ShippingAddressID: defaultAddrID,

		Subtotal:    subtotal,
		Tax:         tax,
		ShippingFee: FlatShippingFee,
		Total:       subtotal + tax + FlatShippingFee,
		Currency:    "IDR",

		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}

	if err := s.store.Create(ctx, session); err != nil {
		log.Error("failed to store checkout session", zap.Error(err))
		return nil, err
	}

	log.Info("checkout session created",
		zap.String("session_id", session.ID),
		zap.Int("items", len(items)),
		zap.Int("total", session.Total),
	)

	return session, nil
}

func (s *service) GetSession(ctx context.Context, sessionID string, userID uint) (*CheckoutSession, error) {
	return s.store.Get(ctx, sessionID, userID)
}

// UpdateSession applies the provided delivery details to an open
// session. Nil fields are left untouched.
func (s *service) UpdateSession(
	ctx context.Context,
	sessionID string,
	userID uint,
	params UpdateSessionParams,
) (*CheckoutSession, error) {

	session, err := s.store.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	if params.ShippingAddressID != nil {
		session.ShippingAddressID = params.ShippingAddressID
	}
	if params.BillingAddressID != nil {
		session.BillingAddressID = params.BillingAddressID
	}
	if params.PaymentMethod != nil {
		session.PaymentMethod = params.PaymentMethod
	}
	if params.Notes != nil {
		session.Notes = params.Notes
	}

	// Totals are always derived server-side from the frozen item
	// snapshot; a client can never write them.
	session.ShippingFee = FlatShippingFee
	session.Tax = session.Subtotal * TaxRatePercent / 100
	session.Total = session.Subtotal + session.Tax + session.ShippingFee - session.Discount

	if err := s.store.Update(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func (s *service) DeleteSession(ctx context.Context, sessionID string, userID uint) error {
	// Ownership gate mirrors Get: someone else's session reads as absent.
	if !ownerMatches(sessionID, userID) {
		return ErrSessionNotFound
	}
	return s.store.Delete(ctx, sessionID)
}
