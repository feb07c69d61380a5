package order

import (
	"context"
	"time"

	"gerai-be/internal/address"
	"gerai-be/internal/cart"
	"gerai-be/internal/checkout"
	"gerai-be/internal/events"
	"gerai-be/internal/logger"
	"gerai-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service owns the order lifecycle: creation from a checkout session,
// querying, cancellation, and admin fulfillment updates.
type Service interface {
	CreateOrder(ctx context.Context, sessionID string) (*Order, error)
	GetUserOrders(ctx context.Context, filter *OrderFilter, sort *OrderSort, limit, page *int32) ([]*Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	CancelOrder(ctx context.Context, orderID string) (*Order, error)
	ProcessOrder(ctx context.Context, orderID string, to OrderStatus) (*Order, error)
}

type service struct {
	repo        Repository
	checkoutSvc checkout.Service
	cartSvc     cart.Service
	addressRepo address.Repository
	publisher   events.Publisher
}

func NewService(
	repo Repository,
	checkoutSvc checkout.Service,
	cartSvc cart.Service,
	addressRepo address.Repository,
	publisher events.Publisher,
) Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &service{
		repo:        repo,
		checkoutSvc: checkoutSvc,
		cartSvc:     cartSvc,
		addressRepo: addressRepo,
		publisher:   publisher,
	}
}

// CreateOrder turns a checkout session into a pending order. The
// session's items and totals are copied verbatim; stock is checked and
// deducted inside one transaction. Only after the commit are the cart
// and session cleaned up.
func (s *service) CreateOrder(ctx context.Context, sessionID string) (*Order, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.Uint("user_id", userID),
		zap.String("session_id", sessionID),
	)

	session, err := s.checkoutSvc.GetSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	if session.ShippingAddressID == nil {
		return nil, ErrAddressRequired
	}

	addrID, err := uuid.Parse(*session.ShippingAddressID)
	if err != nil {
		return nil, ErrAddressNotFound
	}
	addr, err := s.addressRepo.GetByID(ctx, addrID)
	if err != nil || addr.UserID != userID {
		return nil, ErrAddressNotFound
	}

	now := time.Now()
	o := &Order{
		ID:          uuid.NewString(),
		OrderNumber: utils.GenerateOrderNumber(),
		UserID:      userID,
		Status:      StatusPending,

		Subtotal:    session.Subtotal,
		Tax:         session.Tax,
		ShippingFee: session.ShippingFee,
		Discount:    session.Discount,
		Total:       session.Total,
		Currency:    session.Currency,

		ShippingAddressID: session.ShippingAddressID,
		PaymentMethod:     session.PaymentMethod,
		Notes:             session.Notes,

		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, item := range session.Items {
		o.Items = append(o.Items, OrderItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      item.Name,
			ImageURL:  item.ImageURL,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Subtotal:  item.Subtotal,
		})
	}

	if err := s.repo.CreateOrderTx(ctx, o); err != nil {
		log.Warn("order transaction failed", zap.Error(err))
		return nil, err
	}

	// Post-commit cleanup. The order exists either way, so failures
	// here are logged, not returned.
	if err := s.cartSvc.ClearCart(ctx, userID); err != nil {
		log.Error("failed to clear cart after order", zap.Error(err))
	}
	if err := s.checkoutSvc.DeleteSession(ctx, sessionID, userID); err != nil {
		log.Error("failed to delete checkout session after order", zap.Error(err))
	}

	s.publisher.Publish(ctx, events.TopicOrderCreated, events.EventOrderCreated, o.ID,
		events.OrderCreatedPayload{
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			UserID:      o.UserID,
			Items:       toEventLines(o.Items),
			Total:       o.Total,
			Currency:    o.Currency,
		})

	log.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.Int("total", o.Total),
	)

	return o, nil
}

func (s *service) GetUserOrders(
	ctx context.Context,
	filter *OrderFilter,
	sort *OrderSort,
	limit, page *int32,
) ([]*Order, error) {

	if _, ok := utils.GetUserIDFromContext(ctx); !ok {
		return nil, ErrUnauthorized
	}

	return s.repo.GetOrders(ctx, filter, sort, limit, page)
}

// GetOrder returns one order with items. Someone else's order reads as
// not found unless the caller is an admin.
func (s *service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	o, err := s.repo.GetOrderDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.UserID != userID && !utils.IsAdmin(ctx) {
		return nil, ErrOrderNotFound
	}

	return o, nil
}

// CancelOrder cancels a pending order and restores its stock. Owners
// and admins only.
func (s *service) CancelOrder(ctx context.Context, orderID string) (*Order, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CancelOrder"),
		zap.String("order_id", orderID),
		zap.Uint("user_id", userID),
	)

	existing, err := s.repo.GetOrderDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID && !utils.IsAdmin(ctx) {
		return nil, ErrOrderNotFound
	}

	cancelled, err := s.repo.CancelOrderTx(ctx, orderID)
	if err != nil {
		log.Warn("cancel failed", zap.Error(err))
		return nil, err
	}

	s.publisher.Publish(ctx, events.TopicOrderCancelled, events.EventOrderCancelled, cancelled.ID,
		events.OrderCancelledPayload{
			OrderID:     cancelled.ID,
			OrderNumber: cancelled.OrderNumber,
			UserID:      cancelled.UserID,
			Items:       toEventLines(cancelled.Items),
			CancelledBy: userID,
		})

	log.Info("order cancelled")

	return cancelled, nil
}

// ProcessOrder moves an order along the fulfillment path. Admin only,
// and only transitions the status table allows.
func (s *service) ProcessOrder(ctx context.Context, orderID string, to OrderStatus) (*Order, error) {
	if !utils.IsAdmin(ctx) {
		return nil, ErrUnauthorized
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ProcessOrder"),
		zap.String("order_id", orderID),
		zap.String("to_status", string(to)),
	)

	if !to.Valid() {
		return nil, &InvalidTransitionError{To: to}
	}

	o, err := s.repo.GetOrderDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(o.Status, to) {
		return nil, &InvalidTransitionError{From: o.Status, To: to}
	}

	if err := s.repo.UpdateOrderStatus(ctx, orderID, o.Status, to); err != nil {
		log.Warn("status update failed", zap.Error(err))
		return nil, err
	}

	s.publisher.Publish(ctx, events.TopicOrderStatusChanged, events.EventOrderStatusChanged, o.ID,
		events.OrderStatusChangedPayload{
			OrderID:    o.ID,
			FromStatus: string(o.Status),
			ToStatus:   string(to),
		})

	log.Info("order status updated", zap.String("from_status", string(o.Status)))

	o.Status = to
	return o, nil
}

func toEventLines(items []OrderItem) []events.ItemLine {
	lines := make([]events.ItemLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, events.ItemLine{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return lines
}
