package cartstore

import (
	"context"
	"sync"

	"gerai-be/internal/cart"
	"gerai-be/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Store keeps an optimistic local mirror of one user's cart in front of
// the cart service. Mutations apply to the mirror immediately, then run
// against the backend; on failure the mirror is restored to the exact
// snapshot taken before the mutation.
//
// Concurrent identical mutations (same operation on the same target) are
// coalesced into a single backend call, so double-clicks don't double-add.
type Store struct {
	userID  uint
	backend cart.Service

	mu    sync.Mutex
	items []*cart.CartItem

	group singleflight.Group
}

func New(userID uint, backend cart.Service) *Store {
	return &Store{userID: userID, backend: backend}
}

// Load replaces the mirror with the backend's current cart.
func (s *Store) Load(ctx context.Context) error {
	items, err := s.backend.GetCart(ctx, s.userID, nil, nil, nil, nil)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	return nil
}

// Items returns a copy of the mirror.
func (s *Store) Items() []*cart.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// TotalQuantity sums the quantities across all lines.
func (s *Store) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// snapshotLocked deep-copies the mirror. Callers must hold mu.
func (s *Store) snapshotLocked() []*cart.CartItem {
	snapshot := make([]*cart.CartItem, len(s.items))
	for i, item := range s.items {
		copied := *item
		snapshot[i] = &copied
	}
	return snapshot
}

func (s *Store) findLocked(target cart.Target) *cart.CartItem {
	for _, item := range s.items {
		itemTarget := cart.Target{ProductID: item.ProductID, VariantID: item.VariantID}
		if itemTarget.Key() == target.Key() {
			return item
		}
	}
	return nil
}

// AddItem optimistically adds quantity to the target's line and pushes
// the change to the backend. The mirror rolls back if the backend
// rejects the add.
func (s *Store) AddItem(ctx context.Context, target cart.Target, quantity int) error {
	if !target.Valid() {
		return cart.ErrInvalidTarget
	}
	if quantity <= 0 {
		return cart.ErrInvalidQuantity
	}

	s.mu.Lock()
	snapshot := s.snapshotLocked()
	if existing := s.findLocked(target); existing != nil {
		existing.Quantity += quantity
	} else {
		s.items = append(s.items, &cart.CartItem{
			UserID:    s.userID,
			ProductID: target.ProductID,
			VariantID: target.VariantID,
			Quantity:  quantity,
		})
	}
	s.mu.Unlock()

	result, err, _ := s.group.Do("add:"+target.Key(), func() (any, error) {
		return s.backend.AddToCart(ctx, cart.AddToCartParams{
			UserID:   s.userID,
			Target:   target,
			Quantity: quantity,
		})
	})
	if err != nil {
		s.rollback(ctx, snapshot, "add", target)
		return err
	}

	// Reconcile the line with what the backend recorded. When a flight
	// was shared, the duplicate caller's optimistic bump is undone here.
	confirmed := result.(*cart.CartItem)
	s.mu.Lock()
	if line := s.findLocked(target); line != nil {
		line.ID = confirmed.ID
		line.Quantity = confirmed.Quantity
		line.CreatedAt = confirmed.CreatedAt
		line.UpdatedAt = confirmed.UpdatedAt
	}
	s.mu.Unlock()

	return nil
}

// UpdateQuantity optimistically sets the target's line quantity. Zero or
// less removes the line, matching the backend behavior.
func (s *Store) UpdateQuantity(ctx context.Context, target cart.Target, quantity int) error {
	if !target.Valid() {
		return cart.ErrInvalidTarget
	}

	s.mu.Lock()
	snapshot := s.snapshotLocked()
	if quantity <= 0 {
		s.removeLocked(target)
	} else if line := s.findLocked(target); line != nil {
		line.Quantity = quantity
	}
	s.mu.Unlock()

	_, err, _ := s.group.Do("update:"+target.Key(), func() (any, error) {
		return nil, s.backend.UpdateCartQuantity(ctx, cart.UpdateQuantityParams{
			UserID:   s.userID,
			Target:   target,
			Quantity: quantity,
		})
	})
	if err != nil {
		s.rollback(ctx, snapshot, "update", target)
		return err
	}

	return nil
}

// RemoveItem optimistically drops the target's line.
func (s *Store) RemoveItem(ctx context.Context, target cart.Target) error {
	if !target.Valid() {
		return cart.ErrInvalidTarget
	}

	s.mu.Lock()
	snapshot := s.snapshotLocked()
	s.removeLocked(target)
	s.mu.Unlock()

	_, err, _ := s.group.Do("remove:"+target.Key(), func() (any, error) {
		return nil, s.backend.RemoveFromCart(ctx, s.userID, target)
	})
	if err != nil {
		s.rollback(ctx, snapshot, "remove", target)
		return err
	}

	return nil
}

// Clear optimistically empties the mirror.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	snapshot := s.snapshotLocked()
	s.items = nil
	s.mu.Unlock()

	_, err, _ := s.group.Do("clear", func() (any, error) {
		return nil, s.backend.ClearCart(ctx, s.userID)
	})
	if err != nil {
		s.rollback(ctx, snapshot, "clear", cart.Target{})
		return err
	}

	return nil
}

func (s *Store) removeLocked(target cart.Target) {
	kept := s.items[:0]
	for _, item := range s.items {
		itemTarget := cart.Target{ProductID: item.ProductID, VariantID: item.VariantID}
		if itemTarget.Key() != target.Key() {
			kept = append(kept, item)
		}
	}
	s.items = kept
}

func (s *Store) rollback(ctx context.Context, snapshot []*cart.CartItem, op string, target cart.Target) {
	s.mu.Lock()
	s.items = snapshot
	s.mu.Unlock()

	logger.FromCtx(ctx).Debug("cart mutation rolled back",
		zap.String("op", op),
		zap.String("target", target.Key()),
		zap.Uint("user_id", s.userID),
	)
}
