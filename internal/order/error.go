package order

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrAddressRequired = errors.New("shipping address is required")
	ErrAddressNotFound = errors.New("address not found")
	ErrNotCancellable  = errors.New("only pending orders can be cancelled")
	ErrStatusConflict  = errors.New("order status changed concurrently")
)

// InsufficientStockError names the item that blocked the order so the
// caller can tell the user exactly what to fix.
type InsufficientStockError struct {
	ItemName  string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ItemName, e.Requested, e.Available)
}

// InvalidTransitionError reports a disallowed status move.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}
