package cart

import "errors"

var (
	// -- Authentication/Authorization --
	ErrUserNotAuthenticated = errors.New("user not authenticated")

	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("invalid cart quantity")
	ErrInvalidTarget   = errors.New("cart item must reference a product or a variant")

	// -- Resource State --
	ErrProductNotFound   = errors.New("product not found")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrCartEmpty         = errors.New("cart is already empty")
	ErrInsufficientStock = errors.New("insufficient stock")

	// -- Constants (External Systems) --
	PgUniqueViolation = "23505"
)
