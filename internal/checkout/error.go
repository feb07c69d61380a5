package checkout

import "errors"

var (
	ErrSessionNotFound = errors.New("checkout session not found")
	ErrSessionExpired  = errors.New("checkout session expired")
	ErrEmptyCart       = errors.New("cart is empty")
)
