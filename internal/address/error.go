package address

import "errors"

var (
	ErrAddressNotFound  = errors.New("address not found")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrInvalidAddressID = errors.New("invalid address id")
)
