package cart

import "errors"

var (
	// quantity < 1 or empty product id
	ErrInvalidArgument = errors.New("invalid argument")

	ErrLineNotFound = errors.New("cart line not found")

	ErrClosed = errors.New("cart store closed")
)
