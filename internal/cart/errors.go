package cart

import (
	"errors"
	"fmt"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotInCart   = fmt.Errorf("%w: no such item in cart", ErrProductNotFound)
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 2147483647")
	ErrDuplicateLine   = errors.New("cart already holds a line for this product")
	ErrVersionConflict = errors.New("cart was modified concurrently")

	// ErrUnavailable marks failures of the cart store or the product catalog,
	// as opposed to the domain errors above.
	ErrUnavailable = errors.New("cart backend unavailable")
)

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
