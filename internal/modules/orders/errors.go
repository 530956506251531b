package orders

import "errors"

var (
	ErrCartEmpty = errors.New("cart is empty")
	ErrNotFound  = errors.New("order not found")
)
