package domain

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
	ErrEmptyCart = errors.New("cart is empty")

	// ErrCheckoutInProgress is returned when another checkout of the same
	// cart holds the shared-store lock.
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)
