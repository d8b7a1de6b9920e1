package shop

import (
	"errors"
	"fmt"
)

// Sentinels the ledger and the engines agree on. ErrNotFound and
// ErrPendingCartExists come back from the store; the rest are what the
// engines translate them into for callers.
var (
	ErrNotFound          = errors.New("not found")
	ErrPendingCartExists = errors.New("pending cart already exists")
	ErrCartItemExists    = errors.New("cart item already exists")

	ErrProductNotFound  = errors.New("product not found")
	ErrCartNotFound     = errors.New("pending cart not found")
	ErrItemNotFound     = errors.New("cart item not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrNoPendingCart    = errors.New("no pending cart")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrAlreadyCompleted = errors.New("order already completed")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientStockError names the offending product so callers can report
// which line blocked fulfillment.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// StoreError wraps a raw storage failure with the operation that hit it.
// Callers must not blindly retry: the write may have landed even though the
// response was lost.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "store: " + e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }
