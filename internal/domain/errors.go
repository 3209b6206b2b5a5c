package domain

import "errors"

var (
	ErrValidation            = errors.New("validation failed")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrOrderNotFound         = errors.New("order not found")
	ErrNotOwner              = errors.New("order belongs to another trader")
	ErrNotCancellable        = errors.New("order is not cancellable")

	// ErrSettlement marks a ledger failure after escrow has been taken.
	// At that point resources are guaranteed to be locked, so this is an
	// invariant violation rather than a recoverable user error.
	ErrSettlement = errors.New("settlement invariant violation")
)
