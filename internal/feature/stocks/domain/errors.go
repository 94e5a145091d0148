// Package domain defines domain-level errors for the stocks feature.
package domain

import "errors"

// Domain errors for registry operations.
// These errors represent business logic failures and should be handled appropriately by upper layers.
var (
	// ErrStockNotFound indicates that no registry row exists for the given code.
	// Returned by operations that require a prior registration (mark-table-created, stats refresh).
	ErrStockNotFound = errors.New("stock is not registered")

	// ErrTableMissing indicates that the instrument's physical price table does not exist.
	// Stats cannot be recomputed until the table is provisioned.
	ErrTableMissing = errors.New("stock price table does not exist")
)
