package catalog

import "errors"

// ErrNotFound is returned when a product id does not exist.
var ErrNotFound = errors.New("product not found")

// ErrInvariantViolation is returned when a write would break a data-model
// rule (negative price or quantity). The store is never touched in that case.
var ErrInvariantViolation = errors.New("invariant violation")
