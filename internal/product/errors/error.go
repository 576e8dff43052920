// Package errors provides custom error types for product-related operations.
package errors

import "errors"

// ErrDuplicateIdentifier is returned when an add targets an id that already exists (case-insensitively).
var ErrDuplicateIdentifier = errors.New("duplicate product identifier")

// ErrValidation is returned when operator input is rejected before it reaches the registry.
var ErrValidation = errors.New("invalid product input")

// ErrPersistenceWrite wraps a failure to save the collection to its backing store.
var ErrPersistenceWrite = errors.New("can't write inventory to backing store")

// ErrPersistenceRead wraps a failure to read the backing store other than absent or malformed data.
var ErrPersistenceRead = errors.New("can't read inventory from backing store")
