package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("entity not found")
	ErrForbidden          = errors.New("access to this resource is denied")
	ErrConflict           = errors.New("entity already exists")
	ErrUnauthorized       = errors.New("invalid credentials")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context")
)

// ErrInvalidDateOrdering is a specialization of ErrValidation for the
// renewal-after-start invariant; errors.Is(err, ErrValidation) holds for it.
var ErrInvalidDateOrdering = fmt.Errorf("renewal date must be after start date: %w", ErrValidation)
