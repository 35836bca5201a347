package models

import (
	"errors"
	"fmt"
)

// ErrValidation is the root of every input validation failure.
var ErrValidation = errors.New("validation error")

var (
	ErrInvalidDate        = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrEmptyItemName      = fmt.Errorf("%w: item name must not be empty", ErrValidation)
	ErrInvalidQuantity    = fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
	ErrNegativeQuantity   = fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	ErrNegativePrice      = fmt.Errorf("%w: prices must not be negative", ErrValidation)
	ErrInvalidAmount      = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	ErrEmptyDescription   = fmt.Errorf("%w: description must not be empty", ErrValidation)
	ErrInvalidExpenseType = fmt.Errorf("%w: unknown expense type", ErrValidation)
	ErrEmptyName          = fmt.Errorf("%w: name must not be empty", ErrValidation)
	ErrNegativeCapital    = fmt.Errorf("%w: capital values must not be negative", ErrValidation)
)
