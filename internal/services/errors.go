package services

import (
	"errors"
	"fmt"
)

// Sentinel outcomes surfaced to the request layer, which maps them to
// 404, 403, 400 and 409. Ownership mismatches on personal entities are
// reported as ErrNotFound so existence is not leaked.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

var (
	ErrEmailTaken    = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrAlreadyMember = fmt.Errorf("%w: already a group member", ErrConflict)
	ErrCategoryInUse = fmt.Errorf("%w: category referenced by records", ErrConflict)
	ErrGoalNotActive = fmt.Errorf("%w: goal is not active", ErrInvalidState)
	ErrInvalidAmount = fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
)
