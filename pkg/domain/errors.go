package domain

import "errors"

// Recoverable failures of derivation operations. OperationError wraps one of
// these with the exact message written to the Task's diagnostic log.
var (
	ErrCurrentNotSet  = errors.New("current statement is not set")
	ErrTargetNotSet   = errors.New("target statement is not set")
	ErrNotEquality    = errors.New("current statement is not an equality")
	ErrParse          = errors.New("parse error")
	ErrRuleNotDefined = errors.New("rule is not defined")
	ErrNoMatch        = errors.New("rule does not apply")
	ErrNotSameChain   = errors.New("elements are not in the same operator chain")
	ErrNotCommutative = errors.New("operator is not commutative")
	ErrCalculation    = errors.New("calculation failed")
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownCommand is returned by the runner for an unrecognised operation.
var ErrUnknownCommand = errors.New("unknown command")

// OperationError is a failed Task operation.
type OperationError struct {
	Op      string
	Kind    error
	Message string
}

func (e *OperationError) Error() string { return e.Message }

func (e *OperationError) Unwrap() error { return e.Kind }
