package apperrors

import (
	"errors"
	"fmt"
)

// ErrInvalidAccount indicates an empty or otherwise unusable account identifier.
var ErrInvalidAccount = errors.New("invalid account identifier")

// ErrInvalidAsset indicates a zero asset code.
var ErrInvalidAsset = errors.New("invalid asset code")

// ErrInvalidAmount indicates a zero magnitude on a credit or debit.
var ErrInvalidAmount = errors.New("amount must be positive")

// ErrNotOwner indicates a privileged call by a principal that is not the current owner.
var ErrNotOwner = errors.New("caller is not the ledger owner")

// AppError wraps adapter-level failures with an HTTP-ish status code so
// handlers can map them without inspecting the cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}
