package vybiumconsole

import (
	"errors"

	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

// ErrorCode identifies the kind of a console error
type ErrorCode = core.ErrorCode

// Error is the error type returned by every console primitive
type Error = core.Error

// Error kinds
const (
	CodeUnknown            = core.CodeUnknown
	CodeDivisionByZero     = core.CodeDivisionByZero
	CodeInvalidEncoding    = core.CodeInvalidEncoding
	CodeNotInSubgroup      = core.CodeNotInSubgroup
	CodeInvalidInputLength = core.CodeInvalidInputLength
	CodeInvalidKey         = core.CodeInvalidKey
	CodeTooManyLeaves      = core.CodeTooManyLeaves
	CodeIndexOutOfRange    = core.CodeIndexOutOfRange
	CodeInvalidDomain      = core.CodeInvalidDomain
	CodeInvalidConfig      = core.CodeInvalidConfig
	CodeInvalidStatePath   = core.CodeInvalidStatePath
)

// Sentinel errors; match with errors.Is
var (
	ErrDivisionByZero     = core.ErrDivisionByZero
	ErrInvalidEncoding    = core.ErrInvalidEncoding
	ErrNotInSubgroup      = core.ErrNotInSubgroup
	ErrInvalidInputLength = core.ErrInvalidInputLength
	ErrInvalidKey         = core.ErrInvalidKey
	ErrTooManyLeaves      = core.ErrTooManyLeaves
	ErrIndexOutOfRange    = core.ErrIndexOutOfRange
	ErrInvalidDomain      = core.ErrInvalidDomain
	ErrInvalidConfig      = core.ErrInvalidConfig
	ErrInvalidStatePath   = core.ErrInvalidStatePath
)

// CodeOf returns the kind of the first console error in err's chain, or
// CodeUnknown
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
