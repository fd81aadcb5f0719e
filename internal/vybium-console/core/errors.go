package core

import "fmt"

// ErrorCode identifies the kind of a console error
type ErrorCode int

const (
	// CodeUnknown represents an unknown error
	CodeUnknown ErrorCode = iota

	// CodeDivisionByZero is returned when inverting the additive identity
	CodeDivisionByZero

	// CodeInvalidEncoding is returned when bytes or bits do not decode to a canonical value
	CodeInvalidEncoding

	// CodeNotInSubgroup is returned when a curve point lies outside the prime-order subgroup
	CodeNotInSubgroup

	// CodeInvalidInputLength is returned by fixed input-length hashes
	CodeInvalidInputLength

	// CodeInvalidKey is returned when a signing key is the additive identity
	CodeInvalidKey

	// CodeTooManyLeaves is returned when a Merkle tree would exceed 2^depth leaves
	CodeTooManyLeaves

	// CodeIndexOutOfRange is returned when a leaf index is not populated
	CodeIndexOutOfRange

	// CodeInvalidDomain is returned for a domain tag outside the versioned set
	CodeInvalidDomain

	// CodeInvalidConfig is returned by configuration validation
	CodeInvalidConfig

	// CodeInvalidStatePath is returned when a ledger state path does not verify
	CodeInvalidStatePath
)

var codeNames = map[ErrorCode]string{
	CodeUnknown:            "Unknown",
	CodeDivisionByZero:     "DivisionByZero",
	CodeInvalidEncoding:    "InvalidEncoding",
	CodeNotInSubgroup:      "NotInSubgroup",
	CodeInvalidInputLength: "InvalidInputLength",
	CodeInvalidKey:         "InvalidKey",
	CodeTooManyLeaves:      "TooManyLeaves",
	CodeIndexOutOfRange:    "IndexOutOfRange",
	CodeInvalidDomain:      "InvalidDomain",
	CodeInvalidConfig:      "InvalidConfig",
	CodeInvalidStatePath:   "InvalidStatePath",
}

// String returns the name of the error kind
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// Error is the error type returned by every console primitive.
// Two errors are equal under errors.Is when their codes match.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vybium-console %s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("vybium-console %s: %s", e.Code, e.Message)
}

// Unwrap returns the cause of the error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Errorf builds an Error of the given kind with a formatted message
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Sentinel errors, one per kind. Match with errors.Is.
var (
	ErrDivisionByZero     = &Error{Code: CodeDivisionByZero, Message: "division by zero"}
	ErrInvalidEncoding    = &Error{Code: CodeInvalidEncoding, Message: "invalid encoding"}
	ErrNotInSubgroup      = &Error{Code: CodeNotInSubgroup, Message: "point is not in the prime-order subgroup"}
	ErrInvalidInputLength = &Error{Code: CodeInvalidInputLength, Message: "invalid input length"}
	ErrInvalidKey         = &Error{Code: CodeInvalidKey, Message: "invalid key"}
	ErrTooManyLeaves      = &Error{Code: CodeTooManyLeaves, Message: "too many leaves"}
	ErrIndexOutOfRange    = &Error{Code: CodeIndexOutOfRange, Message: "index out of range"}
	ErrInvalidDomain      = &Error{Code: CodeInvalidDomain, Message: "invalid domain"}
	ErrInvalidConfig      = &Error{Code: CodeInvalidConfig, Message: "invalid configuration"}
	ErrInvalidStatePath   = &Error{Code: CodeInvalidStatePath, Message: "invalid state path"}
)
