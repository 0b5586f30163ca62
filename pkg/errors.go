package bank

import (
	"fmt"
)

type ErrorCode string

const (
	BadRequest            ErrorCode = "bad-request"
	NotAvailable          ErrorCode = "not-available"
	NotFound              ErrorCode = "not-found"
	AlreadyExists         ErrorCode = "already-exists"
	DBConflict            ErrorCode = "db-conflict"
	Unauthorized          ErrorCode = "unauthorized"
	InsufficientBalance   ErrorCode = "insufficient-balance"
	InsufficientLiquidity ErrorCode = "insufficient-liquidity"
	LimitExceeded         ErrorCode = "limit-exceeded"
	AccountTooNew         ErrorCode = "account-too-new"
	SelfPayment           ErrorCode = "self-payment"
	LockTimeout           ErrorCode = "lock-timeout"
	BroadcastFailed       ErrorCode = "broadcast-failed"
	Inconsistency         ErrorCode = "inconsistency"
	UnknownError          ErrorCode = "unknown-error"
)

type ErrorInfo struct {
	Code    ErrorCode // machine-readble ErrorCode enumeration
	Message string    // human-readable debug message (in production, logged on the server only)
}

func (e *ErrorInfo) Error() string {
	return string(e.Message)
}

func NewErr(code ErrorCode, format string, args ...any) error {
	return &ErrorInfo{Code: code, Message: fmt.Sprintf(format, args...)}
}

func IsNotFoundError(err error) bool {
	return IsError(err, NotFound)
}

func IsAlreadyExistsError(err error) bool {
	return IsError(err, AlreadyExists)
}

func IsDBConflictError(err error) bool {
	return IsError(err, DBConflict)
}

// IsFatalError reports whether err is an operational condition that
// needs operator attention (as opposed to a user-facing rejection).
func IsFatalError(err error) bool {
	return IsError(err, InsufficientLiquidity) ||
		IsError(err, Inconsistency) ||
		IsError(err, LockTimeout) ||
		IsError(err, DBConflict)
}

func IsError(err error, ofType ErrorCode) bool {
	if e, ok := err.(*ErrorInfo); ok {
		return e.Code == ofType
	}
	return false
}
