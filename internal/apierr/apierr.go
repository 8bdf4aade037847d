package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the one failure currency of the marketplace core. Every guard in the
// services maps to exactly one Code, and a failed operation leaves no partial
// state behind.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

const (
	CodeAlreadyRegistered   = "ALREADY_REGISTERED"
	CodeSellerExists        = "SELLER_EXISTS"
	CodeInsufficientDeposit = "INSUFFICIENT_DEPOSIT"
	CodeNotRegistered       = "NOT_REGISTERED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidArgument     = "INVALID_ARGUMENT"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodePaymentMismatch     = "PAYMENT_MISMATCH"
	CodeInvalidState        = "INVALID_STATE"
	CodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
)

func AlreadyRegistered(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, CodeAlreadyRegistered, fmt.Errorf(format, args...))
}

func SellerExists(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, CodeSellerExists, fmt.Errorf(format, args...))
}

func InsufficientDeposit(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodeInsufficientDeposit, fmt.Errorf(format, args...))
}

func NotRegistered(format string, args ...interface{}) *Error {
	return New(http.StatusForbidden, CodeNotRegistered, fmt.Errorf(format, args...))
}

func Unauthorized(format string, args ...interface{}) *Error {
	return New(http.StatusForbidden, CodeUnauthorized, fmt.Errorf(format, args...))
}

func NotFound(format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

func InvalidArgument(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodeInvalidArgument, fmt.Errorf(format, args...))
}

func InsufficientStock(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, CodeInsufficientStock, fmt.Errorf(format, args...))
}

func PaymentMismatch(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodePaymentMismatch, fmt.Errorf(format, args...))
}

func InvalidState(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, CodeInvalidState, fmt.Errorf(format, args...))
}

func InsufficientFunds(format string, args ...interface{}) *Error {
	return New(http.StatusPaymentRequired, CodeInsufficientFunds, fmt.Errorf(format, args...))
}

// CodeOf reports the stable code of err, or "" when err is not an *Error.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
