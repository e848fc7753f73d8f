package api

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error codes the Krist API is known to return
const (
	CodeInvalidParameter    = "invalid_parameter"
	CodeTransactionNotFound = "transaction_not_found"
	CodeNameNotFound        = "name_not_found"
	CodeAddressNotFound     = "address_not_found"
	CodeRateLimitHit        = "rate_limit_hit"
)

// APIError is a failure reported by the server with a machine code
type APIError struct {
	Code    string
	Message string
	Status  int

	// Parameter is set for invalid_parameter errors
	Parameter string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("krist api: %s (%s)", e.Code, e.Message)
	}
	return "krist api: " + e.Code
}

// NetworkError is a transport failure or a response the client could not
// make sense of.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: http %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is an APIError with the given code
func IsCode(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// IsNotFound reports whether err is one of the not-found codes
func IsNotFound(err error) bool {
	return IsCode(err, CodeNameNotFound) ||
		IsCode(err, CodeTransactionNotFound) ||
		IsCode(err, CodeAddressNotFound)
}
