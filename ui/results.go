package ui

import (
	"github.com/pkg/errors"

	"krist-explorer/api"
	"krist-explorer/listing"
)

// Status is what a listing area shows
type Status int

const (
	StatusLoading Status = iota
	StatusError
	StatusEmpty
	StatusContent
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusEmpty:
		return "empty"
	default:
		return "content"
	}
}

// StatusOf picks the presentation state of a listing. A successful result
// with total 0 is always Empty. Stale content stays visible while a newer
// request is loading, and after it fails; the renderer then shows the error
// inline.
func StatusOf[T any](v listing.View[T]) Status {
	switch v.State.Status {
	case listing.StatusFailed:
		if !v.HasResult {
			return StatusError
		}
	case listing.StatusLoaded:
		if v.State.Result.Total == 0 && len(v.State.Result.Items) == 0 {
			return StatusEmpty
		}
		return StatusContent
	}

	if v.HasResult {
		if v.Result.Total == 0 && len(v.Result.Items) == 0 {
			return StatusEmpty
		}
		return StatusContent
	}
	return StatusLoading
}

// Severity of a result message
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

// Result is a user-facing outcome message
type Result struct {
	Severity Severity
	Title    string
	Message  string
}

// ResultFor maps an error to the message shown for it. Known API codes get
// dedicated messages; everything else is an unknown error.
func ResultFor(err error) Result {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case api.CodeInvalidParameter:
			msg := "The request contained an invalid value."
			if apiErr.Parameter != "" {
				msg = "The value given for " + apiErr.Parameter + " is not valid."
			}
			return Result{Severity: SeverityError, Title: "Invalid parameter", Message: msg}
		case api.CodeTransactionNotFound:
			return Result{Severity: SeverityError, Title: "Transaction not found", Message: "That transaction does not exist."}
		case api.CodeNameNotFound:
			return Result{Severity: SeverityError, Title: "Name not found", Message: "That name does not exist."}
		case api.CodeAddressNotFound:
			return Result{Severity: SeverityError, Title: "Address not found", Message: "That address has never been seen on the network."}
		case api.CodeRateLimitHit:
			return Result{Severity: SeverityWarning, Title: "Rate limited", Message: "The sync node is rate limiting requests. Try again shortly."}
		}
	}

	var verr *listing.ValidationError
	if errors.As(err, &verr) {
		return Result{Severity: SeverityWarning, Title: "Invalid input", Message: verr.Error()}
	}

	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return Result{Severity: SeverityError, Title: "Network error", Message: "Could not reach the sync node."}
	}

	return Result{Severity: SeverityError, Title: "Unknown error", Message: "An unknown error occurred."}
}

// TransactionResultFor is ResultFor for the transaction lookup, where an
// invalid parameter can only be the id.
func TransactionResultFor(err error) Result {
	if api.IsCode(err, api.CodeInvalidParameter) {
		return Result{Severity: SeverityError, Title: "Invalid transaction ID", Message: "Transaction IDs are positive whole numbers."}
	}
	return ResultFor(err)
}
