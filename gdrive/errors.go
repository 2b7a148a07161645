package gdrive

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// 403s are only retryable when Google tags them with one of the rate-limit
// reasons - a plain 403 is a permissions problem and retrying it is pointless.
var rateLimitReasons = []string{
	"rateLimitExceeded",
	"userRateLimitExceeded",
	"sharingRateLimitExceeded",
}

// APIError is the error type for everything that crosses the Google API
// boundary. It carries the operation name and enough request context to make
// the worksheet audit log useful on its own.
type APIError struct {
	Op         string
	FileID     string
	Email      string
	Role       string
	StatusCode int
	Reasons    []string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%v", e.Op)

	if e.FileID != "" {
		fmt.Fprintf(&b, " file:%v", e.FileID)
	}

	if e.Email != "" {
		fmt.Fprintf(&b, " email:%v", e.Email)
	}

	if e.Role != "" {
		fmt.Fprintf(&b, " role:%v", e.Role)
	}

	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " status:%v", e.StatusCode)
	}

	if len(e.Reasons) > 0 {
		fmt.Fprintf(&b, " reasons:%v", strings.Join(e.Reasons, ","))
	}

	if e.Message != "" {
		fmt.Fprintf(&b, ": %v", e.Message)
	}

	return b.String()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError wraps err with the operation name, lifting the HTTP status,
// reason codes and message out of a googleapi.Error if there is one.
func NewAPIError(op string, err error) *APIError {
	e := APIError{
		Op:      op,
		Message: err.Error(),
		Err:     err,
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		e.StatusCode = gerr.Code
		e.Message = gerr.Message

		for _, item := range gerr.Errors {
			e.Reasons = append(e.Reasons, item.Reason)
		}
	}

	return &e
}

// IsRateLimited classifies an error as retryable: a 429, or a 403 carrying
// one of the known rate-limit reasons. Everything else is terminal.
func IsRateLimited(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}

	if gerr.Code == 429 {
		return true
	}

	if gerr.Code != 403 {
		return false
	}

	for _, reason := range rateLimitReasons {
		for _, item := range gerr.Errors {
			if item.Reason == reason {
				return true
			}
		}

		if strings.Contains(gerr.Message, reason) {
			return true
		}
	}

	return false
}
