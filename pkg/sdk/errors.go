package sdk

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped from API error codes. Use errors.Is() to check.
var (
	ErrInvalidDomain  = errors.New("invalid domain")
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrLLMUnavailable = errors.New("llm unavailable")
	ErrServer         = errors.New("server error")
)

// APIError carries the raw error response alongside the mapped sentinel.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	sentinel   error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
}

// Unwrap lets errors.Is match the mapped sentinel.
func (e *APIError) Unwrap() error { return e.sentinel }

func sentinelForCode(code string, status int) error {
	switch code {
	case "invalid_domain":
		return ErrInvalidDomain
	case "validation_failed", "bad_request":
		return ErrValidation
	case "unauthorized":
		return ErrUnauthorized
	case "llm_unavailable":
		return ErrLLMUnavailable
	}
	if status >= 500 {
		return ErrServer
	}
	return ErrValidation
}
