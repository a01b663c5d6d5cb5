package calendar

import (
	"context"
	"errors"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"
)

// ErrorClass tells whether retrying a failed call may succeed.
type ErrorClass string

const (
	// Retryable failures are transient: rate limits, server errors, timeouts
	// and network trouble.
	Retryable ErrorClass = "retryable"
	// Fatal failures will fail again: bad requests, revoked credentials,
	// missing calendars.
	Fatal ErrorClass = "fatal"
)

var rateLimitReasons = map[string]struct{}{
	"rateLimitExceeded":     {},
	"userRateLimitExceeded": {},
}

// Classify returns the class of an error returned by the Calendar API.
// A nil error has no class.
func Classify(err error) ErrorClass {
	if err == nil {
		return ""
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return classifyAPIError(apiErr)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Retryable
	}
	if errors.Is(err, context.Canceled) {
		return Fatal
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return Retryable
	}
	return Fatal
}

func classifyAPIError(err *googleapi.Error) ErrorClass {
	switch {
	case err.Code == http.StatusTooManyRequests:
		return Retryable
	case err.Code >= http.StatusInternalServerError:
		return Retryable
	case err.Code == http.StatusForbidden && hasRateLimitReason(err):
		return Retryable
	default:
		return Fatal
	}
}

func hasRateLimitReason(err *googleapi.Error) bool {
	for _, item := range err.Errors {
		if _, ok := rateLimitReasons[item.Reason]; ok {
			return true
		}
	}
	return false
}
