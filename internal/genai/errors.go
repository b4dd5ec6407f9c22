package genai

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// ErrorAction is the decision taken after a provider error.
type ErrorAction int

const (
	// ActionRetry retries the same provider after backoff.
	ActionRetry ErrorAction = iota
	// ActionFallback moves straight to the next provider.
	ActionFallback
	// ActionFail aborts the chain; the error is permanent.
	ActionFail
)

func (a ErrorAction) String() string {
	switch a {
	case ActionRetry:
		return "retry"
	case ActionFallback:
		return "fallback"
	case ActionFail:
		return "fail"
	default:
		return "unknown"
	}
}

// ProviderError carries the HTTP status of a failed provider call so
// classification does not have to parse message text.
type ProviderError struct {
	Err        error
	Provider   Provider
	StatusCode int
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return e.Err.Error() + " (status: " + strconv.Itoa(e.StatusCode) + ")"
	}
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ClassifyError maps a provider error to the action the chain should take.
// Transient errors (429, 5xx, network) retry; quota exhaustion skips
// directly to the next provider; client errors fail immediately.
func ClassifyError(err error) ErrorAction {
	if err == nil {
		return ActionFail
	}
	if errors.Is(err, context.Canceled) {
		return ActionFail
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ActionRetry
	}

	var perr *ProviderError
	if errors.As(err, &perr) && perr.StatusCode > 0 {
		return classifyStatusCode(perr.StatusCode)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "quota", "daily limit", "billing"):
		return ActionFallback
	case containsAny(msg, "429", "rate limit", "too many requests", "resource_exhausted"):
		return ActionRetry
	case containsAny(msg, "500", "502", "503", "504", "unavailable", "overloaded",
		"internal server error", "bad gateway", "gateway timeout"):
		return ActionRetry
	case containsAny(msg, "timeout", "deadline", "connection"):
		return ActionRetry
	case containsAny(msg, "400", "invalid", "bad request", "malformed"):
		return ActionFail
	case containsAny(msg, "401", "unauthorized", "unauthenticated", "invalid api key"):
		return ActionFail
	case containsAny(msg, "403", "forbidden", "permission denied"):
		return ActionFail
	case containsAny(msg, "404", "not found"):
		return ActionFail
	default:
		// Unknown errors get one more chance before the fallback takes over.
		return ActionRetry
	}
}

func classifyStatusCode(status int) ErrorAction {
	switch {
	case status == http.StatusTooManyRequests,
		status == http.StatusRequestTimeout,
		status >= 500:
		return ActionRetry
	case status >= 400:
		return ActionFail
	default:
		return ActionRetry
	}
}

// IsPermanent reports whether the error should stop the whole chain.
func IsPermanent(err error) bool {
	return ClassifyError(err) == ActionFail
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
