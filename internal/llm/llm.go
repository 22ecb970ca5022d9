package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ChatClient abstracts a chat-completion provider down to the single
// capability the suggestion generator needs.
type ChatClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("llm client not configured")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, system, user string) (string, error) {
	_ = ctx
	_ = system
	_ = user
	return "", ErrNotConfigured
}

// RateLimitError reports an upstream rate limit. ResetAt is zero when the
// provider did not supply a reset timestamp.
type RateLimitError struct {
	Message string
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return "rate limit exceeded: " + e.Message
	}
	return "rate limit exceeded"
}

// HumanMessage renders a caller-facing description, naming when service
// resumes if the provider supplied a reset timestamp.
func (e *RateLimitError) HumanMessage() string {
	if e.ResetAt.IsZero() {
		return "The language model provider is rate limiting requests. Please try again later."
	}
	return fmt.Sprintf("The language model provider is rate limiting requests. Service resumes at %s.",
		e.ResetAt.UTC().Format(time.RFC1123))
}

// IsRateLimit reports whether err is (or wraps) a RateLimitError.
func IsRateLimit(err error) (*RateLimitError, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}
