// Package transport delivers a user message to the completion service and brings back
// the reply text. Failures never reach the caller: every implementation substitutes
// FallbackReply. HTTP and WebSocket log the cause; Func leaves that to the wrapped
// function, which sees the error first.
package transport

import (
	"context"
	"errors"
	"fmt"
)

// FallbackReply is shown in place of a reply whenever the request fails
const FallbackReply = "Oops, sorry... An error occurred."

// ErrNoResponse is returned when the reply body has no usable response field
var ErrNoResponse = errors.New("reply has no response field")

// ErrReplyTooLarge is returned when a reply body exceeds the read limit
var ErrReplyTooLarge = errors.New("reply too large")

// StatusError reports a non-2xx reply
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Transport sends one message and returns the reply, or FallbackReply on any failure
type Transport interface {
	Send(ctx context.Context, message string) string
}

// Func adapts a fallible function into a Transport. The error is not logged here.
type Func func(ctx context.Context, message string) (string, error)

// Send implements Transport
func (f Func) Send(ctx context.Context, message string) string {
	reply, err := f(ctx, message)
	if err != nil {
		return FallbackReply
	}
	return reply
}

// Echo is a Transport that answers every message with itself. Used for offline runs.
var Echo Transport = Func(func(_ context.Context, message string) (string, error) {
	return message, nil
})
