package llm

import (
	"context"
	"errors"
)

// ErrUnavailable marks a transient upstream failure that is safe to retry.
var ErrUnavailable = errors.New("generation service unavailable")

// Client generates text from a prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
