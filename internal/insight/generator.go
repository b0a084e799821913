// Package insight wraps the generative text collaborator: insights for a
// passage of text and "did you know" facts for significant document pages.
package insight

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnavailable is returned when no generative provider is configured.
var ErrUnavailable = errors.New("insight: generative service not configured")

// ErrNoSignificantContent is returned when a page or document has nothing
// worth generating facts about.
var ErrNoSignificantContent = errors.New("insight: no significant content")

// Generator turns a prompt into model text.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Noop is the generator used when no provider is configured.
type Noop struct{}

func (Noop) Complete(context.Context, string) (string, error) { return "", ErrUnavailable }
func (Noop) Name() string                                      { return "off" }

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
