package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JaimeStill/counsel/pkg/formatting"
)

// Validator is implemented by structured results that check their own
// invariants after decoding.
type Validator interface {
	Validate() error
}

// Structured issues req and decodes the reply into T. Decoding accepts raw
// JSON or JSON inside a markdown fence. When *T implements Validator the
// decoded value is validated before it is returned.
func Structured[T any](ctx context.Context, c Client, req Request) (T, error) {
	var zero T

	text, err := c.Generate(ctx, req)
	if err != nil {
		return zero, err
	}

	result, err := formatting.Parse[T](text)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrSchemaViolation, err)
	}

	if v, ok := any(&result).(Validator); ok {
		if err := v.Validate(); err != nil {
			return zero, fmt.Errorf("%w: %w", ErrSchemaViolation, err)
		}
	}

	return result, nil
}

// Text issues req and returns the trimmed reply, failing on an empty reply.
func Text(ctx context.Context, c Client, req Request) (string, error) {
	text, err := c.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

type timeoutClient struct {
	next    Client
	timeout time.Duration
}

// WithTimeout wraps c so every call runs under its own deadline. A
// non-positive timeout returns c unchanged.
func WithTimeout(c Client, timeout time.Duration) Client {
	if timeout <= 0 {
		return c
	}
	return &timeoutClient{next: c, timeout: timeout}
}

func (t *timeoutClient) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Generate(ctx, req)
}

func (t *timeoutClient) GenerateWithTools(ctx context.Context, messages []Message, tools []Tool) (*Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.GenerateWithTools(ctx, messages, tools)
}

// Close closes the wrapped client when it holds resources.
func (t *timeoutClient) Close() error {
	if c, ok := t.next.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
