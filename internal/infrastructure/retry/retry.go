package retry

import (
	"context"
	"fmt"
	"time"
)

// Classifier decides whether an error is worth another attempt
type Classifier func(error) bool

// ExhaustedError reported when every attempt failed with a retryable error
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %s", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Policy bounded retry with a fixed wait between attempts. Classify decides
// retryability so the policy stays independent of any storage engine's
// error codes
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
	Classify    Classifier
}

// Do run op until it succeeds, fails with a non-retryable error, or the
// attempt budget is spent. Non-retryable errors are returned as-is
func (p *Policy) Do(ctx context.Context, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var last error
	for i := 0; i < attempts; i++ {
		if i > 0 && p.Backoff > 0 {
			select {
			case <-time.After(p.Backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		last = op(ctx)
		if last == nil {
			return nil
		}
		if p.Classify == nil || !p.Classify(last) {
			return last
		}
	}
	return &ExhaustedError{Attempts: attempts, Last: last}
}
