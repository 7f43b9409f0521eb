package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/picklr-io/stagehand/internal/logging"
)

// DefaultTimeout bounds a single resource operation. Place uploads can be
// large, so it is generous.
const DefaultTimeout = 30 * time.Minute

// DefaultRetryMax is how many times a throttled or failed platform call is retried.
const DefaultRetryMax = 3

// RetryPolicy controls how transient platform failures are retried.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxRetries: DefaultRetryMax,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// backoff doubles the base delay per attempt, caps it at MaxDelay and picks a
// random point in the upper half so that parallel workers spread out.
func (p *RetryPolicy) backoff(attempt int) time.Duration {
	d := p.BaseDelay << attempt
	if d <= 0 || d > p.MaxDelay {
		d = p.MaxDelay
	}
	half := d / 2
	if half <= 0 {
		return d
	}
	return half + rand.N(half)
}

// WithTimeout derives the context for one resource operation.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// RetryWithBackoff calls fn until it succeeds, returns an error shouldRetry
// rejects, or the policy runs out of retries.
func RetryWithBackoff(ctx context.Context, policy *RetryPolicy, fn func() error, shouldRetry func(error) bool) error {
	if policy == nil {
		policy = DefaultRetryPolicy()
	}

	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !shouldRetry(err) {
			return err
		}
		if attempt == policy.MaxRetries {
			return fmt.Errorf("max retries (%d) exceeded: %w", policy.MaxRetries, err)
		}

		delay := policy.backoff(attempt)
		logging.Warn("platform call failed, retrying", "attempt", attempt+1, "delay", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// temporary is implemented by platform errors that know whether a retry can help.
type temporary interface {
	Temporary() bool
}

var transientMessages = []string{
	"too many requests",
	"service unavailable",
	"internal server error",
	"bad gateway",
	"connection reset",
	"connection refused",
	"tls handshake",
	"i/o timeout",
	"temporary failure",
	"unexpected eof",
}

// IsTransientError reports whether err looks like throttling, a platform
// outage or a dropped connection. Cancellation is never transient.
func IsTransientError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var t temporary
	if errors.As(err, &t) {
		return t.Temporary()
	}

	msg := strings.ToLower(err.Error())
	for _, m := range transientMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
