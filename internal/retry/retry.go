// Package retry wraps fallible calls against the local model backend with
// bounded attempts, exponential backoff, and a best-effort recovery hook
// for relaunching the backend process.
package retry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMaxAttempts is the attempt budget used when Options leaves
// MaxAttempts at zero.
const DefaultMaxAttempts = 3

// RecoveryHook is invoked (fire and forget) when an attempt fails with a
// connection-level error, to try to bring the backend process back up.
// Its own failure never aborts the retry loop.
type RecoveryHook func(ctx context.Context) error

// ExhaustedError reports that every attempt failed.  It deliberately does
// not carry the last underlying error: callers only learn how many
// attempts were spent.
type ExhaustedError struct {
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("operation failed after %d attempts", e.Attempts)
}

// Options configures an executor.
type Options struct {
	MaxAttempts int
	Recovery    RecoveryHook
	Logger      zerolog.Logger

	// Sleep overrides the backoff sleeper; tests use it to avoid real
	// delays.  Nil means sleep for real.
	Sleep func(ctx context.Context, d time.Duration)
}

// Do runs op up to MaxAttempts times, sleeping 2^attempt seconds after the
// attempt numbered `attempt` fails (starting at 1).  Connection failures
// additionally trigger the recovery hook in a background goroutine.  The
// backoff sleep suspends only the current turn's goroutine.
func Do[T any](ctx context.Context, opts Options, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		opts.Logger.Warn().Int("attempt", attempt).Err(err).Msg("attempt failed")

		if isConnectionFailure(err) && opts.Recovery != nil {
			hook := opts.Recovery
			go func() {
				if rerr := hook(context.Background()); rerr != nil {
					opts.Logger.Error().Err(rerr).Msg("backend recovery failed")
				}
			}()
		}

		if attempt < maxAttempts {
			sleep(ctx, time.Duration(1<<attempt)*time.Second)
			if ctx.Err() != nil {
				return zero, ctx.Err()
			}
		}
	}
	return zero, &ExhaustedError{Attempts: maxAttempts}
}

// isConnectionFailure recognizes errors that indicate the backend process
// is not accepting connections at all, as opposed to a bad response.
func isConnectionFailure(err error) bool {
	msg := err.Error()
	for _, marker := range []string{
		"connection refused",
		"ECONNREFUSED",
		"fetch failed",
		"no such host",
		"connect: ",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
