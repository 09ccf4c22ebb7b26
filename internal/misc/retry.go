package misc

import (
	"context"
	"time"
)

// Backoff lists the waits between attempts. Its length bounds the number of
// retries.
type Backoff []time.Duration

// DefaultBackoff is used when connecting to backing services at startup.
var DefaultBackoff = Backoff{
	1 * time.Second,
	3 * time.Second,
	5 * time.Second,
}

// Notify is called before each wait with the error of the failed attempt.
type Notify func(attempt int, err error, wait time.Duration)

// Retry runs op until it succeeds, fails with an error isRetryable rejects,
// the backoff is exhausted or ctx is done.
func Retry(ctx context.Context, b Backoff, isRetryable func(error) bool, op func(context.Context) error, notify Notify) error {
	var err error
	for i := 0; ; i++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i >= len(b) || !isRetryable(err) {
			return err
		}
		if notify != nil {
			notify(i+1, err, b[i])
		}
		t := time.NewTimer(b[i])
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
