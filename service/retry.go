package service

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const readMaxTries = 3

func newReadBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	return b
}

// retryRead retries idempotent store reads that failed with ErrPersistence.
// Any other error is returned immediately. Never wrap writes with this.
func retryRead[T any](ctx context.Context, op func() (T, error)) (T, error) {
	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !errors.Is(err, ErrPersistence) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(newReadBackOff()), backoff.WithMaxTries(readMaxTries))
}
