package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryRead_RetriesPersistenceFailures(t *testing.T) {
	calls := 0
	got, err := retryRead(context.Background(), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, persistenceError("flaky read", errors.New("connection reset"))
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestRetryRead_GivesUpAfterMaxTries(t *testing.T) {
	calls := 0
	_, err := retryRead(context.Background(), func() (int, error) {
		calls++
		return 0, persistenceError("down", errors.New("no route to host"))
	})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, readMaxTries, calls)
}

func TestRetryRead_DomainErrorsAreNotRetried(t *testing.T) {
	calls := 0
	_, err := retryRead(context.Background(), func() (int, error) {
		calls++
		return 0, notFound("circle", 1)
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, calls)
}
