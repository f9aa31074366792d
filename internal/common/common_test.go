package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorHelpers(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
		text     string
	}{
		{NotFound("expense %d", 7), ErrNotFound, "not found: expense 7"},
		{AccessDenied("category %d", 3), ErrAccessDenied, "access denied: category 3"},
		{Conflict("budget exists"), ErrConflict, "conflict: budget exists"},
		{InvalidInput("amount must be positive"), ErrInvalidInput, "invalid input: amount must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.text, tt.err.Error())
			assert.True(t, IsDomainError(tt.err))
			assert.False(t, IsRetryable(tt.err))
		})
	}

	assert.False(t, IsDomainError(errors.New("disk full")))
}

func TestUserError(t *testing.T) {
	inner := NotFound("expense 1")
	err := NewUserError("Could not load expense", inner)

	assert.Equal(t, "Could not load expense: not found: expense 1", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "Could not load expense", userErr.UserMessage)
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()
	opts := RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			if calls < 3 {
				return errors.New("temporary")
			}
			return nil
		}, opts)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			return errors.New("still broken")
		}, opts)
		require.ErrorIs(t, err, ErrMaxRetries)
		assert.Equal(t, 3, calls)
	})

	t.Run("domain errors are not retried", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			return InvalidInput("bad")
		}, opts)
		require.ErrorIs(t, err, ErrInvalidInput)
		assert.Equal(t, 1, calls)
	})

	t.Run("non-retryable errors stop immediately", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			return &RetryableError{Err: errors.New("forbidden"), Retryable: false}
		}, opts)
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("context cancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err := WithRetry(cancelled, func() error {
			return errors.New("temporary")
		}, RetryOptions{MaxAttempts: 5, InitialDelay: time.Second})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer

	h, err := NewHandler(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)
	slog.New(h).Info("created expense", "id", 12)
	assert.Contains(t, buf.String(), `"id":12`)

	_, err = NewHandler(&buf, slog.LevelInfo, "xml")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	_, err = ParseLevel("loud")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(&buf, slog.LevelInfo, "console")
	require.NoError(t, err)
	logger := slog.New(h)

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, LoggerFrom(ctx))
	assert.Same(t, slog.Default(), LoggerFrom(context.Background()))

	LogError(ctx, errors.New("boom"), "export failed", Fields{"month": "2025-03"})
	assert.Contains(t, buf.String(), "export failed")
	assert.Contains(t, buf.String(), "month=2025-03")
}

func TestMatchRegex(t *testing.T) {
	ok, err := MatchRegex(`^#[0-9A-Fa-f]{6}$`, "#FF5733")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = MatchRegex(`^#[0-9A-Fa-f]{6}$`, "red")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = MatchRegex(`([`, "x")
	assert.Error(t, err)
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, at, FixedClock{T: at}.Now())
}
