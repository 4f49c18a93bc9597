package wait

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntil(t *testing.T) {
	t.Run("returns as soon as the condition holds", func(t *testing.T) {
		calls := 0
		err := Until(context.Background(), "third call", time.Second, time.Millisecond, func(context.Context) (bool, error) {
			calls++
			return calls == 3, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("evaluates at least once with a zero timeout", func(t *testing.T) {
		calls := 0
		err := Until(context.Background(), "ready", 0, time.Millisecond, func(context.Context) (bool, error) {
			calls++
			return true, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("times out with a descriptive error", func(t *testing.T) {
		err := Until(context.Background(), "the banner", 30*time.Millisecond, 5*time.Millisecond, func(context.Context) (bool, error) {
			return false, nil
		})
		var te *TimeoutError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "the banner", te.Description)
		assert.GreaterOrEqual(t, te.Attempts, 2)
		assert.Contains(t, err.Error(), "the banner")
	})

	t.Run("stops on a condition error", func(t *testing.T) {
		boom := errors.New("boom")
		err := Until(context.Background(), "x", time.Second, time.Millisecond, func(context.Context) (bool, error) {
			return false, boom
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Until(ctx, "x", time.Second, time.Millisecond, func(context.Context) (bool, error) {
			return false, nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestProbeKeepsLastError(t *testing.T) {
	flaky := errors.New("detached")
	err := Probe(context.Background(), "row", 20*time.Millisecond, 5*time.Millisecond, func(context.Context) (bool, error) {
		return false, flaky
	})
	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, flaky)
}
