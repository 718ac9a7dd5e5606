package async

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooldownFirstAcquireFree(t *testing.T) {
	c := NewCooldown(time.Hour, CooldownFail)
	require.NoError(t, c.Acquire(context.Background()))
}

func TestCooldownFailMode(t *testing.T) {
	c := NewCooldown(time.Hour, CooldownFail)
	require.NoError(t, c.Acquire(context.Background()))
	err := c.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrCooldown)
}

func TestCooldownWaitModeSpacing(t *testing.T) {
	interval := 100 * time.Millisecond
	c := NewCooldown(interval, CooldownWait)
	require.NoError(t, c.Acquire(context.Background()))

	start := time.Now()
	require.NoError(t, c.Acquire(context.Background()))
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, interval-5*time.Millisecond,
		"second acquire must wait out the interval")
}

func TestCooldownWaitModeCancel(t *testing.T) {
	c := NewCooldown(time.Hour, CooldownWait)
	require.NoError(t, c.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithTimeoutCompletes(t *testing.T) {
	err := WithTimeout(context.Background(), time.Second, func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)
}

func TestWithTimeoutExpires(t *testing.T) {
	err := WithTimeout(context.Background(), 20*time.Millisecond, func(ctx context.Context) error {
		time.Sleep(300 * time.Millisecond)
		return nil
	})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestWithTimeoutWorkError(t *testing.T) {
	boom := errors.New("boom")
	err := WithTimeout(context.Background(), time.Second, func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}
