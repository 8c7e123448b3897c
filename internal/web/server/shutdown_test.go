package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShutdown(t *testing.T) *GracefulShutdown {
	t.Helper()

	config := DefaultConfig(okHandler())
	config.Address = "127.0.0.1:0"
	srv, err := New(config)
	require.NoError(t, err)

	sc := DefaultShutdownConfig()
	sc.Timeout = time.Second
	return NewGracefulShutdown(srv, sc)
}

func TestShutdownRunsHooks(t *testing.T) {
	gs := newTestShutdown(t)

	var order []string
	gs.RegisterHook(func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	gs.RegisterHook(func(ctx context.Context) error {
		order = append(order, "second")
		return nil
	})

	require.NoError(t, gs.Shutdown())
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestShutdownContinuesPastFailedHook(t *testing.T) {
	gs := newTestShutdown(t)

	var secondRan bool
	gs.RegisterHook(func(ctx context.Context) error {
		return errors.New("flush failed")
	})
	gs.RegisterHook(func(ctx context.Context) error {
		secondRan = true
		return nil
	})

	require.NoError(t, gs.Shutdown())
	assert.True(t, secondRan)
}

func TestShutdownIsIdempotent(t *testing.T) {
	gs := newTestShutdown(t)

	var runs int
	gs.RegisterHook(func(ctx context.Context) error {
		runs++
		return nil
	})

	require.NoError(t, gs.Shutdown())
	require.NoError(t, gs.Shutdown())
	assert.Equal(t, 1, runs)
}

func TestWaitUnblocksAfterShutdown(t *testing.T) {
	gs := newTestShutdown(t)

	done := make(chan error, 1)
	go func() {
		done <- gs.Wait()
	}()

	require.NoError(t, gs.Shutdown())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return")
	}
}
