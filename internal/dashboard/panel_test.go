package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPanel_InitialState(t *testing.T) {
	p := NewPanel("test", func(s string) bool { return s == "" })

	state := p.State()

	assert.False(t, state.Loading)
	assert.False(t, state.Empty)
	assert.Empty(t, state.Error)
	assert.Zero(t, state.Generation)
}

func TestPanel_DiscardsSupersededResult(t *testing.T) {
	p := NewPanel("test", func(s string) bool { return s == "" })
	ctx := context.Background()

	started := make(chan struct{})
	done := make(chan bool)
	var staleErr error
	go func() {
		done <- p.Load(ctx, 1, func(ctx context.Context) (string, error) {
			close(started)
			<-ctx.Done()
			staleErr = ctx.Err()
			return "stale", nil
		})
	}()
	<-started

	committed := p.Load(ctx, 1, func(context.Context) (string, error) {
		return "fresh", nil
	})

	assert.True(t, committed)
	assert.False(t, <-done)
	assert.ErrorIs(t, staleErr, context.Canceled)

	state := p.State()
	assert.Equal(t, "fresh", state.Data)
	assert.Equal(t, uint64(2), state.Generation)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
}

func TestPanel_ErrorIsTerminalUntilNextLoad(t *testing.T) {
	p := NewPanel("test", func(s string) bool { return s == "" })
	ctx := context.Background()

	p.Load(ctx, 1, func(context.Context) (string, error) { return "old", nil })
	p.Load(ctx, 1, func(context.Context) (string, error) { return "", errors.New("backend down") })

	state := p.State()
	assert.Equal(t, "backend down", state.Error)
	assert.Empty(t, state.Data)
	assert.False(t, state.Empty)
	assert.False(t, state.Loading)

	p.Load(ctx, 1, func(context.Context) (string, error) { return "new", nil })

	state = p.State()
	assert.Empty(t, state.Error)
	assert.Equal(t, "new", state.Data)
}

func TestPanel_EmptyResult(t *testing.T) {
	p := NewPanel("test", func(s []int) bool { return len(s) == 0 })

	require.True(t, p.Load(context.Background(), 1, func(context.Context) ([]int, error) {
		return []int{}, nil
	}))

	state := p.State()
	assert.True(t, state.Empty)
	assert.Empty(t, state.Error)
	assert.False(t, state.UpdatedAt.IsZero())
}

func TestPanel_IgnoresOlderSelectionVersion(t *testing.T) {
	p := NewPanel("test", func(s string) bool { return s == "" })
	ctx := context.Background()

	require.True(t, p.Load(ctx, 2, func(context.Context) (string, error) { return "B", nil }))

	called := false
	committed := p.Load(ctx, 1, func(context.Context) (string, error) {
		called = true
		return "A", nil
	})

	assert.False(t, committed)
	assert.False(t, called)

	state := p.State()
	assert.Equal(t, "B", state.Data)
	assert.Equal(t, uint64(2), state.Version)
	assert.Equal(t, uint64(1), state.Generation)
}

func TestPanel_NewerVersionCancelsOlderInFlight(t *testing.T) {
	p := NewPanel("test", func(s string) bool { return s == "" })
	ctx := context.Background()

	started := make(chan struct{})
	done := make(chan bool)
	go func() {
		done <- p.Load(ctx, 1, func(ctx context.Context) (string, error) {
			close(started)
			<-ctx.Done()
			return "A", nil
		})
	}()
	<-started

	require.True(t, p.Load(ctx, 2, func(context.Context) (string, error) { return "B", nil }))
	assert.False(t, <-done)
	assert.Equal(t, "B", p.State().Data)
}
