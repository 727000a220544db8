package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// PanelState is a point-in-time copy of one panel
type PanelState[T any] struct {
	Data       T         `json:"data"`
	Loading    bool      `json:"loading"`
	Error      string    `json:"error,omitempty"`
	Empty      bool      `json:"empty"`
	Generation uint64    `json:"generation"`
	Version    uint64    `json:"selection_version"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// Panel owns the fetch lifecycle of one dashboard widget.
// Each Load supersedes the previous one: the older fetch is cancelled and its
// result is discarded even if it completes. A Load for an older selection
// version than one already seen is ignored.
type Panel[T any] struct {
	name    string
	isEmpty func(T) bool

	mu         sync.Mutex
	data       T
	loading    bool
	err        error
	generation uint64
	version    uint64
	cancel     context.CancelFunc
	updatedAt  time.Time
}

// NewPanel creates a panel; isEmpty decides whether committed data renders as an empty state
func NewPanel[T any](name string, isEmpty func(T) bool) *Panel[T] {
	return &Panel[T]{name: name, isEmpty: isEmpty}
}

// Load runs fetch for the given selection version and commits its result if
// no newer Load started meanwhile. It reports whether the result was committed.
func (p *Panel[T]) Load(ctx context.Context, version uint64, fetch func(context.Context) (T, error)) bool {
	p.mu.Lock()
	if version < p.version {
		current := p.version
		p.mu.Unlock()
		logrus.Debugf("Skipping %s load for selection version %d, already at %d", p.name, version, current)
		return false
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	if p.cancel != nil {
		p.cancel()
	}
	p.version = version
	p.generation++
	gen := p.generation
	p.cancel = cancel
	p.loading = true
	p.mu.Unlock()

	data, err := fetch(fetchCtx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		cancel()
		logrus.Debugf("Discarding stale %s result (generation %d, current %d)", p.name, gen, p.generation)
		return false
	}

	p.cancel = nil
	cancel()
	p.loading = false
	p.updatedAt = time.Now()
	if err != nil {
		logrus.Errorf("Failed to load %s panel: %v", p.name, err)
		var zero T
		p.data = zero
		p.err = err
		return true
	}

	p.data = data
	p.err = nil
	return true
}

// State returns a snapshot of the panel
func (p *Panel[T]) State() PanelState[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := PanelState[T]{
		Data:       p.data,
		Loading:    p.loading,
		Generation: p.generation,
		Version:    p.version,
		UpdatedAt:  p.updatedAt,
	}
	if p.err != nil {
		state.Error = p.err.Error()
	}
	if !p.loading && p.err == nil && !p.updatedAt.IsZero() && p.isEmpty != nil {
		state.Empty = p.isEmpty(p.data)
	}
	return state
}
