// Package submission keeps per-ticket in-flight state so two status
// submissions for the same ticket never race against one snapshot.
package submission

import (
	"context"
	"errors"
	"sync"
)

var ErrInFlight = errors.New("a submission for this ticket is already in flight")

// Guard hands out one lease per ticket at a time. Release is safe to call
// more than once.
type Guard interface {
	Acquire(ctx context.Context, ticketID string) (release func(), err error)
}

type MemoryGuard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{inflight: make(map[string]struct{})}
}

func (g *MemoryGuard) Acquire(ctx context.Context, ticketID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inflight[ticketID]; busy {
		return nil, ErrInFlight
	}
	g.inflight[ticketID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inflight, ticketID)
			g.mu.Unlock()
		})
	}, nil
}

func (g *MemoryGuard) InFlight(ticketID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inflight[ticketID]
	return busy
}
