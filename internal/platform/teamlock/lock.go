// Package teamlock serializes governance commands per team. Commands against
// different teams proceed in parallel; commands against the same team run one
// at a time, granted in arrival order.
package teamlock

import (
	"context"
	"sync"
)

// Guard maps team ids to mutual-exclusion slots with FIFO hand-off.
type Guard struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	held    bool
	waiters []chan struct{} // granted front-to-back
}

// NewGuard returns an empty Guard.
func NewGuard() *Guard {
	return &Guard{slots: make(map[string]*slot)}
}

// Acquire blocks until the caller holds the team's slot or ctx is done. On
// success it returns a release function that must be called exactly once; the
// slot then passes to the oldest waiter. On ctx cancellation or deadline the
// slot is not taken and ctx.Err() is returned.
func (g *Guard) Acquire(ctx context.Context, teamID string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	s, ok := g.slots[teamID]
	if !ok {
		s = &slot{}
		g.slots[teamID] = s
	}
	if !s.held {
		s.held = true
		g.mu.Unlock()
		return func() { g.release(teamID) }, nil
	}
	grant := make(chan struct{})
	s.waiters = append(s.waiters, grant)
	g.mu.Unlock()

	select {
	case <-grant:
		return func() { g.release(teamID) }, nil
	case <-ctx.Done():
		g.abandon(teamID, grant)
		return nil, ctx.Err()
	}
}

// release hands the slot to the oldest waiter, or frees it and reclaims the
// map entry when no one is waiting.
func (g *Guard) release(teamID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.slots[teamID]
	if !ok {
		return
	}
	if len(s.waiters) > 0 {
		next := s.waiters[0]
		s.waiters = s.waiters[1:]
		close(next)
		return
	}
	s.held = false
	delete(g.slots, teamID)
}

// abandon removes a cancelled waiter from the queue. If the grant raced with
// the cancellation and already fired, the slot is passed on instead of leaked.
func (g *Guard) abandon(teamID string, grant chan struct{}) {
	g.mu.Lock()
	s, ok := g.slots[teamID]
	if ok {
		for i, w := range s.waiters {
			if w == grant {
				s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
				g.mu.Unlock()
				return
			}
		}
	}
	g.mu.Unlock()
	// Not in the queue: the grant was already delivered. Take and immediately
	// release so the next waiter is not stranded.
	select {
	case <-grant:
		g.release(teamID)
	default:
	}
}
