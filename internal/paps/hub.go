package paps

import (
	"sync"
	"time"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/gateway"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/ownership"
)

// Hub hands out one Manager per signed-in identity and owns their
// lifecycle. Logout drops the manager; the idle sweeper reclaims managers
// whose sessions expired without an explicit logout.
type Hub struct {
	store    gateway.RowStore
	feed     gateway.ChangeFeed
	resolver *ownership.Resolver

	mu       sync.Mutex
	managers map[string]*Manager
}

func NewHub(store gateway.RowStore, feed gateway.ChangeFeed, resolver *ownership.Resolver) *Hub {
	return &Hub{
		store:    store,
		feed:     feed,
		resolver: resolver,
		managers: make(map[string]*Manager),
	}
}

// Get returns the manager for an identity, creating and starting it on
// first use. Passing a changed role or token re-runs ownership
// resolution; passing identical inputs is a no-op.
func (h *Hub) Get(email, role, token string) *Manager {
	email = ownership.Normalize(email)

	h.mu.Lock()
	m, ok := h.managers[email]
	if ok && m.Closed() {
		// Lost a race with the idle sweeper; a closed manager ignores
		// identity changes, so hand out a fresh one.
		ok = false
	}
	if !ok {
		m = NewManager(h.store, h.feed, h.resolver)
		h.managers[email] = m
	}
	h.mu.Unlock()

	m.SetIdentity(email, role, token)
	return m
}

// Drop closes and removes the identity's manager. Called on logout.
func (h *Hub) Drop(email string) {
	email = ownership.Normalize(email)

	h.mu.Lock()
	m, ok := h.managers[email]
	if ok {
		delete(h.managers, email)
	}
	h.mu.Unlock()

	if ok {
		m.Close()
	}
}

// SweepIdle closes managers untouched for longer than maxIdle and
// returns how many were reclaimed.
func (h *Hub) SweepIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	h.mu.Lock()
	var stale []*Manager
	for email, m := range h.managers {
		if m.IdleSince().Before(cutoff) {
			stale = append(stale, m)
			delete(h.managers, email)
		}
	}
	h.mu.Unlock()

	for _, m := range stale {
		m.Close()
	}
	return len(stale)
}
