// Package paps owns the live, locally cached PAP collection for one
// signed-in identity and the write-through operations against the remote
// row store.
package paps

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/gateway"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/ownership"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/paps/domain"
)

// ResolveState tracks the ownership axis of the manager's state machine.
type ResolveState int

const (
	Unresolved ResolveState = iota
	Resolving
	Resolved
)

func (s ResolveState) String() string {
	switch s {
	case Resolving:
		return "resolving"
	case Resolved:
		return "resolved"
	default:
		return "unresolved"
	}
}

// LoadState tracks the collection axis.
type LoadState int

const (
	Loading LoadState = iota
	Ready
	LoadError
)

func (s LoadState) String() string {
	switch s {
	case Ready:
		return "ready"
	case LoadError:
		return "error"
	default:
		return "loading"
	}
}

// Status is a point-in-time snapshot of both state axes.
type Status struct {
	Resolve    ResolveState
	Load       LoadState
	Error      string
	Resolution ownership.Resolution
}

// Manager maintains the cached collection of PAP rows visible to one
// identity. All reads and mutations go through it; the cache is never
// mutated by callers. Remote errors are retryable messages, never fatal
// to the session; re-fetch is idempotent and always wins over optimistic
// merges as the source of truth.
type Manager struct {
	store    gateway.RowStore
	feed     gateway.ChangeFeed
	resolver *ownership.Resolver

	mu       sync.Mutex
	email    string
	role     string
	token    string
	status   Status
	cache    map[string]domain.PAP
	sub      gateway.Subscription
	gen      int
	lastUsed time.Time
	closed   bool
}

func NewManager(store gateway.RowStore, feed gateway.ChangeFeed, resolver *ownership.Resolver) *Manager {
	return &Manager{
		store:    store,
		feed:     feed,
		resolver: resolver,
		cache:    make(map[string]domain.PAP),
		lastUsed: time.Now(),
	}
}

// SetIdentity points the manager at a (possibly new) identity. Both state
// axes reset, any open subscription is torn down, and resolution, fetch,
// and re-subscription run in the background. In-flight work from a
// previous identity is superseded by the generation bump and its results
// are discarded. A no-op when nothing changed.
func (m *Manager) SetIdentity(email, role, token string) {
	email = ownership.Normalize(email)

	m.mu.Lock()
	if m.closed || (m.email == email && m.role == role && m.token == token) {
		m.mu.Unlock()
		return
	}
	m.email, m.role, m.token = email, role, token
	m.gen++
	gen := m.gen
	m.teardownLocked()
	m.cache = make(map[string]domain.PAP)
	m.status = Status{Resolve: Resolving, Load: Loading}
	m.mu.Unlock()

	if email == "" {
		m.commit(gen, func() {
			m.status = Status{Resolve: Resolved, Load: Ready, Resolution: ownership.Resolution{State: ownership.StateEmpty}}
		})
		return
	}

	go m.run(gen, email, role, token)
}

// run performs one resolution + fetch + subscribe pass. Every commit is
// keyed on gen so a superseded pass (logout, re-login) cannot write state.
func (m *Manager) run(gen int, email, role, token string) {
	ctx := context.Background()

	res := m.resolver.Resolve(ctx, email, role, token)
	ok := m.commit(gen, func() {
		m.status.Resolve = Resolved
		m.status.Resolution = res
	})
	if !ok {
		return
	}

	if len(res.OwnerEmails) == 0 {
		m.commit(gen, func() { m.status.Load = Ready })
		return
	}

	m.fetch(ctx, gen, res.OwnerEmails)
	m.subscribe(ctx, gen, res)
}

// fetch queries all rows for the owner set and replaces the cache. On
// error the previous cache stays in place and the error is surfaced as a
// retryable message.
func (m *Manager) fetch(ctx context.Context, gen int, owners []string) {
	rows, err := m.store.QueryRows(ctx, owners)
	if err != nil {
		m.commit(gen, func() {
			m.status.Load = LoadError
			m.status.Error = err.Error()
		})
		return
	}

	next := make(map[string]domain.PAP, len(rows))
	for _, r := range rows {
		rec := domain.FromRow(r)
		next[rec.ID] = rec
	}

	m.commit(gen, func() {
		m.cache = next
		m.status.Load = Ready
		m.status.Error = ""
	})
}

// subscribe opens the single live change channel for the resolved owner
// set: scoped to the owner when there is exactly one, unscoped otherwise
// (the feed cannot filter on membership, so irrelevant notifications are
// tolerated and discarded by the re-fetch's own owner filter).
func (m *Manager) subscribe(ctx context.Context, gen int, res ownership.Resolution) {
	if m.feed == nil {
		return
	}

	scope := gateway.Scope{}
	if len(res.OwnerEmails) == 1 {
		scope.Owner = res.OwnerEmails[0]
	}

	sub, err := m.feed.Subscribe(ctx, scope)
	if err != nil {
		log.Printf("[warn] operation=subscribe owners=%d message=change feed unavailable, relying on manual refresh error=%v", len(res.OwnerEmails), err)
		return
	}

	installed := m.commit(gen, func() { m.sub = sub })
	if !installed {
		_ = sub.Close()
		return
	}

	go func() {
		for range sub.Events() {
			// Any notification means re-fetch; the fetch's owner filter
			// excludes out-of-scope rows from the unscoped feed.
			if !m.current(gen) {
				return
			}
			m.fetch(ctx, gen, res.OwnerEmails)
		}
	}()
}

// Refetch re-queries the collection for the current owner set. Skipped
// when no owners are resolved.
func (m *Manager) Refetch(ctx context.Context) {
	m.mu.Lock()
	gen := m.gen
	owners := m.status.Resolution.OwnerEmails
	m.lastUsed = time.Now()
	m.mu.Unlock()

	if len(owners) == 0 {
		return
	}
	m.fetch(ctx, gen, owners)
}

// Create stores a draft under the resolved shared owner. The draft's own
// owner field is ignored. Fails with domain.ErrOwnerUnresolved while
// resolution is in flight; callers retry once resolution completes.
func (m *Manager) Create(ctx context.Context, draft domain.PAP) (string, error) {
	if err := domain.ValidateDraft(&draft); err != nil {
		return "", err
	}
	if err := domain.NormalizeDraft(&draft, time.Now().UTC()); err != nil {
		return "", err
	}

	m.mu.Lock()
	gen := m.gen
	owners := m.status.Resolution.OwnerEmails
	shared := m.status.Resolution.SharedOwnerEmail
	resolved := m.status.Resolve == Resolved
	m.lastUsed = time.Now()
	m.mu.Unlock()

	if !resolved || shared == "" {
		return "", domain.ErrOwnerUnresolved
	}

	draft.OwnerEmail = shared
	if draft.RiskExposure == "" {
		draft.RiskExposure = domain.ExposureLow
	}

	id, err := m.store.InsertRow(ctx, draft.ToRow())
	if err != nil {
		return "", err
	}

	// Re-fetch so the server-assigned id and timestamps land in the
	// cache without waiting for the subscription round-trip.
	m.fetch(ctx, gen, owners)
	return id, nil
}

// Patch applies a partial change. Unrecognized fields are silently
// dropped; a nil value writes NULL. Completion invariants and the
// actuals freeze on completed records are enforced before the remote
// call. On remote success the same patch is merged
// optimistically into the cache; the next re-fetch remains authoritative.
func (m *Manager) Patch(ctx context.Context, id string, patch domain.Patch) error {
	patch, err := domain.NormalizeCompletion(patch, time.Now().UTC())
	if err != nil {
		return err
	}

	cols := patch.Columns()
	if len(cols) == 0 {
		return nil
	}

	// Actuals are frozen on completed records unless the same patch
	// reopens them.
	if patch.EditsActuals() {
		m.mu.Lock()
		rec, inCache := m.cache[id]
		m.mu.Unlock()

		reopen := false
		if v, touched := patch[domain.FieldCompleted]; touched {
			b, ok := v.(bool)
			reopen = ok && !b
		}
		if inCache && rec.Completed && !reopen {
			return domain.ErrActualsLocked
		}
	}

	if err := m.store.UpdateRow(ctx, id, cols); err != nil {
		return err
	}

	m.mu.Lock()
	if rec, ok := m.cache[id]; ok {
		m.cache[id] = patch.Apply(rec)
	}
	m.lastUsed = time.Now()
	m.mu.Unlock()
	return nil
}

// Delete removes a row remotely, then from the cache.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.store.DeleteRow(ctx, id); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.cache, id)
	m.lastUsed = time.Now()
	m.mu.Unlock()
	return nil
}

// Snapshot returns the cached collection ordered by creation time
// ascending, plus the current status.
func (m *Manager) Snapshot() ([]domain.PAP, Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastUsed = time.Now()
	out := make([]domain.PAP, 0, len(m.cache))
	for _, rec := range m.cache {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, m.status
}

// Status returns both state axes without copying the collection.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// WaitResolved blocks until resolution completes or the deadline passes.
// Intended for tests and for handlers that would rather wait briefly than
// bounce a create during initial load.
func (m *Manager) WaitResolved(ctx context.Context) bool {
	for {
		m.mu.Lock()
		done := m.status.Resolve == Resolved
		m.mu.Unlock()
		if done {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// Close tears down the subscription and invalidates in-flight work.
// Idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.gen++
	m.teardownLocked()
}

// Closed reports whether the manager has been torn down.
func (m *Manager) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// IdleSince reports the last time a caller touched the manager.
func (m *Manager) IdleSince() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastUsed
}

// commit runs fn under the lock iff gen is still the current generation.
// This is the alive-guard: late results from an abandoned resolution or
// fetch never mutate state.
func (m *Manager) commit(gen int, fn func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || gen != m.gen {
		return false
	}
	fn()
	return true
}

func (m *Manager) current(gen int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed && gen == m.gen
}

func (m *Manager) teardownLocked() {
	if m.sub != nil {
		_ = m.sub.Close()
		m.sub = nil
	}
}
