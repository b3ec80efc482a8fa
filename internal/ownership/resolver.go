// Package ownership decides, for a signed-in identity, whose rows are
// visible and under which single owner new rows are written.
package ownership

import (
	"context"
	"log"
	"strings"
)

// RoleAdmin is the role whose data stays strictly self-scoped.
const RoleAdmin = "Admin"

// State classifies a terminal resolution. Resolution always terminates in
// one of these; there is no failure state.
type State int

const (
	// StateEmpty: no identity, no queries are issued.
	StateEmpty State = iota
	// StateSelfScoped: the identity reads and writes its own rows only.
	StateSelfScoped
	// StateMultiOwner: the identity reads every discovered admin's rows
	// and writes under the first one.
	StateMultiOwner
)

func (s State) String() string {
	switch s {
	case StateSelfScoped:
		return "self-scoped"
	case StateMultiOwner:
		return "multi-owner"
	default:
		return "empty"
	}
}

// Resolution is the derived visibility set. SharedOwnerEmail is always a
// member of OwnerEmails whenever OwnerEmails is non-empty, so a client
// can always see what it writes.
type Resolution struct {
	OwnerEmails      []string
	SharedOwnerEmail string
	State            State
}

// AdminLookup returns the emails the backend considers Admin,
// authenticated as the requesting identity. Order matters: the first
// element becomes the shared write owner.
type AdminLookup func(ctx context.Context, requesterEmail, token string) ([]string, error)

// Resolver computes Resolutions. The admin lookup is best-effort; every
// failure path degrades to self-scoping so the application stays usable
// before any admin exists.
type Resolver struct {
	lookup AdminLookup
}

func NewResolver(lookup AdminLookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve maps (identity, role, token) to a visibility set. It must be
// re-run whenever any of its inputs change, and never because the row
// collection changed. It does not fail: admin-lookup errors resolve to
// the self-scoped fallback.
func (r *Resolver) Resolve(ctx context.Context, email, role, token string) Resolution {
	email = Normalize(email)
	if email == "" {
		return Resolution{State: StateEmpty}
	}

	// Admin data is strictly self-scoped; the lookup is never consulted.
	if role == RoleAdmin {
		return selfScoped(email)
	}

	if r.lookup == nil {
		return selfScoped(email)
	}

	admins, err := r.lookup(ctx, email, token)
	if err != nil {
		log.Printf("[info] operation=resolve_owners requester=%s message=admin lookup failed, falling back to self-scope error=%v", email, err)
		return selfScoped(email)
	}

	owners := normalizeAll(admins)
	if len(owners) == 0 {
		return selfScoped(email)
	}

	if len(owners) > 1 {
		// Writes funnel to the first admin; later admins' own rows stay
		// readable but are never the write target. Flagged for product
		// clarification, behavior preserved.
		log.Printf("[warn] operation=resolve_owners requester=%s message=%d admins discovered, writes attributed to %s", email, len(owners), owners[0])
	}

	return Resolution{
		OwnerEmails:      owners,
		SharedOwnerEmail: owners[0],
		State:            StateMultiOwner,
	}
}

// Normalize lower-cases and trims an email before any comparison or
// remote call.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func selfScoped(email string) Resolution {
	return Resolution{
		OwnerEmails:      []string{email},
		SharedOwnerEmail: email,
		State:            StateSelfScoped,
	}
}

func normalizeAll(emails []string) []string {
	seen := make(map[string]bool, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = Normalize(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
