// Package gateway is the boundary to the remote row store and its
// realtime change feed. The resolver and the collection manager consume
// these interfaces; tests substitute fakes.
package gateway

import (
	"context"
	"time"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/paps/domain"
)

// RowStore is the queryable PAP row collection.
type RowStore interface {
	// QueryRows returns all rows owned by any of the given emails,
	// ordered by creation time ascending. One email uses an equality
	// filter, several use a membership filter.
	QueryRows(ctx context.Context, owners []string) ([]domain.Row, error)

	// InsertRow stores a new row and returns its server-assigned id.
	InsertRow(ctx context.Context, row domain.Row) (string, error)

	// UpdateRow applies a partial set of column changes to one row.
	// A nil value writes SQL NULL.
	UpdateRow(ctx context.Context, id string, partial map[string]any) error

	DeleteRow(ctx context.Context, id string) error
}

// Op classifies a change notification.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpSync   Op = "sync"
)

// ChangeEvent is one notification from the change feed. Consumers treat
// it as a hint to re-fetch, not as an incremental patch.
type ChangeEvent struct {
	Op         Op        `json:"op"`
	RowID      string    `json:"row_id,omitempty"`
	OwnerEmail string    `json:"owner_email"`
	At         time.Time `json:"at"`
}

// Scope selects which changes a subscription sees. An empty Owner means
// unscoped: the feed delivers changes for every owner and the consumer
// filters by re-fetching with its own membership filter.
type Scope struct {
	Owner string
}

// Subscription is one open change channel. Close is idempotent and stops
// event delivery.
type Subscription interface {
	Events() <-chan ChangeEvent
	Close() error
}

// ChangeFeed opens change subscriptions.
type ChangeFeed interface {
	Subscribe(ctx context.Context, scope Scope) (Subscription, error)
}

// EventPublisher emits change notifications after successful mutations.
type EventPublisher interface {
	Publish(ctx context.Context, ev ChangeEvent) error
}
