package gateway

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/paps/domain"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, ev ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) last(t *testing.T) ChangeEvent {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.events)
	return p.events[len(p.events)-1]
}

func setupRowStore(t *testing.T) (*SQLRowStore, sqlmock.Sqlmock, *recordingPublisher) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pub := &recordingPublisher{}
	return NewSQLRowStore(db, pub), mock, pub
}

var rowCols = []string{
	"id", "owner_email", "title", "performance_indicator", "personnel_office_concerned",
	"development_area", "outcome", "strategy",
	"q1", "q2", "q3", "q4", "actual_q1", "actual_q2", "actual_q3", "actual_q4",
	"total_estimated_cost", "fund_source", "risks", "probability", "severity", "risk_exposure",
	"mitigating_activities", "completed", "completed_at", "evidence_links", "created_at", "updated_at",
}

func TestQueryRowsSingleOwner(t *testing.T) {
	store, mock, _ := setupRowStore(t)

	created := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(rowCols).AddRow(
		"p1", "dean@x.ph", "Extension caravan", "No. of barangays reached", "Extension Office",
		nil, nil, nil,
		"2", nil, nil, nil, "1", nil, nil, nil,
		15000.0, "STF", nil, nil, nil, nil,
		nil, false, nil, pq.StringArray{}, created, created,
	)

	mock.ExpectQuery(`SELECT .+ FROM paps WHERE owner_email = \$1 ORDER BY created_at ASC`).
		WithArgs("dean@x.ph").
		WillReturnRows(rows)

	got, err := store.QueryRows(context.Background(), []string{"dean@x.ph"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "Extension caravan", got[0].Title)
	assert.Equal(t, "2", got[0].Q1)
	assert.Empty(t, got[0].Q2, "null columns read as zero values")
	assert.Equal(t, 15000.0, got[0].TotalEstimatedCost)
	assert.NotNil(t, got[0].EvidenceLinks)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryRowsMultiOwner(t *testing.T) {
	store, mock, _ := setupRowStore(t)

	mock.ExpectQuery(`SELECT .+ FROM paps WHERE owner_email = ANY\(\$1\) ORDER BY created_at ASC`).
		WithArgs(pq.Array([]string{"dean@x.ph", "vice@x.ph"})).
		WillReturnRows(sqlmock.NewRows(rowCols))

	got, err := store.QueryRows(context.Background(), []string{"dean@x.ph", "vice@x.ph"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryRowsNoOwners(t *testing.T) {
	store, mock, _ := setupRowStore(t)

	got, err := store.QueryRows(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got, "no owners means no query at all")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRowPublishes(t *testing.T) {
	store, mock, pub := setupRowStore(t)

	mock.ExpectQuery(`INSERT INTO paps .+ RETURNING id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p9"))

	id, err := store.InsertRow(context.Background(), domain.Row{
		OwnerEmail:    "dean@x.ph",
		Title:         "New program",
		EvidenceLinks: []string{},
	})
	require.NoError(t, err)
	assert.Equal(t, "p9", id)

	ev := pub.last(t)
	assert.Equal(t, OpInsert, ev.Op)
	assert.Equal(t, "p9", ev.RowID)
	assert.Equal(t, "dean@x.ph", ev.OwnerEmail)
	assert.False(t, ev.At.IsZero())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRow(t *testing.T) {
	t.Run("sorted set clause with null and array values", func(t *testing.T) {
		store, mock, pub := setupRowStore(t)

		mock.ExpectQuery(`UPDATE paps SET completed = \$1, evidence_links = \$2, fund_source = \$3, updated_at = now\(\) WHERE id = \$4 RETURNING owner_email`).
			WithArgs(true, pq.Array([]string{"https://a.com"}), nil, "p1").
			WillReturnRows(sqlmock.NewRows([]string{"owner_email"}).AddRow("dean@x.ph"))

		err := store.UpdateRow(context.Background(), "p1", map[string]any{
			"fund_source":    nil,
			"completed":      true,
			"evidence_links": []string{"https://a.com"},
		})
		require.NoError(t, err)

		ev := pub.last(t)
		assert.Equal(t, OpUpdate, ev.Op)
		assert.Equal(t, "dean@x.ph", ev.OwnerEmail)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row maps to ErrNotFound", func(t *testing.T) {
		store, mock, _ := setupRowStore(t)

		mock.ExpectQuery(`UPDATE paps SET`).
			WillReturnRows(sqlmock.NewRows([]string{"owner_email"}))

		err := store.UpdateRow(context.Background(), "ghost", map[string]any{"title": "x"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("empty patch is a no-op", func(t *testing.T) {
		store, mock, _ := setupRowStore(t)
		require.NoError(t, store.UpdateRow(context.Background(), "p1", nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteRow(t *testing.T) {
	store, mock, pub := setupRowStore(t)

	mock.ExpectQuery(`DELETE FROM paps WHERE id = \$1 RETURNING owner_email`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"owner_email"}).AddRow("dean@x.ph"))

	require.NoError(t, store.DeleteRow(context.Background(), "p1"))

	ev := pub.last(t)
	assert.Equal(t, OpDelete, ev.Op)
	assert.Equal(t, "p1", ev.RowID)

	mock.ExpectQuery(`DELETE FROM paps`).
		WillReturnRows(sqlmock.NewRows([]string{"owner_email"}))
	assert.ErrorIs(t, store.DeleteRow(context.Background(), "ghost"), domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
