package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/paps/domain"
)

// SQLRowStore implements RowStore over a Postgres paps table. After each
// successful mutation it publishes a change event so subscribed managers
// re-fetch; a publish failure is logged, never surfaced, because the next
// manual fetch self-heals a missed notification.
type SQLRowStore struct {
	db  *sql.DB
	pub EventPublisher
}

func NewSQLRowStore(db *sql.DB, pub EventPublisher) *SQLRowStore {
	return &SQLRowStore{db: db, pub: pub}
}

const rowColumns = `id, owner_email, title, performance_indicator, personnel_office_concerned,
development_area, outcome, strategy,
q1, q2, q3, q4, actual_q1, actual_q2, actual_q3, actual_q4,
total_estimated_cost, fund_source, risks, probability, severity, risk_exposure,
mitigating_activities, completed, completed_at, evidence_links, created_at, updated_at`

func (s *SQLRowStore) QueryRows(ctx context.Context, owners []string) ([]domain.Row, error) {
	if len(owners) == 0 {
		return []domain.Row{}, nil
	}

	var (
		rows *sql.Rows
		err  error
	)
	if len(owners) == 1 {
		q := `SELECT ` + rowColumns + ` FROM paps WHERE owner_email = $1 ORDER BY created_at ASC;`
		rows, err = s.db.QueryContext(ctx, q, owners[0])
	} else {
		q := `SELECT ` + rowColumns + ` FROM paps WHERE owner_email = ANY($1) ORDER BY created_at ASC;`
		rows, err = s.db.QueryContext(ctx, q, pq.Array(owners))
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Row, 0, 16)
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLRowStore) InsertRow(ctx context.Context, row domain.Row) (string, error) {
	const q = `
INSERT INTO paps (owner_email, title, performance_indicator, personnel_office_concerned,
  development_area, outcome, strategy,
  q1, q2, q3, q4, actual_q1, actual_q2, actual_q3, actual_q4,
  total_estimated_cost, fund_source, risks, probability, severity, risk_exposure,
  mitigating_activities, completed, completed_at, evidence_links)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
  $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
RETURNING id;
`
	var id string
	err := s.db.QueryRowContext(ctx, q,
		row.OwnerEmail, row.Title, row.PerformanceIndicator, row.PersonnelOfficeConcerned,
		row.DevelopmentArea, row.Outcome, row.Strategy,
		row.Q1, row.Q2, row.Q3, row.Q4,
		row.ActualQ1, row.ActualQ2, row.ActualQ3, row.ActualQ4,
		row.TotalEstimatedCost, row.FundSource, row.Risks, row.Probability, row.Severity,
		row.RiskExposure, row.MitigatingActivities,
		row.Completed, row.CompletedAt, pq.Array(row.EvidenceLinks),
	).Scan(&id)
	if err != nil {
		return "", err
	}

	s.publish(ctx, ChangeEvent{Op: OpInsert, RowID: id, OwnerEmail: row.OwnerEmail})
	return id, nil
}

func (s *SQLRowStore) UpdateRow(ctx context.Context, id string, partial map[string]any) error {
	if len(partial) == 0 {
		return nil
	}

	// Deterministic column order keeps queries stable for tests and logs.
	cols := make([]string, 0, len(partial))
	for c := range partial {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", c, i+1))
		args = append(args, sqlValue(partial[c]))
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	q := fmt.Sprintf("UPDATE paps SET %s WHERE id = $%d RETURNING owner_email;",
		strings.Join(sets, ", "), len(args))

	var owner string
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&owner); err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		return err
	}

	s.publish(ctx, ChangeEvent{Op: OpUpdate, RowID: id, OwnerEmail: owner})
	return nil
}

func (s *SQLRowStore) DeleteRow(ctx context.Context, id string) error {
	const q = `DELETE FROM paps WHERE id = $1 RETURNING owner_email;`

	var owner string
	if err := s.db.QueryRowContext(ctx, q, id).Scan(&owner); err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		return err
	}

	s.publish(ctx, ChangeEvent{Op: OpDelete, RowID: id, OwnerEmail: owner})
	return nil
}

func (s *SQLRowStore) publish(ctx context.Context, ev ChangeEvent) {
	if s.pub == nil {
		return
	}
	ev.At = time.Now().UTC()
	if err := s.pub.Publish(ctx, ev); err != nil {
		log.Printf("[warn] operation=publish_change op=%s row=%s error=%v", ev.Op, ev.RowID, err)
	}
}

func sqlValue(v any) any {
	if links, ok := v.([]string); ok {
		return pq.Array(links)
	}
	return v
}

func scanRow(rows *sql.Rows) (domain.Row, error) {
	var (
		r           domain.Row
		pi, office  sql.NullString
		da, out     sql.NullString
		strat       sql.NullString
		q1, q2      sql.NullString
		q3, q4      sql.NullString
		a1, a2      sql.NullString
		a3, a4      sql.NullString
		cost        sql.NullFloat64
		fund, risks sql.NullString
		prob, sev   sql.NullString
		expo, mit   sql.NullString
		completed   sql.NullBool
		completedAt sql.NullTime
		links       pq.StringArray
	)

	err := rows.Scan(
		&r.ID, &r.OwnerEmail, &r.Title, &pi, &office,
		&da, &out, &strat,
		&q1, &q2, &q3, &q4, &a1, &a2, &a3, &a4,
		&cost, &fund, &risks, &prob, &sev, &expo,
		&mit, &completed, &completedAt, &links, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return domain.Row{}, err
	}

	r.PerformanceIndicator = pi.String
	r.PersonnelOfficeConcerned = office.String
	r.DevelopmentArea = da.String
	r.Outcome = out.String
	r.Strategy = strat.String
	r.Q1, r.Q2, r.Q3, r.Q4 = q1.String, q2.String, q3.String, q4.String
	r.ActualQ1, r.ActualQ2, r.ActualQ3, r.ActualQ4 = a1.String, a2.String, a3.String, a4.String
	r.TotalEstimatedCost = cost.Float64
	r.FundSource = fund.String
	r.Risks = risks.String
	r.Probability = prob.String
	r.Severity = sev.String
	r.RiskExposure = expo.String
	r.MitigatingActivities = mit.String
	r.Completed = completed.Bool
	if completedAt.Valid {
		t := completedAt.Time
		r.CompletedAt = &t
	}
	r.EvidenceLinks = []string(links)
	if r.EvidenceLinks == nil {
		r.EvidenceLinks = []string{}
	}

	return r, nil
}
