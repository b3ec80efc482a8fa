package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AllowlistRepo stores the emails permitted to register and log in.
type AllowlistRepo struct {
	db *pgxpool.Pool
}

func NewAllowlistRepo(db *pgxpool.Pool) *AllowlistRepo {
	return &AllowlistRepo{db: db}
}

func (r *AllowlistRepo) Add(ctx context.Context, email string) error {
	const q = `
INSERT INTO authorized_emails (email)
VALUES ($1)
ON CONFLICT (email) DO NOTHING;
`
	_, err := r.db.Exec(ctx, q, normalize(email))
	return err
}

func (r *AllowlistRepo) Remove(ctx context.Context, email string) error {
	const q = `DELETE FROM authorized_emails WHERE email = $1;`
	_, err := r.db.Exec(ctx, q, normalize(email))
	return err
}

func (r *AllowlistRepo) List(ctx context.Context) ([]string, error) {
	const q = `SELECT email FROM authorized_emails ORDER BY email ASC;`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0, 16)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		out = append(out, email)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AllowlistRepo) Contains(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM authorized_emails WHERE email = $1);`

	var ok bool
	if err := r.db.QueryRow(ctx, q, normalize(email)).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
