package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/domain"
)

// UserRepo provides persistence for accounts. Emails are stored and
// compared lower-cased and trimmed; uniqueness is case-insensitive.
type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, rec domain.UserRecord) (string, error) {
	const q = `
INSERT INTO users (display_name, email, role, password_hash, security_question, security_answer_hash)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text;
`
	var id string
	err := r.db.QueryRow(ctx, q,
		rec.DisplayName, normalize(rec.Email), rec.Role,
		rec.PasswordHash, rec.SecurityQuestion, rec.SecurityAnswerHash,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", domain.ErrEmailTaken
		}
		return "", err
	}
	return id, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.UserRecord, error) {
	const q = `
SELECT id::text, display_name, email, role, password_hash, security_question, security_answer_hash, created_at
FROM users
WHERE email = $1;
`
	var rec domain.UserRecord
	err := r.db.QueryRow(ctx, q, normalize(email)).Scan(
		&rec.ID, &rec.DisplayName, &rec.Email, &rec.Role,
		&rec.PasswordHash, &rec.SecurityQuestion, &rec.SecurityAnswerHash,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// AdminEmails returns every Admin account's email in registration order.
// The order matters downstream: the first entry becomes the shared write
// owner for non-Admin users.
func (r *UserRepo) AdminEmails(ctx context.Context) ([]string, error) {
	const q = `
SELECT email
FROM users
WHERE role = $1
ORDER BY created_at ASC;
`
	rows, err := r.db.Query(ctx, q, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0, 4)
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

func (r *UserRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = now() WHERE email = $1;`

	tag, err := r.db.Exec(ctx, q, normalize(email), passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
