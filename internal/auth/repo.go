package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, u *User) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO users(id, email, name, password_hash, is_admin)
		VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.IsAdmin)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return ErrEmailTaken
	}
	return err
}

func (r *Repo) ByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanOne(r.DB.QueryRow(ctx, `
		SELECT id, email, name, password_hash, is_admin, created_at
		FROM users WHERE email = $1`, email))
}

func (r *Repo) ByID(ctx context.Context, id string) (*User, error) {
	return r.scanOne(r.DB.QueryRow(ctx, `
		SELECT id, email, name, password_hash, is_admin, created_at
		FROM users WHERE id = $1`, id))
}

// EnsureAdmin creates the administrative account or promotes an existing
// row with the same email. Called once at startup from config.
func (r *Repo) EnsureAdmin(ctx context.Context, u *User) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO users(id, email, name, password_hash, is_admin)
		VALUES ($1, $2, $3, $4, true)
		ON CONFLICT (email) DO UPDATE
		SET is_admin = true, name = EXCLUDED.name, password_hash = EXCLUDED.password_hash`,
		u.ID, u.Email, u.Name, u.PasswordHash)
	return err
}

func (r *Repo) scanOne(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
