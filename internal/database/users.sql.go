package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getUserBySupabaseID = `-- name: GetUserBySupabaseID :one
SELECT id, supabase_user_id, email, username, created_at
FROM users
WHERE supabase_user_id = $1
`

func (q *Queries) GetUserBySupabaseID(ctx context.Context, supabaseUserID pgtype.UUID) (User, error) {
	row := q.db.QueryRow(ctx, getUserBySupabaseID, supabaseUserID)
	var i User
	err := row.Scan(
		&i.ID,
		&i.SupabaseUserID,
		&i.Email,
		&i.Username,
		&i.CreatedAt,
	)
	return i, err
}

const getUserByID = `-- name: GetUserByID :one
SELECT id, supabase_user_id, email, username, created_at
FROM users
WHERE id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, id)
	var i User
	err := row.Scan(
		&i.ID,
		&i.SupabaseUserID,
		&i.Email,
		&i.Username,
		&i.CreatedAt,
	)
	return i, err
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (supabase_user_id, email, username)
VALUES ($1, $2, $3)
ON CONFLICT (supabase_user_id) DO UPDATE SET email = users.email
RETURNING id, supabase_user_id, email, username, created_at
`

type CreateUserParams struct {
	SupabaseUserID pgtype.UUID
	Email          string
	Username       string
}

// CreateUser returns the existing row when a concurrent request created the
// same user first.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, arg.SupabaseUserID, arg.Email, arg.Username)
	var i User
	err := row.Scan(
		&i.ID,
		&i.SupabaseUserID,
		&i.Email,
		&i.Username,
		&i.CreatedAt,
	)
	return i, err
}
