package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	db "github.com/JonMunkholm/quizdeck/internal/database"
	"github.com/JonMunkholm/quizdeck/internal/logging"
	"github.com/jackc/pgx/v5"
)

// UsernameFromEmail returns the local part of an email address.
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// GetOrCreateUser returns the account for an identity-provider subject,
// creating it on first sight.
func (s *Service) GetOrCreateUser(ctx context.Context, subject, email string) (*User, error) {
	id := toPgUUID(subject)
	if !id.Valid {
		return nil, fmt.Errorf("invalid token subject %q", subject)
	}

	q := db.New(s.pool)
	row, err := q.GetUserBySupabaseID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		row, err = q.CreateUser(ctx, db.CreateUserParams{
			SupabaseUserID: id,
			Email:          email,
			Username:       UsernameFromEmail(email),
		})
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		logging.FromContext(ctx).Info("created new user", "user_id", row.ID, "username", row.Username)
	} else if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return userFromRow(row), nil
}

// GetUser returns the account with the given id.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	row, err := db.New(s.pool).GetUserByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return userFromRow(row), nil
}

func userFromRow(row db.User) *User {
	u := &User{
		ID:             row.ID,
		SupabaseUserID: uuidToString(row.SupabaseUserID),
		Email:          row.Email,
		Username:       row.Username,
	}
	if row.CreatedAt.Valid {
		u.CreatedAt = row.CreatedAt.Time
	}
	return u
}
