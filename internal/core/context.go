package core

import (
	"context"

	"github.com/JonMunkholm/quizdeck/internal/logging"
)

type contextKey string

const ctxKeyUser contextKey = "user"

// ContextWithUser attaches the authenticated user to ctx and tags the
// request's log entries with the user's id.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	ctx = logging.WithUserID(ctx, u.ID)
	return context.WithValue(ctx, ctxKeyUser, u)
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *User {
	if u, ok := ctx.Value(ctxKeyUser).(*User); ok {
		return u
	}
	return nil
}
