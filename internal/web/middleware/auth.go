package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/quizdeck/internal/core"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultAudience is the aud claim of Supabase session tokens.
const DefaultAudience = "authenticated"

// Token verification failures.
var (
	ErrMissingToken = errors.New("authentication required: token is missing")
	ErrInvalidToken = errors.New("invalid token: token verification failed")
	ErrTokenClaims  = errors.New("invalid token structure: sub and email are required")
)

// UserResolver maps a verified identity to an account. *core.Service
// implements it.
type UserResolver interface {
	GetOrCreateUser(ctx context.Context, subject, email string) (*core.User, error)
}

// Identity is the part of a verified token the backend uses.
type Identity struct {
	Subject string
	Email   string
}

// TokenVerifier checks HS256 bearer tokens signed with a shared secret.
type TokenVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewTokenVerifier creates a verifier for tokens issued for audience.
func NewTokenVerifier(secret, audience string) *TokenVerifier {
	if audience == "" {
		audience = DefaultAudience
	}
	return &TokenVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithAudience(audience),
		),
	}
}

// Verify parses token and returns its identity. An optional "Bearer "
// prefix is ignored.
func (v *TokenVerifier) Verify(token string) (*Identity, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, ErrMissingToken
	}

	claims := jwt.MapClaims{}
	if _, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}); err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return nil, ErrTokenClaims
	}
	return &Identity{Subject: sub, Email: email}, nil
}

// Auth returns middleware that requires a valid bearer token. The caller's
// account is created on first sight and attached to the request context.
func Auth(verifier *TokenVerifier, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				slog.Warn("auth: missing authorization header",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				writeAuthError(w, http.StatusUnauthorized, "Authentication required", "Token is missing", "AUTH002")
				return
			}

			id, err := verifier.Verify(header)
			if err != nil {
				slog.Warn("auth: token rejected",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", err,
				)
				if errors.Is(err, ErrTokenClaims) {
					writeAuthError(w, http.StatusUnauthorized, "Invalid token structure", "Sign in again", "AUTH003")
					return
				}
				writeAuthError(w, http.StatusUnauthorized, "Invalid token", "Token verification failed", "AUTH003")
				return
			}

			user, err := users.GetOrCreateUser(r.Context(), id.Subject, id.Email)
			if err != nil {
				slog.Error("auth: resolve user failed",
					"path", r.URL.Path,
					"error", err,
				)
				writeAuthError(w, http.StatusInternalServerError, "Database error", "Failed to authenticate user", "DB003")
				return
			}

			next.ServeHTTP(w, r.WithContext(core.ContextWithUser(r.Context(), user)))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, errText, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + errText + `","message":"` + message + `","code":"` + code + `"}` + "\n"))
}
