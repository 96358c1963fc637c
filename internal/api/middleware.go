package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

type contextKey string

const (
	claimsKey   contextKey = "claims"
	identityKey contextKey = "identity"
)

// authenticator resolves bearer tokens to identities. The role comes from
// the stored account so role changes and deletions apply immediately.
type authenticator struct {
	secret string
	db     *sql.DB
}

// authenticate returns nil claims without error when no token is present.
func (a *authenticator) authenticate(r *http.Request) (*auth.Claims, model.Identity, int, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, model.Identity{}, 0, ""
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, model.Identity{}, http.StatusUnauthorized, "missing or invalid authorization header"
	}

	claims, err := auth.ValidateToken(a.secret, strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil, model.Identity{}, http.StatusUnauthorized, "invalid token"
	}

	revoked, err := store.IsTokenRevoked(r.Context(), a.db, claims.ID)
	if err != nil {
		slog.Error("failed to check token revocation", "error", err)
		return nil, model.Identity{}, http.StatusInternalServerError, "internal error"
	}
	if revoked {
		return nil, model.Identity{}, http.StatusUnauthorized, "token revoked"
	}

	user, err := store.GetUser(r.Context(), a.db, claims.UserID)
	if err != nil {
		slog.Error("failed to load token user", "error", err)
		return nil, model.Identity{}, http.StatusInternalServerError, "internal error"
	}
	if user == nil || user.DeletedAt != nil {
		return nil, model.Identity{}, http.StatusUnauthorized, "account no longer exists"
	}
	if claims.Session != user.Session {
		return nil, model.Identity{}, http.StatusUnauthorized, "session ended, sign in again"
	}

	return claims, user.Identity(), 0, ""
}

func withIdentity(r *http.Request, claims *auth.Claims, id model.Identity) *http.Request {
	ctx := context.WithValue(r.Context(), claimsKey, claims)
	ctx = context.WithValue(ctx, identityKey, id)
	return r.WithContext(ctx)
}

// AuthMiddleware requires a valid, unrevoked token and adds the caller to the
// context.
func AuthMiddleware(secret string, db *sql.DB) func(http.Handler) http.Handler {
	a := &authenticator{secret: secret, db: db}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, id, status, msg := a.authenticate(r)
			if status != 0 {
				jsonError(w, status, msg)
				return
			}
			if claims == nil {
				jsonError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			next.ServeHTTP(w, withIdentity(r, claims, id))
		})
	}
}

// OptionalAuth lets anonymous requests through. A token that is present must
// still be valid.
func OptionalAuth(secret string, db *sql.DB) func(http.Handler) http.Handler {
	a := &authenticator{secret: secret, db: db}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, id, status, msg := a.authenticate(r)
			if status != 0 {
				jsonError(w, status, msg)
				return
			}
			if claims != nil {
				r = withIdentity(r, claims, id)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole returns middleware that checks if the user has at least the given role.
func RequireRole(minimum model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := GetIdentity(r.Context())
			if id.Anonymous() {
				jsonError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if !model.RoleAtLeast(id.Role, minimum) {
				jsonError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetClaims retrieves the JWT claims from the context.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// GetIdentity returns the caller, or the anonymous identity.
func GetIdentity(ctx context.Context) model.Identity {
	id, _ := ctx.Value(identityKey).(model.Identity)
	return id
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs HTTP requests with method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}
