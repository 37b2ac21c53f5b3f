package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ecosort/ecosort-be/internal/auth"
	"github.com/ecosort/ecosort-be/internal/http/respond"
	"github.com/ecosort/ecosort-be/internal/models"
)

// Principal identifies the authenticated caller for downstream handlers.
type Principal struct {
	UserID int64
	Role   models.Role
}

type contextKey struct{}

// PrincipalFrom extracts the authenticated principal from a request context.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// Authenticator resolves credentials from either the session cookie or a
// Bearer JWT.
type Authenticator struct {
	sessions *auth.SessionManager
	tokens   *auth.TokenManager
}

// NewAuthenticator builds the auth middleware over both credential mechanisms.
func NewAuthenticator(sessions *auth.SessionManager, tokens *auth.TokenManager) *Authenticator {
	return &Authenticator{sessions: sessions, tokens: tokens}
}

// Require rejects unauthenticated requests; otherwise it stores the principal
// in the request context and calls next.
func (a *Authenticator) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := a.resolve(r)
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, p)))
	}
}

// RequireRole is Require plus a role check.
func (a *Authenticator) RequireRole(next http.HandlerFunc, roles ...models.Role) http.HandlerFunc {
	return a.Require(func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFrom(r.Context())
		for _, role := range roles {
			if p.Role == role {
				next(w, r)
				return
			}
		}
		respond.Error(w, http.StatusForbidden, "insufficient role")
	})
}

func (a *Authenticator) resolve(r *http.Request) (Principal, bool) {
	if cookie, err := r.Cookie(auth.SessionCookie); err == nil && cookie.Value != "" {
		if s, err := a.sessions.Validate(r.Context(), cookie.Value); err == nil {
			return Principal{UserID: s.UserID, Role: s.Role}, true
		}
	}

	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		if userID, role, err := a.tokens.Verify(parts[1]); err == nil {
			return Principal{UserID: userID, Role: role}, true
		}
	}
	return Principal{}, false
}
