package middleware

import (
	"context"
	"net/http"

	"github.com/pliu/chatsight/internal/auth"
	"github.com/pliu/chatsight/internal/respond"
)

type contextKey string

const IdentityKey contextKey = "identity"

// Authenticator resolves an Authorization header to an identity.
type Authenticator interface {
	Authenticate(header string) (*auth.Identity, bool)
}

// RequireAuth rejects requests without a valid bearer token with a uniform 401.
func RequireAuth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := authn.Authenticate(r.Header.Get("Authorization"))
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			ctx := context.WithValue(r.Context(), IdentityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Identity returns the identity stored by RequireAuth.
func Identity(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(*auth.Identity)
	return id, ok && id != nil
}
