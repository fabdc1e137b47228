package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/playcv/cartd/internal/domain"
	"github.com/playcv/cartd/internal/remote"
)

type userKey struct{}

// AuthMiddleware extracts the caller's identity from the gateway headers
// and forwards the bearer token to the remote clients via the request
// context. Identity verification itself happens upstream; an absent token
// still reaches the handlers, which reject checkout and remote operations
// with an auth error.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			ctx = remote.WithCredential(ctx, strings.TrimPrefix(auth, "Bearer "))
		}

		user := domain.User{
			ID:        r.Header.Get("X-User-Id"),
			Email:     r.Header.Get("X-User-Email"),
			FirstName: r.Header.Get("X-User-First-Name"),
			LastName:  r.Header.Get("X-User-Last-Name"),
			Phone:     r.Header.Get("X-User-Phone"),
		}
		ctx = context.WithValue(ctx, userKey{}, user)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromContext(ctx context.Context) domain.User {
	if user, ok := ctx.Value(userKey{}).(domain.User); ok {
		return user
	}
	return domain.User{}
}
