package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/minicars/reserve/internal/auth"
	"github.com/minicars/reserve/internal/reservation"
)

type ctxKey int

const (
	ctxIdentity ctxKey = iota
	ctxTokenID
)

func identityFrom(r *http.Request) auth.Identity {
	id, _ := r.Context().Value(ctxIdentity).(auth.Identity)
	return id
}

func tokenIDFrom(r *http.Request) string {
	s, _ := r.Context().Value(ctxTokenID).(string)
	return s
}

// RequireUser authenticates the bearer token and stores the identity in the
// request context. No token or a dead session is a 401.
func RequireUser(a *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				writeError(w, auth.ErrUnauthenticated)
				return
			}
			id, tokenID, err := a.Authenticate(r.Context(), raw)
			if err != nil {
				writeError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), ctxIdentity, id)
			ctx = context.WithValue(ctx, ctxTokenID, tokenID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin stacks on RequireUser and rejects non-admin identities.
func RequireAdmin(a *auth.Service) func(http.Handler) http.Handler {
	requireUser := RequireUser(a)
	return func(next http.Handler) http.Handler {
		return requireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := identityFrom(r)
			if id == nil || !id.IsAdmin() {
				writeError(w, reservation.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
