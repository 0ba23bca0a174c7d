package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/fanchat/messaging-service/internal/service"
)

type ctxKey int

const identityKey ctxKey = iota

// requireAuth verifies the bearer token and stores the resulting identity in
// the request context. The routes behind it can assume identityFrom succeeds.
func (a *API) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)

		id, err := a.auth.Verify(token)
		if err != nil {
			a.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFrom(ctx context.Context) (service.Identity, bool) {
	id, ok := ctx.Value(identityKey).(service.Identity)
	return id, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
