package handler

import (
	"net/http"
	"strings"

	"github.com/modahub/storefront-api/internal/domain/auth"
)

// authedFunc is a handler that requires a resolved actor. The actor is parsed
// once from the bearer token and passed explicitly; nothing downstream reads
// ambient authentication state.
type authedFunc func(w http.ResponseWriter, r *http.Request, actor auth.Actor)

// withAuth authenticates the request via the Authorization bearer token and
// invokes next with the resolved actor. Missing or invalid tokens get 401.
func (h *Handler) withAuth(next authedFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeError(w, r, http.StatusUnauthorized, "not authorized, no token")
			return
		}

		actor, err := h.tokens.Parse(raw)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "not authorized, token failed")
			return
		}
		next(w, r, actor)
	}
}

// withAdmin is withAuth plus the administrative capability check.
func (h *Handler) withAdmin(next authedFunc) http.HandlerFunc {
	return h.withAuth(func(w http.ResponseWriter, r *http.Request, actor auth.Actor) {
		if !actor.IsAdmin() {
			writeError(w, r, http.StatusForbidden, "not authorized as admin")
			return
		}
		next(w, r, actor)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
