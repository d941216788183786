package auth

import (
	"net/http"
	"strings"

	"okr-planner-backend/internal/analytics"
)

type Middleware struct {
	secret []byte
}

// New returns a bearer-token middleware. An empty secret disables the check.
func New(secret []byte) Middleware {
	return Middleware{secret: secret}
}

func (m Middleware) Enabled() bool {
	return len(m.secret) > 0
}

// Wrap rejects requests without a valid token and hands the token's user id
// to analytics, which stamps it on every event of the request.
func (m Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	if !m.Enabled() {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		userID, err := ParseToken(m.secret, tokenString)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(analytics.WithUserID(r.Context(), userID)))
	}
}
