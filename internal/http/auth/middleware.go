package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/MrJamesThe3rd/dealdesk/internal/auth"
)

// Authenticate rejects requests without a valid bearer token and attaches
// the caller identity to the request context otherwise.
func Authenticate(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}

			caller, err := tokens.Validate(token)
			if err != nil {
				slog.DebugContext(r.Context(), "rejected token", "error", err)
				unauthorized(w, "invalid token")

				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), caller)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	http.Error(w, msg, http.StatusUnauthorized)
}
