package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/af-corp/nutrigate/internal/httputil"
)

// Observer receives identity verification outcomes.
type Observer interface {
	RecordAuth(result string)
}

// Middleware returns a chi middleware that authenticates requests via a
// Google ID token presented as a Bearer credential. Any verification failure
// collapses to a single 401 code so no detail about why leaks to the caller.
// obs may be nil.
func Middleware(verifier Verifier, obs Observer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := w.Header().Get("X-Request-ID")

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				record(obs, "missing")
				httputil.WriteMissingTokenError(w, reqID)
				return
			}

			claim, err := verifier.Verify(r.Context(), token)
			if err != nil {
				slog.Warn("id token verification failed", "error", err)
				record(obs, "invalid")
				httputil.WriteInvalidTokenError(w, reqID)
				return
			}

			record(obs, "ok")
			ctx := ContextWithClaim(r.Context(), claim)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func record(obs Observer, result string) {
	if obs != nil {
		obs.RecordAuth(result)
	}
}

// bearerToken extracts the token from an Authorization header value. The
// scheme is case-sensitive: exactly "Bearer" followed by a space.
func bearerToken(header string) (string, bool) {
	rest, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	token := strings.TrimSpace(rest)
	if token == "" {
		return "", false
	}
	return token, true
}
