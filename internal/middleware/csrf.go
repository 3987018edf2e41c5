package middleware

import (
	"crypto/rand"
	"net/http"

	csrf "filippo.io/csrf/gorilla"
	"go.uber.org/zap"

	"github.com/atinyakov/stoneworks/internal/server/response"
)

// CrossOrigin rejects state-changing requests that browsers mark as
// cross-site, using Fetch metadata rather than tokens. trustedOrigins are
// host[:port] values allowed to call the API from another origin.
// Requests without browser metadata, such as API clients, pass through.
func CrossOrigin(trustedOrigins []string, log *zap.Logger) func(http.Handler) http.Handler {
	key := make([]byte, 32)
	_, _ = rand.Read(key)

	opts := []csrf.Option{
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reason := "unknown"
			if err := csrf.FailureReason(r); err != nil {
				reason = err.Error()
			}
			log.Warn("cross-origin request rejected",
				zap.String("reason", reason),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("origin", r.Header.Get("Origin")),
				zap.String("sec_fetch_site", r.Header.Get("Sec-Fetch-Site")),
			)
			response.Error(w, http.StatusForbidden, response.CodeForbidden, "cross-origin request rejected", nil)
		})),
	}
	if len(trustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(trustedOrigins))
	}

	return csrf.Protect(key, opts...)
}
