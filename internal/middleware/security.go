package middleware

import "net/http"

// DefaultCSP is the policy the public site is built against: inline
// scripts and styles, data/blob URLs and remote media are all in use.
const DefaultCSP = "default-src 'self' 'unsafe-inline' 'unsafe-eval' data: blob: https://* http://*;"

// SecurityHeaders sets the Content-Security-Policy and related headers on
// every response. An empty csp uses DefaultCSP.
func SecurityHeaders(csp string) func(http.Handler) http.Handler {
	if csp == "" {
		csp = DefaultCSP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", csp)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			next.ServeHTTP(w, r)
		})
	}
}
