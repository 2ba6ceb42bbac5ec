package middleware

import (
	"net/http"

	"ledgerly-server/src/util"
)

// ReadOnlyMiddleware rejects writes while maintenance mode is on. Login,
// token refresh and staff callers are let through.
func ReadOnlyMiddleware(readOnly bool, issuer *util.TokenIssuer) func(http.Handler) http.Handler {
	allowedPosts := map[string]bool{
		"/api/token":          true,
		"/api/token/":         true,
		"/api/token/refresh":  true,
		"/api/token/refresh/": true,
	}

	return func(next http.Handler) http.Handler {
		if !readOnly {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if r.Method == http.MethodPost && allowedPosts[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			if claims, err := ParseTokenFromRequest(r, issuer); err == nil && claims.IsStaff {
				next.ServeHTTP(w, r)
				return
			}
			writeDetail(w, http.StatusServiceUnavailable, "Read-only mode: writes are temporarily disabled.")
		})
	}
}
