package middleware

import (
	"net/http"
	"strconv"
	"time"

	"ledgerly-server/src/logger"
	"ledgerly-server/src/util"

	"github.com/go-chi/httprate"
)

func throttled(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).WarnContext(r.Context(), "Request throttled",
		logger.FieldComponent, logger.ComponentRateLimit, "path", r.URL.Path)
	writeDetail(w, http.StatusTooManyRequests, "Request was throttled.")
}

// UserOrIPKey keys authenticated callers by user id and everyone else by
// client address.
func UserOrIPKey(issuer *util.TokenIssuer) httprate.KeyFunc {
	return func(r *http.Request) (string, error) {
		if claims, err := ParseTokenFromRequest(r, issuer); err == nil {
			return "user:" + strconv.FormatInt(claims.UserID, 10), nil
		}
		ip, err := httprate.KeyByIP(r)
		return "anon:" + ip, err
	}
}

// RateLimit allows perMinute requests per caller across every route it wraps.
func RateLimit(perMinute int, issuer *util.TokenIssuer) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(UserOrIPKey(issuer)),
		httprate.WithLimitHandler(throttled),
	)
}

// ScopedRateLimit is an extra per-user budget for one group of routes. It
// must run after JWTAuthMiddleware.
func ScopedRateLimit(scope string, perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if id, ok := UserID(r.Context()); ok {
				return scope + ":" + strconv.FormatInt(id, 10), nil
			}
			ip, err := httprate.KeyByIP(r)
			return scope + ":anon:" + ip, err
		}),
		httprate.WithLimitHandler(throttled),
	)
}
