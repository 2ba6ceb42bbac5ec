package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ledgerly-server/src/logger"
	"ledgerly-server/src/util"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	staffKey
)

var errMissingToken = errors.New("missing bearer token")

const (
	detailMissingToken = "Authentication credentials were not provided."
	detailInvalidToken = "Given token not valid for any token type"
)

// WithUser stores the authenticated identity on ctx.
func WithUser(ctx context.Context, userID int64, isStaff bool) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, staffKey, isStaff)
}

func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

func IsStaff(ctx context.Context) bool {
	staff, _ := ctx.Value(staffKey).(bool)
	return staff
}

// ParseTokenFromRequest extracts and validates the bearer access token.
func ParseTokenFromRequest(r *http.Request, issuer *util.TokenIssuer) (*util.Claims, error) {
	header := r.Header.Get("Authorization")
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(tokenString) == "" {
		return nil, errMissingToken
	}
	return issuer.Parse(strings.TrimSpace(tokenString), util.TokenAccess)
}

func JWTAuthMiddleware(issuer *util.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := ParseTokenFromRequest(r, issuer)
			if err != nil {
				detail := detailInvalidToken
				if errors.Is(err, errMissingToken) {
					detail = detailMissingToken
				}
				logger.FromContext(r.Context()).DebugContext(r.Context(), "Authentication failed",
					logger.FieldComponent, logger.ComponentAuth, logger.FieldError, err)
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				writeDetail(w, http.StatusUnauthorized, detail)
				return
			}

			ctx := WithUser(r.Context(), claims.UserID, claims.IsStaff)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(logger.FieldUserID, claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StaffMiddleware must run after JWTAuthMiddleware.
func StaffMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsStaff(r.Context()) {
			writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
