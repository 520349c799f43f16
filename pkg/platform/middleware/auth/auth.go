// Package auth provides bearer-token middleware for delegate-facing routes.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "summit/pkg/domain"
	"summit/pkg/platform/middleware/admin"
	request "summit/pkg/platform/middleware/request"
	"summit/pkg/requestcontext"
)

// TokenValidator defines the interface for validating delegate tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents the claims we expect from the token validator.
type Claims struct {
	DelegateID string
	Email      string
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireDelegate guards routes that only the authenticated delegate may
// call. The delegate id from the token is stored in context.
func RequireDelegate(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, ok := authenticate(w, r, validator, logger)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DelegateOrAdmin admits staff carrying the admin token as well as
// delegates with a valid bearer token. Handlers decide per-resource access
// via requestcontext.IsAdmin and requestcontext.DelegateID.
func DelegateOrAdmin(validator TokenValidator, adminToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if admin.TokenMatches(r, adminToken) {
				ctx := requestcontext.WithAdmin(r.Context())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			ctx, ok := authenticate(w, r, validator, logger)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate validates the bearer token and returns a context carrying
// the delegate id. On failure it writes the error response itself.
func authenticate(w http.ResponseWriter, r *http.Request, validator TokenValidator, logger *slog.Logger) (ctx context.Context, ok bool) {
	ctx = r.Context()
	requestID := request.GetRequestID(ctx)

	authHeader := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found {
		logger.WarnContext(ctx, "unauthorized access - missing token",
			"request_id", requestID,
		)
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
		return ctx, false
	}

	claims, err := validator.ValidateToken(token)
	if err != nil {
		logger.WarnContext(ctx, "unauthorized access - invalid token",
			"error", err,
			"request_id", requestID,
		)
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
		return ctx, false
	}

	delegateID, err := id.ParseDelegateID(claims.DelegateID)
	if err != nil {
		logger.WarnContext(ctx, "unauthorized access - malformed subject",
			"error", err,
			"request_id", requestID,
		)
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
		return ctx, false
	}

	return requestcontext.WithDelegateID(ctx, delegateID), true
}
