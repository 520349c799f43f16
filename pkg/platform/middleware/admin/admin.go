package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	request "summit/pkg/platform/middleware/request"
	"summit/pkg/requestcontext"
)

const headerAdminToken = "X-Admin-Token"

// TokenMatches reports whether the request carries the expected admin
// token. Constant-time comparison to prevent timing attacks.
func TokenMatches(r *http.Request, expectedToken string) bool {
	token := r.Header.Get(headerAdminToken)
	return subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) == 1
}

// RequireAdminToken guards staff-only routes. Successful requests carry
// the admin flag in context for downstream authorization checks.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !TokenMatches(r, expectedToken) {
				ctx := r.Context()
				requestID := request.GetRequestID(ctx)
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestID,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"admin token required"}`))
				return
			}

			ctx := requestcontext.WithAdmin(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
