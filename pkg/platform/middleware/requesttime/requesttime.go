// Package requesttime pins a single "now" to each request. Approval
// timestamps, audit events, and PIN expiry checks within one request all
// observe the same instant.
package requesttime

import (
	"net/http"
	"time"

	"summit/pkg/requestcontext"
)

// Middleware captures time.Now once per request and stores it on the
// context for requestcontext.Now.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
