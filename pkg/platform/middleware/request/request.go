// Package request provides request-id middleware. Every request gets a
// correlation id, propagated from the client when supplied and echoed back
// in the response so support can match logs to reports.
package request

import (
	"context"
	"net/http"

	"summit/pkg/requestcontext"

	"github.com/google/uuid"
)

const headerRequestID = "X-Request-ID"

// RequestID attaches a request id to the context and response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(headerRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request id from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
