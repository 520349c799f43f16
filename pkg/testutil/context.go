package testutil

import (
	"net/http"

	id "summit/pkg/domain"
	"summit/pkg/requestcontext"
)

// WithDelegate adds an authenticated delegate ID to the request context.
// This simulates what the JWT middleware would do for authenticated requests.
// If the delegateID is not a valid UUID, it is not added to the context.
func WithDelegate(req *http.Request, delegateID string) *http.Request {
	parsed, err := id.ParseDelegateID(delegateID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithDelegateID(req.Context(), parsed))
}

// WithAdmin marks the request context as admin-authenticated, simulating the
// admin-token middleware.
func WithAdmin(req *http.Request) *http.Request {
	return req.WithContext(requestcontext.WithAdmin(req.Context()))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
