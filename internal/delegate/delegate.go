package delegate

import (
	"log/slog"

	"summit/internal/delegate/handler"
	"summit/internal/delegate/service"
	"summit/pkg/platform/middleware/auth"
)

// Service exposes delegate registration, lifecycle, credential, and query
// orchestration.
type Service = service.Service

// Handler wires HTTP endpoints to the delegate service.
type Handler = handler.Handler

// NewService constructs the delegate service with required dependencies.
// Side-effect collaborators (notifier, badge renderer, jobs, uploads, cache)
// are wired through options and degrade to no-ops when absent.
func NewService(delegates service.DelegateStore, events service.EventCatalog, tokens service.TokenIssuer, opts ...service.Option) *Service {
	return service.New(delegates, events, tokens, opts...)
}

// NewHandler constructs an HTTP handler for delegate routes.
func NewHandler(s *Service, tokens auth.TokenValidator, adminToken string, logger *slog.Logger) *Handler {
	return handler.New(s, tokens, adminToken, logger)
}
