package event

import (
	"log/slog"

	"summit/internal/event/handler"
	"summit/internal/event/service"
)

// Service exposes event catalog orchestration.
type Service = service.Service

// Handler wires HTTP endpoints to the catalog service.
type Handler = handler.Handler

// NewService constructs the event service with required dependencies.
func NewService(events service.Store, opts ...service.Option) *Service {
	return service.New(events, opts...)
}

// NewHandler constructs an HTTP handler for event catalog routes.
func NewHandler(s *Service, adminToken string, logger *slog.Logger) *Handler {
	return handler.New(s, adminToken, logger)
}
