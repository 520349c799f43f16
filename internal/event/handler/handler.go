// Package handler exposes the event catalog over HTTP. Reads are public;
// catalog changes require the staff token.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"summit/internal/event/models"
	"summit/internal/event/service"
	id "summit/pkg/domain"
	dErrors "summit/pkg/domain-errors"
	"summit/pkg/platform/httputil"
	"summit/pkg/platform/middleware/admin"
	"summit/pkg/requestcontext"
)

// Service defines the catalog operations the HTTP layer depends on.
type Service interface {
	Create(ctx context.Context, input service.CreateInput) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	Get(ctx context.Context, eventID id.EventID) (*models.Event, error)
	Deactivate(ctx context.Context, eventID id.EventID) (*models.Event, error)
}

// Handler wires event endpoints to the catalog service.
type Handler struct {
	service    Service
	adminToken string
	logger     *slog.Logger
}

// New constructs an event handler with its dependencies.
func New(service Service, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{
		service:    service,
		adminToken: adminToken,
		logger:     logger,
	}
}

// Register mounts event endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)

		r.Group(func(r chi.Router) {
			r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
			r.Post("/", h.handleCreate)
			r.Post("/{id}/deactivate", h.handleDeactivate)
		})
	})
}

// handleCreate handles POST /events.
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateEventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	e, err := h.service.Create(ctx, req.Input())
	if err != nil {
		h.writeServiceError(ctx, w, "create event", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromEvent(e))
}

// handleList handles GET /events.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := h.service.List(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "list events", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvents(events))
}

// handleGet handles GET /events/{id}.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID, ok := h.eventIDParam(w, r)
	if !ok {
		return
	}
	e, err := h.service.Get(ctx, eventID)
	if err != nil {
		h.writeServiceError(ctx, w, "get event", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvent(e))
}

// handleDeactivate handles POST /events/{id}/deactivate.
func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID, ok := h.eventIDParam(w, r)
	if !ok {
		return
	}
	e, err := h.service.Deactivate(ctx, eventID)
	if err != nil {
		h.writeServiceError(ctx, w, "deactivate event", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvent(e))
}

// eventIDParam parses the {id} route parameter, writing the error response
// itself so callers can bail with a bare return.
func (h *Handler) eventIDParam(w http.ResponseWriter, r *http.Request) (id.EventID, bool) {
	eventID, err := id.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.WarnContext(r.Context(), "invalid event id",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return id.EventID{}, false
	}
	return eventID, true
}

// writeServiceError logs and writes a service failure. Expected rejections
// log at Warn; internal failures log at Error with full detail while the
// caller sees only the generic body.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	requestID := requestcontext.RequestID(ctx)
	if dErrors.HasCode(err, dErrors.CodeInternal, dErrors.CodeInvariantViolation) {
		h.logger.ErrorContext(ctx, op+" failed",
			"request_id", requestID,
			"error", err,
		)
	} else {
		h.logger.WarnContext(ctx, op+" rejected",
			"request_id", requestID,
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
