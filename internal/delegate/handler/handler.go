// Package handler exposes the delegate API over HTTP. It owns request
// parsing and auth boundaries; every business rule lives in the service.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"summit/internal/delegate/models"
	"summit/internal/delegate/service"
	id "summit/pkg/domain"
	dErrors "summit/pkg/domain-errors"
	"summit/pkg/platform/httputil"
	"summit/pkg/platform/middleware/admin"
	"summit/pkg/platform/middleware/auth"
	"summit/pkg/requestcontext"
)

// Service defines the delegate operations the HTTP layer depends on.
type Service interface {
	Register(ctx context.Context, input service.RegisterInput) (*models.Delegate, error)

	Approve(ctx context.Context, delegateID id.DelegateID, approvedBy string) (*models.Delegate, error)
	Reject(ctx context.Context, delegateID id.DelegateID, reason, rejectedBy string) (*models.Delegate, error)
	CheckIn(ctx context.Context, delegateID id.DelegateID, location, checkedInBy string) (*models.Delegate, error)

	Login(ctx context.Context, email, password string) (string, *models.Delegate, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, email, pin, newPassword string) error

	List(ctx context.Context, filter *models.Filter) (*models.Page, error)
	Get(ctx context.Context, delegateID id.DelegateID) (*models.Delegate, error)
	GetByEmail(ctx context.Context, email string) (*models.Delegate, error)
	Update(ctx context.Context, delegateID id.DelegateID, patch *models.Patch) (*models.Delegate, error)
	Delete(ctx context.Context, delegateID id.DelegateID) error
	Statistics(ctx context.Context, eventID id.EventID) (*models.Statistics, error)
	Badge(ctx context.Context, delegateID id.DelegateID) ([]byte, error)
	RegisterPushToken(ctx context.Context, delegateID id.DelegateID, token string) error
}

// Handler wires delegate endpoints to the delegate service.
type Handler struct {
	service    Service
	tokens     auth.TokenValidator
	adminToken string
	logger     *slog.Logger
}

// New constructs a delegate handler with its dependencies.
func New(service Service, tokens auth.TokenValidator, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{
		service:    service,
		tokens:     tokens,
		adminToken: adminToken,
		logger:     logger,
	}
}

// Register mounts delegate endpoints on the router. Route groups carry
// their own auth: registration and credentials are public, management is
// staff-only, reads of a single delegate admit staff or the delegate itself.
func (h *Handler) Register(r chi.Router) {
	r.Route("/delegates", func(r chi.Router) {
		r.Post("/", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.Post("/request-password-reset", h.handleRequestPasswordReset)
		r.Post("/confirm-password-reset", h.handleConfirmPasswordReset)

		r.Group(func(r chi.Router) {
			r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
			r.Get("/", h.handleList)
			r.Get("/statistics", h.handleStatistics)
			r.Get("/email/{email}", h.handleGetByEmail)
			r.Patch("/{id}", h.handleUpdate)
			r.Delete("/{id}", h.handleDelete)
			r.Post("/{id}/approve", h.handleApprove)
			r.Post("/{id}/reject", h.handleReject)
			r.Post("/{id}/check-in", h.handleCheckIn)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.DelegateOrAdmin(h.tokens, h.adminToken, h.logger))
			r.Get("/{id}", h.handleGet)
			r.Get("/{id}/badge", h.handleBadge)
		})

		// The /delegate/{id} prefix is kept as-is from the original API.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireDelegate(h.tokens, h.logger))
			r.Post("/delegate/{id}/push-token", h.handleRegisterPushToken)
		})
	})
}

// handleRegister handles POST /delegates (multipart self-registration).
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, err := ParseRegisterForm(r)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to parse registration form",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(ctx, "registration validation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	d, err := h.service.Register(ctx, req.Input())
	if err != nil {
		h.writeServiceError(ctx, w, "register delegate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromDelegate(d))
}

// handleLogin handles POST /delegates/login.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	token, d, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(ctx, w, "login", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LoginResponse{
		Token:    token,
		Delegate: FromDelegate(d),
	})
}

// handleRequestPasswordReset handles POST /delegates/request-password-reset.
// The response never reveals whether the account exists.
func (h *Handler) handleRequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RequestPasswordResetRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.RequestPasswordReset(ctx, req.Email); err != nil {
		h.writeServiceError(ctx, w, "request password reset", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{
		Message: "if the account exists, a reset code has been sent",
	})
}

// handleConfirmPasswordReset handles POST /delegates/confirm-password-reset.
func (h *Handler) handleConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ConfirmPasswordResetRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.ConfirmPasswordReset(ctx, req.Email, req.Code, req.NewPassword); err != nil {
		h.writeServiceError(ctx, w, "confirm password reset", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "password updated"})
}

// handleList handles GET /delegates.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseListFilter(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid list filter",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	page, err := h.service.List(ctx, filter)
	if err != nil {
		h.writeServiceError(ctx, w, "list delegates", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPage(page))
}

// handleStatistics handles GET /delegates/statistics, optionally scoped to
// one event via ?eventId=.
func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var eventID id.EventID
	if raw := r.URL.Query().Get("eventId"); raw != "" {
		parsed, err := id.ParseEventID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		eventID = parsed
	}

	stats, err := h.service.Statistics(ctx, eventID)
	if err != nil {
		h.writeServiceError(ctx, w, "delegate statistics", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

// handleGetByEmail handles GET /delegates/email/{email}.
func (h *Handler) handleGetByEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	d, err := h.service.GetByEmail(ctx, chi.URLParam(r, "email"))
	if err != nil {
		h.writeServiceError(ctx, w, "get delegate by email", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDelegate(d))
}

// handleGet handles GET /delegates/{id} for staff or the delegate itself.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	delegateID, ok := h.delegateIDParam(w, r)
	if !ok {
		return
	}
	if err := requireSelfOrAdmin(ctx, delegateID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, err := h.service.Get(ctx, delegateID)
	if err != nil {
		h.writeServiceError(ctx, w, "get delegate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDelegate(d))
}

// handleUpdate handles PATCH /delegates/{id}.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	delegateID, ok := h.delegateIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateDelegateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	d, err := h.service.Update(ctx, delegateID, req.Patch())
	if err != nil {
		h.writeServiceError(ctx, w, "update delegate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDelegate(d))
}

// handleDelete handles DELETE /delegates/{id}.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	delegateID, ok := h.delegateIDParam(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, delegateID); err != nil {
		h.writeServiceError(ctx, w, "delete delegate", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleApprove handles POST /delegates/{id}/approve.
func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	delegateID, ok := h.delegateIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ApproveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	d, err := h.service.Approve(ctx, delegateID, req.ApprovedBy)
	if err != nil {
		h.writeServiceError(ctx, w, "approve delegate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDelegate(d))
}

// handleReject handles POST /delegates/{id}/reject.
func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	delegateID, ok := h.delegateIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RejectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	d, err := h.service.Reject(ctx, delegateID, req.Reason, req.RejectedBy)
	if err != nil {
		h.writeServiceError(ctx, w, "reject delegate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDelegate(d))
}

// handleCheckIn handles POST /delegates/{id}/check-in. The body is optional:
// location may be blank and the acting staff member defaults to the admin
// identity.
func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	delegateID, ok := h.delegateIDParam(w, r)
	if !ok {
		return
	}

	var req CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.WarnContext(ctx, "failed to decode check-in body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	checkedInBy := req.CheckedInBy
	if checkedInBy == "" {
		checkedInBy = "admin"
	}

	d, err := h.service.CheckIn(ctx, delegateID, req.Location, checkedInBy)
	if err != nil {
		h.writeServiceError(ctx, w, "check in delegate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDelegate(d))
}

// handleBadge handles GET /delegates/{id}/badge, serving the badge PNG.
func (h *Handler) handleBadge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	delegateID, ok := h.delegateIDParam(w, r)
	if !ok {
		return
	}
	if err := requireSelfOrAdmin(ctx, delegateID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	png, err := h.service.Badge(ctx, delegateID)
	if err != nil {
		h.writeServiceError(ctx, w, "render badge", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "badge-"+delegateID.String()+".png"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.logger.ErrorContext(ctx, "failed to write badge response",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

// handleRegisterPushToken handles POST /delegates/delegate/{id}/push-token.
// Only the authenticated delegate may register tokens for itself.
func (h *Handler) handleRegisterPushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	delegateID, ok := h.delegateIDParam(w, r)
	if !ok {
		return
	}
	if requestcontext.DelegateID(ctx) != delegateID {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "token subject does not match delegate id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[PushTokenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.RegisterPushToken(ctx, delegateID, req.Token); err != nil {
		h.writeServiceError(ctx, w, "register push token", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "push token registered"})
}

// delegateIDParam parses the {id} route parameter, writing the error
// response itself so callers can bail with a bare return.
func (h *Handler) delegateIDParam(w http.ResponseWriter, r *http.Request) (id.DelegateID, bool) {
	delegateID, err := id.ParseDelegateID(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.WarnContext(r.Context(), "invalid delegate id",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return id.DelegateID{}, false
	}
	return delegateID, true
}

// requireSelfOrAdmin admits staff and the delegate the resource belongs to.
func requireSelfOrAdmin(ctx context.Context, delegateID id.DelegateID) error {
	if requestcontext.IsAdmin(ctx) {
		return nil
	}
	if requestcontext.DelegateID(ctx) == delegateID {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "access restricted to the delegate or staff")
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
