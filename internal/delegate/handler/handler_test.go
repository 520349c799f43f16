package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"summit/internal/badge"
	"summit/internal/delegate/service"
	delegatestore "summit/internal/delegate/store/memory"
	eventservice "summit/internal/event/service"
	eventstore "summit/internal/event/store/memory"
	"summit/internal/jwt"
)

const (
	adminToken = "secret-token"
	eventYear  = 2026
)

// newDelegateRouter wires the real service over in-memory stores, with the
// event catalog seeded with one active edition.
func newDelegateRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	catalog := eventservice.New(eventstore.NewStore(), eventservice.WithLogger(logger))
	starts := time.Date(eventYear, 9, 10, 9, 0, 0, 0, time.UTC)
	_, err := catalog.Create(context.Background(), eventservice.CreateInput{
		Year:     eventYear,
		Name:     "Nairobi Summit",
		StartsAt: starts,
		EndsAt:   starts.AddDate(0, 0, 3),
	})
	if err != nil {
		t.Fatalf("failed to seed event catalog: %v", err)
	}

	jwtService := jwt.NewService("handler-test-signing-key", "summit-api", time.Hour)
	svc := service.New(delegatestore.NewStore(), catalog, jwtService,
		service.WithLogger(logger),
		service.WithBadgeRenderer(badge.NewRenderer()),
	)

	h := New(svc, jwt.NewValidator(jwtService), adminToken, logger)
	r := chi.NewRouter()
	h.Register(r)
	return r
}

// registrationForm builds a minimal valid multipart registration.
func registrationForm(t *testing.T, email string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"first_name":      "Amina",
		"last_name":       "Odhiambo",
		"email":           email,
		"password":        "delegate-pass-1",
		"event_year":      fmt.Sprintf("%d", eventYear),
		"delegate_type":   "observer",
		"attendance_mode": "physical",
		"nationality":     "Kenyan",
		"identification":  `{"kind":"passport","number":"A1234567"}`,
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("failed to write form field %s: %v", name, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

type delegateBody struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	EventYear   int       `json:"event_year"`
	Status      string    `json:"status"`
	ApprovedBy  string    `json:"approved_by"`
	CheckedInBy string    `json:"checked_in_by"`
	Location    string    `json:"check_in_location"`
}

func register(t *testing.T, router http.Handler, email string) delegateBody {
	t.Helper()
	body, contentType := registrationForm(t, email)
	req := httptest.NewRequest(http.MethodPost, "/delegates", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 registering delegate, got %d: %s", rec.Code, rec.Body.String())
	}

	var d delegateBody
	if err := json.NewDecoder(rec.Body).Decode(&d); err != nil {
		t.Fatalf("failed to decode registration response: %v", err)
	}
	return d
}

func postJSON(t *testing.T, router http.Handler, path string, payload any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func adminHeader() http.Header {
	return http.Header{"X-Admin-Token": []string{adminToken}}
}

func bearerHeader(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func approve(t *testing.T, router http.Handler, delegateID uuid.UUID) delegateBody {
	t.Helper()
	rec := postJSON(t, router, "/delegates/"+delegateID.String()+"/approve",
		map[string]string{"approved_by": "review-board"}, adminHeader())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 approving delegate, got %d: %s", rec.Code, rec.Body.String())
	}
	var d delegateBody
	if err := json.NewDecoder(rec.Body).Decode(&d); err != nil {
		t.Fatalf("failed to decode approval response: %v", err)
	}
	return d
}

func login(t *testing.T, router http.Handler, email string) (string, delegateBody) {
	t.Helper()
	rec := postJSON(t, router, "/delegates/login",
		map[string]string{"email": email, "password": "delegate-pass-1"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 logging in, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token    string       `json:"token"`
		Delegate delegateBody `json:"delegate"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected token in login response")
	}
	return resp.Token, resp.Delegate
}

func TestRegisterDelegate(t *testing.T) {
	router := newDelegateRouter(t)

	d := register(t, router, "amina@example.com")
	if d.Status != "pending" {
		t.Fatalf("expected pending status after registration, got %q", d.Status)
	}
	if d.EventYear != eventYear {
		t.Fatalf("expected event year %d, got %d", eventYear, d.EventYear)
	}

	// Same email and year again conflicts.
	body, contentType := registrationForm(t, "amina@example.com")
	req := httptest.NewRequest(http.MethodPost, "/delegates", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate registration, got %d", rec.Code)
	}
}

func TestRegisterResponseOmitsCredentials(t *testing.T) {
	router := newDelegateRouter(t)

	body, contentType := registrationForm(t, "no-secrets@example.com")
	req := httptest.NewRequest(http.MethodPost, "/delegates", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	raw := rec.Body.String()
	for _, needle := range []string{"password", "reset_pin", "push_tokens"} {
		if strings.Contains(raw, needle) {
			t.Fatalf("response leaked %q: %s", needle, raw)
		}
	}
}

func TestRegisterUnknownEventYear(t *testing.T) {
	router := newDelegateRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range map[string]string{
		"first_name":      "Ghost",
		"last_name":       "Year",
		"email":           "ghost@example.com",
		"password":        "delegate-pass-1",
		"event_year":      "2031",
		"delegate_type":   "observer",
		"attendance_mode": "physical",
	} {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("failed to write form field: %v", err)
		}
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/delegates", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown event year, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminTokenRequired(t *testing.T) {
	router := newDelegateRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/delegates", nil)
	// No admin token header set
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when admin token missing, got %d", rec.Code)
	}
}

func TestLifecycleOverHTTP(t *testing.T) {
	router := newDelegateRouter(t)

	registered := register(t, router, "lifecycle@example.com")

	// Login before approval is refused.
	rec := postJSON(t, router, "/delegates/login",
		map[string]string{"email": "lifecycle@example.com", "password": "delegate-pass-1"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 logging in before approval, got %d", rec.Code)
	}

	approved := approve(t, router, registered.ID)
	if approved.Status != "approved" || approved.ApprovedBy != "review-board" {
		t.Fatalf("unexpected approval state: %+v", approved)
	}

	// Approving twice conflicts.
	rec = postJSON(t, router, "/delegates/"+registered.ID.String()+"/approve",
		map[string]string{"approved_by": "review-board"}, adminHeader())
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 approving twice, got %d", rec.Code)
	}

	if _, d := login(t, router, "lifecycle@example.com"); d.ID != registered.ID {
		t.Fatalf("login returned a different delegate")
	}

	// Check-in with an empty body defaults the actor.
	rec = postJSON(t, router, "/delegates/"+registered.ID.String()+"/check-in", nil, adminHeader())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 checking in, got %d: %s", rec.Code, rec.Body.String())
	}
	var checkedIn delegateBody
	if err := json.NewDecoder(rec.Body).Decode(&checkedIn); err != nil {
		t.Fatalf("failed to decode check-in response: %v", err)
	}
	if checkedIn.Status != "checked_in" || checkedIn.CheckedInBy != "admin" {
		t.Fatalf("unexpected check-in state: %+v", checkedIn)
	}
}

func TestRejectRequiresReasonAndActor(t *testing.T) {
	router := newDelegateRouter(t)
	registered := register(t, router, "reject-me@example.com")

	rec := postJSON(t, router, "/delegates/"+registered.ID.String()+"/reject",
		map[string]string{"reason": "incomplete documents"}, adminHeader())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 rejecting without actor, got %d", rec.Code)
	}

	rec = postJSON(t, router, "/delegates/"+registered.ID.String()+"/reject",
		map[string]string{"reason": "incomplete documents", "rejected_by": "review-board"}, adminHeader())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 rejecting, got %d: %s", rec.Code, rec.Body.String())
	}
	var rejected delegateBody
	if err := json.NewDecoder(rec.Body).Decode(&rejected); err != nil {
		t.Fatalf("failed to decode rejection response: %v", err)
	}
	if rejected.Status != "rejected" {
		t.Fatalf("expected rejected status, got %q", rejected.Status)
	}
}

func TestDelegateSelfAccess(t *testing.T) {
	router := newDelegateRouter(t)

	registered := register(t, router, "self@example.com")
	approve(t, router, registered.ID)
	token, _ := login(t, router, "self@example.com")

	// The delegate can read its own record.
	req := httptest.NewRequest(http.MethodGet, "/delegates/"+registered.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 reading own record, got %d", rec.Code)
	}

	// Another delegate's record is off limits.
	other := register(t, router, "other@example.com")
	req = httptest.NewRequest(http.MethodGet, "/delegates/"+other.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 reading another delegate, got %d", rec.Code)
	}

	// Staff read anything.
	req = httptest.NewRequest(http.MethodGet, "/delegates/"+other.ID.String(), nil)
	req.Header.Set("X-Admin-Token", adminToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for staff read, got %d", rec.Code)
	}

	// No credentials at all is unauthorized.
	req = httptest.NewRequest(http.MethodGet, "/delegates/"+registered.ID.String(), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", rec.Code)
	}
}

func TestBadgeDownload(t *testing.T) {
	router := newDelegateRouter(t)

	registered := register(t, router, "badge@example.com")
	approve(t, router, registered.ID)
	token, _ := login(t, router, "badge@example.com")

	req := httptest.NewRequest(http.MethodGet, "/delegates/"+registered.ID.String()+"/badge", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 downloading badge, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("expected image/png, got %q", got)
	}
	// PNG magic bytes.
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("expected PNG payload")
	}
}

func TestPushTokenSubjectMatch(t *testing.T) {
	router := newDelegateRouter(t)

	registered := register(t, router, "push@example.com")
	approve(t, router, registered.ID)
	token, _ := login(t, router, "push@example.com")

	other := register(t, router, "push-other@example.com")

	// A delegate cannot register tokens for someone else.
	rec := postJSON(t, router, "/delegates/delegate/"+other.ID.String()+"/push-token",
		map[string]string{"token": "fcm-token-1"}, bearerHeader(token))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 registering token for another delegate, got %d", rec.Code)
	}

	rec = postJSON(t, router, "/delegates/delegate/"+registered.ID.String()+"/push-token",
		map[string]string{"token": "fcm-token-1"}, bearerHeader(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 registering own push token, got %d: %s", rec.Code, rec.Body.String())
	}

	// Admin token alone does not satisfy the delegate-only guard.
	rec = postJSON(t, router, "/delegates/delegate/"+registered.ID.String()+"/push-token",
		map[string]string{"token": "fcm-token-2"}, adminHeader())
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for push token without bearer, got %d", rec.Code)
	}
}

func TestListAndStatistics(t *testing.T) {
	router := newDelegateRouter(t)

	first := register(t, router, "list-a@example.com")
	register(t, router, "list-b@example.com")
	approve(t, router, first.ID)

	req := httptest.NewRequest(http.MethodGet, "/delegates?status=approved&limit=10", nil)
	req.Header.Set("X-Admin-Token", adminToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing delegates, got %d: %s", rec.Code, rec.Body.String())
	}
	var page struct {
		Items []delegateBody `json:"items"`
		Total int            `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatalf("failed to decode page: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].ID != first.ID {
		t.Fatalf("expected one approved delegate, got %+v", page)
	}

	statsReq := httptest.NewRequest(http.MethodGet, "/delegates/statistics", nil)
	statsReq.Header.Set("X-Admin-Token", adminToken)
	statsRec := httptest.NewRecorder()
	router.ServeHTTP(statsRec, statsReq)
	if statsRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for statistics, got %d", statsRec.Code)
	}
	var stats struct {
		Total    int            `json:"total"`
		ByStatus map[string]int `json:"by_status"`
	}
	if err := json.NewDecoder(statsRec.Body).Decode(&stats); err != nil {
		t.Fatalf("failed to decode statistics: %v", err)
	}
	if stats.Total != 2 || stats.ByStatus["approved"] != 1 || stats.ByStatus["pending"] != 1 {
		t.Fatalf("unexpected statistics: %+v", stats)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	router := newDelegateRouter(t)
	registered := register(t, router, "update-me@example.com")

	patchBody, _ := json.Marshal(map[string]string{"phone": "+254-700-000000"})
	patchReq := httptest.NewRequest(http.MethodPatch, "/delegates/"+registered.ID.String(), bytes.NewReader(patchBody))
	patchReq.Header.Set("Content-Type", "application/json")
	patchReq.Header.Set("X-Admin-Token", adminToken)
	patchRec := httptest.NewRecorder()
	router.ServeHTTP(patchRec, patchReq)
	if patchRec.Code != http.StatusOK {
		t.Fatalf("expected 200 updating delegate, got %d: %s", patchRec.Code, patchRec.Body.String())
	}

	deleteReq := httptest.NewRequest(http.MethodDelete, "/delegates/"+registered.ID.String(), nil)
	deleteReq.Header.Set("X-Admin-Token", adminToken)
	deleteRec := httptest.NewRecorder()
	router.ServeHTTP(deleteRec, deleteReq)
	if deleteRec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 deleting delegate, got %d", deleteRec.Code)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/delegates/"+registered.ID.String(), nil)
	getReq.Header.Set("X-Admin-Token", adminToken)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	if getRec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", getRec.Code)
	}
}
