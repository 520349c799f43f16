package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"summit/internal/delegate/models"
	"summit/internal/delegate/service"
	id "summit/pkg/domain"
	dErrors "summit/pkg/domain-errors"
)

// Boundary caps. Oversized payloads are rejected before any parsing work.
const (
	maxMultipartMemory = 8 << 20
	maxUploadBytes     = 10 << 20
	maxFieldLength     = 500
	maxEmailLength     = 320
	minPasswordLength  = 8
	maxPasswordLength  = 72
	maxSocialLinks     = 20
)

// RegisterRequest is the multipart registration payload. Scalar fields come
// in as plain form values; nested structures arrive as stringified JSON and
// are parsed exactly once here, so nothing past this boundary ever sees an
// untyped value.
type RegisterRequest struct {
	Title          string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Nationality    string
	Password       string
	EventYear      string
	DelegateType   string
	AttendanceMode string
	VisaStatus     string
	Address        string
	ConsentPhoto   string
	ConsentData    string

	IdentificationJSON   string
	EmergencyContactJSON string
	AccommodationJSON    string
	FlightDetailsJSON    string
	SocialLinksJSON      string

	ProfilePicture *service.Upload
	Document       *service.Upload

	// Populated by Validate.
	input service.RegisterInput
}

// ParseRegisterForm reads the multipart registration form into a
// RegisterRequest. Call Validate on the result before using it.
func ParseRegisterForm(r *http.Request) (*RegisterRequest, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request must be multipart/form-data")
	}

	req := &RegisterRequest{
		Title:          r.FormValue("title"),
		FirstName:      r.FormValue("first_name"),
		LastName:       r.FormValue("last_name"),
		Email:          r.FormValue("email"),
		Phone:          r.FormValue("phone"),
		Nationality:    r.FormValue("nationality"),
		Password:       r.FormValue("password"),
		EventYear:      r.FormValue("event_year"),
		DelegateType:   r.FormValue("delegate_type"),
		AttendanceMode: r.FormValue("attendance_mode"),
		VisaStatus:     r.FormValue("visa_status"),
		Address:        r.FormValue("address"),
		ConsentPhoto:   r.FormValue("consent_photo"),
		ConsentData:    r.FormValue("consent_data_processing"),

		IdentificationJSON:   r.FormValue("identification"),
		EmergencyContactJSON: r.FormValue("emergency_contact"),
		AccommodationJSON:    r.FormValue("accommodation"),
		FlightDetailsJSON:    r.FormValue("flight_details"),
		SocialLinksJSON:      r.FormValue("social_links"),
	}

	picture, err := readUpload(r, "profile_picture")
	if err != nil {
		return nil, err
	}
	req.ProfilePicture = picture

	document, err := readUpload(r, "id_document")
	if err != nil {
		return nil, err
	}
	req.Document = document

	return req, nil
}

// readUpload pulls one optional file part out of the form, bounded at
// maxUploadBytes.
func readUpload(r *http.Request, field string) (*service.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "could not read %s file part", field)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "could not read %s file part", field)
	}
	if len(data) > maxUploadBytes {
		return nil, dErrors.Newf(dErrors.CodeValidation, "%s exceeds the %dMB upload limit", field, maxUploadBytes>>20)
	}
	return &service.Upload{Filename: header.Filename, Data: data}, nil
}

// Validate checks required fields, parses every enum and stringified JSON
// value, and assembles the typed service input.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	r.Title = strings.TrimSpace(r.Title)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Nationality = strings.TrimSpace(r.Nationality)
	r.Address = strings.TrimSpace(r.Address)

	if r.FirstName == "" {
		return dErrors.New(dErrors.CodeValidation, "first_name is required")
	}
	if r.LastName == "" {
		return dErrors.New(dErrors.CodeValidation, "last_name is required")
	}
	for _, field := range []struct{ name, value string }{
		{"title", r.Title},
		{"first_name", r.FirstName},
		{"last_name", r.LastName},
		{"phone", r.Phone},
		{"nationality", r.Nationality},
		{"address", r.Address},
	} {
		if len(field.value) > maxFieldLength {
			return dErrors.Newf(dErrors.CodeValidation, "%s exceeds max length", field.name)
		}
	}

	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if len(r.Email) > maxEmailLength || !strings.Contains(r.Email, "@") {
		return dErrors.New(dErrors.CodeValidation, "email must be a valid address")
	}

	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	if len(r.Password) < minPasswordLength {
		return dErrors.Newf(dErrors.CodeValidation, "password must be at least %d characters", minPasswordLength)
	}
	if len(r.Password) > maxPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password is too long")
	}

	eventYear, err := strconv.Atoi(strings.TrimSpace(r.EventYear))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "event_year must be a number")
	}

	delegateType, err := models.ParseDelegateType(strings.TrimSpace(r.DelegateType))
	if err != nil {
		return err
	}
	attendanceMode, err := models.ParseAttendanceMode(strings.TrimSpace(r.AttendanceMode))
	if err != nil {
		return err
	}

	input := service.RegisterInput{
		Title:          r.Title,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		Phone:          r.Phone,
		Nationality:    r.Nationality,
		Password:       r.Password,
		EventYear:      eventYear,
		Type:           delegateType,
		AttendanceMode: attendanceMode,
		Address:        r.Address,
		ProfilePicture: r.ProfilePicture,
		Document:       r.Document,
	}

	if v := strings.TrimSpace(r.VisaStatus); v != "" {
		visaStatus, err := models.ParseVisaStatus(v)
		if err != nil {
			return err
		}
		input.VisaStatus = visaStatus
	}

	if input.ConsentPhoto, err = parseBoolField(r.ConsentPhoto, "consent_photo"); err != nil {
		return err
	}
	if input.ConsentData, err = parseBoolField(r.ConsentData, "consent_data_processing"); err != nil {
		return err
	}

	identification, err := parseJSONField[models.IDDocument](r.IdentificationJSON, "identification")
	if err != nil {
		return err
	}
	if identification != nil {
		if identification.Kind != "" && !identification.Kind.IsValid() {
			return dErrors.Newf(dErrors.CodeValidation, "unknown identification kind %q", identification.Kind)
		}
		input.Identification = *identification
	}

	if input.EmergencyContact, err = parseJSONField[models.EmergencyContact](r.EmergencyContactJSON, "emergency_contact"); err != nil {
		return err
	}
	if input.Accommodation, err = parseJSONField[models.Accommodation](r.AccommodationJSON, "accommodation"); err != nil {
		return err
	}
	if input.FlightDetails, err = parseJSONField[models.FlightDetails](r.FlightDetailsJSON, "flight_details"); err != nil {
		return err
	}

	links, err := parseJSONField[map[string]string](r.SocialLinksJSON, "social_links")
	if err != nil {
		return err
	}
	if links != nil {
		if len(*links) > maxSocialLinks {
			return dErrors.New(dErrors.CodeValidation, "too many social links")
		}
		input.SocialLinks = *links
	}

	r.input = input
	return nil
}

// Input returns the typed service input assembled by Validate.
func (r *RegisterRequest) Input() service.RegisterInput {
	return r.input
}

// parseJSONField decodes one stringified-JSON form value. Empty values mean
// the field was not submitted.
func parseJSONField[T any](raw, name string) (*T, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, dErrors.Newf(dErrors.CodeValidation, "%s must be valid JSON", name)
	}
	return &v, nil
}

func parseBoolField(raw, name string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, dErrors.Newf(dErrors.CodeValidation, "%s must be a boolean", name)
	}
	return v, nil
}

// LoginRequest is the JSON body for POST /delegates/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	// Passwords are never trimmed; whitespace is significant.
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

// RequestPasswordResetRequest is the JSON body for
// POST /delegates/request-password-reset.
type RequestPasswordResetRequest struct {
	Email string `json:"email"`
}

func (r *RequestPasswordResetRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	return nil
}

// ConfirmPasswordResetRequest is the JSON body for
// POST /delegates/confirm-password-reset.
type ConfirmPasswordResetRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (r *ConfirmPasswordResetRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.Email = strings.TrimSpace(r.Email)
	r.Code = strings.TrimSpace(r.Code)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if r.Code == "" {
		return dErrors.New(dErrors.CodeValidation, "code is required")
	}
	if r.NewPassword == "" {
		return dErrors.New(dErrors.CodeValidation, "new_password is required")
	}
	if len(r.NewPassword) < minPasswordLength {
		return dErrors.Newf(dErrors.CodeValidation, "new_password must be at least %d characters", minPasswordLength)
	}
	if len(r.NewPassword) > maxPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "new_password is too long")
	}
	return nil
}

// ApproveRequest is the JSON body for POST /delegates/{id}/approve.
type ApproveRequest struct {
	ApprovedBy string `json:"approved_by"`
}

func (r *ApproveRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.ApprovedBy = strings.TrimSpace(r.ApprovedBy)
	if r.ApprovedBy == "" {
		return dErrors.New(dErrors.CodeValidation, "approved_by is required")
	}
	return nil
}

// RejectRequest is the JSON body for POST /delegates/{id}/reject.
type RejectRequest struct {
	Reason     string `json:"reason"`
	RejectedBy string `json:"rejected_by"`
}

func (r *RejectRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	r.RejectedBy = strings.TrimSpace(r.RejectedBy)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	if r.RejectedBy == "" {
		return dErrors.New(dErrors.CodeValidation, "rejected_by is required")
	}
	return nil
}

// CheckInRequest is the JSON body for POST /delegates/{id}/check-in.
// Both fields are optional; the handler tolerates an absent body.
type CheckInRequest struct {
	Location    string `json:"location"`
	CheckedInBy string `json:"checked_in_by"`
}

// PushTokenRequest is the JSON body for the push-token endpoint.
type PushTokenRequest struct {
	Token string `json:"token"`
}

func (r *PushTokenRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return dErrors.New(dErrors.CodeValidation, "token is required")
	}
	return nil
}

// UpdateDelegateRequest is the JSON body for PATCH /delegates/{id}. Nil
// fields stay untouched.
type UpdateDelegateRequest struct {
	Title       *string `json:"title"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Nationality *string `json:"nationality"`

	DelegateType   *string `json:"delegate_type"`
	AttendanceMode *string `json:"attendance_mode"`
	VisaStatus     *string `json:"visa_status"`

	Identification *models.IDDocument `json:"identification"`

	Address          *string                  `json:"address"`
	EmergencyContact *models.EmergencyContact `json:"emergency_contact"`
	Accommodation    *models.Accommodation    `json:"accommodation"`
	FlightDetails    *models.FlightDetails    `json:"flight_details"`
	SocialLinks      map[string]string        `json:"social_links"`
	ConsentPhoto     *bool                    `json:"consent_photo"`
	ConsentData      *bool                    `json:"consent_data_processing"`

	// Populated by Validate.
	patch models.Patch
}

func (r *UpdateDelegateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.isEmpty() {
		return dErrors.New(dErrors.CodeBadRequest, "no fields to update")
	}

	if r.FirstName != nil && strings.TrimSpace(*r.FirstName) == "" {
		return dErrors.New(dErrors.CodeValidation, "first_name cannot be empty")
	}
	if r.LastName != nil && strings.TrimSpace(*r.LastName) == "" {
		return dErrors.New(dErrors.CodeValidation, "last_name cannot be empty")
	}
	if r.Email != nil {
		email := strings.TrimSpace(*r.Email)
		if email == "" || len(email) > maxEmailLength || !strings.Contains(email, "@") {
			return dErrors.New(dErrors.CodeValidation, "email must be a valid address")
		}
	}
	if r.Identification != nil && r.Identification.Kind != "" && !r.Identification.Kind.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown identification kind %q", r.Identification.Kind)
	}
	if len(r.SocialLinks) > maxSocialLinks {
		return dErrors.New(dErrors.CodeValidation, "too many social links")
	}

	patch := models.Patch{
		Title:            r.Title,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Email:            r.Email,
		Phone:            r.Phone,
		Nationality:      r.Nationality,
		Identification:   r.Identification,
		Address:          r.Address,
		EmergencyContact: r.EmergencyContact,
		Accommodation:    r.Accommodation,
		FlightDetails:    r.FlightDetails,
		SocialLinks:      r.SocialLinks,
		ConsentPhoto:     r.ConsentPhoto,
		ConsentData:      r.ConsentData,
	}

	if r.DelegateType != nil {
		t, err := models.ParseDelegateType(strings.TrimSpace(*r.DelegateType))
		if err != nil {
			return err
		}
		patch.Type = &t
	}
	if r.AttendanceMode != nil {
		m, err := models.ParseAttendanceMode(strings.TrimSpace(*r.AttendanceMode))
		if err != nil {
			return err
		}
		patch.AttendanceMode = &m
	}
	if r.VisaStatus != nil {
		v, err := models.ParseVisaStatus(strings.TrimSpace(*r.VisaStatus))
		if err != nil {
			return err
		}
		patch.VisaStatus = &v
	}

	r.patch = patch
	return nil
}

// isEmpty reports whether no field was submitted at all.
func (r *UpdateDelegateRequest) isEmpty() bool {
	return r.Title == nil && r.FirstName == nil && r.LastName == nil &&
		r.Email == nil && r.Phone == nil && r.Nationality == nil &&
		r.DelegateType == nil && r.AttendanceMode == nil && r.VisaStatus == nil &&
		r.Identification == nil && r.Address == nil && r.EmergencyContact == nil &&
		r.Accommodation == nil && r.FlightDetails == nil && r.SocialLinks == nil &&
		r.ConsentPhoto == nil && r.ConsentData == nil
}

// Patch returns the typed partial update assembled by Validate.
func (r *UpdateDelegateRequest) Patch() *models.Patch {
	return &r.patch
}

// parseListFilter reads pagination and filter query parameters. Parameter
// names match the original API (camelCase).
func parseListFilter(r *http.Request) (*models.Filter, error) {
	q := r.URL.Query()
	filter := &models.Filter{}

	var err error
	if filter.Page, err = parseIntParam(q.Get("page"), "page"); err != nil {
		return nil, err
	}
	if filter.Limit, err = parseIntParam(q.Get("limit"), "limit"); err != nil {
		return nil, err
	}
	if filter.EventYear, err = parseIntParam(q.Get("year"), "year"); err != nil {
		return nil, err
	}

	if raw := strings.TrimSpace(q.Get("eventId")); raw != "" {
		eventID, err := id.ParseEventID(raw)
		if err != nil {
			return nil, err
		}
		filter.EventID = eventID
	}
	if raw := strings.TrimSpace(q.Get("delegateType")); raw != "" {
		t, err := models.ParseDelegateType(raw)
		if err != nil {
			return nil, err
		}
		filter.Type = t
	}
	if raw := strings.TrimSpace(q.Get("attendanceMode")); raw != "" {
		m, err := models.ParseAttendanceMode(raw)
		if err != nil {
			return nil, err
		}
		filter.AttendanceMode = m
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}

	return filter, nil
}

func parseIntParam(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeValidation, "%s must be a number", name)
	}
	return v, nil
}
