package handler

import (
	"time"

	"summit/internal/delegate/models"
)

// DelegateResponse is the caller-facing shape of a delegate. Credential
// fields (password hash, reset PIN, expiry) and device tokens have no place
// here; the type makes their absence structural rather than relying on
// json:"-" tags downstream.
type DelegateResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Nationality string `json:"nationality,omitempty"`

	EventID   string `json:"event_id"`
	EventYear int    `json:"event_year"`

	DelegateType   string `json:"delegate_type"`
	AttendanceMode string `json:"attendance_mode"`

	Identification models.IDDocument `json:"identification"`

	Status string `json:"status"`

	ApprovedBy      string     `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedBy      string     `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CheckedInBy     string     `json:"checked_in_by,omitempty"`
	CheckedInAt     *time.Time `json:"checked_in_at,omitempty"`
	CheckInLocation string     `json:"check_in_location,omitempty"`

	Address           string                   `json:"address,omitempty"`
	EmergencyContact  *models.EmergencyContact `json:"emergency_contact,omitempty"`
	Accommodation     *models.Accommodation    `json:"accommodation,omitempty"`
	VisaStatus        string                   `json:"visa_status,omitempty"`
	FlightDetails     *models.FlightDetails    `json:"flight_details,omitempty"`
	SocialLinks       map[string]string        `json:"social_links,omitempty"`
	ConsentPhoto      bool                     `json:"consent_photo"`
	ConsentData       bool                     `json:"consent_data_processing"`
	ProfilePictureURL string                   `json:"profile_picture_url,omitempty"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromDelegate converts a domain delegate to its response shape.
func FromDelegate(d *models.Delegate) *DelegateResponse {
	return &DelegateResponse{
		ID:          d.ID.String(),
		Title:       d.Title,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Email:       d.Email,
		Phone:       d.Phone,
		Nationality: d.Nationality,

		EventID:   d.EventID.String(),
		EventYear: d.EventYear,

		DelegateType:   string(d.Type),
		AttendanceMode: string(d.AttendanceMode),

		Identification: d.Identification,

		Status: string(d.Status),

		ApprovedBy:      d.ApprovedBy,
		ApprovedAt:      d.ApprovedAt,
		RejectedBy:      d.RejectedBy,
		RejectedAt:      d.RejectedAt,
		RejectionReason: d.RejectionReason,
		CheckedInBy:     d.CheckedInBy,
		CheckedInAt:     d.CheckedInAt,
		CheckInLocation: d.CheckInLocation,

		Address:           d.Address,
		EmergencyContact:  d.EmergencyContact,
		Accommodation:     d.Accommodation,
		VisaStatus:        string(d.VisaStatus),
		FlightDetails:     d.FlightDetails,
		SocialLinks:       d.SocialLinks,
		ConsentPhoto:      d.ConsentPhoto,
		ConsentData:       d.ConsentData,
		ProfilePictureURL: d.ProfilePictureURL,

		Version:   d.Version,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// PageResponse is one page of a delegate listing.
type PageResponse struct {
	Items      []*DelegateResponse `json:"items"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalPages int                 `json:"total_pages"`
}

// FromPage converts a domain page to its response shape.
func FromPage(p *models.Page) *PageResponse {
	items := make([]*DelegateResponse, 0, len(p.Items))
	for _, d := range p.Items {
		items = append(items, FromDelegate(d))
	}
	return &PageResponse{
		Items:      items,
		Total:      p.Total,
		Page:       p.PageNumber,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages(),
	}
}

// LoginResponse carries the access token and the authenticated delegate.
type LoginResponse struct {
	Token    string            `json:"token"`
	Delegate *DelegateResponse `json:"delegate"`
}

// MessageResponse is a plain confirmation body for operations with no
// resource to return.
type MessageResponse struct {
	Message string `json:"message"`
}
