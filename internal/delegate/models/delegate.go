package models

import (
	"strings"
	"time"

	id "summit/pkg/domain"
	dErrors "summit/pkg/domain-errors"
	platformstrings "summit/pkg/platform/strings"
)

// maxPushTokens caps the device tokens kept per delegate; oldest are
// evicted first.
const maxPushTokens = 10

// Delegate is the aggregate root for an event registration.
//
// Invariants:
//   - (Email, EventYear) is unique across delegates; Email is stored lowercase
//   - Status only changes through the lifecycle methods below; the generic
//     update path never touches it
//   - PasswordHash, ResetPIN, and ResetPINExpiresAt never appear in any
//     serialized representation returned to a caller (json:"-")
//   - CheckIn is only legal from approved
//
// Lifecycle transitions are applied through CanX/ApplyX pairs inside the
// store's Execute callback, so the precondition check and the mutation run
// under the same lock (mutex in memory, FOR UPDATE in Postgres). Two
// concurrent approvals cannot both pass the precondition.
type Delegate struct {
	ID id.DelegateID `json:"id"`

	// Identity
	Title       string `json:"title,omitempty"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Nationality string `json:"nationality,omitempty"`

	// Event association. EventYear is denormalized from the event catalog
	// so listing and uniqueness checks never need a join.
	EventID   id.EventID `json:"event_id"`
	EventYear int        `json:"event_year"`

	// Classification
	Type           DelegateType   `json:"delegate_type"`
	AttendanceMode AttendanceMode `json:"attendance_mode"`

	// Identification
	Identification IDDocument `json:"identification"`

	// Lifecycle
	Status Status `json:"status"`

	// Audit trail
	ApprovedBy      string     `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedBy      string     `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CheckedInBy     string     `json:"checked_in_by,omitempty"`
	CheckedInAt     *time.Time `json:"checked_in_at,omitempty"`
	CheckInLocation string     `json:"check_in_location,omitempty"`

	// Credentials. Write-only: excluded from every external representation.
	PasswordHash      string     `json:"-"`
	ResetPIN          string     `json:"-"`
	ResetPINExpiresAt *time.Time `json:"-"`

	// Logistics. Passive data; no lifecycle rules apply.
	Address           string            `json:"address,omitempty"`
	EmergencyContact  *EmergencyContact `json:"emergency_contact,omitempty"`
	Accommodation     *Accommodation    `json:"accommodation,omitempty"`
	VisaStatus        VisaStatus        `json:"visa_status,omitempty"`
	FlightDetails     *FlightDetails    `json:"flight_details,omitempty"`
	SocialLinks       map[string]string `json:"social_links,omitempty"`
	ConsentPhoto      bool              `json:"consent_photo"`
	ConsentData       bool              `json:"consent_data_processing"`
	ProfilePictureURL string            `json:"profile_picture_url,omitempty"`
	PushTokens        []string          `json:"-"`

	// Version implements optimistic locking for generic updates.
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IDDocument captures the identification presented at registration.
type IDDocument struct {
	Kind           IDDocumentKind `json:"kind,omitempty"`
	Number         string         `json:"number,omitempty"`
	Expiry         *time.Time     `json:"expiry,omitempty"`
	IssuingCountry string         `json:"issuing_country,omitempty"`
	DocumentURL    string         `json:"document_url,omitempty"`
}

// EmergencyContact is who to call if something happens to the delegate.
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship,omitempty"`
}

// Accommodation records where the delegate stays during the event.
type Accommodation struct {
	Hotel  string `json:"hotel,omitempty"`
	Room   string `json:"room,omitempty"`
	Nights int    `json:"nights,omitempty"`
}

// FlightDetails records arrival and departure flights.
type FlightDetails struct {
	ArrivalFlight    string     `json:"arrival_flight,omitempty"`
	ArrivalAt        *time.Time `json:"arrival_at,omitempty"`
	DepartureFlight  string     `json:"departure_flight,omitempty"`
	DepartureAt      *time.Time `json:"departure_at,omitempty"`
	ArrivalAirport   string     `json:"arrival_airport,omitempty"`
	DepartureAirport string     `json:"departure_airport,omitempty"`
}

// NewDelegate constructs a pending delegate and validates its invariants.
// The password hash is set separately by the service after hashing.
func NewDelegate(delegateID id.DelegateID, eventID id.EventID, eventYear int, firstName, lastName, email string, delegateType DelegateType, mode AttendanceMode, now time.Time) (*Delegate, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = NormalizeEmail(email)

	if firstName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "first name cannot be empty")
	}
	if lastName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "last name cannot be empty")
	}
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email cannot be empty")
	}
	if eventYear < 2000 || eventYear > 2200 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "event year out of range")
	}
	if !delegateType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid delegate type")
	}
	if !mode.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid attendance mode")
	}

	return &Delegate{
		ID:             delegateID,
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		EventID:        eventID,
		EventYear:      eventYear,
		Type:           delegateType,
		AttendanceMode: mode,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// NormalizeEmail lowercases and trims an email for storage and lookups.
// Uniqueness is case-insensitive per event year.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FullName renders the display name used on badges and in notifications.
func (d *Delegate) FullName() string {
	name := strings.TrimSpace(d.FirstName + " " + d.LastName)
	if d.Title != "" {
		return d.Title + " " + name
	}
	return name
}

// IsApproved reports whether the delegate may authenticate and check in.
func (d *Delegate) IsApproved() bool {
	return d.Status == StatusApproved
}

// CanApprove checks the approval precondition: any status except approved.
// Use with ApplyApproval in Execute callbacks so the check and the mutation
// run under the same lock.
func (d *Delegate) CanApprove() error {
	if !d.Status.CanTransitionTo(StatusApproved) {
		return dErrors.New(dErrors.CodeInvariantViolation, "delegate already approved")
	}
	return nil
}

// ApplyApproval transitions the delegate to approved and records the actor.
// Call CanApprove first to validate the transition.
func (d *Delegate) ApplyApproval(approvedBy string, now time.Time) {
	d.Status = StatusApproved
	d.ApprovedBy = approvedBy
	d.ApprovedAt = &now
	d.UpdatedAt = now
}

// CanReject checks the rejection precondition: any status except rejected.
// Rejection after approval is legal, matching the original workflow.
func (d *Delegate) CanReject() error {
	if !d.Status.CanTransitionTo(StatusRejected) {
		return dErrors.New(dErrors.CodeInvariantViolation, "delegate already rejected")
	}
	return nil
}

// ApplyRejection transitions the delegate to rejected with the given reason.
// Call CanReject first to validate the transition.
func (d *Delegate) ApplyRejection(reason, rejectedBy string, now time.Time) {
	d.Status = StatusRejected
	d.RejectionReason = reason
	d.RejectedBy = rejectedBy
	d.RejectedAt = &now
	d.UpdatedAt = now
}

// CanCheckIn checks the check-in precondition: status must be approved.
func (d *Delegate) CanCheckIn() error {
	if !d.Status.CanTransitionTo(StatusCheckedIn) {
		return dErrors.Newf(dErrors.CodeInvalidState, "delegate cannot be checked in, current status: %s", d.Status)
	}
	return nil
}

// ApplyCheckIn transitions the delegate to checked_in and records the venue
// details. Call CanCheckIn first to validate the transition.
func (d *Delegate) ApplyCheckIn(location, checkedInBy string, now time.Time) {
	d.Status = StatusCheckedIn
	d.CheckInLocation = location
	d.CheckedInBy = checkedInBy
	d.CheckedInAt = &now
	d.UpdatedAt = now
}

// SetResetPIN stores a password-reset PIN with its expiry.
func (d *Delegate) SetResetPIN(pin string, expiresAt time.Time) {
	d.ResetPIN = pin
	d.ResetPINExpiresAt = &expiresAt
}

// ClearResetPIN removes any outstanding reset PIN after use.
func (d *Delegate) ClearResetPIN() {
	d.ResetPIN = ""
	d.ResetPINExpiresAt = nil
}

// AddPushToken appends a device token, deduplicating and keeping only the
// most recent maxPushTokens entries.
func (d *Delegate) AddPushToken(token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	tokens := make([]string, 0, len(d.PushTokens)+1)
	for _, t := range d.PushTokens {
		if t != token {
			tokens = append(tokens, t)
		}
	}
	tokens = append(tokens, token)
	tokens = platformstrings.DedupeAndTrim(tokens)
	if len(tokens) > maxPushTokens {
		tokens = tokens[len(tokens)-maxPushTokens:]
	}
	d.PushTokens = tokens
}

// Clone returns a deep copy so stores can hand out snapshots that callers
// may mutate freely.
func (d *Delegate) Clone() *Delegate {
	clone := *d
	if d.ApprovedAt != nil {
		t := *d.ApprovedAt
		clone.ApprovedAt = &t
	}
	if d.RejectedAt != nil {
		t := *d.RejectedAt
		clone.RejectedAt = &t
	}
	if d.CheckedInAt != nil {
		t := *d.CheckedInAt
		clone.CheckedInAt = &t
	}
	if d.ResetPINExpiresAt != nil {
		t := *d.ResetPINExpiresAt
		clone.ResetPINExpiresAt = &t
	}
	if d.Identification.Expiry != nil {
		t := *d.Identification.Expiry
		clone.Identification.Expiry = &t
	}
	if d.EmergencyContact != nil {
		ec := *d.EmergencyContact
		clone.EmergencyContact = &ec
	}
	if d.Accommodation != nil {
		acc := *d.Accommodation
		clone.Accommodation = &acc
	}
	if d.FlightDetails != nil {
		fd := *d.FlightDetails
		clone.FlightDetails = &fd
		if fd.ArrivalAt != nil {
			t := *fd.ArrivalAt
			clone.FlightDetails.ArrivalAt = &t
		}
		if fd.DepartureAt != nil {
			t := *fd.DepartureAt
			clone.FlightDetails.DepartureAt = &t
		}
	}
	if d.SocialLinks != nil {
		clone.SocialLinks = make(map[string]string, len(d.SocialLinks))
		for k, v := range d.SocialLinks {
			clone.SocialLinks[k] = v
		}
	}
	if d.PushTokens != nil {
		clone.PushTokens = append([]string(nil), d.PushTokens...)
	}
	return &clone
}
