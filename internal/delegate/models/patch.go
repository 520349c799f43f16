package models

import (
	"strings"
	"time"
)

// Patch is a partial update of a delegate's identity and logistics fields.
// Nil means "leave unchanged". Lifecycle status, credential, and audit-trail
// fields are deliberately absent: those only move through the lifecycle
// operations.
type Patch struct {
	Title       *string
	FirstName   *string
	LastName    *string
	Email       *string
	Phone       *string
	Nationality *string

	Type           *DelegateType
	AttendanceMode *AttendanceMode

	Identification *IDDocument

	Address          *string
	EmergencyContact *EmergencyContact
	Accommodation    *Accommodation
	VisaStatus       *VisaStatus
	FlightDetails    *FlightDetails
	SocialLinks      map[string]string
	ConsentPhoto     *bool
	ConsentData      *bool
}

// ChangesEmail reports whether the patch sets an email different from
// current. Callers re-check (email, eventYear) uniqueness when it does.
func (p *Patch) ChangesEmail(current string) bool {
	return p.Email != nil && NormalizeEmail(*p.Email) != current
}

// Apply writes the set fields onto the delegate and bumps UpdatedAt.
// The caller persists with an optimistic version check.
func (p *Patch) Apply(d *Delegate, now time.Time) {
	if p.Title != nil {
		d.Title = strings.TrimSpace(*p.Title)
	}
	if p.FirstName != nil {
		d.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		d.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.Email != nil {
		d.Email = NormalizeEmail(*p.Email)
	}
	if p.Phone != nil {
		d.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Nationality != nil {
		d.Nationality = strings.TrimSpace(*p.Nationality)
	}
	if p.Type != nil {
		d.Type = *p.Type
	}
	if p.AttendanceMode != nil {
		d.AttendanceMode = *p.AttendanceMode
	}
	if p.Identification != nil {
		d.Identification = *p.Identification
	}
	if p.Address != nil {
		d.Address = strings.TrimSpace(*p.Address)
	}
	if p.EmergencyContact != nil {
		ec := *p.EmergencyContact
		d.EmergencyContact = &ec
	}
	if p.Accommodation != nil {
		acc := *p.Accommodation
		d.Accommodation = &acc
	}
	if p.VisaStatus != nil {
		d.VisaStatus = *p.VisaStatus
	}
	if p.FlightDetails != nil {
		fd := *p.FlightDetails
		d.FlightDetails = &fd
	}
	if p.SocialLinks != nil {
		d.SocialLinks = p.SocialLinks
	}
	if p.ConsentPhoto != nil {
		d.ConsentPhoto = *p.ConsentPhoto
	}
	if p.ConsentData != nil {
		d.ConsentData = *p.ConsentData
	}
	d.UpdatedAt = now
}
