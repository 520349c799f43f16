package models

import (
	dErrors "summit/pkg/domain-errors"
)

// Status is the lifecycle stage of a delegate registration.
//
// State machine:
//
//	pending  --approve--> approved --check-in--> checked_in
//	pending  --reject---> rejected
//	approved --reject---> rejected
//
// suspended is a valid stored status but no API operation transitions into
// it; it can only be set by a direct data operation. Approval is legal from
// every status except approved itself, which preserves the original
// workflow's precondition exactly.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusSuspended Status = "suspended"
	StatusCheckedIn Status = "checked_in"
)

// CanTransitionTo reports whether the workflow allows moving to target.
func (s Status) CanTransitionTo(target Status) bool {
	switch target {
	case StatusApproved:
		return s != StatusApproved
	case StatusRejected:
		return s != StatusRejected
	case StatusCheckedIn:
		return s == StatusApproved
	default:
		return false
	}
}

// IsValid reports whether s is one of the known status values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusSuspended, StatusCheckedIn:
		return true
	}
	return false
}

// ParseStatus validates a status string from an external boundary.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown status %q", s)
	}
	return status, nil
}

// DelegateType classifies a delegate's relationship to the event.
type DelegateType string

const (
	TypeBoardMember DelegateType = "board_member"
	TypeObserver    DelegateType = "observer"
	TypeGuest       DelegateType = "guest"
	TypeStaff       DelegateType = "staff"
	TypePress       DelegateType = "press"
	TypeOther       DelegateType = "other"
)

func (t DelegateType) IsValid() bool {
	switch t {
	case TypeBoardMember, TypeObserver, TypeGuest, TypeStaff, TypePress, TypeOther:
		return true
	}
	return false
}

// ParseDelegateType validates a delegate type string from an external boundary.
func ParseDelegateType(s string) (DelegateType, error) {
	t := DelegateType(s)
	if !t.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown delegate type %q", s)
	}
	return t, nil
}

// AttendanceMode is how the delegate plans to attend.
type AttendanceMode string

const (
	AttendancePhysical AttendanceMode = "physical"
	AttendanceVirtual  AttendanceMode = "virtual"
	AttendanceHybrid   AttendanceMode = "hybrid"
)

func (m AttendanceMode) IsValid() bool {
	switch m {
	case AttendancePhysical, AttendanceVirtual, AttendanceHybrid:
		return true
	}
	return false
}

// ParseAttendanceMode validates an attendance mode string from an external boundary.
func ParseAttendanceMode(s string) (AttendanceMode, error) {
	m := AttendanceMode(s)
	if !m.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown attendance mode %q", s)
	}
	return m, nil
}

// IDDocumentKind is the kind of identification document presented.
type IDDocumentKind string

const (
	IDPassport       IDDocumentKind = "passport"
	IDNationalID     IDDocumentKind = "national_id"
	IDDriversLicense IDDocumentKind = "drivers_license"
	IDDiplomatic     IDDocumentKind = "diplomatic"
)

func (k IDDocumentKind) IsValid() bool {
	switch k {
	case IDPassport, IDNationalID, IDDriversLicense, IDDiplomatic:
		return true
	}
	return false
}

// ParseIDDocumentKind validates an identification kind string from an external boundary.
func ParseIDDocumentKind(s string) (IDDocumentKind, error) {
	k := IDDocumentKind(s)
	if !k.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown identification kind %q", s)
	}
	return k, nil
}

// VisaStatus tracks the delegate's travel paperwork. Passive data; no
// lifecycle rules depend on it.
type VisaStatus string

const (
	VisaNotRequired VisaStatus = "not_required"
	VisaPending     VisaStatus = "pending"
	VisaIssued      VisaStatus = "issued"
	VisaDenied      VisaStatus = "denied"
)

func (v VisaStatus) IsValid() bool {
	switch v {
	case VisaNotRequired, VisaPending, VisaIssued, VisaDenied:
		return true
	}
	return false
}

// ParseVisaStatus validates a visa status string from an external boundary.
func ParseVisaStatus(s string) (VisaStatus, error) {
	v := VisaStatus(s)
	if !v.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown visa status %q", s)
	}
	return v, nil
}
