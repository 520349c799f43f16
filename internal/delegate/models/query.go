package models

import (
	id "summit/pkg/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter narrows a delegate listing. Zero values mean "no constraint".
type Filter struct {
	EventID        id.EventID
	Type           DelegateType
	AttendanceMode AttendanceMode
	EventYear      int
	Status         Status

	// Page is 1-based.
	Page  int
	Limit int
}

// Normalize clamps pagination to sane bounds.
func (f *Filter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
}

// Offset returns the row offset for the normalized page.
func (f *Filter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Matches reports whether a delegate satisfies every set constraint.
// Used by the in-memory store; the Postgres store compiles the same
// predicate into WHERE clauses.
func (f *Filter) Matches(d *Delegate) bool {
	if !f.EventID.IsNil() && d.EventID != f.EventID {
		return false
	}
	if f.Type != "" && d.Type != f.Type {
		return false
	}
	if f.AttendanceMode != "" && d.AttendanceMode != f.AttendanceMode {
		return false
	}
	if f.EventYear != 0 && d.EventYear != f.EventYear {
		return false
	}
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	return true
}

// Page bundles a listing result with its pagination metadata.
type Page struct {
	Items      []*Delegate
	Total      int
	PageNumber int
	PageSize   int
}

// TotalPages derives the page count from the total and page size.
func (p *Page) TotalPages() int {
	if p.PageSize == 0 {
		return 0
	}
	pages := p.Total / p.PageSize
	if p.Total%p.PageSize != 0 {
		pages++
	}
	return pages
}

// Statistics aggregates delegate counts for dashboards, optionally scoped
// to a single event.
type Statistics struct {
	Total            int            `json:"total"`
	ByStatus         map[string]int `json:"by_status"`
	ByType           map[string]int `json:"by_delegate_type"`
	ByAttendanceMode map[string]int `json:"by_attendance_mode"`
	ByNationality    map[string]int `json:"by_nationality"`
}

// NewStatistics returns an empty, fully initialized aggregate.
func NewStatistics() *Statistics {
	return &Statistics{
		ByStatus:         make(map[string]int),
		ByType:           make(map[string]int),
		ByAttendanceMode: make(map[string]int),
		ByNationality:    make(map[string]int),
	}
}

// Observe adds one delegate to the aggregate.
func (s *Statistics) Observe(d *Delegate) {
	s.Total++
	s.ByStatus[string(d.Status)]++
	s.ByType[string(d.Type)]++
	s.ByAttendanceMode[string(d.AttendanceMode)]++
	if d.Nationality != "" {
		s.ByNationality[d.Nationality]++
	}
}
