package handler

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"summit/internal/delegate/models"
)

// RegisterRequestSuite tests registration form validation and the one-time
// JSON field parsing.
type RegisterRequestSuite struct {
	suite.Suite
}

func TestRegisterRequestSuite(t *testing.T) {
	suite.Run(t, new(RegisterRequestSuite))
}

func (s *RegisterRequestSuite) validRequest() *RegisterRequest {
	return &RegisterRequest{
		FirstName:      "Amina",
		LastName:       "Odhiambo",
		Email:          "amina@example.com",
		Password:       "delegate-pass-1",
		EventYear:      "2026",
		DelegateType:   "observer",
		AttendanceMode: "physical",
	}
}

func (s *RegisterRequestSuite) TestValidation() {
	s.Run("valid request passes and assembles typed input", func() {
		req := s.validRequest()
		req.IdentificationJSON = `{"kind":"passport","number":"A1234567"}`
		req.SocialLinksJSON = `{"linkedin":"https://linkedin.com/in/amina"}`
		req.ConsentPhoto = "true"

		s.Require().NoError(req.Validate())

		input := req.Input()
		s.Equal(2026, input.EventYear)
		s.Equal(models.TypeObserver, input.Type)
		s.Equal(models.AttendancePhysical, input.AttendanceMode)
		s.Equal(models.IDPassport, input.Identification.Kind)
		s.Equal("A1234567", input.Identification.Number)
		s.True(input.ConsentPhoto)
		s.False(input.ConsentData)
	})

	s.Run("missing first name rejected", func() {
		req := s.validRequest()
		req.FirstName = "  "

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "first_name is required")
	})

	s.Run("email without at sign rejected", func() {
		req := s.validRequest()
		req.Email = "not-an-address"

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "email must be a valid address")
	})

	s.Run("short password rejected", func() {
		req := s.validRequest()
		req.Password = "short"

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "at least 8 characters")
	})

	s.Run("password over the hash limit rejected", func() {
		req := s.validRequest()
		req.Password = strings.Repeat("p", maxPasswordLength+1)

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "too long")
	})

	s.Run("non-numeric event year rejected", func() {
		req := s.validRequest()
		req.EventYear = "next year"

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "event_year must be a number")
	})

	s.Run("unknown delegate type rejected", func() {
		req := s.validRequest()
		req.DelegateType = "vip"

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "unknown delegate type")
	})

	s.Run("malformed identification JSON rejected", func() {
		req := s.validRequest()
		req.IdentificationJSON = `{"kind":`

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "identification must be valid JSON")
	})

	s.Run("unknown identification kind rejected", func() {
		req := s.validRequest()
		req.IdentificationJSON = `{"kind":"library_card"}`

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "unknown identification kind")
	})

	s.Run("too many social links rejected", func() {
		links := make([]string, 0, maxSocialLinks+1)
		for i := 0; i <= maxSocialLinks; i++ {
			links = append(links, fmt.Sprintf("%q:%q", fmt.Sprintf("site%d", i), "https://example.com"))
		}
		req := s.validRequest()
		req.SocialLinksJSON = "{" + strings.Join(links, ",") + "}"

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "too many social links")
	})

	s.Run("non-boolean consent rejected", func() {
		req := s.validRequest()
		req.ConsentData = "yes please"

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "consent_data_processing must be a boolean")
	})
}

// UpdateDelegateRequestSuite tests partial update validation.
type UpdateDelegateRequestSuite struct {
	suite.Suite
}

func TestUpdateDelegateRequestSuite(t *testing.T) {
	suite.Run(t, new(UpdateDelegateRequestSuite))
}

func (s *UpdateDelegateRequestSuite) TestValidation() {
	strPtr := func(v string) *string { return &v }

	s.Run("empty body rejected", func() {
		req := &UpdateDelegateRequest{}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "no fields to update")
	})

	s.Run("blank first name rejected", func() {
		req := &UpdateDelegateRequest{FirstName: strPtr("  ")}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "first_name cannot be empty")
	})

	s.Run("invalid email rejected", func() {
		req := &UpdateDelegateRequest{Email: strPtr("nope")}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "email must be a valid address")
	})

	s.Run("unknown visa status rejected", func() {
		req := &UpdateDelegateRequest{VisaStatus: strPtr("maybe")}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "unknown visa status")
	})

	s.Run("valid patch carries parsed enums", func() {
		req := &UpdateDelegateRequest{
			Phone:          strPtr("+254-700-000000"),
			AttendanceMode: strPtr("virtual"),
		}
		s.Require().NoError(req.Validate())

		patch := req.Patch()
		s.Require().NotNil(patch.Phone)
		s.Equal("+254-700-000000", *patch.Phone)
		s.Require().NotNil(patch.AttendanceMode)
		s.Equal(models.AttendanceVirtual, *patch.AttendanceMode)
		s.Nil(patch.Type)
	})
}

func TestParseListFilter(t *testing.T) {
	t.Run("parses the original parameter names", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/delegates?page=2&limit=25&year=2026&delegateType=observer&attendanceMode=hybrid&status=approved", nil)
		filter, err := parseListFilter(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filter.Page != 2 || filter.Limit != 25 || filter.EventYear != 2026 {
			t.Fatalf("unexpected pagination: %+v", filter)
		}
		if filter.Type != models.TypeObserver || filter.AttendanceMode != models.AttendanceHybrid || filter.Status != models.StatusApproved {
			t.Fatalf("unexpected filters: %+v", filter)
		}
	})

	t.Run("rejects non-numeric page", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/delegates?page=two", nil)
		if _, err := parseListFilter(r); err == nil {
			t.Fatalf("expected error for non-numeric page")
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/delegates?status=waitlisted", nil)
		if _, err := parseListFilter(r); err == nil {
			t.Fatalf("expected error for unknown status")
		}
	})

	t.Run("rejects malformed event id", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/delegates?eventId=nope", nil)
		if _, err := parseListFilter(r); err == nil {
			t.Fatalf("expected error for malformed event id")
		}
	})
}
