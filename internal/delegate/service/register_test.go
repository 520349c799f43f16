package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	blobmocks "summit/internal/blob/mocks"
	"summit/internal/delegate/models"
	"summit/internal/delegate/secrets"
	"summit/internal/delegate/service/mocks"
	"summit/internal/delegate/store/memory"
	eventmodels "summit/internal/event/models"
	id "summit/pkg/domain"
	dErrors "summit/pkg/domain-errors"
	"summit/pkg/platform/audit"
	auditmemory "summit/pkg/platform/audit/store/memory"
)

type RegisterSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	store        *memory.Store
	auditStore   *auditmemory.InMemoryStore
	mockEvents   *mocks.MockEventCatalog
	mockNotifier *mocks.MockNotifier
	mockJobs     *mocks.MockJobEnqueuer
	mockUploads  *blobmocks.MockStorage
	service      *Service
}

func TestRegisterSuite(t *testing.T) {
	suite.Run(t, new(RegisterSuite))
}

func (s *RegisterSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = memory.NewStore()
	s.auditStore = auditmemory.NewInMemoryStore()
	s.mockEvents = mocks.NewMockEventCatalog(s.ctrl)
	s.mockNotifier = mocks.NewMockNotifier(s.ctrl)
	s.mockJobs = mocks.NewMockJobEnqueuer(s.ctrl)
	s.mockUploads = blobmocks.NewMockStorage(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(
		s.store,
		s.mockEvents,
		mocks.NewMockTokenIssuer(s.ctrl),
		WithLogger(logger),
		WithAuditStore(s.auditStore),
		WithNotifier(s.mockNotifier),
		WithJobs(s.mockJobs),
		WithUploads(s.mockUploads),
	)
}

func (s *RegisterSuite) validInput() RegisterInput {
	return RegisterInput{
		FirstName:      "Amina",
		LastName:       "Yusupova",
		Email:          "Amina.Yusupova@Example.com",
		Password:       "Secret123!",
		EventYear:      2026,
		Type:           models.TypeObserver,
		AttendanceMode: models.AttendancePhysical,
		Nationality:    "UZ",
		ConsentData:    true,
	}
}

func (s *RegisterSuite) activeEvent(year int) *eventmodels.Event {
	return &eventmodels.Event{
		ID:     id.NewEventID(),
		Year:   year,
		Name:   fmt.Sprintf("Summit %d", year),
		Active: true,
	}
}

func (s *RegisterSuite) smallPNG() []byte {
	var buf bytes.Buffer
	s.Require().NoError(png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

// seedExisting inserts a delegate with the given email and year directly.
func (s *RegisterSuite) seedExisting(email string, year int) {
	d, err := models.NewDelegate(id.NewDelegateID(), id.NewEventID(), year, "Prior", "Registrant", email, models.TypeGuest, models.AttendanceVirtual, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(context.Background(), d))
}

func (s *RegisterSuite) TestRegister() {
	ctx := context.Background()

	s.Run("creates a pending delegate", func() {
		event := s.activeEvent(2026)
		s.mockEvents.EXPECT().GetByYear(gomock.Any(), 2026).Return(event, nil)
		s.mockNotifier.EXPECT().RegistrationReceived(gomock.Any(), gomock.Any())
		s.mockJobs.EXPECT().EnqueueReviewPush(gomock.Any(), gomock.Any()).Return(nil)

		input := s.validInput()
		d, err := s.service.Register(ctx, input)
		s.Require().NoError(err)

		s.Equal(models.StatusPending, d.Status)
		s.Equal("amina.yusupova@example.com", d.Email)
		s.Equal(event.ID, d.EventID)
		s.Equal(2026, d.EventYear)
		s.NotEqual(input.Password, d.PasswordHash)
		s.NoError(secrets.Verify(input.Password, d.PasswordHash))

		stored, err := s.store.FindByID(ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, stored.Status)
		s.Equal(1, stored.Version)

		events, err := s.auditStore.ListByDelegate(ctx, d.ID)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(audit.KindDelegateRegistered, events[0].Kind)
		s.Equal(strconv.Itoa(2026), events[0].Metadata["event_year"])
	})

	s.Run("duplicate email in the same year conflicts", func() {
		s.seedExisting("taken@example.com", 2026)
		s.mockEvents.EXPECT().GetByYear(gomock.Any(), 2026).Return(s.activeEvent(2026), nil)

		input := s.validInput()
		input.Email = "Taken@Example.com"
		_, err := s.service.Register(ctx, input)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("same email across years is allowed", func() {
		s.seedExisting("returning@example.com", 2025)
		s.mockEvents.EXPECT().GetByYear(gomock.Any(), 2026).Return(s.activeEvent(2026), nil)
		s.mockNotifier.EXPECT().RegistrationReceived(gomock.Any(), gomock.Any())
		s.mockJobs.EXPECT().EnqueueReviewPush(gomock.Any(), gomock.Any()).Return(nil)

		input := s.validInput()
		input.Email = "returning@example.com"
		d, err := s.service.Register(ctx, input)
		s.Require().NoError(err)
		s.Equal(2026, d.EventYear)
	})

	s.Run("unknown event year is not found", func() {
		s.mockEvents.EXPECT().GetByYear(gomock.Any(), 2031).Return(nil, dErrors.New(dErrors.CodeNotFound, "event not found"))

		input := s.validInput()
		input.EventYear = 2031
		_, err := s.service.Register(ctx, input)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Contains(err.Error(), "no event found for year 2031")
	})

	s.Run("inactive event refuses registrations", func() {
		event := s.activeEvent(2026)
		event.Active = false
		s.mockEvents.EXPECT().GetByYear(gomock.Any(), 2026).Return(event, nil)

		_, err := s.service.Register(ctx, s.validInput())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("review push enqueue failure does not fail registration", func() {
		s.mockEvents.EXPECT().GetByYear(gomock.Any(), 2026).Return(s.activeEvent(2026), nil)
		s.mockNotifier.EXPECT().RegistrationReceived(gomock.Any(), gomock.Any())
		s.mockJobs.EXPECT().EnqueueReviewPush(gomock.Any(), gomock.Any()).Return(fmt.Errorf("redis is down"))

		input := s.validInput()
		input.Email = "resilient@example.com"
		d, err := s.service.Register(ctx, input)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, d.Status)
	})

	s.Run("invalid identity is rejected before any write", func() {
		s.mockEvents.EXPECT().GetByYear(gomock.Any(), 2026).Return(s.activeEvent(2026), nil)

		input := s.validInput()
		input.FirstName = "   "
		_, err := s.service.Register(ctx, input)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *RegisterSuite) TestRegisterUploads() {
	ctx := context.Background()

	s.Run("stores the profile picture and records its URL", func() {
		s.mockEvents.EXPECT().GetByYear(gomock.Any(), 2026).Return(s.activeEvent(2026), nil)
		s.mockNotifier.EXPECT().RegistrationReceived(gomock.Any(), gomock.Any())
		s.mockJobs.EXPECT().EnqueueReviewPush(gomock.Any(), gomock.Any()).Return(nil)
		s.mockUploads.EXPECT().
			Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, key, contentType string, r io.Reader) (string, error) {
				s.True(strings.HasPrefix(key, "delegates/photos/"), "key %q", key)
				s.Equal("image/png", contentType)
				data, err := io.ReadAll(r)
				s.Require().NoError(err)
				s.NotEmpty(data)
				return "https://storage.googleapis.com/summit-uploads/" + key, nil
			})

		input := s.validInput()
		input.Email = "photographed@example.com"
		input.ProfilePicture = &Upload{Filename: "me.png", Data: s.smallPNG()}

		d, err := s.service.Register(ctx, input)
		s.Require().NoError(err)
		s.Contains(d.ProfilePictureURL, "delegates/photos/")
	})

	s.Run("identification document lands in its own folder", func() {
		s.mockEvents.EXPECT().GetByYear(gomock.Any(), 2026).Return(s.activeEvent(2026), nil)
		s.mockNotifier.EXPECT().RegistrationReceived(gomock.Any(), gomock.Any())
		s.mockJobs.EXPECT().EnqueueReviewPush(gomock.Any(), gomock.Any()).Return(nil)
		s.mockUploads.EXPECT().
			Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, key, _ string, _ io.Reader) (string, error) {
				s.True(strings.HasPrefix(key, "delegates/documents/"), "key %q", key)
				return "https://storage.googleapis.com/summit-uploads/" + key, nil
			})

		input := s.validInput()
		input.Email = "documented@example.com"
		input.Identification = models.IDDocument{Kind: models.IDPassport, Number: "AB1234567"}
		input.Document = &Upload{Filename: "passport.png", Data: s.smallPNG()}

		d, err := s.service.Register(ctx, input)
		s.Require().NoError(err)
		s.Contains(d.Identification.DocumentURL, "delegates/documents/")
		s.Equal("AB1234567", d.Identification.Number)
	})

	s.Run("upload failure aborts the registration", func() {
		s.mockEvents.EXPECT().GetByYear(gomock.Any(), 2026).Return(s.activeEvent(2026), nil)
		s.mockUploads.EXPECT().
			Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", fmt.Errorf("bucket unreachable"))

		input := s.validInput()
		input.Email = "unlucky@example.com"
		input.ProfilePicture = &Upload{Filename: "me.png", Data: s.smallPNG()}

		_, err := s.service.Register(ctx, input)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))

		_, err = s.store.FindByEmailAndYear(ctx, "unlucky@example.com", 2026)
		s.Require().Error(err, "delegate must not be persisted")
	})
}
