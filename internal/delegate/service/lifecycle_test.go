package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"summit/internal/delegate/models"
	"summit/internal/delegate/service/mocks"
	"summit/internal/delegate/store/memory"
	id "summit/pkg/domain"
	dErrors "summit/pkg/domain-errors"
	"summit/pkg/platform/audit"
	auditmemory "summit/pkg/platform/audit/store/memory"
	"summit/pkg/requestcontext"
)

type LifecycleSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	store        *memory.Store
	auditStore   *auditmemory.InMemoryStore
	mockNotifier *mocks.MockNotifier
	mockBadges   *mocks.MockBadgeRenderer
	service      *Service
	eventID      id.EventID
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = memory.NewStore()
	s.auditStore = auditmemory.NewInMemoryStore()
	s.mockNotifier = mocks.NewMockNotifier(s.ctrl)
	s.mockBadges = mocks.NewMockBadgeRenderer(s.ctrl)
	s.eventID = id.NewEventID()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(
		s.store,
		mocks.NewMockEventCatalog(s.ctrl),
		mocks.NewMockTokenIssuer(s.ctrl),
		WithLogger(logger),
		WithAuditStore(s.auditStore),
		WithNotifier(s.mockNotifier),
		WithBadgeRenderer(s.mockBadges),
	)
}

// seedDelegate inserts a delegate directly into the store at the given
// status, bypassing Register.
func (s *LifecycleSuite) seedDelegate(status models.Status) *models.Delegate {
	email := fmt.Sprintf("delegate-%s@example.com", uuid.NewString()[:8])
	d, err := models.NewDelegate(id.NewDelegateID(), s.eventID, 2026, "Amina", "Yusupova", email, models.TypeObserver, models.AttendancePhysical, time.Now())
	s.Require().NoError(err)
	d.Status = status
	s.Require().NoError(s.store.Create(context.Background(), d))
	return d
}

func (s *LifecycleSuite) expectApprovalDispatch(badge []byte) {
	s.mockBadges.EXPECT().Render(gomock.Any(), gomock.Any()).Return(badge, nil)
	s.mockNotifier.EXPECT().DelegateApproved(gomock.Any(), gomock.Any(), badge)
}

// ============================================================================
// Approve
// ============================================================================

func (s *LifecycleSuite) TestApprove() {
	ctx := context.Background()

	s.Run("approves a pending delegate", func() {
		d := s.seedDelegate(models.StatusPending)
		now := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
		s.expectApprovalDispatch([]byte("badge-png"))

		approved, err := s.service.Approve(requestcontext.WithTime(ctx, now), d.ID, "admin1")
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, approved.Status)
		s.Equal("admin1", approved.ApprovedBy)
		s.Require().NotNil(approved.ApprovedAt)
		s.True(approved.ApprovedAt.Equal(now))

		stored, err := s.store.FindByID(ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, stored.Status)

		events, err := s.auditStore.ListByDelegate(ctx, d.ID)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(audit.KindDelegateApproved, events[0].Kind)
		s.Equal("admin1", events[0].Actor)
		s.Equal(audit.OutcomeSuccess, events[0].Outcome)
	})

	s.Run("second approval conflicts and leaves status untouched", func() {
		d := s.seedDelegate(models.StatusApproved)

		_, err := s.service.Approve(ctx, d.ID, "admin2")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Contains(err.Error(), "delegate already approved")

		stored, err := s.store.FindByID(ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, stored.Status)
	})

	s.Run("approval from rejected succeeds", func() {
		d := s.seedDelegate(models.StatusRejected)
		s.expectApprovalDispatch([]byte("badge-png"))

		approved, err := s.service.Approve(ctx, d.ID, "admin1")
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, approved.Status)
	})

	s.Run("approval from suspended succeeds", func() {
		d := s.seedDelegate(models.StatusSuspended)
		s.expectApprovalDispatch([]byte("badge-png"))

		approved, err := s.service.Approve(ctx, d.ID, "admin1")
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, approved.Status)
	})

	s.Run("badge failure does not block the approval", func() {
		d := s.seedDelegate(models.StatusPending)
		s.mockBadges.EXPECT().Render(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("qr encoder broke"))
		s.mockNotifier.EXPECT().DelegateApproved(gomock.Any(), gomock.Any(), nil)

		approved, err := s.service.Approve(ctx, d.ID, "admin1")
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, approved.Status)
	})

	s.Run("unknown delegate returns not found", func() {
		_, err := s.service.Approve(ctx, id.NewDelegateID(), "admin1")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("missing approver returns bad request", func() {
		d := s.seedDelegate(models.StatusPending)
		_, err := s.service.Approve(ctx, d.ID, "  ")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("nil id returns bad request", func() {
		_, err := s.service.Approve(ctx, id.DelegateID{}, "admin1")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

// TestConcurrentApprovals drives racing approvals at one delegate; the store
// lock must let exactly one through.
func (s *LifecycleSuite) TestConcurrentApprovals() {
	ctx := context.Background()
	d := s.seedDelegate(models.StatusPending)

	s.mockBadges.EXPECT().Render(gomock.Any(), gomock.Any()).Return([]byte("badge-png"), nil).Times(1)
	s.mockNotifier.EXPECT().DelegateApproved(gomock.Any(), gomock.Any(), gomock.Any()).Times(1)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.service.Approve(ctx, d.ID, fmt.Sprintf("admin-%d", i))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.True(dErrors.HasCode(err, dErrors.CodeConflict), "loser should get conflict, got %v", err)
	}
	s.Equal(1, succeeded)

	stored, err := s.store.FindByID(ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, stored.Status)

	events, err := s.auditStore.ListByDelegate(ctx, d.ID)
	s.Require().NoError(err)
	s.Len(events, 1)
}

// ============================================================================
// Reject
// ============================================================================

func (s *LifecycleSuite) TestReject() {
	ctx := context.Background()

	s.Run("rejects a pending delegate with reason", func() {
		d := s.seedDelegate(models.StatusPending)
		s.mockNotifier.EXPECT().DelegateRejected(gomock.Any(), gomock.Any())

		rejected, err := s.service.Reject(ctx, d.ID, "incomplete documents", "admin1")
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, rejected.Status)
		s.Equal("incomplete documents", rejected.RejectionReason)
		s.Equal("admin1", rejected.RejectedBy)
		s.NotNil(rejected.RejectedAt)

		events, err := s.auditStore.ListByDelegate(ctx, d.ID)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(audit.KindDelegateRejected, events[0].Kind)
		s.Equal("incomplete documents", events[0].Reason)
	})

	s.Run("rejection after approval withdraws it", func() {
		d := s.seedDelegate(models.StatusApproved)
		s.mockNotifier.EXPECT().DelegateRejected(gomock.Any(), gomock.Any())

		rejected, err := s.service.Reject(ctx, d.ID, "credentials revoked", "admin2")
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, rejected.Status)
	})

	s.Run("second rejection conflicts", func() {
		d := s.seedDelegate(models.StatusRejected)

		_, err := s.service.Reject(ctx, d.ID, "again", "admin1")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Contains(err.Error(), "delegate already rejected")
	})

	s.Run("missing reason returns bad request", func() {
		d := s.seedDelegate(models.StatusPending)
		_, err := s.service.Reject(ctx, d.ID, "   ", "admin1")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown delegate returns not found", func() {
		_, err := s.service.Reject(ctx, id.NewDelegateID(), "reason", "admin1")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// ============================================================================
// Check-in
// ============================================================================

func (s *LifecycleSuite) TestCheckIn() {
	ctx := context.Background()

	s.Run("checks in an approved delegate", func() {
		d := s.seedDelegate(models.StatusApproved)
		s.mockNotifier.EXPECT().DelegateCheckedIn(gomock.Any(), gomock.Any())

		checkedIn, err := s.service.CheckIn(ctx, d.ID, "Main Hall", "staff3")
		s.Require().NoError(err)
		s.Equal(models.StatusCheckedIn, checkedIn.Status)
		s.Equal("Main Hall", checkedIn.CheckInLocation)
		s.Equal("staff3", checkedIn.CheckedInBy)
		s.NotNil(checkedIn.CheckedInAt)

		events, err := s.auditStore.ListByDelegate(ctx, d.ID)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(audit.KindDelegateCheckedIn, events[0].Kind)
		s.Equal("Main Hall", events[0].Metadata["location"])
	})

	s.Run("check-in from pending is invalid state", func() {
		d := s.seedDelegate(models.StatusPending)

		_, err := s.service.CheckIn(ctx, d.ID, "Main Hall", "staff3")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
		s.Contains(err.Error(), "current status: pending")
	})

	s.Run("check-in from rejected is invalid state", func() {
		d := s.seedDelegate(models.StatusRejected)

		_, err := s.service.CheckIn(ctx, d.ID, "Main Hall", "staff3")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
		s.Contains(err.Error(), "current status: rejected")
	})

	s.Run("second check-in is invalid state", func() {
		d := s.seedDelegate(models.StatusCheckedIn)

		_, err := s.service.CheckIn(ctx, d.ID, "Main Hall", "staff3")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
		s.Contains(err.Error(), "current status: checked_in")
	})

	s.Run("location is optional", func() {
		d := s.seedDelegate(models.StatusApproved)
		s.mockNotifier.EXPECT().DelegateCheckedIn(gomock.Any(), gomock.Any())

		checkedIn, err := s.service.CheckIn(ctx, d.ID, "", "staff3")
		s.Require().NoError(err)
		s.Equal(models.StatusCheckedIn, checkedIn.Status)
		s.Empty(checkedIn.CheckInLocation)
	})

	s.Run("missing staff member returns bad request", func() {
		d := s.seedDelegate(models.StatusApproved)
		_, err := s.service.CheckIn(ctx, d.ID, "Main Hall", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown delegate returns not found", func() {
		_, err := s.service.CheckIn(ctx, id.NewDelegateID(), "Main Hall", "staff3")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
