package notification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"summit/internal/delegate/models"
	"summit/internal/notification"
	"summit/internal/notification/mocks"
	id "summit/pkg/domain"
)

type DispatcherSuite struct {
	suite.Suite

	ctrl       *gomock.Controller
	mockEmail  *mocks.MockEmailSender
	mockPush   *mocks.MockPushSender
	dispatcher *notification.Dispatcher
	delegate   *models.Delegate
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockEmail = mocks.NewMockEmailSender(s.ctrl)
	s.mockPush = mocks.NewMockPushSender(s.ctrl)
	s.dispatcher = notification.NewDispatcher(
		notification.WithEmailSender(s.mockEmail),
		notification.WithPushSender(s.mockPush),
	)

	d, err := models.NewDelegate(
		id.NewDelegateID(), id.NewEventID(), 2025,
		"Amina", "Yusupova", "amina@example.com",
		models.TypeObserver, models.AttendancePhysical,
		time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	)
	s.Require().NoError(err)
	s.delegate = d
}

func (s *DispatcherSuite) TestRegistrationReceived() {
	ctx := context.Background()

	s.Run("sends confirmation email only", func() {
		var sent notification.Message
		s.mockEmail.EXPECT().Send(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msg notification.Message) error {
				sent = msg
				return nil
			})

		s.dispatcher.RegistrationReceived(ctx, s.delegate)

		s.Equal("amina@example.com", sent.To)
		s.Contains(sent.Subject, "2025")
		s.Contains(sent.HTML, "Amina Yusupova")
		s.Empty(sent.Attachments)
	})

	s.Run("email failure is swallowed", func() {
		s.mockEmail.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

		s.NotPanics(func() {
			s.dispatcher.RegistrationReceived(ctx, s.delegate)
		})
	})
}

func (s *DispatcherSuite) TestDelegateApproved() {
	ctx := context.Background()
	badge := []byte{0x89, 'P', 'N', 'G'}

	s.Run("attaches badge and pushes to registered devices", func() {
		s.delegate.AddPushToken("device-1")
		s.delegate.AddPushToken("device-2")

		var sent notification.Message
		s.mockEmail.EXPECT().Send(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msg notification.Message) error {
				sent = msg
				return nil
			})
		s.mockPush.EXPECT().
			SendToTokens(gomock.Any(), []string{"device-1", "device-2"}, "Registration approved", gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ []string, _, _ string, data map[string]string) error {
				s.Equal(s.delegate.ID.String(), data["delegate_id"])
				s.Equal("approved", data["status"])
				return nil
			})

		s.dispatcher.DelegateApproved(ctx, s.delegate, badge)

		s.Require().Len(sent.Attachments, 1)
		s.Equal("badge.png", sent.Attachments[0].Filename)
		s.Equal(badge, sent.Attachments[0].Content)
	})

	s.Run("no push without device tokens", func() {
		s.delegate.PushTokens = nil
		s.mockEmail.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

		s.dispatcher.DelegateApproved(ctx, s.delegate, badge)
	})

	s.Run("badge omitted when rendering failed upstream", func() {
		s.delegate.PushTokens = nil
		var sent notification.Message
		s.mockEmail.EXPECT().Send(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msg notification.Message) error {
				sent = msg
				return nil
			})

		s.dispatcher.DelegateApproved(ctx, s.delegate, nil)

		s.Empty(sent.Attachments)
	})

	s.Run("email failure does not block the push", func() {
		s.delegate.AddPushToken("device-1")
		s.mockEmail.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))
		s.mockPush.EXPECT().
			SendToTokens(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		s.dispatcher.DelegateApproved(ctx, s.delegate, badge)
	})
}

func (s *DispatcherSuite) TestDelegateRejected() {
	ctx := context.Background()

	s.Run("includes the recorded reason", func() {
		s.delegate.RejectionReason = "incomplete documents"

		var sent notification.Message
		s.mockEmail.EXPECT().Send(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msg notification.Message) error {
				sent = msg
				return nil
			})

		s.dispatcher.DelegateRejected(ctx, s.delegate)

		s.Contains(sent.HTML, "incomplete documents")
	})

	s.Run("omits the reason paragraph when none recorded", func() {
		s.delegate.RejectionReason = ""

		var sent notification.Message
		s.mockEmail.EXPECT().Send(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msg notification.Message) error {
				sent = msg
				return nil
			})

		s.dispatcher.DelegateRejected(ctx, s.delegate)

		s.NotContains(sent.HTML, "Reason:")
	})

	s.Run("escapes markup in the reason", func() {
		s.delegate.RejectionReason = `<script>alert("x")</script>`

		var sent notification.Message
		s.mockEmail.EXPECT().Send(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msg notification.Message) error {
				sent = msg
				return nil
			})

		s.dispatcher.DelegateRejected(ctx, s.delegate)

		s.NotContains(sent.HTML, "<script>")
		s.Contains(sent.HTML, "&lt;script&gt;")
	})
}

func (s *DispatcherSuite) TestDelegateCheckedIn() {
	ctx := context.Background()
	s.delegate.CheckInLocation = "Main Hall"

	var sent notification.Message
	s.mockEmail.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg notification.Message) error {
			sent = msg
			return nil
		})

	s.dispatcher.DelegateCheckedIn(ctx, s.delegate)

	s.Contains(sent.HTML, "Main Hall")
	s.Contains(sent.Subject, "Welcome")
}

func (s *DispatcherSuite) TestPasswordResetPIN() {
	ctx := context.Background()

	var sent notification.Message
	s.mockEmail.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg notification.Message) error {
			sent = msg
			return nil
		})

	s.dispatcher.PasswordResetPIN(ctx, s.delegate, "042719")

	s.Contains(sent.HTML, "042719")
	s.Contains(sent.HTML, "10 minutes")
	s.NotContains(sent.Subject, "042719")
}

func (s *DispatcherSuite) TestReviewReminder() {
	ctx := context.Background()

	s.Run("pushes to registered devices", func() {
		s.delegate.AddPushToken("device-1")
		s.mockPush.EXPECT().
			SendToTokens(gomock.Any(), []string{"device-1"}, "Registration under review", gomock.Any(), gomock.Any()).
			Return(nil)

		s.dispatcher.ReviewReminder(ctx, s.delegate)
	})

	s.Run("skipped without device tokens", func() {
		s.delegate.PushTokens = nil

		s.dispatcher.ReviewReminder(ctx, s.delegate)
	})
}

func (s *DispatcherSuite) TestEscapesDelegateName() {
	ctx := context.Background()
	s.delegate.FirstName = "<b>Amina</b>"

	var sent notification.Message
	s.mockEmail.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg notification.Message) error {
			sent = msg
			return nil
		})

	s.dispatcher.RegistrationReceived(ctx, s.delegate)

	s.NotContains(sent.HTML, "<b>Amina</b>")
	s.Contains(sent.HTML, "&lt;b&gt;Amina&lt;/b&gt;")
}

func (s *DispatcherSuite) TestMissingTransportsAreSkipped() {
	ctx := context.Background()
	bare := notification.NewDispatcher()

	s.NotPanics(func() {
		bare.RegistrationReceived(ctx, s.delegate)
		bare.DelegateApproved(ctx, s.delegate, nil)
		bare.DelegateRejected(ctx, s.delegate)
		bare.DelegateCheckedIn(ctx, s.delegate)
		bare.PasswordResetPIN(ctx, s.delegate, "000000")
		bare.ReviewReminder(ctx, s.delegate)
	})
}
