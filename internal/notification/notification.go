// Package notification owns the best-effort side effect policy for delegate
// lifecycle events. Dispatcher methods build the message, call the transport
// with a short timeout, log the outcome, and return nothing: a failed email
// or push must never fail the state change that triggered it.
package notification

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	"summit/internal/delegate/models"
)

//go:generate mockgen -source=notification.go -destination=mocks/mocks.go -package=mocks EmailSender,PushSender

// sendTimeout bounds each transport call so a slow SMTP or FCM endpoint
// cannot stall the request that triggered the notification.
const sendTimeout = 5 * time.Second

// Attachment is a file attached to an outgoing email. Content type is
// derived from the filename extension.
type Attachment struct {
	Filename string
	Content  []byte
}

// Message is an outgoing email.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// EmailSender delivers a single email. Implementations stay dumb; retry and
// failure policy live here in the dispatcher.
type EmailSender interface {
	Send(ctx context.Context, msg Message) error
}

// PushSender delivers a push notification to a set of device tokens.
type PushSender interface {
	SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

// Dispatcher fans lifecycle events out to the configured transports.
type Dispatcher struct {
	email  EmailSender
	push   PushSender
	logger *slog.Logger
}

type Option func(d *Dispatcher)

// WithEmailSender wires the email transport. Without one, email side
// effects are skipped silently.
func WithEmailSender(sender EmailSender) Option {
	return func(d *Dispatcher) { d.email = sender }
}

// WithPushSender wires the push transport. Without one, push side effects
// are skipped silently.
func WithPushSender(sender PushSender) Option {
	return func(d *Dispatcher) { d.push = sender }
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RegistrationReceived confirms a new registration by email. The delayed
// "under review" push goes through the job queue, not here.
func (d *Dispatcher) RegistrationReceived(ctx context.Context, delegate *models.Delegate) {
	name := html.EscapeString(delegate.FullName())
	d.sendEmail(ctx, "registration_received", delegate, Message{
		To:      delegate.Email,
		Subject: fmt.Sprintf("Summit %d registration received", delegate.EventYear),
		HTML: fmt.Sprintf(
			"<p>Dear %s,</p><p>We received your registration for Summit %d. "+
				"Our team will review it and notify you once a decision is made.</p>",
			name, delegate.EventYear),
	})
}

// DelegateApproved sends the approval email with the badge attached, plus a
// push notification when the delegate has registered devices.
func (d *Dispatcher) DelegateApproved(ctx context.Context, delegate *models.Delegate, badgePNG []byte) {
	name := html.EscapeString(delegate.FullName())
	msg := Message{
		To:      delegate.Email,
		Subject: fmt.Sprintf("Summit %d registration approved", delegate.EventYear),
		HTML: fmt.Sprintf(
			"<p>Dear %s,</p><p>Your registration for Summit %d has been approved. "+
				"Your badge is attached; present it at the venue to check in.</p>",
			name, delegate.EventYear),
	}
	if len(badgePNG) > 0 {
		msg.Attachments = append(msg.Attachments, Attachment{Filename: "badge.png", Content: badgePNG})
	}
	d.sendEmail(ctx, "delegate_approved", delegate, msg)
	d.sendPush(ctx, "delegate_approved", delegate,
		"Registration approved",
		fmt.Sprintf("Your Summit %d registration has been approved.", delegate.EventYear),
		map[string]string{"delegate_id": delegate.ID.String(), "status": string(models.StatusApproved)},
	)
}

// DelegateRejected notifies the delegate of a rejection, including the
// reason when one was recorded.
func (d *Dispatcher) DelegateRejected(ctx context.Context, delegate *models.Delegate) {
	name := html.EscapeString(delegate.FullName())
	body := fmt.Sprintf(
		"<p>Dear %s,</p><p>We regret to inform you that your registration for Summit %d was not approved.</p>",
		name, delegate.EventYear)
	if delegate.RejectionReason != "" {
		body += fmt.Sprintf("<p>Reason: %s</p>", html.EscapeString(delegate.RejectionReason))
	}
	d.sendEmail(ctx, "delegate_rejected", delegate, Message{
		To:      delegate.Email,
		Subject: fmt.Sprintf("Summit %d registration update", delegate.EventYear),
		HTML:    body,
	})
	d.sendPush(ctx, "delegate_rejected", delegate,
		"Registration update",
		fmt.Sprintf("Your Summit %d registration was not approved.", delegate.EventYear),
		map[string]string{"delegate_id": delegate.ID.String(), "status": string(models.StatusRejected)},
	)
}

// DelegateCheckedIn confirms a completed check-in by email.
func (d *Dispatcher) DelegateCheckedIn(ctx context.Context, delegate *models.Delegate) {
	name := html.EscapeString(delegate.FullName())
	location := html.EscapeString(delegate.CheckInLocation)
	d.sendEmail(ctx, "delegate_checked_in", delegate, Message{
		To:      delegate.Email,
		Subject: fmt.Sprintf("Welcome to Summit %d", delegate.EventYear),
		HTML: fmt.Sprintf(
			"<p>Dear %s,</p><p>You are checked in at %s. Enjoy the event.</p>",
			name, location),
	})
}

// PasswordResetPIN delivers the reset PIN. The PIN expires ten minutes
// after issue, which the email states.
func (d *Dispatcher) PasswordResetPIN(ctx context.Context, delegate *models.Delegate, pin string) {
	name := html.EscapeString(delegate.FullName())
	d.sendEmail(ctx, "password_reset_pin", delegate, Message{
		To:      delegate.Email,
		Subject: "Your password reset code",
		HTML: fmt.Sprintf(
			"<p>Dear %s,</p><p>Your password reset code is <strong>%s</strong>. "+
				"It expires in 10 minutes. If you did not request this, ignore this email.</p>",
			name, html.EscapeString(pin)),
	})
}

// ReviewReminder sends the delayed "registration under review" push. Invoked
// by the job worker rather than inline with registration.
func (d *Dispatcher) ReviewReminder(ctx context.Context, delegate *models.Delegate) {
	d.sendPush(ctx, "review_reminder", delegate,
		"Registration under review",
		fmt.Sprintf("Your Summit %d registration is being reviewed. We will notify you of the outcome.", delegate.EventYear),
		map[string]string{"delegate_id": delegate.ID.String(), "status": string(models.StatusPending)},
	)
}

func (d *Dispatcher) sendEmail(ctx context.Context, kind string, delegate *models.Delegate, msg Message) {
	if d.email == nil || msg.To == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := d.email.Send(ctx, msg); err != nil {
		d.logger.ErrorContext(ctx, "send notification email",
			"kind", kind,
			"delegate_id", delegate.ID.String(),
			"error", err,
		)
		return
	}
	d.logger.InfoContext(ctx, "notification email sent",
		"kind", kind,
		"delegate_id", delegate.ID.String(),
	)
}

func (d *Dispatcher) sendPush(ctx context.Context, kind string, delegate *models.Delegate, title, body string, data map[string]string) {
	if d.push == nil || len(delegate.PushTokens) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := d.push.SendToTokens(ctx, delegate.PushTokens, title, body, data); err != nil {
		d.logger.ErrorContext(ctx, "send notification push",
			"kind", kind,
			"delegate_id", delegate.ID.String(),
			"tokens", len(delegate.PushTokens),
			"error", err,
		)
		return
	}
	d.logger.InfoContext(ctx, "notification push sent",
		"kind", kind,
		"delegate_id", delegate.ID.String(),
		"tokens", len(delegate.PushTokens),
	)
}
