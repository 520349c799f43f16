package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"summit/internal/delegate/device"
	"summit/internal/delegate/models"
	"summit/internal/delegate/secrets"
	dErrors "summit/pkg/domain-errors"
	"summit/pkg/platform/audit"
	"summit/pkg/platform/sentinel"
	"summit/pkg/requestcontext"
)

// resetPINTTL bounds how long a password-reset PIN stays valid.
const resetPINTTL = 10 * time.Minute

// errInvalidCredentials is the single answer to every login failure except
// the pending-approval case. Not distinguishing unknown emails from wrong
// passwords keeps the endpoint useless as a registration oracle.
var errInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")

// errInvalidResetCode collapses all reset-confirmation failures the same way.
var errInvalidResetCode = dErrors.New(dErrors.CodeBadRequest, "invalid or expired reset code")

// Login authenticates an approved delegate and returns a signed token with
// the authenticated aggregate. Unapproved delegates get an explicit
// "not yet approved" answer; every other failure is the generic one, with
// the real cause logged and audited.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.Delegate, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, errInvalidCredentials
	}

	d, err := s.delegates.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.loginFailed(ctx, nil, email, "unknown email")
			return "", nil, errInvalidCredentials
		}
		return "", nil, wrapStoreErr(err)
	}

	if !d.IsApproved() {
		s.loginFailed(ctx, d, email, "registration not approved")
		return "", nil, dErrors.New(dErrors.CodeUnauthorized, "account not yet approved")
	}
	if d.PasswordHash == "" {
		s.loginFailed(ctx, d, email, "no credentials on record")
		return "", nil, errInvalidCredentials
	}
	if err := secrets.Verify(password, d.PasswordHash); err != nil {
		if !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.logger.ErrorContext(ctx, "verify password", "delegate_id", d.ID.String(), "error", err)
		}
		s.loginFailed(ctx, d, email, "password mismatch")
		return "", nil, errInvalidCredentials
	}

	token, err := s.tokens.Issue(d.ID, d.Email)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not issue access token")
	}

	metadata := map[string]string{
		"device": device.ParseUserAgent(requestcontext.UserAgent(ctx)),
	}
	if ip := requestcontext.ClientIP(ctx); ip != "" {
		metadata["ip"] = ip
	}
	s.recordAudit(ctx, audit.Event{
		Kind:       audit.KindDelegateLogin,
		DelegateID: d.ID,
		Outcome:    audit.OutcomeSuccess,
		Metadata:   metadata,
		OccurredAt: requestcontext.Now(ctx),
	})
	if s.metrics != nil {
		s.metrics.IncrementLogins("success")
	}
	s.logger.InfoContext(ctx, "delegate logged in", "delegate_id", d.ID.String())

	return token, d, nil
}

// loginFailed records a failed attempt for security review. The reason stays
// server-side; callers only ever see the generic error.
func (s *Service) loginFailed(ctx context.Context, d *models.Delegate, email, reason string) {
	event := audit.Event{
		Kind:       audit.KindDelegateLogin,
		Outcome:    audit.OutcomeFailure,
		Reason:     reason,
		Metadata:   map[string]string{"email": email},
		OccurredAt: requestcontext.Now(ctx),
	}
	if d != nil {
		event.DelegateID = d.ID
	}
	s.recordAudit(ctx, event)
	if s.metrics != nil {
		s.metrics.IncrementLogins("failure")
	}
	s.logger.InfoContext(ctx, "login rejected", "email", email, "reason", reason)
}

// RequestPasswordReset issues a short-lived PIN to the delegate's email.
// Unknown emails return success unchanged so the endpoint cannot confirm
// whether an address is registered. Infrastructure failures still surface;
// only existence is masked.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil
	}
	now := requestcontext.Now(ctx)

	d, err := s.delegates.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logger.InfoContext(ctx, "password reset requested for unknown email", "email", email)
			return nil
		}
		return wrapStoreErr(err)
	}

	pin, err := secrets.GeneratePIN()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not generate reset code")
	}

	d.SetResetPIN(pin, now.Add(resetPINTTL))
	d.UpdatedAt = now
	if err := s.delegates.Update(ctx, d); err != nil {
		return wrapStoreErr(err)
	}

	s.logger.InfoContext(ctx, "password reset PIN issued", "delegate_id", d.ID.String())
	if s.notifier != nil {
		s.notifier.PasswordResetPIN(ctx, d, pin)
	}
	return nil
}

// ConfirmPasswordReset exchanges a valid PIN for a new password. Missing,
// expired, and mismatched PINs all fail with the same answer; the distinct
// causes go to the log and the audit trail.
func (s *Service) ConfirmPasswordReset(ctx context.Context, email, pin, newPassword string) error {
	email = models.NormalizeEmail(email)
	now := requestcontext.Now(ctx)

	d, err := s.delegates.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logger.InfoContext(ctx, "password reset confirmation for unknown email", "email", email)
			return errInvalidResetCode
		}
		return wrapStoreErr(err)
	}

	switch {
	case d.ResetPIN == "" || d.ResetPINExpiresAt == nil:
		s.resetFailed(ctx, d, "no reset requested")
		return errInvalidResetCode
	case now.After(*d.ResetPINExpiresAt):
		s.resetFailed(ctx, d, "reset code expired")
		return errInvalidResetCode
	case subtle.ConstantTimeCompare([]byte(pin), []byte(d.ResetPIN)) != 1:
		s.resetFailed(ctx, d, "reset code mismatch")
		return errInvalidResetCode
	}

	hash, err := secrets.Hash(newPassword)
	if err != nil {
		return err
	}
	d.PasswordHash = hash
	d.ClearResetPIN()
	d.UpdatedAt = now

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.delegates.Update(txCtx, d); err != nil {
			return wrapStoreErr(err)
		}
		return s.appendAudit(txCtx, audit.Event{
			Kind:       audit.KindDelegatePasswordReset,
			DelegateID: d.ID,
			Outcome:    audit.OutcomeSuccess,
			OccurredAt: now,
		})
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password reset completed", "delegate_id", d.ID.String())
	return nil
}

func (s *Service) resetFailed(ctx context.Context, d *models.Delegate, reason string) {
	s.recordAudit(ctx, audit.Event{
		Kind:       audit.KindDelegatePasswordReset,
		DelegateID: d.ID,
		Outcome:    audit.OutcomeFailure,
		Reason:     reason,
		OccurredAt: requestcontext.Now(ctx),
	})
	s.logger.InfoContext(ctx, "password reset rejected",
		"delegate_id", d.ID.String(),
		"reason", reason,
	)
}
