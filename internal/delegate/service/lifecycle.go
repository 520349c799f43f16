package service

import (
	"context"
	"errors"
	"strings"

	"summit/internal/delegate/models"
	id "summit/pkg/domain"
	dErrors "summit/pkg/domain-errors"
	"summit/pkg/platform/audit"
	"summit/pkg/requestcontext"
)

// conflictFromInvariant remaps invariant violations from transition
// preconditions to Conflict, which is what a failed approve or reject means
// to an API caller: the delegate is already in that state. Other codes,
// notably CanCheckIn's InvalidState, pass through.
func conflictFromInvariant(err error) error {
	var dErr *dErrors.Error
	if errors.As(err, &dErr) && dErr.Code == dErrors.CodeInvariantViolation {
		return dErrors.New(dErrors.CodeConflict, dErr.Message)
	}
	return err
}

// Approve transitions a delegate to approved. Legal from any status except
// approved, including rejected; the review board can reverse itself.
//
// The precondition check and the status write run atomically inside the
// store's Execute, so two racing approvals resolve to exactly one winner.
func (s *Service) Approve(ctx context.Context, delegateID id.DelegateID, approvedBy string) (*models.Delegate, error) {
	if err := requireDelegateID(delegateID); err != nil {
		return nil, err
	}
	approvedBy = strings.TrimSpace(approvedBy)
	if approvedBy == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "approver is required")
	}
	now := requestcontext.Now(ctx)

	var approved *models.Delegate
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		d, err := s.delegates.Execute(txCtx, delegateID,
			func(d *models.Delegate) error { return d.CanApprove() },
			func(d *models.Delegate) { d.ApplyApproval(approvedBy, now) },
		)
		if err != nil {
			return conflictFromInvariant(wrapStoreErr(err))
		}
		approved = d
		return s.appendAudit(txCtx, audit.Event{
			Kind:       audit.KindDelegateApproved,
			DelegateID: d.ID,
			Actor:      approvedBy,
			Outcome:    audit.OutcomeSuccess,
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementApprovals()
	}
	s.logger.InfoContext(ctx, "delegate approved",
		"delegate_id", approved.ID.String(),
		"approved_by", approvedBy,
	)
	s.dispatchApproval(ctx, approved)

	return approved, nil
}

// dispatchApproval renders the badge and notifies the delegate. Every step
// is best-effort: a badge or delivery failure is logged and the approval
// stands.
func (s *Service) dispatchApproval(ctx context.Context, d *models.Delegate) {
	if s.notifier == nil {
		return
	}
	var badgePNG []byte
	if s.badges != nil {
		png, err := s.badges.Render(ctx, d)
		if err != nil {
			s.logger.ErrorContext(ctx, "render approval badge",
				"delegate_id", d.ID.String(),
				"error", err,
			)
		} else {
			badgePNG = png
		}
	}
	s.notifier.DelegateApproved(ctx, d, badgePNG)
}

// Reject transitions a delegate to rejected with a reason. Legal from any
// status except rejected; an approval can be withdrawn.
func (s *Service) Reject(ctx context.Context, delegateID id.DelegateID, reason, rejectedBy string) (*models.Delegate, error) {
	if err := requireDelegateID(delegateID); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "rejection reason is required")
	}
	rejectedBy = strings.TrimSpace(rejectedBy)
	if rejectedBy == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "rejector is required")
	}
	now := requestcontext.Now(ctx)

	var rejected *models.Delegate
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		d, err := s.delegates.Execute(txCtx, delegateID,
			func(d *models.Delegate) error { return d.CanReject() },
			func(d *models.Delegate) { d.ApplyRejection(reason, rejectedBy, now) },
		)
		if err != nil {
			return conflictFromInvariant(wrapStoreErr(err))
		}
		rejected = d
		return s.appendAudit(txCtx, audit.Event{
			Kind:       audit.KindDelegateRejected,
			DelegateID: d.ID,
			Actor:      rejectedBy,
			Outcome:    audit.OutcomeSuccess,
			Reason:     reason,
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementRejections()
	}
	s.logger.InfoContext(ctx, "delegate rejected",
		"delegate_id", rejected.ID.String(),
		"rejected_by", rejectedBy,
	)
	if s.notifier != nil {
		s.notifier.DelegateRejected(ctx, rejected)
	}

	return rejected, nil
}

// CheckIn marks an approved delegate as arrived at the venue. Any other
// source status fails with InvalidState naming the current status.
func (s *Service) CheckIn(ctx context.Context, delegateID id.DelegateID, location, checkedInBy string) (*models.Delegate, error) {
	if err := requireDelegateID(delegateID); err != nil {
		return nil, err
	}
	checkedInBy = strings.TrimSpace(checkedInBy)
	if checkedInBy == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "check-in staff member is required")
	}
	location = strings.TrimSpace(location)
	now := requestcontext.Now(ctx)

	var checkedIn *models.Delegate
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		d, err := s.delegates.Execute(txCtx, delegateID,
			func(d *models.Delegate) error { return d.CanCheckIn() },
			func(d *models.Delegate) { d.ApplyCheckIn(location, checkedInBy, now) },
		)
		if err != nil {
			return wrapStoreErr(err)
		}
		checkedIn = d
		event := audit.Event{
			Kind:       audit.KindDelegateCheckedIn,
			DelegateID: d.ID,
			Actor:      checkedInBy,
			Outcome:    audit.OutcomeSuccess,
			OccurredAt: now,
		}
		if location != "" {
			event.Metadata = map[string]string{"location": location}
		}
		return s.appendAudit(txCtx, event)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementCheckIns()
	}
	s.logger.InfoContext(ctx, "delegate checked in",
		"delegate_id", checkedIn.ID.String(),
		"checked_in_by", checkedInBy,
		"location", location,
	)
	if s.notifier != nil {
		s.notifier.DelegateCheckedIn(ctx, checkedIn)
	}

	return checkedIn, nil
}
