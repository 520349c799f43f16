package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"summit/internal/delegate/models"
	id "summit/pkg/domain"
	dErrors "summit/pkg/domain-errors"
	"summit/pkg/platform/sentinel"
	"summit/pkg/requestcontext"
)

// List returns one page of delegates matching the filter. Pagination is
// clamped, never rejected: page < 1 becomes 1, limit outside 1..100 becomes
// the default.
func (s *Service) List(ctx context.Context, filter *models.Filter) (*models.Page, error) {
	start := time.Now()
	if s.metrics != nil {
		defer s.metrics.ObserveList(start)
	}
	if filter == nil {
		filter = &models.Filter{}
	}
	filter.Normalize()

	items, total, err := s.delegates.List(ctx, filter)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return &models.Page{
		Items:      items,
		Total:      total,
		PageNumber: filter.Page,
		PageSize:   filter.Limit,
	}, nil
}

func (s *Service) Get(ctx context.Context, delegateID id.DelegateID) (*models.Delegate, error) {
	if err := requireDelegateID(delegateID); err != nil {
		return nil, err
	}
	d, err := s.delegates.FindByID(ctx, delegateID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return d, nil
}

// GetByEmail returns the delegate's most recent registration across event
// years.
func (s *Service) GetByEmail(ctx context.Context, email string) (*models.Delegate, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "email is required")
	}
	d, err := s.delegates.FindByEmail(ctx, email)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return d, nil
}

// Update applies a partial update of identity and logistics fields. Status,
// credentials, and the lifecycle audit trail are not reachable through this
// path. An email change re-checks (email, eventYear) uniqueness; a lost
// optimistic-locking race surfaces as Conflict.
func (s *Service) Update(ctx context.Context, delegateID id.DelegateID, patch *models.Patch) (*models.Delegate, error) {
	if err := requireDelegateID(delegateID); err != nil {
		return nil, err
	}
	if patch == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no fields to update")
	}
	now := requestcontext.Now(ctx)

	d, err := s.delegates.FindByID(ctx, delegateID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	if patch.ChangesEmail(d.Email) {
		newEmail := models.NormalizeEmail(*patch.Email)
		_, err := s.delegates.FindByEmailAndYear(ctx, newEmail, d.EventYear)
		switch {
		case err == nil:
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered for this event year")
		case !errors.Is(err, sentinel.ErrNotFound):
			return nil, wrapStoreErr(err)
		}
	}

	patch.Apply(d, now)
	if err := s.delegates.Update(ctx, d); err != nil {
		return nil, wrapStoreErr(err)
	}

	s.logger.InfoContext(ctx, "delegate updated", "delegate_id", d.ID.String())
	return d, nil
}

// Delete removes a delegate outright. Administrative path; there is no soft
// delete.
func (s *Service) Delete(ctx context.Context, delegateID id.DelegateID) error {
	if err := requireDelegateID(delegateID); err != nil {
		return err
	}
	if err := s.delegates.Delete(ctx, delegateID); err != nil {
		return wrapStoreErr(err)
	}
	s.logger.InfoContext(ctx, "delegate deleted",
		"delegate_id", delegateID.String(),
		"deleted_by", actor(ctx),
	)
	return nil
}

// statsKey scopes the cache entry to one event, or to the global view.
func statsKey(eventID id.EventID) string {
	if eventID.IsNil() {
		return "delegate:stats:all"
	}
	return "delegate:stats:" + eventID.String()
}

// Statistics aggregates delegate counts, optionally scoped to one event.
// Results are served from the cache when present; on miss or when no cache
// is configured the store answers directly, so statistics keep working with
// Redis down.
func (s *Service) Statistics(ctx context.Context, eventID id.EventID) (*models.Statistics, error) {
	key := statsKey(eventID)

	if s.statsCache == nil {
		if s.metrics != nil {
			s.metrics.ObserveStatsCache("bypass")
		}
		return s.computeStatistics(ctx, eventID, "")
	}

	if raw, ok := s.statsCache.Get(ctx, key); ok {
		var stats models.Statistics
		if err := json.Unmarshal(raw, &stats); err == nil {
			if s.metrics != nil {
				s.metrics.ObserveStatsCache("hit")
			}
			return &stats, nil
		}
		s.logger.WarnContext(ctx, "discarding undecodable statistics cache entry", "key", key)
	}

	if s.metrics != nil {
		s.metrics.ObserveStatsCache("miss")
	}
	return s.computeStatistics(ctx, eventID, key)
}

// computeStatistics reads the aggregate from the store and, when cacheKey is
// set, writes it back for the next minute of readers.
func (s *Service) computeStatistics(ctx context.Context, eventID id.EventID, cacheKey string) (*models.Statistics, error) {
	stats, err := s.delegates.Statistics(ctx, eventID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if cacheKey != "" && s.statsCache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			s.statsCache.Set(ctx, cacheKey, raw)
		}
	}
	return stats, nil
}

// Badge renders the delegate's badge PNG for download. The same renderer
// produces the badge embedded in approval emails.
func (s *Service) Badge(ctx context.Context, delegateID id.DelegateID) ([]byte, error) {
	if err := requireDelegateID(delegateID); err != nil {
		return nil, err
	}
	if s.badges == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "badge rendering not configured")
	}

	d, err := s.delegates.FindByID(ctx, delegateID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	png, err := s.badges.Render(ctx, d)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not render badge")
	}
	return png, nil
}

// RegisterPushToken stores a device token for push notifications. Tokens
// are deduplicated and capped at the most recent ten.
func (s *Service) RegisterPushToken(ctx context.Context, delegateID id.DelegateID, token string) error {
	if err := requireDelegateID(delegateID); err != nil {
		return err
	}
	if err := requirePushToken(token); err != nil {
		return err
	}

	_, err := s.delegates.Execute(ctx, delegateID,
		func(*models.Delegate) error { return nil },
		func(d *models.Delegate) { d.AddPushToken(token) },
	)
	if err != nil {
		return wrapStoreErr(err)
	}
	s.logger.DebugContext(ctx, "push token registered", "delegate_id", delegateID.String())
	return nil
}

func requirePushToken(token string) error {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return dErrors.New(dErrors.CodeBadRequest, "push token is required")
	}
	if len(trimmed) > 4096 {
		return dErrors.New(dErrors.CodeBadRequest, "push token is too long")
	}
	return nil
}
