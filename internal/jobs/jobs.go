// Package jobs schedules and executes delayed background tasks over Redis.
//
// Delivery is at-least-once: handlers tolerate duplicate execution and
// re-check current state before acting, so a retried task never pushes a
// stale notification.
package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	id "summit/pkg/domain"
)

// TypeReviewPush is the delayed "registration under review" push task.
const TypeReviewPush = "delegate:review_push"

// ReviewPushPayload identifies the delegate whose registration is pending.
type ReviewPushPayload struct {
	DelegateID string `json:"delegate_id"`
}

// NewReviewPushTask builds the review push task for a delegate.
func NewReviewPushTask(delegateID id.DelegateID) (*asynq.Task, error) {
	payload, err := json.Marshal(ReviewPushPayload{DelegateID: delegateID.String()})
	if err != nil {
		return nil, fmt.Errorf("marshal review push payload: %w", err)
	}
	return asynq.NewTask(TypeReviewPush, payload), nil
}
