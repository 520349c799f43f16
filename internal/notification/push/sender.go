// Package push delivers notifications to delegate devices through Firebase
// Cloud Messaging.
package push

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"summit/internal/platform/config"
	"summit/pkg/platform/circuit"
)

// Sender sends multicast pushes via FCM. A circuit breaker tracks endpoint
// health; while open, each send probes with a single token instead of the
// full set so recovery needs no timer.
type Sender struct {
	client  *messaging.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// NewSender builds a Sender from FCM configuration. Returns nil if no
// credentials file is configured (push disabled); callers skip wiring it.
func NewSender(ctx context.Context, cfg config.FCMConfig, logger *slog.Logger) (*Sender, error) {
	if cfg.CredentialsFile == "" {
		return nil, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("create firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("create fcm client: %w", err)
	}

	return &Sender{
		client:  client,
		breaker: circuit.New("fcm-push"),
		logger:  logger,
	}, nil
}

// SendToTokens pushes the same notification to every token. Per-token
// failures (stale tokens) are logged but do not trip the breaker; only a
// whole-call error counts as an unhealthy endpoint.
func (s *Sender) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	if len(tokens) == 0 {
		return nil
	}

	send := tokens
	if s.breaker.IsOpen() {
		// Probe with one token while unhealthy; the rest of this batch is
		// dropped, which best-effort delivery tolerates.
		send = tokens[:1]
		if len(tokens) > 1 {
			s.logger.WarnContext(ctx, "push circuit open, probing with one token",
				"skipped", len(tokens)-1,
			)
		}
	}

	resp, err := s.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens:       send,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
	})
	if err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.WarnContext(ctx, "push delivery unhealthy, circuit opened")
		}
		return fmt.Errorf("send multicast push: %w", err)
	}

	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "push delivery recovered, circuit closed")
	}
	if resp.FailureCount > 0 {
		s.logger.WarnContext(ctx, "partial push delivery",
			"requested", len(send),
			"failed", resp.FailureCount,
		)
	}
	return nil
}
