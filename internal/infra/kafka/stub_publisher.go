package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DanisonEdiel/auth-login-signup-service/internal/core/domain"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/core/port"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, accountID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("account_id", accountID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishAccountRegistered logs auth.account.registered events.
func (p *StubPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	payload := map[string]any{
		"account_id":    event.AccountID,
		"email":         logger.MaskEmail(event.Email),
		"username":      event.Username,
		"registered_at": event.RegisteredAt,
		"metadata":      event.Metadata,
	}
	p.logEvent(topicAccountRegistered, event.AccountID, event.RegisteredAt, payload)
	return nil
}

// PublishLoginSucceeded logs auth.login.succeeded events.
func (p *StubPublisher) PublishLoginSucceeded(_ context.Context, event domain.LoginSucceededEvent) error {
	payload := map[string]any{
		"account_id":   event.AccountID,
		"email":        logger.MaskEmail(event.Email),
		"ip_address":   logger.MaskIP(event.IP),
		"logged_in_at": event.At,
		"metadata":     event.Metadata,
	}
	p.logEvent(topicLoginSucceeded, event.AccountID, event.At, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
