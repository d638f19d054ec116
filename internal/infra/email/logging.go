package email

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DanisonEdiel/auth-login-signup-service/internal/core/port"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/infra/logger"
)

// LoggingNotifier logs login notifications instead of sending them. Used in
// development environments without Postmark credentials.
type LoggingNotifier struct {
	logger *zap.Logger
}

// NewLoggingNotifier constructs a logging notification sink.
func NewLoggingNotifier(log *zap.Logger) *LoggingNotifier {
	return &LoggingNotifier{logger: log}
}

func (n *LoggingNotifier) NotifyLogin(_ context.Context, email string, at time.Time, clientIP string) error {
	n.logger.Info("login notification",
		zap.String("email", logger.MaskEmail(email)),
		zap.Time("at", at.UTC()),
		zap.String("ip", logger.MaskIP(clientIP)),
	)
	return nil
}

var _ port.NotificationSink = (*LoggingNotifier)(nil)
