package port

import (
	"context"
	"time"
)

// NotificationSink delivers best-effort, fire-and-forget notifications.
// Callers never wait on delivery; errors are observed only for logging.
type NotificationSink interface {
	NotifyLogin(ctx context.Context, email string, at time.Time, clientIP string) error
}
