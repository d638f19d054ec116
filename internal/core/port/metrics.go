package port

import "github.com/DanisonEdiel/auth-login-signup-service/internal/core/domain"

// MetricsSink records login outcomes. Implementations must be cheap and
// non-blocking; a failing sink degrades observability, never correctness.
type MetricsSink interface {
	RecordLogin(attempt domain.LoginAttempt)
}
