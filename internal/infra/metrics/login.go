package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/DanisonEdiel/auth-login-signup-service/internal/core/domain"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/core/port"
)

// LoginMetricsOptions configures the login metrics sink.
type LoginMetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
}

// LoginMetrics exposes Prometheus collectors for login attempt tracking.
type LoginMetrics struct {
	Attempts *prometheus.CounterVec
}

// NewLoginMetrics constructs the login attempt counter and registers it
// with the provided registerer.
func NewLoginMetrics(opts LoginMetricsOptions) (*LoginMetrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "auth"
	}

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "login",
		Name:      "attempts_total",
		Help:      "Total number of login attempts partitioned by outcome and subject resolution.",
	}, []string{"outcome", "subject"})

	if err := reg.Register(attempts); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				attempts = existing
			} else {
				return nil, fmt.Errorf("existing attempts collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register attempts collector: %w", err)
		}
	}

	return &LoginMetrics{Attempts: attempts}, nil
}

// RecordLogin counts one login attempt. Attempts against unregistered
// emails are tracked under the unknown subject label.
func (m *LoginMetrics) RecordLogin(attempt domain.LoginAttempt) {
	if m == nil || m.Attempts == nil {
		return
	}

	outcome := "failure"
	if attempt.Succeeded {
		outcome = "success"
	}

	subject := "known"
	if attempt.AccountID == domain.UnknownAccountID {
		subject = "unknown"
	}

	m.Attempts.With(prometheus.Labels{
		"outcome": outcome,
		"subject": subject,
	}).Inc()
}

var _ port.MetricsSink = (*LoginMetrics)(nil)
