package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mrz1836/postmark"

	"github.com/DanisonEdiel/auth-login-signup-service/internal/core/port"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/infra/config"
)

// ErrSendFailed indicates the provider rejected or failed to deliver the message.
var ErrSendFailed = errors.New("email: send failed")

// PostmarkNotifier sends login notification emails through Postmark.
type PostmarkNotifier struct {
	client *postmark.Client
	from   string
}

// NewPostmarkNotifier constructs a Postmark-backed notification sink. Both
// tokens must be configured.
func NewPostmarkNotifier(cfg config.EmailSettings) (*PostmarkNotifier, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("email: postmark server token is required")
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("email: postmark account token is required")
	}
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("email: from address is required")
	}

	return &PostmarkNotifier{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		from:   cfg.FromAddress,
	}, nil
}

// NotifyLogin emails the account holder that a login just happened.
func (n *PostmarkNotifier) NotifyLogin(ctx context.Context, email string, at time.Time, clientIP string) error {
	body := fmt.Sprintf(
		"<p>Your account was signed in at %s.</p>",
		at.UTC().Format(time.RFC1123),
	)
	if clientIP != "" {
		body += fmt.Sprintf("<p>Request origin: %s</p>", clientIP)
	}
	body += "<p>If this was not you, change your password immediately.</p>"

	resp, err := n.client.SendEmail(ctx, postmark.Email{
		From:     n.from,
		To:       email,
		Subject:  "New sign-in to your account",
		Tag:      "login-notification",
		HTMLBody: body,
	})
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrSendFailed, fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}

var _ port.NotificationSink = (*PostmarkNotifier)(nil)
