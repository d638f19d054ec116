package domain

import "time"

// AccountRegisteredEvent represents the payload for auth.account.registered messages.
type AccountRegisteredEvent struct {
	EventID      string
	AccountID    string
	Email        string
	Username     string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// LoginSucceededEvent represents the payload for auth.login.succeeded messages.
type LoginSucceededEvent struct {
	EventID   string
	AccountID string
	Email     string
	IP        string
	At        time.Time
	Metadata  map[string]any
}
