package domain

import (
	"strings"
	"time"
)

// Account mirrors the persisted representation in the accounts table.
type Account struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	FullName     string
	IsActive     bool
	CreatedAt    time.Time
}

// Sanitized returns a copy of the account with the password hash stripped.
// Every value leaving the engine goes through this.
func (a Account) Sanitized() Account {
	copied := a
	copied.PasswordHash = ""
	return copied
}

// NewAccount carries the attributes required to create an account.
// The password travels in plaintext only up to the hashing step.
type NewAccount struct {
	Email    string
	Username string
	Password string
	FullName string
}

// NormalizeEmail lowercases and trims an email address so uniqueness
// checks and lookups agree on a single canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LoginAttempt is the transient record handed to the metrics sink.
// It is owned solely by the call that produced it and never persisted here.
type LoginAttempt struct {
	// AccountID is "unknown" when the email did not resolve to an account.
	AccountID string
	Email     string
	Succeeded bool
	IP        string
	At        time.Time
}

// UnknownAccountID tags login attempts whose email did not match any account.
const UnknownAccountID = "unknown"
