package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/DanisonEdiel/auth-login-signup-service/internal/core/domain"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/core/port"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/repository"
)

// AccountRepository is an in-process implementation of port.AccountRepository.
// It enforces the same email/username uniqueness semantics as the PostgreSQL
// backend, atomically under a single lock, so concurrent registrations of the
// same email see exactly one success.
type AccountRepository struct {
	mu         sync.RWMutex
	byID       map[string]domain.Account
	byEmail    map[string]string
	byUsername map[string]string
}

// NewAccountRepository constructs an empty in-memory account repository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID:       make(map[string]domain.Account),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}
}

// Create stores the account, failing with repository.ErrDuplicateAccount when
// the email or username is already taken. The check and the insert happen
// under one critical section; there is no window for a racing duplicate.
func (r *AccountRepository) Create(_ context.Context, account domain.Account) error {
	email := domain.NormalizeEmail(account.Email)
	username := strings.TrimSpace(account.Username)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return fmt.Errorf("%w: accounts_email_key", repository.ErrDuplicateAccount)
	}
	if _, exists := r.byUsername[username]; exists {
		return fmt.Errorf("%w: accounts_username_key", repository.ErrDuplicateAccount)
	}
	if _, exists := r.byID[account.ID]; exists {
		return fmt.Errorf("%w: accounts_pkey", repository.ErrDuplicateAccount)
	}

	account.Email = email
	r.byID[account.ID] = account
	r.byEmail[email] = account.ID
	r.byUsername[username] = account.ID
	return nil
}

// GetByID retrieves an account by identifier.
func (r *AccountRepository) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := account
	return &copied, nil
}

// GetByEmail retrieves an account by its normalized email address.
func (r *AccountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	account := r.byID[id]
	copied := account
	return &copied, nil
}

// SetActive flips the active flag for an existing account. Tests use this to
// exercise the inactive-account branches.
func (r *AccountRepository) SetActive(id string, active bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.byID[id]
	if !ok {
		return false
	}
	account.IsActive = active
	r.byID[id] = account
	return true
}

// Len reports how many accounts are stored.
func (r *AccountRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

var _ port.AccountRepository = (*AccountRepository)(nil)
