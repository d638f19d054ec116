package port

import (
	"context"

	"github.com/DanisonEdiel/auth-login-signup-service/internal/core/domain"
)

// AccountRepository exposes persistence behavior for accounts. Uniqueness of
// email and username is enforced by the backing store; Create surfaces a
// violation as repository.ErrDuplicateAccount even when a pre-check raced.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}
