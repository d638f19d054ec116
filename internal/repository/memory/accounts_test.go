package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DanisonEdiel/auth-login-signup-service/internal/core/domain"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/repository"
)

func newAccount(id, email, username string) domain.Account {
	return domain.Account{
		ID:           id,
		Email:        email,
		Username:     username,
		PasswordHash: "digest",
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestAccountRepository_CreateAndLookup(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, newAccount("id-1", "A@X.com", "a")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != "id-1" {
		t.Fatalf("unexpected account id %q", got.ID)
	}
	if got.Email != "a@x.com" {
		t.Fatalf("email not normalized: %q", got.Email)
	}

	if _, err := repo.GetByID(ctx, "id-1"); err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountRepository_DuplicateEmail(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, newAccount("id-1", "a@x.com", "a")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := repo.Create(ctx, newAccount("id-2", "A@x.com", "b"))
	if !errors.Is(err, repository.ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount for same email, got %v", err)
	}

	err = repo.Create(ctx, newAccount("id-3", "c@x.com", "a"))
	if !errors.Is(err, repository.ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount for same username, got %v", err)
	}

	if repo.Len() != 1 {
		t.Fatalf("expected no partial inserts, have %d accounts", repo.Len())
	}
}

func TestAccountRepository_ConcurrentCreateSameEmail(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			account := newAccount(fmt.Sprintf("id-%d", i), "race@x.com", fmt.Sprintf("user-%d", i))
			errs[i] = repo.Create(ctx, account)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		if !errors.Is(err, repository.ErrDuplicateAccount) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one successful registration, got %d", successes)
	}
}

func TestAccountRepository_SetActive(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, newAccount("id-1", "a@x.com", "a")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !repo.SetActive("id-1", false) {
		t.Fatal("SetActive reported missing account")
	}

	got, err := repo.GetByID(ctx, "id-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.IsActive {
		t.Fatal("account should be inactive")
	}
}
