package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DanisonEdiel/auth-login-signup-service/internal/core/domain"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/core/port"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/infra/security"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/repository"
)

var (
	// ErrDuplicateAccount indicates the email or username is already registered.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveAccount indicates the account is disabled.
	ErrInactiveAccount = errors.New("account is not active")
	// ErrInvalidSignature indicates the token signature does not verify under the service key.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrMalformedToken indicates the token is structurally invalid or missing required claims.
	ErrMalformedToken = errors.New("malformed token")
	// ErrExpiredToken indicates the token expiry has passed.
	ErrExpiredToken = errors.New("token expired")
	// ErrUnknownSubject indicates the token subject does not match any account.
	ErrUnknownSubject = errors.New("unknown token subject")
)

// asyncTimeout bounds fire-and-forget collaborator calls spawned from
// request handling.
const asyncTimeout = 5 * time.Second

// AuthService coordinates registration, login, and token validation.
type AuthService struct {
	accounts  port.AccountRepository
	hasher    port.PasswordHasher
	codec     *security.TokenCodec
	validator *security.PasswordValidator
	tokenTTL  time.Duration

	defaultRoles []string
	// dummyDigest is verified against when the email lookup misses so a
	// failed login costs the same whether or not the account exists.
	dummyDigest string

	metrics   port.MetricsSink
	notifier  port.NotificationSink
	publisher port.EventPublisher
	logger    *zap.Logger
}

// AuthServiceOption customizes optional collaborators on an AuthService.
type AuthServiceOption func(*AuthService)

// WithMetrics wires a login metrics sink.
func WithMetrics(sink port.MetricsSink) AuthServiceOption {
	return func(s *AuthService) { s.metrics = sink }
}

// WithNotifier wires a login notification sink.
func WithNotifier(sink port.NotificationSink) AuthServiceOption {
	return func(s *AuthService) { s.notifier = sink }
}

// WithEventPublisher wires a domain event publisher.
func WithEventPublisher(pub port.EventPublisher) AuthServiceOption {
	return func(s *AuthService) { s.publisher = pub }
}

// WithDefaultRoles overrides the roles granted when none are supplied or
// present in a token. The default is ["USER"].
func WithDefaultRoles(roles []string) AuthServiceOption {
	return func(s *AuthService) {
		if len(roles) > 0 {
			s.defaultRoles = roles
		}
	}
}

// WithPasswordValidator overrides the registration password policy.
func WithPasswordValidator(v *security.PasswordValidator) AuthServiceOption {
	return func(s *AuthService) {
		if v != nil {
			s.validator = v
		}
	}
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	accounts port.AccountRepository,
	hasher port.PasswordHasher,
	codec *security.TokenCodec,
	tokenTTL time.Duration,
	logger *zap.Logger,
	opts ...AuthServiceOption,
) (*AuthService, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account repository is required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if codec == nil {
		return nil, fmt.Errorf("token codec is required")
	}
	if tokenTTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("precompute dummy digest: %w", err)
	}

	s := &AuthService{
		accounts:     accounts,
		hasher:       hasher,
		codec:        codec,
		validator:    security.DefaultPasswordValidator(),
		tokenTTL:     tokenTTL,
		defaultRoles: []string{"USER"},
		dummyDigest:  dummy,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	FullName string
}

// Register creates a new account. The returned account never carries the
// password hash.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.Account, error) {
	email := domain.NormalizeEmail(input.Email)
	if email == "" {
		return domain.Account{}, fmt.Errorf("email is required")
	}
	if input.Username == "" {
		return domain.Account{}, fmt.Errorf("username is required")
	}

	if err := s.validator.Validate(input.Password); err != nil {
		return domain.Account{}, err
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return domain.Account{}, fmt.Errorf("%w: email", ErrDuplicateAccount)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.Account{}, fmt.Errorf("lookup account: %w", err)
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	account := domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     input.Username,
		PasswordHash: digest,
		FullName:     input.FullName,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		// The store's uniqueness constraint is authoritative; the
		// pre-check above only catches the common case early.
		if errors.Is(err, repository.ErrDuplicateAccount) {
			return domain.Account{}, fmt.Errorf("%w: %s", ErrDuplicateAccount, err)
		}
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	if s.publisher != nil {
		event := domain.AccountRegisteredEvent{
			EventID:      uuid.NewString(),
			AccountID:    account.ID,
			Email:        account.Email,
			Username:     account.Username,
			RegisteredAt: account.CreatedAt,
		}
		s.async(func(ctx context.Context) error {
			return s.publisher.PublishAccountRegistered(ctx, event)
		}, "publish account registered")
	}

	return account.Sanitized(), nil
}

// Authenticate checks credentials against the stored account. An unknown
// email and a wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password, clientIP string) (domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return domain.Account{}, ErrInvalidCredentials
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn a verification anyway so response timing does not
			// reveal whether the email is registered.
			s.hasher.Verify(password, s.dummyDigest)
			s.recordLogin(domain.LoginAttempt{
				AccountID: domain.UnknownAccountID,
				Email:     email,
				Succeeded: false,
				IP:        clientIP,
				At:        time.Now().UTC(),
			})
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, fmt.Errorf("lookup account: %w", err)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		s.recordLogin(domain.LoginAttempt{
			AccountID: account.ID,
			Email:     email,
			Succeeded: false,
			IP:        clientIP,
			At:        time.Now().UTC(),
		})
		return domain.Account{}, ErrInvalidCredentials
	}

	if !account.IsActive {
		return domain.Account{}, ErrInactiveAccount
	}

	now := time.Now().UTC()
	s.recordLogin(domain.LoginAttempt{
		AccountID: account.ID,
		Email:     email,
		Succeeded: true,
		IP:        clientIP,
		At:        now,
	})

	if s.notifier != nil {
		s.async(func(ctx context.Context) error {
			return s.notifier.NotifyLogin(ctx, account.Email, now, clientIP)
		}, "send login notification")
	}
	if s.publisher != nil {
		event := domain.LoginSucceededEvent{
			EventID:   uuid.NewString(),
			AccountID: account.ID,
			Email:     account.Email,
			IP:        clientIP,
			At:        now,
		}
		s.async(func(ctx context.Context) error {
			return s.publisher.PublishLoginSucceeded(ctx, event)
		}, "publish login succeeded")
	}

	return account.Sanitized(), nil
}

// Login authenticates the credentials and issues an access token for the
// account.
func (s *AuthService) Login(ctx context.Context, email, password, clientIP string) (string, domain.Account, error) {
	account, err := s.Authenticate(ctx, email, password, clientIP)
	if err != nil {
		return "", domain.Account{}, err
	}
	token, err := s.IssueTokenFor(account.ID, nil)
	if err != nil {
		return "", domain.Account{}, err
	}
	return token, account, nil
}

// IssueTokenFor mints an access token for the given account ID. Empty roles
// fall back to the configured defaults.
func (s *AuthService) IssueTokenFor(accountID string, roles []string) (string, error) {
	if accountID == "" {
		return "", fmt.Errorf("account id is required")
	}
	if len(roles) == 0 {
		roles = s.defaultRoles
	}
	token, err := s.codec.Issue(accountID, roles, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// TokenIdentity is the result of a successful token validation.
type TokenIdentity struct {
	Account domain.Account
	Roles   []string
}

// Validate verifies the token, resolves the subject, and returns the
// account together with the roles carried in the token. Roles are read from
// the token as issued, never recomputed from current account state.
func (s *AuthService) Validate(ctx context.Context, token string) (TokenIdentity, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		switch {
		case errors.Is(err, security.ErrInvalidSignature):
			return TokenIdentity{}, ErrInvalidSignature
		case errors.Is(err, security.ErrExpiredToken):
			return TokenIdentity{}, ErrExpiredToken
		default:
			return TokenIdentity{}, ErrMalformedToken
		}
	}

	account, err := s.accounts.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenIdentity{}, ErrUnknownSubject
		}
		return TokenIdentity{}, fmt.Errorf("lookup subject: %w", err)
	}

	if !account.IsActive {
		return TokenIdentity{}, ErrInactiveAccount
	}

	roles := claims.Roles
	if len(roles) == 0 {
		roles = s.defaultRoles
	}

	return TokenIdentity{Account: account.Sanitized(), Roles: roles}, nil
}

func (s *AuthService) recordLogin(attempt domain.LoginAttempt) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordLogin(attempt)
}

// async runs fn on its own goroutine with a bounded context. Failures are
// logged and never surfaced to the caller.
func (s *AuthService) async(fn func(context.Context) error, action string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.logger.Warn("background task failed", zap.String("action", action), zap.Error(err))
		}
	}()
}
