// Package services contains server-side business logic. UserService handles
// registration, login and session-token verification; ItemService handles
// the per-user task items.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

const (
	MinPasswordLength = 6
	MaxNameLength     = 100
)

// AuthResult is returned by a successful Register or Login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.PublicUser
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	issuer      *auth.TokenIssuer
	logger      logging.Logger
	now         func() time.Time
}

// NewUserService constructs a UserService. A nil logger discards output.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.PasswordHasher,
	issuer *auth.TokenIssuer, logger logging.Logger) *UserService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		issuer:      issuer,
		logger:      logger.With("module", "users"),
		now:         time.Now,
	}
}

// Register creates the account and signs the caller in. A taken email is
// common.ErrorAlreadyExists; bad input is common.ErrorValidation.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, invalid("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > auth.MaxSecretLength {
		return nil, invalid("password must be at most %d bytes", auth.MaxSecretLength)
	}
	if name == "" {
		return nil, invalid("name is required")
	}
	if len(name) > MaxNameLength {
		return nil, invalid("name must be at most %d characters", MaxNameLength)
	}

	digest, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{Email: email, PasswordHash: digest, Name: name})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return s.signIn(user)
}

// Login checks the password against the stored digest. An unknown email and
// a wrong password are both common.ErrorUnauthorized and cost the same bcrypt
// work. A corrupt stored digest is auth.ErrCorruptDigest.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalid("email and password are required")
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.CompareDummy(ctx, password)
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		if errors.Is(err, auth.ErrCorruptDigest) {
			s.logger.Error(ctx, "stored password digest is corrupt", "user_id", user.ID)
		}
		return nil, fmt.Errorf("%w: verify password: %w", common.ErrorInternal, err)
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	return s.signIn(user)
}

// Authenticate resolves a session token to the user ID it was issued for.
// Errors are the auth package sentinels.
func (s *UserService) Authenticate(token string) (string, error) {
	return s.issuer.Verify(token, s.now())
}

// Profile returns the public view of the user. A token that outlived its
// account is common.ErrorUnauthorized.
func (s *UserService) Profile(ctx context.Context, userID string) (models.PublicUser, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.PublicUser{}, common.ErrorUnauthorized
		}
		return models.PublicUser{}, fmt.Errorf("lookup user: %w", err)
	}
	return user.Public(), nil
}

func (s *UserService) signIn(user *models.User) (*AuthResult, error) {
	now := s.now()
	token, err := s.issuer.Issue(user.ID, now)
	if err != nil {
		return nil, fmt.Errorf("%w: issue token: %w", common.ErrorInternal, err)
	}
	return &AuthResult{Token: token, ExpiresAt: now.Add(s.issuer.TTL()), User: user.Public()}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return invalid("email is invalid")
	}
	return nil
}
