// File: internal/usecase/auth_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"

	"subscription-tracker/internal/domain"
	"subscription-tracker/internal/domain/model"
	"subscription-tracker/internal/domain/ports/repository"
	"subscription-tracker/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ AuthUseCase = (*authUC)(nil)

// TokenManager mints and verifies bearer tokens for authenticated sessions.
type TokenManager interface {
	Generate(userID string) (string, error)
	// Verify returns the user ID carried by a valid token.
	Verify(token string) (string, error)
}

// PasswordHasher hides the concrete hashing scheme from the use case.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain, hash string) bool
}

// AuthUseCase covers registration and session handling.
type AuthUseCase interface {
	SignUp(ctx context.Context, name, lastName, email, password string) (*model.User, string, error)
	SignIn(ctx context.Context, email, password string) (*model.User, string, error)
	// Authenticate resolves a bearer token to the account it belongs to.
	Authenticate(ctx context.Context, token string) (*model.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

type authUC struct {
	users  repository.UserRepository
	tm     repository.TransactionManager
	tokens TokenManager
	hasher PasswordHasher
	log    *zerolog.Logger
}

func NewAuthUseCase(users repository.UserRepository, tm repository.TransactionManager, tokens TokenManager, hasher PasswordHasher, logger *zerolog.Logger) *authUC {
	return &authUC{users: users, tm: tm, tokens: tokens, hasher: hasher, log: logger}
}

const minPasswordLength = 6

// SignUp registers a new account. The existence check and insert run inside a
// single transaction, and the store's unique constraint on email backs it up:
// two concurrent signups for the same address cannot both succeed, the loser
// gets domain.ErrConflict.
func (a *authUC) SignUp(ctx context.Context, name, lastName, email, password string) (*model.User, string, error) {
	defer logging.TraceDuration(a.log, "AuthUC.SignUp")()

	if len(password) < minPasswordLength {
		return nil, "", fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, domain.ErrValidation)
	}
	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	var user *model.User
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err = a.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		existing, err := a.users.FindByEmail(ctx, tx, email)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if existing != nil {
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		nu, err := model.NewUser("", name, lastName, email, hash)
		if err != nil {
			return err
		}
		if err := a.users.Save(ctx, tx, nu); err != nil {
			return err
		}
		user = nu
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	token, err := a.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (a *authUC) SignIn(ctx context.Context, email, password string) (*model.User, string, error) {
	defer logging.TraceDuration(a.log, "AuthUC.SignIn")()

	user, err := a.users.FindByEmail(ctx, repository.NoTX, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Same failure for unknown email and bad password.
			return nil, "", domain.ErrUnauthorized
		}
		return nil, "", err
	}
	if !a.hasher.Compare(password, user.PasswordHash) {
		return nil, "", domain.ErrUnauthorized
	}
	token, err := a.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (a *authUC) Authenticate(ctx context.Context, token string) (*model.User, error) {
	userID, err := a.tokens.Verify(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	user, err := a.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

func (a *authUC) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	defer logging.TraceDuration(a.log, "AuthUC.ChangePassword")()

	user, err := a.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return err
	}
	if !a.hasher.Compare(currentPassword, user.PasswordHash) {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrValidation)
	}
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, domain.ErrValidation)
	}
	hash, err := a.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return a.users.Save(ctx, repository.NoTX, user)
}
