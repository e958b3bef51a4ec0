// File: internal/usecase/user_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"subscription-tracker/internal/domain"
	"subscription-tracker/internal/domain/model"
	"subscription-tracker/internal/domain/ports/repository"
	"subscription-tracker/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UpdateUserInput is a partial profile update. Email and password are not
// updatable through this path.
type UpdateUserInput struct {
	Name     *string
	LastName *string
}

// UserUseCase exposes account management used by the admin-ish user routes.
type UserUseCase interface {
	List(ctx context.Context, page, limit int) ([]*model.User, *Pagination, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	Update(ctx context.Context, id string, in UpdateUserInput) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

type userUC struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, log: logger}
}

func (u *userUC) List(ctx context.Context, page, limit int) ([]*model.User, *Pagination, error) {
	defer logging.TraceDuration(u.log, "UserUC.List")()

	page, limit = normalizePage(page, limit)
	users, err := u.users.List(ctx, repository.NoTX, (page-1)*limit, limit)
	if err != nil {
		return nil, nil, err
	}
	total, err := u.users.Count(ctx, repository.NoTX)
	if err != nil {
		return nil, nil, err
	}
	return users, newPagination(page, limit, total), nil
}

func (u *userUC) GetByID(ctx context.Context, id string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.GetByID")()
	return u.users.FindByID(ctx, repository.NoTX, id)
}

func (u *userUC) Update(ctx context.Context, id string, in UpdateUserInput) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.Update")()

	user, err := u.users.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if len(name) < 3 || len(name) > 50 {
			return nil, fmt.Errorf("name must be 3-50 characters: %w", domain.ErrValidation)
		}
		user.Name = name
	}
	if in.LastName != nil {
		lastName := strings.TrimSpace(*in.LastName)
		if len(lastName) < 3 || len(lastName) > 50 {
			return nil, fmt.Errorf("last name must be 3-50 characters: %w", domain.ErrValidation)
		}
		user.LastName = lastName
	}
	user.UpdatedAt = time.Now()
	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *userUC) Delete(ctx context.Context, id string) error {
	defer logging.TraceDuration(u.log, "UserUC.Delete")()
	return u.users.DeleteByID(ctx, repository.NoTX, id)
}
