package repository

import (
	"context"

	"subscription-tracker/internal/domain/model"
)

// UserRepository is the record-store port for accounts.
type UserRepository interface {
	// Save inserts or updates a user. A duplicate email surfaces as
	// domain.ErrConflict (unique constraint in the store, never check-then-insert).
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.User, error)
	Count(ctx context.Context, tx Tx) (int, error)
	DeleteByID(ctx context.Context, tx Tx, id string) error
}
