//go:build !integration

package web

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"subscription-tracker/internal/domain"
	"subscription-tracker/internal/domain/model"
	"subscription-tracker/internal/domain/ports/repository"
	"subscription-tracker/internal/usecase"
)

// --- Mock use cases ---
// The interface is embedded for forward compatibility; tests assign only the
// Func fields they exercise.

type mockAuthUC struct {
	usecase.AuthUseCase
	SignUpFunc         func(ctx context.Context, name, lastName, email, password string) (*model.User, string, error)
	SignInFunc         func(ctx context.Context, email, password string) (*model.User, string, error)
	AuthenticateFunc   func(ctx context.Context, token string) (*model.User, error)
	ChangePasswordFunc func(ctx context.Context, userID, currentPassword, newPassword string) error
}

func (m *mockAuthUC) SignUp(ctx context.Context, name, lastName, email, password string) (*model.User, string, error) {
	return m.SignUpFunc(ctx, name, lastName, email, password)
}

func (m *mockAuthUC) SignIn(ctx context.Context, email, password string) (*model.User, string, error) {
	return m.SignInFunc(ctx, email, password)
}

func (m *mockAuthUC) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, token)
	}
	if token == "valid-token" {
		return testUser(), nil
	}
	return nil, domain.ErrUnauthorized
}

func (m *mockAuthUC) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	return m.ChangePasswordFunc(ctx, userID, currentPassword, newPassword)
}

type mockUserUC struct {
	usecase.UserUseCase
	ListFunc    func(ctx context.Context, page, limit int) ([]*model.User, *usecase.Pagination, error)
	GetByIDFunc func(ctx context.Context, id string) (*model.User, error)
	UpdateFunc  func(ctx context.Context, id string, in usecase.UpdateUserInput) (*model.User, error)
	DeleteFunc  func(ctx context.Context, id string) error
}

func (m *mockUserUC) List(ctx context.Context, page, limit int) ([]*model.User, *usecase.Pagination, error) {
	return m.ListFunc(ctx, page, limit)
}

func (m *mockUserUC) GetByID(ctx context.Context, id string) (*model.User, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockUserUC) Update(ctx context.Context, id string, in usecase.UpdateUserInput) (*model.User, error) {
	return m.UpdateFunc(ctx, id, in)
}

func (m *mockUserUC) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

type mockSubUC struct {
	usecase.SubscriptionUseCase
	CreateFunc           func(ctx context.Context, ownerID string, in usecase.CreateSubscriptionInput) (*model.Subscription, error)
	GetByIDFunc          func(ctx context.Context, ownerID, id string) (*model.Subscription, error)
	ListFunc             func(ctx context.Context, opts usecase.ListOptions) ([]*model.Subscription, *usecase.Pagination, error)
	ListByUserFunc       func(ctx context.Context, ownerID string, f repository.SubscriptionFilter) ([]*model.Subscription, error)
	UpdateFunc           func(ctx context.Context, ownerID, id string, in usecase.UpdateSubscriptionInput) (*model.Subscription, error)
	CancelFunc           func(ctx context.Context, ownerID, id string) (*model.Subscription, error)
	DeleteFunc           func(ctx context.Context, ownerID, id string) error
	UpcomingRenewalsFunc func(ctx context.Context, ownerID string, days int) ([]*model.Subscription, error)
	StatsFunc            func(ctx context.Context, ownerID string) (*model.SubscriptionStats, error)
	SearchFunc           func(ctx context.Context, ownerID, term string, page, limit int) ([]*model.Subscription, error)
}

func (m *mockSubUC) Create(ctx context.Context, ownerID string, in usecase.CreateSubscriptionInput) (*model.Subscription, error) {
	return m.CreateFunc(ctx, ownerID, in)
}

func (m *mockSubUC) GetByID(ctx context.Context, ownerID, id string) (*model.Subscription, error) {
	return m.GetByIDFunc(ctx, ownerID, id)
}

func (m *mockSubUC) List(ctx context.Context, opts usecase.ListOptions) ([]*model.Subscription, *usecase.Pagination, error) {
	return m.ListFunc(ctx, opts)
}

func (m *mockSubUC) ListByUser(ctx context.Context, ownerID string, f repository.SubscriptionFilter) ([]*model.Subscription, error) {
	return m.ListByUserFunc(ctx, ownerID, f)
}

func (m *mockSubUC) Update(ctx context.Context, ownerID, id string, in usecase.UpdateSubscriptionInput) (*model.Subscription, error) {
	return m.UpdateFunc(ctx, ownerID, id, in)
}

func (m *mockSubUC) Cancel(ctx context.Context, ownerID, id string) (*model.Subscription, error) {
	return m.CancelFunc(ctx, ownerID, id)
}

func (m *mockSubUC) Delete(ctx context.Context, ownerID, id string) error {
	return m.DeleteFunc(ctx, ownerID, id)
}

func (m *mockSubUC) UpcomingRenewals(ctx context.Context, ownerID string, days int) ([]*model.Subscription, error) {
	return m.UpcomingRenewalsFunc(ctx, ownerID, days)
}

func (m *mockSubUC) Stats(ctx context.Context, ownerID string) (*model.SubscriptionStats, error) {
	return m.StatsFunc(ctx, ownerID)
}

func (m *mockSubUC) Search(ctx context.Context, ownerID, term string, page, limit int) ([]*model.Subscription, error) {
	return m.SearchFunc(ctx, ownerID, term, page, limit)
}

// --- Fixtures ---

func testUser() *model.User {
	return &model.User{
		ID:       "user-1",
		Name:     "Test",
		LastName: "User",
		Email:    "test@example.com",
	}
}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
