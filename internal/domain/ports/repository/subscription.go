package repository

import (
	"context"
	"time"

	"subscription-tracker/internal/domain/model"
)

// SubscriptionFilter narrows list queries. Zero values mean "no filter".
type SubscriptionFilter struct {
	UserID    string
	Status    model.Status
	Category  model.Category
	Frequency model.Frequency
}

// SubscriptionRepository is the record-store port for subscriptions.
// All list results are ordered most-recently-created first unless stated
// otherwise. A negative or zero limit means "no limit".
type SubscriptionRepository interface {
	// Save inserts or fully updates a subscription.
	Save(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
	Find(ctx context.Context, tx Tx, f SubscriptionFilter, offset, limit int) ([]*model.Subscription, error)
	Count(ctx context.Context, tx Tx, f SubscriptionFilter) (int, error)
	// DeleteByID removes a subscription permanently; domain.ErrNotFound if absent.
	DeleteByID(ctx context.Context, tx Tx, id string) error
	// FindRenewingBetween returns active subscriptions whose renewal date lies
	// in [from, to], both ends inclusive, ordered by renewal date ascending.
	// userID optionally restricts to one owner.
	FindRenewingBetween(ctx context.Context, tx Tx, from, to time.Time, userID string) ([]*model.Subscription, error)
	// SearchByName matches the name field case-insensitively by substring.
	SearchByName(ctx context.Context, tx Tx, userID, term string, offset, limit int) ([]*model.Subscription, error)
	// AggregateUserStats computes the per-user statistics in the store.
	// A user with no subscriptions yields the zero-valued stats, not an error.
	AggregateUserStats(ctx context.Context, tx Tx, userID string) (*model.SubscriptionStats, error)
	CountByStatus(ctx context.Context, tx Tx) (map[model.Status]int, error)
}
