// File: internal/usecase/subscription_uc.go
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

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

// CreateSubscriptionInput carries the caller-supplied fields for a new
// subscription. RenewalDate may be nil; it is then derived from StartDate and
// Frequency.
type CreateSubscriptionInput struct {
	Name          string
	Description   string
	Website       string
	Notes         string
	Price         float64
	Currency      model.Currency
	Frequency     model.Frequency
	Category      model.Category
	PaymentMethod model.PaymentMethod
	Status        model.Status
	StartDate     time.Time
	RenewalDate   *time.Time
}

// UpdateSubscriptionInput is a partial update; nil fields are left untouched.
type UpdateSubscriptionInput struct {
	Name          *string
	Description   *string
	Website       *string
	Notes         *string
	Price         *float64
	Currency      *model.Currency
	Frequency     *model.Frequency
	Category      *model.Category
	PaymentMethod *model.PaymentMethod
	Status        *model.Status
	StartDate     *time.Time
	RenewalDate   *time.Time
}

// ListOptions selects a page of subscriptions.
type ListOptions struct {
	Filter repository.SubscriptionFilter
	Page   int
	Limit  int
}

// Pagination is the metadata returned alongside paged lists.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	Total       int  `json:"total"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// StatsCache caches per-user statistics between writes. Implementations must
// treat misses as cheap; the use case falls through to the store.
type StatsCache interface {
	Get(ctx context.Context, userID string) (*model.SubscriptionStats, bool)
	Set(ctx context.Context, userID string, stats *model.SubscriptionStats)
	Invalidate(ctx context.Context, userID string)
}

// SubscriptionUseCase implements the subscription lifecycle operations.
// Every operation is scoped to the owning user; ownership mismatches surface
// as domain.ErrForbidden and missing records as domain.ErrNotFound.
type SubscriptionUseCase interface {
	Create(ctx context.Context, ownerID string, in CreateSubscriptionInput) (*model.Subscription, error)
	GetByID(ctx context.Context, ownerID, id string) (*model.Subscription, error)
	List(ctx context.Context, opts ListOptions) ([]*model.Subscription, *Pagination, error)
	ListByUser(ctx context.Context, ownerID string, f repository.SubscriptionFilter) ([]*model.Subscription, error)
	Update(ctx context.Context, ownerID, id string, in UpdateSubscriptionInput) (*model.Subscription, error)
	Cancel(ctx context.Context, ownerID, id string) (*model.Subscription, error)
	Delete(ctx context.Context, ownerID, id string) error
	UpcomingRenewals(ctx context.Context, ownerID string, days int) ([]*model.Subscription, error)
	Stats(ctx context.Context, ownerID string) (*model.SubscriptionStats, error)
	Search(ctx context.Context, ownerID, term string, page, limit int) ([]*model.Subscription, error)
	CountByStatus(ctx context.Context) (map[model.Status]int, error)
}

type subscriptionUC struct {
	subs  repository.SubscriptionRepository
	users repository.UserRepository
	cache StatsCache
	log   *zerolog.Logger
}

// NewSubscriptionUseCase constructs the use case. cache may be nil, in which
// case statistics always hit the store.
func NewSubscriptionUseCase(subs repository.SubscriptionRepository, users repository.UserRepository, cache StatsCache, logger *zerolog.Logger) *subscriptionUC {
	return &subscriptionUC{subs: subs, users: users, cache: cache, log: logger}
}

const (
	defaultPageSize = 10
	maxPageSize     = 100

	defaultRenewalWindowDays = 7
	maxRenewalWindowDays     = 365
)

func (uc *subscriptionUC) Create(ctx context.Context, ownerID string, in CreateSubscriptionInput) (*model.Subscription, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Create")()

	if _, err := uc.users.FindByID(ctx, repository.NoTX, ownerID); err != nil {
		return nil, err
	}

	// Defaults for optional commercial fields.
	if in.Currency == "" {
		in.Currency = model.CurrencyPEN
	}
	if in.Frequency == "" {
		in.Frequency = model.FrequencyMonthly
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = model.PaymentMethodCreditCard
	}

	now := time.Now()
	if err := model.ValidateSubmittedDates(in.StartDate, in.RenewalDate, now); err != nil {
		return nil, err
	}
	renewal, err := model.DeriveRenewalDate(in.StartDate, in.Frequency, in.RenewalDate)
	if err != nil {
		return nil, err
	}

	s := &model.Subscription{
		ID:            uuid.NewString(),
		UserID:        ownerID,
		Name:          in.Name,
		Description:   in.Description,
		Website:       in.Website,
		Notes:         in.Notes,
		Price:         in.Price,
		Currency:      in.Currency,
		Frequency:     in.Frequency,
		Category:      in.Category,
		PaymentMethod: in.PaymentMethod,
		Status:        model.EffectiveStatus(renewal, in.Status, now),
		StartDate:     in.StartDate,
		RenewalDate:   renewal,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := uc.subs.Save(ctx, repository.NoTX, s); err != nil {
		return nil, err
	}
	uc.invalidateStats(ctx, ownerID)
	return s, nil
}

func (uc *subscriptionUC) GetByID(ctx context.Context, ownerID, id string) (*model.Subscription, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.GetByID")()
	return uc.owned(ctx, ownerID, id)
}

func (uc *subscriptionUC) List(ctx context.Context, opts ListOptions) ([]*model.Subscription, *Pagination, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.List")()

	page, limit := normalizePage(opts.Page, opts.Limit)
	subs, err := uc.subs.Find(ctx, repository.NoTX, opts.Filter, (page-1)*limit, limit)
	if err != nil {
		return nil, nil, err
	}
	total, err := uc.subs.Count(ctx, repository.NoTX, opts.Filter)
	if err != nil {
		return nil, nil, err
	}
	return subs, newPagination(page, limit, total), nil
}

func (uc *subscriptionUC) ListByUser(ctx context.Context, ownerID string, f repository.SubscriptionFilter) ([]*model.Subscription, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.ListByUser")()

	if _, err := uc.users.FindByID(ctx, repository.NoTX, ownerID); err != nil {
		return nil, err
	}
	f.UserID = ownerID
	return uc.subs.Find(ctx, repository.NoTX, f, 0, 0)
}

func (uc *subscriptionUC) Update(ctx context.Context, ownerID, id string, in UpdateSubscriptionInput) (*model.Subscription, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Update")()

	s, err := uc.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if in.StartDate != nil {
		if err := model.ValidateSubmittedDates(*in.StartDate, in.RenewalDate, now); err != nil {
			return nil, err
		}
		s.StartDate = *in.StartDate
	}
	if in.RenewalDate != nil {
		s.RenewalDate = *in.RenewalDate
	}
	if in.Name != nil {
		s.Name = *in.Name
	}
	if in.Description != nil {
		s.Description = *in.Description
	}
	if in.Website != nil {
		s.Website = *in.Website
	}
	if in.Notes != nil {
		s.Notes = *in.Notes
	}
	if in.Price != nil {
		s.Price = *in.Price
	}
	if in.Currency != nil {
		s.Currency = *in.Currency
	}
	if in.Frequency != nil {
		s.Frequency = *in.Frequency
	}
	if in.Category != nil {
		s.Category = *in.Category
	}
	if in.PaymentMethod != nil {
		s.PaymentMethod = *in.PaymentMethod
	}

	requested := s.Status
	if in.Status != nil {
		requested = *in.Status
	}
	// The expiry override runs on every write that leaves a lapsed renewal
	// date in place, whatever status the caller asked for.
	s.Status = model.EffectiveStatus(s.RenewalDate, requested, now)
	s.UpdatedAt = now

	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := uc.subs.Save(ctx, repository.NoTX, s); err != nil {
		return nil, err
	}
	uc.invalidateStats(ctx, ownerID)
	return s, nil
}

// Cancel marks a subscription cancelled. It is a dedicated status write, not a
// generic update: an explicit cancellation wins even when the renewal date has
// already lapsed.
func (uc *subscriptionUC) Cancel(ctx context.Context, ownerID, id string) (*model.Subscription, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Cancel")()

	s, err := uc.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	s.Status = model.StatusCancelled
	s.UpdatedAt = time.Now()
	if err := uc.subs.Save(ctx, repository.NoTX, s); err != nil {
		return nil, err
	}
	uc.invalidateStats(ctx, ownerID)
	return s, nil
}

// Delete removes a subscription permanently. There is no soft delete or
// restore.
func (uc *subscriptionUC) Delete(ctx context.Context, ownerID, id string) error {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Delete")()

	if _, err := uc.owned(ctx, ownerID, id); err != nil {
		return err
	}
	if err := uc.subs.DeleteByID(ctx, repository.NoTX, id); err != nil {
		return err
	}
	uc.invalidateStats(ctx, ownerID)
	return nil
}

// UpcomingRenewals returns the active subscriptions renewing within the window
// [now, now+days], both ends inclusive, ordered by renewal date. ownerID may
// be empty to span all users.
func (uc *subscriptionUC) UpcomingRenewals(ctx context.Context, ownerID string, days int) ([]*model.Subscription, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.UpcomingRenewals")()

	if days <= 0 {
		days = defaultRenewalWindowDays
	}
	if days > maxRenewalWindowDays {
		return nil, fmt.Errorf("renewal window exceeds %d days: %w", maxRenewalWindowDays, domain.ErrValidation)
	}
	from := time.Now()
	to := from.AddDate(0, 0, days)
	return uc.subs.FindRenewingBetween(ctx, repository.NoTX, from, to, ownerID)
}

func (uc *subscriptionUC) Stats(ctx context.Context, ownerID string) (*model.SubscriptionStats, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Stats")()

	if _, err := uc.users.FindByID(ctx, repository.NoTX, ownerID); err != nil {
		return nil, err
	}
	if uc.cache != nil {
		if stats, ok := uc.cache.Get(ctx, ownerID); ok {
			return stats, nil
		}
	}
	stats, err := uc.subs.AggregateUserStats(ctx, repository.NoTX, ownerID)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		uc.cache.Set(ctx, ownerID, stats)
	}
	return stats, nil
}

func (uc *subscriptionUC) Search(ctx context.Context, ownerID, term string, page, limit int) ([]*model.Subscription, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Search")()

	// Search terms obey the same character class and length as names, after
	// trimming. The trimmed term is also what the store matches on.
	term = strings.TrimSpace(term)
	if !model.ValidName(term) {
		return nil, fmt.Errorf("invalid search term: %w", domain.ErrValidation)
	}
	page, limit = normalizePage(page, limit)
	return uc.subs.SearchByName(ctx, repository.NoTX, ownerID, term, (page-1)*limit, limit)
}

func (uc *subscriptionUC) CountByStatus(ctx context.Context) (map[model.Status]int, error) {
	return uc.subs.CountByStatus(ctx, repository.NoTX)
}

// owned fetches a subscription and enforces ownership.
func (uc *subscriptionUC) owned(ctx context.Context, ownerID, id string) (*model.Subscription, error) {
	s, err := uc.subs.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if s.UserID != ownerID {
		return nil, domain.ErrForbidden
	}
	return s, nil
}

func (uc *subscriptionUC) invalidateStats(ctx context.Context, ownerID string) {
	if uc.cache != nil {
		uc.cache.Invalidate(ctx, ownerID)
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func newPagination(page, limit, total int) *Pagination {
	totalPages := (total + limit - 1) / limit
	return &Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		Total:       total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
