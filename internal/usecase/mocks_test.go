//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"subscription-tracker/internal/domain"
	"subscription-tracker/internal/domain/model"
	"subscription-tracker/internal/domain/ports/repository"
)

// =============================
// Repositories
// =============================

// MockSubscriptionRepo is an in-memory SubscriptionRepository. Each method can
// be overridden per test through its Func field; the default behavior operates
// on the backing map.
type MockSubscriptionRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Subscription

	SaveFunc               func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
	FindByIDFunc           func(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error)
	AggregateUserStatsFunc func(ctx context.Context, tx repository.Tx, userID string) (*model.SubscriptionStats, error)
}

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{store: make(map[string]*model.Subscription)}
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func (m *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockSubscriptionRepo) Find(ctx context.Context, tx repository.Tx, f repository.SubscriptionFilter, offset, limit int) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := m.filtered(f)
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return page(matched, offset, limit), nil
}

func (m *MockSubscriptionRepo) Count(ctx context.Context, tx repository.Tx, f repository.SubscriptionFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.filtered(f)), nil
}

func (m *MockSubscriptionRepo) DeleteByID(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MockSubscriptionRepo) FindRenewingBetween(ctx context.Context, tx repository.Tx, from, to time.Time, userID string) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range m.store {
		if s.Status != model.StatusActive {
			continue
		}
		if userID != "" && s.UserID != userID {
			continue
		}
		if s.RenewalDate.Before(from) || s.RenewalDate.After(to) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RenewalDate.Before(out[j].RenewalDate) })
	return out, nil
}

func (m *MockSubscriptionRepo) SearchByName(ctx context.Context, tx repository.Tx, userID, term string, offset, limit int) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	needle := strings.ToLower(term)
	var matched []*model.Subscription
	for _, s := range m.store {
		if userID != "" && s.UserID != userID {
			continue
		}
		if !strings.Contains(strings.ToLower(s.Name), needle) {
			continue
		}
		cp := *s
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return page(matched, offset, limit), nil
}

func (m *MockSubscriptionRepo) AggregateUserStats(ctx context.Context, tx repository.Tx, userID string) (*model.SubscriptionStats, error) {
	if m.AggregateUserStatsFunc != nil {
		return m.AggregateUserStatsFunc(ctx, tx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := &model.SubscriptionStats{}
	for _, s := range m.store {
		if s.UserID != userID {
			continue
		}
		stats.TotalSubscriptions++
		switch s.Status {
		case model.StatusActive:
			stats.ActiveSubscriptions++
			switch s.Frequency {
			case model.FrequencyMonthly:
				stats.EstimatedMonthlyExpense += s.Price
			case model.FrequencyAnnual:
				stats.EstimatedMonthlyExpense += s.Price / 12
			}
		case model.StatusCancelled:
			stats.CancelledSubscriptions++
		}
	}
	return stats, nil
}

func (m *MockSubscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.Status]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[model.Status]int)
	for _, s := range m.store {
		counts[s.Status]++
	}
	return counts, nil
}

func (m *MockSubscriptionRepo) filtered(f repository.SubscriptionFilter) []*model.Subscription {
	var out []*model.Subscription
	for _, s := range m.store {
		if f.UserID != "" && s.UserID != f.UserID {
			continue
		}
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if f.Category != "" && s.Category != f.Category {
			continue
		}
		if f.Frequency != "" && s.Frequency != f.Frequency {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	return out
}

func page(subs []*model.Subscription, offset, limit int) []*model.Subscription {
	if offset >= len(subs) {
		return nil
	}
	subs = subs[offset:]
	if limit > 0 && limit < len(subs) {
		subs = subs[:limit]
	}
	return subs
}

// MockUserRepo is an in-memory UserRepository keyed by ID.
type MockUserRepo struct {
	mu    sync.RWMutex
	store map[string]*model.User

	SaveFunc        func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByEmailFunc func(ctx context.Context, tx repository.Tx, email string) (*model.User, error)
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{store: make(map[string]*model.User)}
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func (m *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, u)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.store {
		if other.ID != u.ID && other.Email == u.Email {
			return domain.ErrConflict
		}
	}
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, tx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.User
	for _, u := range m.store {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockUserRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

func (m *MockUserRepo) DeleteByID(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

// =============================
// Transaction manager
// =============================

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs the callback immediately without a real transaction unless a
// test overrides WithTxFunc.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// =============================
// Cache, tokens, hashing
// =============================

type MockStatsCache struct {
	mu          sync.Mutex
	store       map[string]*model.SubscriptionStats
	Hits        int
	Misses      int
	Invalidated []string
}

func NewMockStatsCache() *MockStatsCache {
	return &MockStatsCache{store: make(map[string]*model.SubscriptionStats)}
}

func (m *MockStatsCache) Get(ctx context.Context, userID string) (*model.SubscriptionStats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[userID]
	if !ok {
		m.Misses++
		return nil, false
	}
	m.Hits++
	cp := *s
	return &cp, true
}

func (m *MockStatsCache) Set(ctx context.Context, userID string, stats *model.SubscriptionStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *stats
	m.store[userID] = &cp
}

func (m *MockStatsCache) Invalidate(ctx context.Context, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, userID)
	m.Invalidated = append(m.Invalidated, userID)
}

// MockTokenManager issues trivially reversible tokens.
type MockTokenManager struct {
	GenerateFunc func(userID string) (string, error)
	VerifyFunc   func(token string) (string, error)
}

func (m *MockTokenManager) Generate(userID string) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(userID)
	}
	return "token-" + userID, nil
}

func (m *MockTokenManager) Verify(token string) (string, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(token)
	}
	if !strings.HasPrefix(token, "token-") {
		return "", domain.ErrUnauthorized
	}
	return strings.TrimPrefix(token, "token-"), nil
}

// MockHasher uses a reversible marker instead of a real KDF so tests stay fast.
type MockHasher struct{}

func (MockHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (MockHasher) Compare(plain, hash string) bool { return hash == "hashed:"+plain }

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
