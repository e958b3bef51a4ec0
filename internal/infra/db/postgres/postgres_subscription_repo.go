package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"subscription-tracker/internal/domain"
	"subscription-tracker/internal/domain/model"
	"subscription-tracker/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subColumns = `id, user_id, name, description, website, notes, price, currency,
       frequency, category, payment_method, status, start_date, renewal_date,
       created_at, updated_at`

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (
  id, user_id, name, description, website, notes, price, currency,
  frequency, category, payment_method, status, start_date, renewal_date,
  created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (id) DO UPDATE SET
  name=$3, description=$4, website=$5, notes=$6, price=$7, currency=$8,
  frequency=$9, category=$10, payment_method=$11, status=$12,
  start_date=$13, renewal_date=$14, updated_at=$16;`

	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q,
		s.ID, s.UserID, s.Name, s.Description, s.Website, s.Notes, s.Price, string(s.Currency),
		string(s.Frequency), string(s.Category), string(s.PaymentMethod), string(s.Status),
		s.StartDate, s.RenewalDate, s.CreatedAt, s.UpdatedAt)
	return mapPgError(err)
}

func (r *subscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	row := ex.QueryRow(ctx, `SELECT `+subColumns+` FROM subscriptions WHERE id=$1;`, id)
	s, err := scanSub(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}

func (r *subscriptionRepo) Find(ctx context.Context, tx repository.Tx, f repository.SubscriptionFilter, offset, limit int) ([]*model.Subscription, error) {
	where, args := buildFilter(f)
	q := `SELECT ` + subColumns + ` FROM subscriptions` + where + ` ORDER BY created_at DESC`
	if limit > 0 {
		q += fmt.Sprintf(` OFFSET $%d LIMIT $%d`, len(args)+1, len(args)+2)
		args = append(args, offset, limit)
	}
	return r.queryMany(ctx, tx, q+";", args...)
}

func (r *subscriptionRepo) Count(ctx context.Context, tx repository.Tx, f repository.SubscriptionFilter) (int, error) {
	where, args := buildFilter(f)
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions`+where+`;`, args...).Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *subscriptionRepo) DeleteByID(ctx context.Context, tx repository.Tx, id string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `DELETE FROM subscriptions WHERE id=$1;`, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) FindRenewingBetween(ctx context.Context, tx repository.Tx, from, to time.Time, userID string) ([]*model.Subscription, error) {
	// Window is inclusive at both ends.
	q := `
SELECT ` + subColumns + `
  FROM subscriptions
 WHERE status=$1 AND renewal_date >= $2 AND renewal_date <= $3`
	args := []interface{}{string(model.StatusActive), from, to}
	if userID != "" {
		q += ` AND user_id=$4`
		args = append(args, userID)
	}
	q += ` ORDER BY renewal_date ASC;`
	return r.queryMany(ctx, tx, q, args...)
}

func (r *subscriptionRepo) SearchByName(ctx context.Context, tx repository.Tx, userID, term string, offset, limit int) ([]*model.Subscription, error) {
	pattern := "%" + escapeLike(term) + "%"
	q := `SELECT ` + subColumns + ` FROM subscriptions WHERE name ILIKE $1`
	args := []interface{}{pattern}
	if userID != "" {
		q += ` AND user_id=$2`
		args = append(args, userID)
	}
	q += fmt.Sprintf(` ORDER BY created_at DESC OFFSET $%d LIMIT $%d;`, len(args)+1, len(args)+2)
	args = append(args, offset, limit)
	return r.queryMany(ctx, tx, q, args...)
}

// AggregateUserStats runs the whole aggregation in one statement. The monthly
// estimate folds in monthly prices plus annual prices divided by 12; daily and
// weekly rows are deliberately not normalized into it.
func (r *subscriptionRepo) AggregateUserStats(ctx context.Context, tx repository.Tx, userID string) (*model.SubscriptionStats, error) {
	const q = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE status='activa'),
       COUNT(*) FILTER (WHERE status='cancelada'),
       COALESCE(SUM(price)    FILTER (WHERE status='activa' AND frequency='mensual'), 0)
     + COALESCE(SUM(price/12) FILTER (WHERE status='activa' AND frequency='anual'), 0)
  FROM subscriptions
 WHERE user_id=$1;`

	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	stats := &model.SubscriptionStats{}
	if err := ex.QueryRow(ctx, q, userID).Scan(
		&stats.TotalSubscriptions,
		&stats.ActiveSubscriptions,
		&stats.CancelledSubscriptions,
		&stats.EstimatedMonthlyExpense,
	); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return stats, nil
}

func (r *subscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.Status]int, error) {
	const q = `SELECT status, COUNT(*) FROM subscriptions GROUP BY status;`

	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	counts := make(map[model.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		counts[model.Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return counts, nil
}

func (r *subscriptionRepo) queryMany(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Subscription, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var out []*model.Subscription
	for rows.Next() {
		s, err := scanSub(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanSub(row pgx.Row) (*model.Subscription, error) {
	s := &model.Subscription{}
	var currency, frequency, category, paymentMethod, status string
	if err := row.Scan(
		&s.ID, &s.UserID, &s.Name, &s.Description, &s.Website, &s.Notes, &s.Price, &currency,
		&frequency, &category, &paymentMethod, &status, &s.StartDate, &s.RenewalDate,
		&s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.Currency = model.Currency(currency)
	s.Frequency = model.Frequency(frequency)
	s.Category = model.Category(category)
	s.PaymentMethod = model.PaymentMethod(paymentMethod)
	s.Status = model.Status(status)
	return s, nil
}

func buildFilter(f repository.SubscriptionFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(col string, v string) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if f.UserID != "" {
		add("user_id", f.UserID)
	}
	if f.Status != "" {
		add("status", string(f.Status))
	}
	if f.Category != "" {
		add("category", string(f.Category))
	}
	if f.Frequency != "" {
		add("frequency", string(f.Frequency))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// escapeLike neutralizes LIKE wildcards in user-supplied search terms.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
