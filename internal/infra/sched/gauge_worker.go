package sched

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"subscription-tracker/internal/infra/metrics"
	"subscription-tracker/internal/usecase"
)

// GaugeWorker periodically refreshes the status-count and pool gauges.
// It only reads; stored statuses are never rewritten by the clock, expiry is
// applied when a subscription is written.
type GaugeWorker struct {
	interval time.Duration
	subUC    usecase.SubscriptionUseCase
	pool     *pgxpool.Pool
	log      *zerolog.Logger
}

func NewGaugeWorker(interval time.Duration, subUC usecase.SubscriptionUseCase, pool *pgxpool.Pool, logger *zerolog.Logger) *GaugeWorker {
	gaugeLog := logger.With().Str("component", "GaugeWorker").Logger()
	return &GaugeWorker{
		interval: interval,
		subUC:    subUC,
		pool:     pool,
		log:      &gaugeLog,
	}
}

func (w *GaugeWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting gauge worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping gauge worker")
			return ctx.Err()
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *GaugeWorker) refresh(ctx context.Context) {
	counts, err := w.subUC.CountByStatus(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("gauge worker error")
	} else {
		metrics.SetSubscriptionsTotal(counts)
	}
	if w.pool != nil {
		st := w.pool.Stat()
		metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
	}
}
