package metrics

import (
	"subscription-tracker/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		subscriptionsCreatedTotal,
		subscriptionsExpiredTotal,
		subscriptionsTotal,
	)
}

var (
	subscriptionsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_created_total",
			Help: "Total number of subscriptions created since process start.",
		},
	)

	subscriptionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_expired_total",
			Help: "Total number of subscriptions expired at write time since process start.",
		},
	)

	subscriptionsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "subscriptions_total",
			Help: "Current number of subscriptions by status.",
		},
		[]string{"status"}, // 'activa', 'cancelada', 'pausada', 'expirada'
	)
)

func IncSubscriptionsCreated() {
	subscriptionsCreatedTotal.Inc()
}

func IncSubscriptionsExpired() {
	subscriptionsExpiredTotal.Inc()
}

func SetSubscriptionsTotal(counts map[model.Status]int) {
	statuses := []model.Status{
		model.StatusActive,
		model.StatusCancelled,
		model.StatusPaused,
		model.StatusExpired,
	}
	// Absent statuses reset to zero so stale gauge values do not linger.
	for _, status := range statuses {
		subscriptionsTotal.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}
