package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"subscription-tracker/internal/infra/redis"
	"subscription-tracker/internal/usecase"
)

// Server owns the HTTP surface: routing, auth enforcement and the
// translation between wire DTOs and use-case calls.
type Server struct {
	authUC usecase.AuthUseCase
	userUC usecase.UserUseCase
	subUC  usecase.SubscriptionUseCase
	log    *zerolog.Logger
}

func NewServer(
	authUC usecase.AuthUseCase,
	userUC usecase.UserUseCase,
	subUC usecase.SubscriptionUseCase,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		authUC: authUC,
		userUC: userUC,
		subUC:  subUC,
		log:    logger,
	}
}

// RouterOptions carries the cross-cutting knobs the router needs.
type RouterOptions struct {
	RequestTimeout time.Duration
	RateLimiter    *redis.RateLimiter
	RateRequests   int
	RateWindow     time.Duration
}

// Router assembles the full route tree. Auth endpoints sit behind the rate
// limiter; everything under /api/v1 except auth requires a bearer token.
func (s *Server) Router(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(
		TraceID(),
		Recover(s.log),
		RequestLog(s.log),
		Measure(),
		Timeout(opts.RequestTimeout),
	)

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if opts.RateLimiter != nil {
				r.Use(RateLimit(opts.RateLimiter, opts.RateRequests, opts.RateWindow, s.log))
			}
			r.Post("/sign-up", s.signUp)
			r.Post("/sign-in", s.signIn)
			r.With(RequireAuth(s.authUC)).Post("/sign-out", s.signOut)
			r.With(RequireAuth(s.authUC)).Post("/change-password", s.changePassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(s.authUC))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", s.listUsers)
				r.Get("/{id}", s.getUser)
				r.Put("/{id}", s.updateUser)
				r.Delete("/{id}", s.deleteUser)
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Get("/", s.listSubscriptions)
				r.Post("/", s.createSubscription)
				r.Get("/upcoming-renewals", s.upcomingRenewals)
				r.Get("/search", s.searchSubscriptions)
				r.Get("/users/{id}", s.listUserSubscriptions)
				r.Get("/users/{id}/stats", s.userStats)
				r.Get("/{id}", s.getSubscription)
				r.Put("/{id}", s.updateSubscription)
				r.Put("/{id}/cancel", s.cancelSubscription)
				r.Delete("/{id}", s.deleteSubscription)
			})
		})
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
