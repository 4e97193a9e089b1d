package controller

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/opentill/cashdesk/internal/config"
	"github.com/opentill/cashdesk/internal/infrastructure/observability"
	customMW "github.com/opentill/cashdesk/internal/middleware"
	"github.com/opentill/cashdesk/internal/service"
)

type RouterDeps struct {
	Pool        *pgxpool.Pool
	RedisClient *redis.Client
	Authz       *service.AuthzService
	Recorder    *service.RecorderService
	Checkout    *service.CheckoutService
	Balances    *service.BalanceService
	Metrics     *observability.Metrics
	ServerCfg   config.ServerConfig
	JWTSecret   string
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.ServerCfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.ServerCfg.CORS.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))
	r.Use(customMW.RateLimit(deps.ServerCfg.RequestsPerMin))

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	ledgerH := NewLedgerController(deps.Authz, deps.Recorder, deps.Checkout, deps.Balances, deps.Metrics)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Every ledger endpoint requires a verified actor identity.
		r.Use(customMW.RequireAuth(deps.JWTSecret))

		r.Post("/transactions", ledgerH.RecordTransaction)
		r.Get("/transactions/recent", ledgerH.ListRecent)

		r.Get("/balance/{customer}", ledgerH.GetBalance)
		r.Post("/balances/batch", ledgerH.BatchBalances)

		r.Post("/checkout", ledgerH.Checkout)
	})

	return r
}
