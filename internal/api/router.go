package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/careops/hospital-admission/internal/admission"
	"github.com/careops/hospital-admission/internal/auth"
)

type RouterConfig struct {
	Auth     *auth.Service
	Workflow *admission.Service
	PgPool   *pgxpool.Pool
	Redis    *redis.Client
	Env      string
	Version  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Operator accounts
	r.Post("/auth/signup", signupHandler(cfg.Auth))
	r.Post("/auth/login", loginHandler(cfg.Auth, cfg.Workflow))

	// Workflow endpoints, one per stage transition
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Auth))

		r.Get("/hospitals", listHospitalsHandler(cfg.Workflow))
		r.Get("/hospitals/{id}/reviews", hospitalReviewsHandler(cfg.Workflow))

		r.Post("/admission/intake", intakeHandler(cfg.Workflow))
		r.Post("/admission/emergency", emergencyHandler(cfg.Workflow))
		r.Post("/admission/hospital", selectHospitalHandler(cfg.Workflow))
		r.Post("/admission/doctor/confirm", confirmDoctorHandler(cfg.Workflow))
		r.Post("/admission/ward-food", wardFoodHandler(cfg.Workflow))
		r.Post("/admission/billing", billingQuoteHandler(cfg.Workflow))
		r.Post("/admission/billing/back", billingBackHandler(cfg.Workflow))
		r.Post("/admission/billing/confirm", commitBookingHandler(cfg.Workflow))
		r.Get("/admission/summary", summaryHandler(cfg.Workflow))
		r.Post("/admission/review", reviewHandler(cfg.Workflow))
		r.Post("/admission/reset", resetHandler(cfg.Workflow))
	})

	return r
}
