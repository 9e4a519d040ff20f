package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/montonitech/client-scheduling/internal/analytics"
	"github.com/montonitech/client-scheduling/internal/config"
	"github.com/montonitech/client-scheduling/internal/postal"
	"github.com/montonitech/client-scheduling/internal/scheduling"
)

type RouterConfig struct {
	Service *scheduling.Service
	Postal  *postal.Client
	Sink    analytics.Sink
	Cfg     config.Config
	Redis   *redis.Client // nil with the memory store driver
	PgPool  *pgxpool.Pool // nil when analytics is disabled
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	composer := &Composer{
		CountryCode:     cfg.Cfg.CountryCode,
		CompanyWhatsapp: cfg.Cfg.CompanyWhatsapp,
	}

	health := NewHealthHandler(cfg.Redis, cfg.PgPool, cfg.Cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Public booking flow
	r.Post("/clients/login", loginHandler(cfg.Service, cfg.Sink))
	r.Post("/clients", registerHandler(cfg.Service))
	r.Get("/clients/{phone}/availability", availabilityHandler(cfg.Service))
	r.Post("/clients/{phone}/appointments", scheduleHandler(cfg.Service, composer))
	r.Get("/postal/{cep}", postalHandler(cfg.Postal))

	// Admin management flow
	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", adminLoginHandler(cfg.Cfg.AdminPassword, cfg.Sink))

		r.Group(func(r chi.Router) {
			r.Use(AdminGate(cfg.Cfg.AdminPassword))
			r.Get("/entries", listEntriesHandler(cfg.Service))
			r.Post("/clients", saveClientHandler(cfg.Service, composer))
			r.Delete("/clients/{phone}", deleteClientHandler(cfg.Service))
			r.Put("/clients/{phone}/appointments/{date}/{time}", updateAppointmentHandler(cfg.Service, composer))
			r.Delete("/clients/{phone}/appointments/{date}/{time}", deleteAppointmentHandler(cfg.Service))
		})
	})

	return r
}
