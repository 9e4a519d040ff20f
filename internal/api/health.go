package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	redis   *redis.Client // nil with the memory store driver
	pgPool  *pgxpool.Pool // nil when analytics is disabled
	env     string
	version string
}

func NewHealthHandler(rdb *redis.Client, pgPool *pgxpool.Pool, env, version string) *HealthHandler {
	return &HealthHandler{
		redis:   rdb,
		pgPool:  pgPool,
		env:     env,
		version: version,
	}
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Env     string `json:"env,omitempty"`
}

type ReadinessResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Env          string            `json:"env,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  "ok",
		Version: h.version,
		Env:     h.env,
	})
}

// Readiness pings whichever backends are configured. Redis down means
// the store is unreachable, so readiness fails; a dead analytics pool
// only degrades, events are droppable.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string)
	status := "ok"

	if h.redis != nil {
		pingCtx, pingCancel := context.WithTimeout(ctx, time.Second)
		err := h.redis.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			deps["redis"] = "down"
			status = "error"
		} else {
			deps["redis"] = "ok"
		}
	}

	if h.pgPool != nil {
		pingCtx, pingCancel := context.WithTimeout(ctx, time.Second)
		err := h.pgPool.Ping(pingCtx)
		pingCancel()
		if err != nil {
			deps["postgres"] = "down"
			if status == "ok" {
				status = "degraded"
			}
		} else {
			deps["postgres"] = "ok"
		}
	}

	httpStatus := http.StatusOK
	if status == "error" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, ReadinessResponse{
		Status:       status,
		Version:      h.version,
		Env:          h.env,
		Dependencies: deps,
	})
}
