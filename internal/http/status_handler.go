package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/christpg03/mine-bot/internal/repository"
)

// Pinger verifica la conectividad con una dependencia externa.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusHandler expone los endpoints operativos del bot.
type StatusHandler struct {
	logger  *zap.Logger
	started time.Time
	db      Pinger
	cache   Pinger
	users   repository.UserRepository
	teams   repository.TeamRepository
	dailys  repository.DailyRepository
}

// NewStatusHandler crea un StatusHandler. cache puede ser nil si Redis
// no está configurado.
func NewStatusHandler(
	logger *zap.Logger,
	db Pinger,
	cache Pinger,
	users repository.UserRepository,
	teams repository.TeamRepository,
	dailys repository.DailyRepository,
) *StatusHandler {
	return &StatusHandler{
		logger:  logger,
		started: time.Now().UTC(),
		db:      db,
		cache:   cache,
		users:   users,
		teams:   teams,
		dailys:  dailys,
	}
}

// Health maneja GET /healthz.
func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

// Ready maneja GET /readyz: comprueba Postgres y, si está configurado, Redis.
func (h *StatusHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	ready := true

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("db ping failed", zap.Error(err))
		checks["database"] = "down"
		ready = false
	} else {
		checks["database"] = "up"
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			h.logger.Warn("redis ping failed", zap.Error(err))
			checks["redis"] = "down"
			ready = false
		} else {
			checks["redis"] = "up"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"ready": ready, "checks": checks})
}

// Stats maneja GET /stats con contadores básicos de la base.
func (h *StatusHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.users.Count(ctx)
	if err != nil {
		h.logger.Error("count users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stats"})
		return
	}
	teams, err := h.teams.Count(ctx)
	if err != nil {
		h.logger.Error("count teams failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stats"})
		return
	}
	pending, err := h.dailys.CountPending(ctx)
	if err != nil {
		h.logger.Error("count pending dailys failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":          users,
		"teams":          teams,
		"pending_dailys": pending,
	})
}
