package api

import (
	"context"
	"time"

	"go-fleet/internal/database"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

type HealthApi struct {
	Postgres *gorm.DB
	Mongo    *database.MongodbDB
}

func NewHealthApi(postgres *gorm.DB, mongo *database.MongodbDB) *HealthApi {
	return &HealthApi{Postgres: postgres, Mongo: mongo}
}

// Setup registers health check route
func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", h.HealthCheck)
}

// HealthCheck pings both stores and reports 503 when either is unreachable
func (h *HealthApi) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	checks := fiber.Map{"postgres": "ok", "mongo": "ok"}
	healthy := true

	if sqlDB, err := h.Postgres.DB(); err != nil {
		checks["postgres"], healthy = err.Error(), false
	} else if err := sqlDB.PingContext(ctx); err != nil {
		checks["postgres"], healthy = err.Error(), false
	}
	if err := h.Mongo.Client.Ping(ctx, nil); err != nil {
		checks["mongo"], healthy = err.Error(), false
	}

	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "checks": checks})
	}
	return c.JSON(fiber.Map{"status": "ok", "checks": checks})
}
