package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	common_api "go-fleet/internal/api"
	"go-fleet/internal/config"
	"go-fleet/internal/database"
	"go-fleet/internal/features/audit"
	"go-fleet/internal/features/report"
	"go-fleet/internal/logger"
	"go-fleet/internal/middleware"
	"go-fleet/internal/reportengine"
	"go-fleet/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())
	return app
}

// AsRoute tags the constructor so Fx adds it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes calls Setup() on every member of the "routes" group.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, log *zap.Logger) {
	for _, route := range routes {
		log.Debug("registering routes", zap.String("api", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
	log.Info("routes registered", zap.Int("count", len(routes)))
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer starts Fiber in a goroutine and shuts it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures the saved report indexes exist
func InitializeIndexes(lc fx.Lifecycle, reportRepo report.ReportRepository, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := reportRepo.EnsureIndexes(ctx); err != nil {
					log.Warn("failed to ensure report indexes", zap.Error(err))
				}
			}()
			return nil
		},
	})
}

func NewRunRecorder(reportRepo report.ReportRepository) reportengine.RunRecorder {
	return reportRepo
}

func NewReportEngine(cfg *config.Config, registry *reportengine.Registry, executor reportengine.Executor, recorder reportengine.RunRecorder, log *zap.Logger) *reportengine.Engine {
	return reportengine.NewEngine(registry, executor, recorder, log.Named("reports"), cfg.ReportQueryTimeout)
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			logger.NewLogger,
			database.NewPostgres,
			NewFiberServer,

			audit.NewAuditRepository,
			report.NewReportRepository,
			NewRunRecorder,

			reportengine.FleetRegistry,
			fx.Annotate(reportengine.NewGormExecutor, fx.As(new(reportengine.Executor))),
			fx.Annotate(NewReportEngine, fx.As(new(report.ReportEngine))),

			audit.NewAuditService,
			report.NewReportService,

			audit.NewAuditController,
			report.NewReportController,

			AsRoute(common_api.NewHealthApi),
			AsRoute(common_api.NewMetricsApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(report.NewReportApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			StartServer,
			InitializeIndexes,
		),
	)
	app.Run()
}
