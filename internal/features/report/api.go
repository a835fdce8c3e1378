package report

import (
	"go-fleet/internal/config"
	"go-fleet/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportApi struct {
	ReportController *ReportController
	Config           *config.Config
}

func NewReportApi(reportController *ReportController, config *config.Config) *ReportApi {
	return &ReportApi{
		ReportController: reportController,
		Config:           config,
	}
}

func (api *ReportApi) Setup(app *fiber.App) {
	group := app.Group("/api/reports/custom", middleware.AuthMiddleware(api.Config.SkipAuth))

	// Static paths first so they are not captured by /:id
	group.Get("/data-sources", api.ReportController.DataSources)
	group.Post("/execute", api.ReportController.Execute)

	group.Post("/", api.ReportController.Create)
	group.Get("/", api.ReportController.List)
	group.Get("/:id", api.ReportController.Get)
	group.Put("/:id", api.ReportController.Update)
	group.Delete("/:id", api.ReportController.Delete)
	group.Post("/:id/run", api.ReportController.Run)
}
