package report

import (
	"errors"

	"go-fleet/internal/middleware"
	"go-fleet/internal/reportengine"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ReportController struct {
	ReportService ReportService
	Logger        *zap.Logger
}

func NewReportController(reportService ReportService, logger *zap.Logger) *ReportController {
	return &ReportController{ReportService: reportService, Logger: logger}
}

// Execute runs an ad hoc definition for the caller's organisation
// @Summary      Execute report definition
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        request  body      reportengine.Request  true  "Data source, definition and page"
// @Success      200      {object}  reportengine.Result
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /api/reports/custom/execute [post]
func (c *ReportController) Execute(ctx *fiber.Ctx) error {
	caller, ok := callerFrom(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not authenticated"})
	}
	var req reportengine.Request
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	res, err := c.ReportService.Execute(ctx.UserContext(), caller, req)
	if err != nil {
		return c.writeError(ctx, err)
	}
	return ctx.JSON(res)
}

// Create saves a validated definition owned by the caller
// @Summary      Create saved report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        report  body      CreateReportRequest  true  "Report"
// @Success      201     {object}  SavedReport
// @Failure      400     {object}  map[string]string
// @Router       /api/reports/custom [post]
func (c *ReportController) Create(ctx *fiber.Ctx) error {
	caller, ok := callerFrom(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not authenticated"})
	}
	var req CreateReportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	report, err := c.ReportService.CreateReport(ctx.UserContext(), caller, req)
	if err != nil {
		return c.writeError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(report)
}

// List returns the caller's reports and those shared in the organisation
// @Summary      List saved reports
// @Tags         reports
// @Produce      json
// @Success      200  {array}  SavedReport
// @Router       /api/reports/custom [get]
func (c *ReportController) List(ctx *fiber.Ctx) error {
	caller, ok := callerFrom(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not authenticated"})
	}
	reports, err := c.ReportService.ListReports(ctx.UserContext(), caller)
	if err != nil {
		return c.writeError(ctx, err)
	}
	return ctx.JSON(reports)
}

// @Summary      Get saved report
// @Tags         reports
// @Produce      json
// @Param        id   path      string  true  "Report ID"
// @Success      200  {object}  SavedReport
// @Failure      404  {object}  map[string]string
// @Router       /api/reports/custom/{id} [get]
func (c *ReportController) Get(ctx *fiber.Ctx) error {
	caller, ok := callerFrom(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not authenticated"})
	}
	report, err := c.ReportService.GetReport(ctx.UserContext(), caller, ctx.Params("id"))
	if err != nil {
		return c.writeError(ctx, err)
	}
	return ctx.JSON(report)
}

// Update changes the fields present in the body. Only the owner may update.
// @Summary      Update saved report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        id      path      string               true  "Report ID"
// @Param        report  body      UpdateReportRequest  true  "Changes"
// @Success      200     {object}  SavedReport
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /api/reports/custom/{id} [put]
func (c *ReportController) Update(ctx *fiber.Ctx) error {
	caller, ok := callerFrom(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not authenticated"})
	}
	var req UpdateReportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	report, err := c.ReportService.UpdateReport(ctx.UserContext(), caller, ctx.Params("id"), req)
	if err != nil {
		return c.writeError(ctx, err)
	}
	return ctx.JSON(report)
}

// @Summary      Delete saved report
// @Tags         reports
// @Param        id   path  string  true  "Report ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/reports/custom/{id} [delete]
func (c *ReportController) Delete(ctx *fiber.Ctx) error {
	caller, ok := callerFrom(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not authenticated"})
	}
	if err := c.ReportService.DeleteReport(ctx.UserContext(), caller, ctx.Params("id")); err != nil {
		return c.writeError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// Run executes the stored definition of a saved report
// @Summary      Run saved report
// @Tags         reports
// @Produce      json
// @Param        id        path      string  true   "Report ID"
// @Param        page      query     int     false  "Page"       default(1)
// @Param        pageSize  query     int     false  "Page size"  default(50)
// @Success      200       {object}  reportengine.Result
// @Failure      400       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /api/reports/custom/{id}/run [post]
func (c *ReportController) Run(ctx *fiber.Ctx) error {
	caller, ok := callerFrom(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not authenticated"})
	}
	page := ctx.QueryInt("page", 1)
	pageSize := ctx.QueryInt("pageSize", reportengine.DefaultPageSize)

	res, err := c.ReportService.RunReport(ctx.UserContext(), caller, ctx.Params("id"), page, pageSize)
	if err != nil {
		return c.writeError(ctx, err)
	}
	return ctx.JSON(res)
}

// DataSources lists the reportable data sources and their columns
// @Summary      List report data sources
// @Tags         reports
// @Produce      json
// @Success      200  {array}  DataSourceInfo
// @Router       /api/reports/custom/data-sources [get]
func (c *ReportController) DataSources(ctx *fiber.Ctx) error {
	return ctx.JSON(c.ReportService.DataSources())
}

func callerFrom(ctx *fiber.Ctx) (reportengine.Caller, bool) {
	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		return reportengine.Caller{}, false
	}
	return reportengine.Caller{OrganisationID: claims.OrganisationID, UserID: claims.UserID}, true
}

func (c *ReportController) writeError(ctx *fiber.Ctx, err error) error {
	var ve *reportengine.ValidationError
	switch {
	case errors.As(err, &ve):
		body := fiber.Map{"error": ve.Error()}
		if ve.Field != "" {
			body["field"] = ve.Field
		}
		if ve.Operator != "" {
			body["operator"] = ve.Operator
		}
		return ctx.Status(fiber.StatusBadRequest).JSON(body)
	case errors.Is(err, ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Report not found"})
	case errors.Is(err, reportengine.ErrMissingTenant):
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not authenticated"})
	}

	c.Logger.Error("custom report request failed",
		zap.String("path", ctx.Path()),
		zap.Error(err))
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process report"})
}
