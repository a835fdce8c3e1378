package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-fleet/internal/config"
	"go-fleet/internal/middleware"
	"go-fleet/internal/reportengine"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T, svc ReportService) *fiber.App {
	t.Helper()
	app := fiber.New()
	NewReportApi(NewReportController(svc, zap.NewNop()), &config.Config{SkipAuth: true}).Setup(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestReportRoutes(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	app := newTestApp(t, svc)

	status, created := doJSON(t, app, http.MethodPost, "/api/reports/custom", assetReport("fleet", false))
	require.Equal(t, http.StatusCreated, status)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, middleware.DevOrganisationID.String(), created["organisationId"])

	status, got := doJSON(t, app, http.MethodGet, "/api/reports/custom/"+id, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "fleet", got["name"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/reports/custom/"+id+"/run?page=1&pageSize=10", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodDelete, "/api/reports/custom/"+id, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body := doJSON(t, app, http.MethodGet, "/api/reports/custom/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Report not found", body["error"])
}

func TestExecuteRouteValidationError(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	svc.Engine = reportengine.NewEngine(reportengine.FleetRegistry(), nil, nil, zap.NewNop(), 0)
	app := newTestApp(t, svc)

	status, body := doJSON(t, app, http.MethodPost, "/api/reports/custom/execute", map[string]any{
		"dataSource": "assets",
		"definition": map[string]any{
			"columns": []map[string]any{{"field": "assetNumber", "visible": true}},
			"filters": []map[string]any{{"field": "status", "operator": "between", "value": "x"}},
		},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "status", body["field"])
	assert.Equal(t, "between", body["operator"])
}

type brokenService struct{ ReportService }

func (brokenService) ListReports(context.Context, reportengine.Caller) ([]SavedReport, error) {
	return nil, errors.New("connection reset")
}

func TestStoreErrorsAreHidden(t *testing.T) {
	app := newTestApp(t, brokenService{})

	status, body := doJSON(t, app, http.MethodGet, "/api/reports/custom", nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Failed to process report", body["error"])
}
