package reportengine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunRecorder stamps a saved report's last run time.
type RunRecorder interface {
	RecordRun(ctx context.Context, reportID string, at time.Time) error
}

// Caller is the authenticated identity a report runs for.
type Caller struct {
	OrganisationID uuid.UUID
	UserID         string
}

// Request is one execution of a definition.
type Request struct {
	DataSource string     `json:"dataSource"`
	Definition Definition `json:"definition"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	ReportID   string     `json:"reportId,omitempty"`
}

// Engine validates, compiles and executes report definitions. It holds no per-request
// state and is safe for concurrent use.
type Engine struct {
	Registry *Registry
	Executor Executor
	Recorder RunRecorder
	Logger   *zap.Logger
	// Timeout bounds the data store work of one execution; zero disables it.
	Timeout time.Duration
	Now     func() time.Time
}

func NewEngine(registry *Registry, executor Executor, recorder RunRecorder, logger *zap.Logger, timeout time.Duration) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		Registry: registry,
		Executor: executor,
		Recorder: recorder,
		Logger:   logger,
		Timeout:  timeout,
		Now:      time.Now,
	}
}

// Validate checks a definition without running it.
func (e *Engine) Validate(source string, def *Definition) error {
	_, _, err := Validate(e.Registry, source, def)
	return err
}

// Execute runs the request for the caller. Validation failures are returned as
// *ValidationError before any query is issued.
func (e *Engine) Execute(ctx context.Context, caller Caller, req Request) (*Result, error) {
	started := time.Now()
	label := req.DataSource
	if _, ok := e.Registry.Resolve(label); !ok {
		label = "unknown"
	}

	res, mode, err := e.execute(ctx, caller, req)
	status := statusOK
	switch {
	case err == nil:
	case IsValidation(err) || errors.Is(err, ErrMissingTenant):
		status = statusInvalid
	default:
		status = statusError
	}
	executionsTotal.WithLabelValues(label, string(mode), status).Inc()
	if status != statusInvalid {
		executionDuration.WithLabelValues(label, string(mode)).Observe(time.Since(started).Seconds())
	}
	if err != nil {
		return nil, err
	}

	if req.ReportID != "" && e.Recorder != nil {
		if rerr := e.Recorder.RecordRun(ctx, req.ReportID, e.Now().UTC()); rerr != nil {
			e.Logger.Warn("failed to record report run",
				zap.String("report_id", req.ReportID),
				zap.String("organisation_id", caller.OrganisationID.String()),
				zap.Error(rerr))
		}
	}
	return res, nil
}

func (e *Engine) execute(ctx context.Context, caller Caller, req Request) (*Result, Mode, error) {
	if caller.OrganisationID == uuid.Nil {
		return nil, "", ErrMissingTenant
	}
	ds, mode, err := Validate(e.Registry, req.DataSource, &req.Definition)
	if err != nil {
		return nil, mode, err
	}
	page, pageSize, err := ValidatePage(req.Page, req.PageSize)
	if err != nil {
		return nil, mode, err
	}
	if mode == ModePlain && len(req.Definition.GroupBy) > 0 {
		e.Logger.Warn("groupBy without aggregations is ignored",
			zap.String("data_source", ds.Name),
			zap.Strings("group_by", req.Definition.GroupBy))
	}

	preds, err := CompileFilters(ds, &req.Definition, caller.OrganisationID)
	if err != nil {
		return nil, mode, err
	}
	plan := PlanQuery(ds, &req.Definition, mode, preds)

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	rows, total, err := e.paginate(ctx, plan, page, pageSize)
	if err != nil {
		e.Logger.Error("report query failed",
			zap.String("data_source", ds.Name),
			zap.String("mode", string(mode)),
			zap.String("organisation_id", caller.OrganisationID.String()),
			zap.Error(err))
		return nil, mode, &ExecutionError{DataSource: ds.Name, Err: err}
	}

	if rows == nil {
		rows = []Row{}
	}
	return &Result{
		Data: rows,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages(total, pageSize),
		},
		Columns: plan.Columns,
	}, mode, nil
}

// paginate issues at most one count and one row query.
func (e *Engine) paginate(ctx context.Context, plan *Plan, page, pageSize int) ([]Row, int64, error) {
	q := plan.Query

	if q.Mode == ModeScalar {
		if page > 1 {
			return nil, 1, nil
		}
		rows, err := e.Executor.Rows(ctx, &q)
		return rows, 1, err
	}

	total, err := e.Executor.Count(ctx, &q)
	if err != nil {
		return nil, 0, err
	}
	if plan.RowCap > 0 && total > int64(plan.RowCap) {
		total = int64(plan.RowCap)
	}

	offset := int64(page-1) * int64(pageSize)
	if offset >= total {
		return nil, total, nil
	}
	n := int64(pageSize)
	if plan.RowCap > 0 && offset+n > total {
		n = total - offset
	}
	q.Limit = int(n)
	q.Offset = int(offset)
	rows, err := e.Executor.Rows(ctx, &q)
	return rows, total, err
}

func totalPages(total int64, pageSize int) int64 {
	if total == 0 {
		return 0
	}
	return (total + int64(pageSize) - 1) / int64(pageSize)
}
