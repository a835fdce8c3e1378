package report

import (
	"context"
	"strings"
	"time"

	common_models "go-fleet/internal/common/models"
	"go-fleet/internal/features/audit"
	"go-fleet/internal/reportengine"

	"go.uber.org/zap"
)

const auditModule = "custom_reports"

// ReportEngine executes and validates definitions.
type ReportEngine interface {
	Execute(ctx context.Context, caller reportengine.Caller, req reportengine.Request) (*reportengine.Result, error)
	Validate(source string, def *reportengine.Definition) error
}

type ReportService interface {
	CreateReport(ctx context.Context, caller reportengine.Caller, req CreateReportRequest) (*SavedReport, error)
	GetReport(ctx context.Context, caller reportengine.Caller, id string) (*SavedReport, error)
	ListReports(ctx context.Context, caller reportengine.Caller) ([]SavedReport, error)
	UpdateReport(ctx context.Context, caller reportengine.Caller, id string, req UpdateReportRequest) (*SavedReport, error)
	DeleteReport(ctx context.Context, caller reportengine.Caller, id string) error
	Execute(ctx context.Context, caller reportengine.Caller, req reportengine.Request) (*reportengine.Result, error)
	RunReport(ctx context.Context, caller reportengine.Caller, id string, page, pageSize int) (*reportengine.Result, error)
	DataSources() []DataSourceInfo
}

type ReportServiceImpl struct {
	ReportRepo   ReportRepository
	Engine       ReportEngine
	Registry     *reportengine.Registry
	AuditService audit.AuditService
	Logger       *zap.Logger
	Now          func() time.Time
}

func NewReportService(reportRepo ReportRepository, engine ReportEngine, registry *reportengine.Registry, auditService audit.AuditService, logger *zap.Logger) ReportService {
	return &ReportServiceImpl{
		ReportRepo:   reportRepo,
		Engine:       engine,
		Registry:     registry,
		AuditService: auditService,
		Logger:       logger,
		Now:          time.Now,
	}
}

func (s *ReportServiceImpl) CreateReport(ctx context.Context, caller reportengine.Caller, req CreateReportRequest) (*SavedReport, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &reportengine.ValidationError{Field: "name", Reason: "name is required"}
	}
	if req.DataSource == "" {
		return nil, &reportengine.ValidationError{Field: "dataSource", Reason: "dataSource is required"}
	}
	if err := s.Engine.Validate(req.DataSource, &req.Definition); err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	report := &SavedReport{
		OrganisationID: caller.OrganisationID.String(),
		OwnerID:        caller.UserID,
		Name:           name,
		Description:    req.Description,
		DataSource:     req.DataSource,
		Definition:     req.Definition,
		IsShared:       req.IsShared,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.ReportRepo.Create(ctx, report); err != nil {
		return nil, err
	}

	s.audit(ctx, common_models.AuditActionCreate, report.ID.Hex(), map[string]common_models.Change{
		"report": {New: report},
	})
	return report, nil
}

// GetReport returns a report the caller owns or that is shared in the caller's organisation
func (s *ReportServiceImpl) GetReport(ctx context.Context, caller reportengine.Caller, id string) (*SavedReport, error) {
	report, err := s.ReportRepo.Get(ctx, caller.OrganisationID.String(), id)
	if err != nil {
		return nil, err
	}
	if report.OwnerID != caller.UserID && !report.IsShared {
		return nil, ErrNotFound
	}
	return report, nil
}

func (s *ReportServiceImpl) ListReports(ctx context.Context, caller reportengine.Caller) ([]SavedReport, error) {
	return s.ReportRepo.ListVisible(ctx, caller.OrganisationID.String(), caller.UserID)
}

func (s *ReportServiceImpl) UpdateReport(ctx context.Context, caller reportengine.Caller, id string, req UpdateReportRequest) (*SavedReport, error) {
	old, err := s.ReportRepo.Get(ctx, caller.OrganisationID.String(), id)
	if err != nil {
		return nil, err
	}
	if old.OwnerID != caller.UserID {
		return nil, ErrNotFound
	}

	updated := *old
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, &reportengine.ValidationError{Field: "name", Reason: "name must not be empty"}
		}
		updated.Name = name
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.IsShared != nil {
		updated.IsShared = *req.IsShared
	}
	if req.Definition != nil {
		if err := s.Engine.Validate(updated.DataSource, req.Definition); err != nil {
			return nil, err
		}
		updated.Definition = *req.Definition
	}
	updated.UpdatedAt = s.Now().UTC()

	if err := s.ReportRepo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.audit(ctx, common_models.AuditActionUpdate, id, map[string]common_models.Change{
		"report": {Old: old, New: &updated},
	})
	return &updated, nil
}

func (s *ReportServiceImpl) DeleteReport(ctx context.Context, caller reportengine.Caller, id string) error {
	old, err := s.ReportRepo.Get(ctx, caller.OrganisationID.String(), id)
	if err != nil {
		return err
	}
	if old.OwnerID != caller.UserID {
		return ErrNotFound
	}
	if err := s.ReportRepo.Delete(ctx, old.OrganisationID, caller.UserID, id); err != nil {
		return err
	}

	s.audit(ctx, common_models.AuditActionDelete, id, map[string]common_models.Change{
		"report": {Old: old, New: "DELETED"},
	})
	return nil
}

// Execute runs an ad hoc definition. A report id, when given, must be readable by the caller.
func (s *ReportServiceImpl) Execute(ctx context.Context, caller reportengine.Caller, req reportengine.Request) (*reportengine.Result, error) {
	if req.ReportID != "" {
		if _, err := s.GetReport(ctx, caller, req.ReportID); err != nil {
			return nil, err
		}
	}
	return s.Engine.Execute(ctx, caller, req)
}

// RunReport executes the stored definition of a saved report
func (s *ReportServiceImpl) RunReport(ctx context.Context, caller reportengine.Caller, id string, page, pageSize int) (*reportengine.Result, error) {
	report, err := s.GetReport(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.Engine.Execute(ctx, caller, reportengine.Request{
		DataSource: report.DataSource,
		Definition: report.Definition,
		Page:       page,
		PageSize:   pageSize,
		ReportID:   report.ID.Hex(),
	})
}

func (s *ReportServiceImpl) DataSources() []DataSourceInfo {
	names := s.Registry.Names()
	out := make([]DataSourceInfo, 0, len(names))
	for _, name := range names {
		ds, _ := s.Registry.Resolve(name)
		info := DataSourceInfo{Name: name}
		for _, field := range ds.Fields() {
			meta, _ := ds.Column(field)
			info.Columns = append(info.Columns, ColumnInfo{Field: field, Label: meta.Label, Type: meta.Type})
		}
		out = append(out, info)
	}
	return out
}

func (s *ReportServiceImpl) audit(ctx context.Context, action common_models.AuditAction, recordID string, changes map[string]common_models.Change) {
	if err := s.AuditService.LogChange(ctx, action, auditModule, recordID, changes); err != nil {
		s.Logger.Warn("failed to write audit entry",
			zap.String("report_id", recordID),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}
