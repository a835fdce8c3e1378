package report

import (
	"errors"
	"time"

	"go-fleet/internal/reportengine"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned for missing reports and for reports the caller may not see.
var ErrNotFound = errors.New("report not found")

// SavedReport is a persisted report definition owned by one user of an organisation
type SavedReport struct {
	ID             primitive.ObjectID      `json:"id" bson:"_id,omitempty"`
	OrganisationID string                  `json:"organisationId" bson:"organisation_id"`
	OwnerID        string                  `json:"ownerId" bson:"owner_id"`
	Name           string                  `json:"name" bson:"name"`
	Description    string                  `json:"description,omitempty" bson:"description,omitempty"`
	DataSource     string                  `json:"dataSource" bson:"data_source"`
	Definition     reportengine.Definition `json:"definition" bson:"definition"`
	IsShared       bool                    `json:"isShared" bson:"is_shared"`
	LastRunAt      *time.Time              `json:"lastRunAt,omitempty" bson:"last_run_at,omitempty"`
	CreatedAt      time.Time               `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time               `json:"updatedAt" bson:"updated_at"`
}

type CreateReportRequest struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	DataSource  string                  `json:"dataSource"`
	Definition  reportengine.Definition `json:"definition"`
	IsShared    bool                    `json:"isShared"`
}

// UpdateReportRequest changes only the fields that are present
type UpdateReportRequest struct {
	Name        *string                  `json:"name"`
	Description *string                  `json:"description"`
	Definition  *reportengine.Definition `json:"definition"`
	IsShared    *bool                    `json:"isShared"`
}

type ColumnInfo struct {
	Field string                    `json:"field"`
	Label string                    `json:"label"`
	Type  reportengine.SemanticType `json:"type"`
}

type DataSourceInfo struct {
	Name    string       `json:"name"`
	Columns []ColumnInfo `json:"columns"`
}
