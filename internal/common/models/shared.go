package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const (
	TenantIDKey ContextKey = "tenant_id"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
	AuditActionReport AuditAction = "REPORT"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganisationID string             `bson:"organisation_id,omitempty" json:"organisation_id,omitempty"`
	Action         AuditAction        `bson:"action" json:"action"`
	Module         string             `bson:"module" json:"module"`       // Feature the record belongs to
	RecordID       string             `bson:"record_id" json:"record_id"` // The ID of the record being modified
	ActorID        string             `bson:"actor_id" json:"actor_id"`   // User ID who performed the action
	Changes        map[string]Change  `bson:"changes,omitempty" json:"changes,omitempty"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
}

type Log struct {
	Message        string    `bson:"message" json:"message"`
	LogLevelId     int       `bson:"log_level_id" json:"log_level_id"`
	Logger         string    `bson:"logger,omitempty" json:"logger,omitempty"`
	Caller         string    `bson:"caller,omitempty" json:"caller,omitempty"`
	OrganisationID string    `bson:"organisation_id,omitempty" json:"organisation_id,omitempty"`
	ReportID       string    `bson:"report_id,omitempty" json:"report_id,omitempty"`
	Error          string    `bson:"error,omitempty" json:"error,omitempty"`
	AppId          string    `bson:"app_id" json:"app_id"`
	CreatedOnUtc   time.Time `bson:"created_on_utc" json:"created_on_utc"`
}
