package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// fleetSchema creates the tables behind the report data sources. Column names must match
// the registry in internal/reportengine.
var fleetSchema = []string{
	`CREATE TABLE IF NOT EXISTS assets (
		id uuid PRIMARY KEY,
		organisation_id uuid NOT NULL,
		asset_number text NOT NULL,
		name text NOT NULL,
		make text,
		model text,
		year integer,
		vin text,
		registration text,
		category text,
		status text NOT NULL,
		location text,
		odometer numeric(12,1),
		engine_hours numeric(10,1),
		purchase_cost numeric(12,2),
		purchase_date date,
		assigned_to_id uuid,
		is_active boolean NOT NULL DEFAULT true,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now(),
		deleted_at timestamptz
	)`,
	`CREATE TABLE IF NOT EXISTS work_orders (
		id uuid PRIMARY KEY,
		organisation_id uuid NOT NULL,
		work_order_number text NOT NULL,
		asset_id uuid,
		title text NOT NULL,
		type text,
		status text NOT NULL,
		priority text,
		assigned_to_id uuid,
		estimated_hours numeric(8,2),
		actual_hours numeric(8,2),
		labor_cost numeric(12,2),
		parts_cost numeric(12,2),
		total_cost numeric(12,2),
		scheduled_date date,
		due_date date,
		completed_at timestamptz,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now(),
		deleted_at timestamptz
	)`,
	`CREATE TABLE IF NOT EXISTS maintenance_schedules (
		id uuid PRIMARY KEY,
		organisation_id uuid NOT NULL,
		asset_id uuid,
		name text NOT NULL,
		interval_type text,
		interval_value integer,
		last_performed_at timestamptz,
		next_due_at timestamptz,
		next_due_odometer numeric(12,1),
		is_active boolean NOT NULL DEFAULT true,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS fuel_transactions (
		id uuid PRIMARY KEY,
		organisation_id uuid NOT NULL,
		asset_id uuid,
		transaction_date timestamptz NOT NULL,
		fuel_type text,
		quantity numeric(10,3),
		unit_price numeric(10,4),
		total_cost numeric(12,2),
		odometer numeric(12,1),
		vendor text,
		location text,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS inspections (
		id uuid PRIMARY KEY,
		organisation_id uuid NOT NULL,
		asset_id uuid,
		inspector_id uuid,
		inspection_type text,
		status text,
		result text,
		defects_found integer,
		passed boolean,
		odometer numeric(12,1),
		inspected_at timestamptz,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_assets_org ON assets (organisation_id) WHERE deleted_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_work_orders_org ON work_orders (organisation_id) WHERE deleted_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_maintenance_schedules_org ON maintenance_schedules (organisation_id)`,
	`CREATE INDEX IF NOT EXISTS idx_fuel_transactions_org_date ON fuel_transactions (organisation_id, transaction_date)`,
	`CREATE INDEX IF NOT EXISTS idx_inspections_org ON inspections (organisation_id)`,
}

// MigrateFleetSchema creates any missing fleet table or index. It is safe to run repeatedly.
func MigrateFleetSchema(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range fleetSchema {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("migrate fleet schema: %w", err)
			}
		}
		return nil
	})
}
