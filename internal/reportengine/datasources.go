package reportengine

// Data source names accepted by the engine.
const (
	SourceAssets               = "assets"
	SourceWorkOrders           = "workOrders"
	SourceMaintenanceSchedules = "maintenanceSchedules"
	SourceFuelTransactions     = "fuelTransactions"
	SourceInspections          = "inspections"
)

const tenantColumn = "organisation_id"

func col(ref string, t SemanticType, label string) ColumnMeta {
	return ColumnMeta{Ref: ref, Type: t, Label: label}
}

// FleetRegistry returns the registry of fleet tables scoped by organisation.
func FleetRegistry() *Registry {
	return NewRegistry(
		&DataSource{
			Name:             SourceAssets,
			Table:            "assets",
			TenantColumn:     tenantColumn,
			SoftDeleteColumn: "deleted_at",
			PrimaryKey:       "id",
			Columns: map[string]ColumnMeta{
				"id":           col("id", TypeUUID, "ID"),
				"assetNumber":  col("asset_number", TypeString, "Asset Number"),
				"name":         col("name", TypeString, "Name"),
				"make":         col("make", TypeString, "Make"),
				"model":        col("model", TypeString, "Model"),
				"year":         col("year", TypeNumber, "Year"),
				"vin":          col("vin", TypeString, "VIN"),
				"registration": col("registration", TypeString, "Registration"),
				"category":     col("category", TypeString, "Category"),
				"status":       col("status", TypeString, "Status"),
				"location":     col("location", TypeString, "Location"),
				"odometer":     col("odometer", TypeNumber, "Odometer"),
				"engineHours":  col("engine_hours", TypeNumber, "Engine Hours"),
				"purchaseCost": col("purchase_cost", TypeNumber, "Purchase Cost"),
				"purchaseDate": col("purchase_date", TypeDate, "Purchase Date"),
				"assignedTo":   col("assigned_to_id", TypeUUID, "Assigned To"),
				"isActive":     col("is_active", TypeBoolean, "Active"),
				"createdAt":    col("created_at", TypeDate, "Created At"),
				"updatedAt":    col("updated_at", TypeDate, "Updated At"),
			},
		},
		&DataSource{
			Name:             SourceWorkOrders,
			Table:            "work_orders",
			TenantColumn:     tenantColumn,
			SoftDeleteColumn: "deleted_at",
			PrimaryKey:       "id",
			Columns: map[string]ColumnMeta{
				"id":              col("id", TypeUUID, "ID"),
				"workOrderNumber": col("work_order_number", TypeString, "Work Order Number"),
				"assetId":         col("asset_id", TypeUUID, "Asset"),
				"title":           col("title", TypeString, "Title"),
				"type":            col("type", TypeString, "Type"),
				"status":          col("status", TypeString, "Status"),
				"priority":        col("priority", TypeString, "Priority"),
				"assignedTo":      col("assigned_to_id", TypeUUID, "Assigned To"),
				"estimatedHours":  col("estimated_hours", TypeNumber, "Estimated Hours"),
				"actualHours":     col("actual_hours", TypeNumber, "Actual Hours"),
				"laborCost":       col("labor_cost", TypeNumber, "Labor Cost"),
				"partsCost":       col("parts_cost", TypeNumber, "Parts Cost"),
				"totalCost":       col("total_cost", TypeNumber, "Total Cost"),
				"scheduledDate":   col("scheduled_date", TypeDate, "Scheduled Date"),
				"dueDate":         col("due_date", TypeDate, "Due Date"),
				"completedAt":     col("completed_at", TypeDate, "Completed At"),
				"createdAt":       col("created_at", TypeDate, "Created At"),
				"updatedAt":       col("updated_at", TypeDate, "Updated At"),
			},
		},
		&DataSource{
			Name:         SourceMaintenanceSchedules,
			Table:        "maintenance_schedules",
			TenantColumn: tenantColumn,
			PrimaryKey:   "id",
			Columns: map[string]ColumnMeta{
				"id":              col("id", TypeUUID, "ID"),
				"assetId":         col("asset_id", TypeUUID, "Asset"),
				"name":            col("name", TypeString, "Name"),
				"intervalType":    col("interval_type", TypeString, "Interval Type"),
				"intervalValue":   col("interval_value", TypeNumber, "Interval"),
				"lastPerformedAt": col("last_performed_at", TypeDate, "Last Performed"),
				"nextDueAt":       col("next_due_at", TypeDate, "Next Due"),
				"nextDueOdometer": col("next_due_odometer", TypeNumber, "Next Due Odometer"),
				"isActive":        col("is_active", TypeBoolean, "Active"),
				"createdAt":       col("created_at", TypeDate, "Created At"),
				"updatedAt":       col("updated_at", TypeDate, "Updated At"),
			},
		},
		&DataSource{
			Name:         SourceFuelTransactions,
			Table:        "fuel_transactions",
			TenantColumn: tenantColumn,
			PrimaryKey:   "id",
			Columns: map[string]ColumnMeta{
				"id":              col("id", TypeUUID, "ID"),
				"assetId":         col("asset_id", TypeUUID, "Asset"),
				"transactionDate": col("transaction_date", TypeDate, "Transaction Date"),
				"fuelType":        col("fuel_type", TypeString, "Fuel Type"),
				"quantity":        col("quantity", TypeNumber, "Quantity"),
				"unitPrice":       col("unit_price", TypeNumber, "Unit Price"),
				"totalCost":       col("total_cost", TypeNumber, "Total Cost"),
				"odometer":        col("odometer", TypeNumber, "Odometer"),
				"vendor":          col("vendor", TypeString, "Vendor"),
				"location":        col("location", TypeString, "Location"),
				"createdAt":       col("created_at", TypeDate, "Created At"),
			},
		},
		&DataSource{
			Name:         SourceInspections,
			Table:        "inspections",
			TenantColumn: tenantColumn,
			PrimaryKey:   "id",
			Columns: map[string]ColumnMeta{
				"id":             col("id", TypeUUID, "ID"),
				"assetId":        col("asset_id", TypeUUID, "Asset"),
				"inspectorId":    col("inspector_id", TypeUUID, "Inspector"),
				"inspectionType": col("inspection_type", TypeString, "Inspection Type"),
				"status":         col("status", TypeString, "Status"),
				"result":         col("result", TypeString, "Result"),
				"defectsFound":   col("defects_found", TypeNumber, "Defects Found"),
				"passed":         col("passed", TypeBoolean, "Passed"),
				"odometer":       col("odometer", TypeNumber, "Odometer"),
				"inspectedAt":    col("inspected_at", TypeDate, "Inspected At"),
				"createdAt":      col("created_at", TypeDate, "Created At"),
				"updatedAt":      col("updated_at", TypeDate, "Updated At"),
			},
		},
	)
}
