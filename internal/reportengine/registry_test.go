package reportengine

import (
	"reflect"
	"sort"
	"testing"
)

func TestFleetRegistry(t *testing.T) {
	reg := FleetRegistry()

	want := []string{SourceAssets, SourceFuelTransactions, SourceInspections, SourceMaintenanceSchedules, SourceWorkOrders}
	if got := reg.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}

	softDelete := map[string]bool{SourceAssets: true, SourceWorkOrders: true}
	for _, name := range reg.Names() {
		ds, ok := reg.Resolve(name)
		if !ok {
			t.Fatalf("Resolve(%q) failed", name)
		}
		if ds.TenantColumn != "organisation_id" {
			t.Errorf("%s tenant column = %q", name, ds.TenantColumn)
		}
		if got := ds.SoftDeleteColumn != ""; got != softDelete[name] {
			t.Errorf("%s soft delete = %v, want %v", name, got, softDelete[name])
		}
		if _, ok := ds.Column(ds.PrimaryKey); !ok {
			t.Errorf("%s primary key %q is not a column", name, ds.PrimaryKey)
		}
		if !sort.StringsAreSorted(ds.Fields()) {
			t.Errorf("%s Fields() not sorted", name)
		}
	}

	if _, ok := reg.Resolve("vehicles"); ok {
		t.Error("Resolve(vehicles) succeeded")
	}
}

func TestNewRegistryPanics(t *testing.T) {
	valid := func() *DataSource {
		return &DataSource{
			Name:         "trailers",
			Table:        "trailers",
			TenantColumn: "organisation_id",
			PrimaryKey:   "id",
			Columns:      map[string]ColumnMeta{"id": col("id", TypeUUID, "ID")},
		}
	}

	tests := []struct {
		name    string
		sources func() []*DataSource
	}{
		{name: "Duplicate", sources: func() []*DataSource { return []*DataSource{valid(), valid()} }},
		{name: "Missing Ref", sources: func() []*DataSource {
			ds := valid()
			ds.Columns["axles"] = ColumnMeta{Type: TypeNumber}
			return []*DataSource{ds}
		}},
		{name: "Bad Type", sources: func() []*DataSource {
			ds := valid()
			ds.Columns["axles"] = col("axles", "integer", "Axles")
			return []*DataSource{ds}
		}},
		{name: "Unknown Primary Key", sources: func() []*DataSource {
			ds := valid()
			ds.PrimaryKey = "trailer_id"
			return []*DataSource{ds}
		}},
		{name: "No Tenant Column", sources: func() []*DataSource {
			ds := valid()
			ds.TenantColumn = ""
			return []*DataSource{ds}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("NewRegistry() did not panic")
				}
			}()
			NewRegistry(tt.sources()...)
		})
	}
}
