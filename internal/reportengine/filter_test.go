package reportengine

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCompileFilters(t *testing.T) {
	ds, _ := FleetRegistry().Resolve(SourceAssets)
	assignee := uuid.MustParse("4c1d8a8e-0f61-4d7e-8b1c-2a9b77c0e001")

	tests := []struct {
		name    string
		filters []Filter
		want    []Predicate
		wantErr bool
	}{
		{
			name:    "Simple Equality",
			filters: []Filter{{Field: "status", Operator: OpEq, Value: StringLiteral("active")}},
			want:    []Predicate{{Field: "status", Column: "status", Type: TypeString, Op: OpEq, Value: Value{Kind: KindString, Str: "active"}}},
		},
		{
			name:    "Equality With Null",
			filters: []Filter{{Field: "location", Operator: OpEq}},
			want:    []Predicate{{Field: "location", Column: "location", Type: TypeString, Op: OpEq, Value: Value{Kind: KindNull}}},
		},
		{
			name:    "Not Equal Uuid",
			filters: []Filter{{Field: "assignedTo", Operator: OpNeq, Value: StringLiteral(assignee.String())}},
			want:    []Predicate{{Field: "assignedTo", Column: "assigned_to_id", Type: TypeUUID, Op: OpNeq, Value: Value{Kind: KindUUID, UUID: assignee}}},
		},
		{
			name:    "Greater Than Numeric String",
			filters: []Filter{{Field: "year", Operator: OpGt, Value: StringLiteral("2019")}},
			want:    []Predicate{{Field: "year", Column: "year", Type: TypeNumber, Op: OpGt, Value: Value{Kind: KindNumber, Num: decimal.NewFromInt(2019)}}},
		},
		{
			name:    "Less Than Date",
			filters: []Filter{{Field: "purchaseDate", Operator: OpLt, Value: StringLiteral("2024-06-01T10:00:00Z")}},
			want: []Predicate{{Field: "purchaseDate", Column: "purchase_date", Type: TypeDate, Op: OpLt,
				Value: Value{Kind: KindTime, Time: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}}},
		},
		{
			name:    "Boolean From String",
			filters: []Filter{{Field: "isActive", Operator: OpEq, Value: StringLiteral("true")}},
			want:    []Predicate{{Field: "isActive", Column: "is_active", Type: TypeBoolean, Op: OpEq, Value: Value{Kind: KindBool, Bool: true}}},
		},
		{
			name:    "Like",
			filters: []Filter{{Field: "name", Operator: OpLike, Value: StringLiteral("truck")}},
			want:    []Predicate{{Field: "name", Column: "name", Type: TypeString, Op: OpLike, Value: Value{Kind: KindString, Str: "truck"}}},
		},
		{
			name:    "In List",
			filters: []Filter{{Field: "status", Operator: OpIn, Value: ListLiteral(*StringLiteral("active"), *StringLiteral("inactive"))}},
			want: []Predicate{{Field: "status", Column: "status", Type: TypeString, Op: OpIn, Value: Value{Kind: KindList, List: []Value{
				{Kind: KindString, Str: "active"}, {Kind: KindString, Str: "inactive"},
			}}}},
		},
		{
			name:    "Empty Not In Is Dropped",
			filters: []Filter{{Field: "status", Operator: OpNotIn, Value: ListLiteral()}},
			want:    nil,
		},
		{
			name:    "Is Null Ignores Value",
			filters: []Filter{{Field: "vin", Operator: OpIsNull, Value: StringLiteral("ignored")}},
			want:    []Predicate{{Field: "vin", Column: "vin", Type: TypeString, Op: OpIsNull}},
		},
		{
			name:    "Range On String Column",
			filters: []Filter{{Field: "name", Operator: OpGte, Value: StringLiteral("a")}},
			wantErr: true,
		},
		{
			name:    "Range Without Value",
			filters: []Filter{{Field: "year", Operator: OpLte}},
			wantErr: true,
		},
		{
			name:    "Like On Number Column",
			filters: []Filter{{Field: "year", Operator: OpLike, Value: StringLiteral("20")}},
			wantErr: true,
		},
		{
			name:    "In Requires Array",
			filters: []Filter{{Field: "status", Operator: OpIn, Value: StringLiteral("active")}},
			wantErr: true,
		},
		{
			name:    "In Rejects Null Elements",
			filters: []Filter{{Field: "status", Operator: OpIn, Value: ListLiteral(Literal{})}},
			wantErr: true,
		},
		{
			name:    "In Coerces Elements",
			filters: []Filter{{Field: "year", Operator: OpIn, Value: ListLiteral(*NumberLiteral("2020"), *StringLiteral("old"))}},
			wantErr: true,
		},
		{
			name:    "Equality Rejects Array",
			filters: []Filter{{Field: "status", Operator: OpEq, Value: ListLiteral(*StringLiteral("active"))}},
			wantErr: true,
		},
		{
			name:    "Bad Uuid",
			filters: []Filter{{Field: "id", Operator: OpEq, Value: StringLiteral("not-a-uuid")}},
			wantErr: true,
		},
		{
			name:    "Unknown Operator",
			filters: []Filter{{Field: "status", Operator: "contains", Value: StringLiteral("a")}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompileFilters(ds, &Definition{Filters: tt.filters}, orgA)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CompileFilters() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !IsValidation(err) {
					t.Errorf("CompileFilters() error = %T, want *ValidationError", err)
				}
				return
			}
			if len(got) < 2 || got[0].Column != "organisation_id" || got[1].Column != "deleted_at" {
				t.Fatalf("CompileFilters() scope predicates missing: %+v", got)
			}
			if rest := got[2:]; !reflect.DeepEqual(nilIfEmpty(rest), tt.want) {
				t.Errorf("CompileFilters() = %+v, want %+v", rest, tt.want)
			}
		})
	}
}

func TestCompileFiltersWithoutSoftDelete(t *testing.T) {
	ds, _ := FleetRegistry().Resolve(SourceFuelTransactions)

	got, err := CompileFilters(ds, &Definition{}, orgB)
	if err != nil {
		t.Fatalf("CompileFilters() error = %v", err)
	}
	want := []Predicate{{Column: "organisation_id", Type: TypeUUID, Op: OpEq, Value: Value{Kind: KindUUID, UUID: orgB}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CompileFilters() = %+v, want %+v", got, want)
	}
}

func TestCompileDateRange(t *testing.T) {
	ds, _ := FleetRegistry().Resolve(SourceAssets)

	tests := []struct {
		name      string
		dateRange DateRange
		wantStart time.Time
		wantEnd   time.Time
		wantErr   bool
	}{
		{
			name:      "Date Only End Is Inclusive",
			dateRange: DateRange{Field: "createdAt", StartDate: "2024-01-01", EndDate: "2024-01-31"},
			wantStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "Timestamp End Is Exact",
			dateRange: DateRange{Field: "createdAt", EndDate: "2024-01-31T12:00:00+02:00"},
			wantEnd:   time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC),
		},
		{
			name:      "Start Only",
			dateRange: DateRange{Field: "purchaseDate", StartDate: "2023-07-01"},
			wantStart: time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "Start After End",
			dateRange: DateRange{Field: "createdAt", StartDate: "2024-02-01", EndDate: "2024-01-01"},
			wantErr:   true,
		},
		{
			name:      "Bad Date",
			dateRange: DateRange{Field: "createdAt", StartDate: "last week"},
			wantErr:   true,
		},
		{
			name:      "Not A Date Column",
			dateRange: DateRange{Field: "status", StartDate: "2024-01-01"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dr := tt.dateRange
			got, err := CompileFilters(ds, &Definition{DateRange: &dr}, orgA)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CompileFilters() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			var start, end time.Time
			for _, p := range got[2:] {
				switch p.Op {
				case OpGte:
					start = p.Value.Time
				case OpLte:
					end = p.Value.Time
				}
			}
			if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
				t.Errorf("range = [%v, %v], want [%v, %v]", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func nilIfEmpty(p []Predicate) []Predicate {
	if len(p) == 0 {
		return nil
	}
	return p
}
