package reportengine

import (
	"regexp"
	"strings"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

var aliasPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ModeOf picks the query shape. groupBy without aggregations stays plain.
func ModeOf(def *Definition) Mode {
	switch {
	case len(def.Aggregations) == 0:
		return ModePlain
	case len(def.GroupBy) == 0:
		return ModeScalar
	default:
		return ModeGrouped
	}
}

// Validate checks a definition against the registry and returns the resolved data source
// and mode. It stops at the first problem.
func Validate(reg *Registry, source string, def *Definition) (*DataSource, Mode, error) {
	ds, ok := reg.Resolve(source)
	if !ok {
		return nil, "", invalid("dataSource", "unknown data source %q", source)
	}
	if def == nil {
		return nil, "", &ValidationError{Field: "definition", Reason: "definition is required"}
	}

	for _, c := range def.Columns {
		if c.Visible {
			if _, ok := ds.Column(c.Field); !ok {
				return nil, "", unknownField(ds, c.Field)
			}
		}
	}
	for _, c := range def.Columns {
		if _, ok := ds.Column(c.Field); !ok {
			return nil, "", unknownField(ds, c.Field)
		}
	}

	mode := ModeOf(def)
	if mode == ModePlain && !hasVisible(def.Columns) {
		return nil, "", &ValidationError{Field: "columns", Reason: "at least one visible column is required"}
	}

	if err := validateReferences(ds, def, mode); err != nil {
		return nil, "", err
	}
	if err := validateAggregations(ds, def); err != nil {
		return nil, "", err
	}
	if def.Limit != nil && *def.Limit < 1 {
		return nil, "", &ValidationError{Field: "limit", Reason: "limit must be at least 1"}
	}
	if _, err := compileDefinitionFilters(ds, def); err != nil {
		return nil, "", err
	}
	return ds, mode, nil
}

func validateReferences(ds *DataSource, def *Definition, mode Mode) error {
	for _, f := range def.Filters {
		if _, ok := ds.Column(f.Field); !ok {
			return unknownField(ds, f.Field)
		}
		if !knownOperator(f.Operator) {
			return invalidOp(f.Field, f.Operator, "unknown operator")
		}
	}
	if dr := def.DateRange; dr != nil {
		meta, ok := ds.Column(dr.Field)
		if !ok {
			return unknownField(ds, dr.Field)
		}
		if meta.Type != TypeDate {
			return invalid(dr.Field, "date range requires a date column, got %s", meta.Type)
		}
	}
	for _, g := range def.GroupBy {
		if _, ok := ds.Column(g); !ok {
			return unknownField(ds, g)
		}
	}
	for _, a := range def.Aggregations {
		if _, ok := ds.Column(a.Field); !ok {
			return unknownField(ds, a.Field)
		}
	}
	if ob := def.OrderBy; ob != nil {
		alias := mode != ModePlain && hasAlias(def.Aggregations, ob.Field)
		if _, ok := ds.Column(ob.Field); !ok && !alias {
			return unknownField(ds, ob.Field)
		}
		if mode == ModeGrouped && !alias && !contains(def.GroupBy, ob.Field) {
			return invalid(ob.Field, "order by must name a group by field or an aggregation alias")
		}
		if _, ok := parseDirection(ob.Direction); !ok {
			return invalid(ob.Field, "direction must be asc or desc, got %q", ob.Direction)
		}
	}
	return nil
}

func validateAggregations(ds *DataSource, def *Definition) error {
	seen := make(map[string]bool, len(def.Aggregations))
	for _, a := range def.Aggregations {
		meta, _ := ds.Column(a.Field)
		switch a.Type {
		case AggCount:
		case AggSum, AggAvg:
			if meta.Type != TypeNumber {
				return invalid(a.Field, "%s requires a number column, got %s", a.Type, meta.Type)
			}
		case AggMin, AggMax:
			if meta.Type != TypeNumber && meta.Type != TypeDate {
				return invalid(a.Field, "%s requires a number or date column, got %s", a.Type, meta.Type)
			}
		default:
			return invalid(a.Field, "unknown aggregation type %q", a.Type)
		}

		name := a.OutputName()
		if !aliasPattern.MatchString(name) {
			return invalid(a.Field, "alias %q is not a valid identifier", name)
		}
		if seen[name] {
			return invalid(a.Field, "duplicate aggregation alias %q", name)
		}
		if contains(def.GroupBy, name) {
			return invalid(a.Field, "alias %q collides with a group by field", name)
		}
		seen[name] = true
	}
	return nil
}

// ValidatePage applies defaults to zero values and range-checks the page request.
func ValidatePage(page, pageSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		return 0, 0, &ValidationError{Field: "page", Reason: "page must be at least 1"}
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return 0, 0, &ValidationError{Field: "pageSize", Reason: "pageSize must be between 1 and 500"}
	}
	return page, pageSize, nil
}

func parseDirection(dir string) (desc bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
		return false, true
	case "desc":
		return true, true
	}
	return false, false
}

func knownOperator(op Operator) bool {
	switch op {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpLike, OpIn, OpNotIn, OpIsNull, OpIsNotNull:
		return true
	}
	return false
}

func hasVisible(cols []Column) bool {
	for _, c := range cols {
		if c.Visible {
			return true
		}
	}
	return false
}

func hasAlias(aggs []Aggregation, name string) bool {
	for _, a := range aggs {
		if a.OutputName() == name {
			return true
		}
	}
	return false
}

func unknownField(ds *DataSource, field string) *ValidationError {
	return invalid(field, "unknown field for data source %s", ds.Name)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
