package reportengine

// Operator is a filter comparison.
type Operator string

const (
	OpEq        Operator = "eq"
	OpNeq       Operator = "neq"
	OpGt        Operator = "gt"
	OpGte       Operator = "gte"
	OpLt        Operator = "lt"
	OpLte       Operator = "lte"
	OpLike      Operator = "like"
	OpIn        Operator = "in"
	OpNotIn     Operator = "notIn"
	OpIsNull    Operator = "isNull"
	OpIsNotNull Operator = "isNotNull"
)

// AggregationType is an aggregate function over a column.
type AggregationType string

const (
	AggCount AggregationType = "count"
	AggSum   AggregationType = "sum"
	AggAvg   AggregationType = "avg"
	AggMin   AggregationType = "min"
	AggMax   AggregationType = "max"
)

// Definition is the declarative, persisted description of a report.
type Definition struct {
	Columns      []Column      `json:"columns" bson:"columns"`
	Filters      []Filter      `json:"filters" bson:"filters"`
	DateRange    *DateRange    `json:"dateRange,omitempty" bson:"date_range,omitempty"`
	GroupBy      []string      `json:"groupBy,omitempty" bson:"group_by"`
	Aggregations []Aggregation `json:"aggregations,omitempty" bson:"aggregations"`
	OrderBy      *OrderBy      `json:"orderBy,omitempty" bson:"order_by,omitempty"`
	Limit        *int          `json:"limit,omitempty" bson:"limit,omitempty"`
}

// Column is one output column; only visible columns are projected in plain mode.
type Column struct {
	Field   string `json:"field" bson:"field"`
	Label   string `json:"label,omitempty" bson:"label,omitempty"`
	Visible bool   `json:"visible" bson:"visible"`
	Order   int    `json:"order" bson:"order"`
}

type Filter struct {
	Field    string   `json:"field" bson:"field"`
	Operator Operator `json:"operator" bson:"operator"`
	Value    *Literal `json:"value,omitempty" bson:"value,omitempty"`
}

// DateRange is applied as field >= StartDate AND field <= EndDate.
type DateRange struct {
	Field     string `json:"field" bson:"field"`
	StartDate string `json:"startDate,omitempty" bson:"start_date,omitempty"`
	EndDate   string `json:"endDate,omitempty" bson:"end_date,omitempty"`
}

type Aggregation struct {
	Field string          `json:"field" bson:"field"`
	Type  AggregationType `json:"type" bson:"type"`
	Alias string          `json:"alias,omitempty" bson:"alias,omitempty"`
}

// OutputName is the alias, defaulting to "<type>_<field>".
func (a Aggregation) OutputName() string {
	if a.Alias != "" {
		return a.Alias
	}
	return string(a.Type) + "_" + a.Field
}

type OrderBy struct {
	Field     string `json:"field" bson:"field"`
	Direction string `json:"direction,omitempty" bson:"direction,omitempty"`
}

// Row maps an output field or alias to its value.
type Row map[string]any

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

type ResultColumn struct {
	Field string `json:"field"`
	Label string `json:"label"`
}

// Result is the outcome of executing a definition.
type Result struct {
	Data       []Row          `json:"data"`
	Pagination Pagination     `json:"pagination"`
	Columns    []ResultColumn `json:"columns"`
}
