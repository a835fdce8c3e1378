package reportengine

import "context"

// Mode is the query shape chosen by the planner.
type Mode string

const (
	ModePlain   Mode = "plain"
	ModeScalar  Mode = "scalar"
	ModeGrouped Mode = "grouped"
)

// Predicate is one compiled, typed condition. Scope predicates (tenant, soft delete)
// have no Field.
type Predicate struct {
	Field  string
	Column string
	Type   SemanticType
	Op     Operator
	Value  Value
}

// Projection is one output expression. Agg is empty for a raw column.
type Projection struct {
	Name   string
	Column string
	Type   SemanticType
	Agg    AggregationType
}

// Ordering sorts by a physical column, or by an output name when Output is set.
type Ordering struct {
	Column string
	Output bool
	Desc   bool
}

// Query is a fully planned, backend-neutral query against a single data source.
type Query struct {
	Source     *DataSource
	Mode       Mode
	Predicates []Predicate
	Projection []Projection
	GroupBy    []string
	OrderBy    []Ordering
	Limit      int
	Offset     int
}

// Executor runs planned queries against the data store.
//
// Count returns the number of matching rows for ungrouped queries and the number of
// distinct group-key tuples for grouped ones. Both ignore Limit and Offset.
type Executor interface {
	Rows(ctx context.Context, q *Query) ([]Row, error)
	Count(ctx context.Context, q *Query) (int64, error)
}
