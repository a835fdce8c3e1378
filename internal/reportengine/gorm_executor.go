package reportengine

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormExecutor runs plans against PostgreSQL. Every operand is bound as a parameter and
// every identifier is quoted by the dialect.
type GormExecutor struct {
	DB *gorm.DB
}

func NewGormExecutor(db *gorm.DB) *GormExecutor {
	return &GormExecutor{DB: db}
}

func (e *GormExecutor) Rows(ctx context.Context, q *Query) ([]Row, error) {
	var raw []map[string]any
	if err := e.rowsQuery(ctx, q).Find(&raw).Error; err != nil {
		return nil, err
	}

	rows := make([]Row, len(raw))
	for i, r := range raw {
		row := make(Row, len(q.Projection))
		for _, p := range q.Projection {
			row[p.Name] = normalize(r[p.Name], p.Type)
		}
		rows[i] = row
	}
	return rows, nil
}

func (e *GormExecutor) Count(ctx context.Context, q *Query) (int64, error) {
	var n int64
	err := e.countQuery(ctx, q).Count(&n).Error
	return n, err
}

func (e *GormExecutor) rowsQuery(ctx context.Context, q *Query) *gorm.DB {
	tx := e.scoped(ctx, q)

	sel, vars := selectList(q.Projection)
	tx = tx.Select(sel, vars...)
	if len(q.GroupBy) > 0 {
		tx = tx.Clauses(groupBy(q.GroupBy))
	}
	for _, o := range q.OrderBy {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	return tx
}

// countQuery counts rows, or group-key tuples through a subquery when grouped.
func (e *GormExecutor) countQuery(ctx context.Context, q *Query) *gorm.DB {
	if len(q.GroupBy) == 0 {
		return e.scoped(ctx, q)
	}
	groups := e.scoped(ctx, q).Select("1").Clauses(groupBy(q.GroupBy))
	return e.DB.WithContext(ctx).Table("(?) AS grouped", groups)
}

func (e *GormExecutor) scoped(ctx context.Context, q *Query) *gorm.DB {
	tx := e.DB.WithContext(ctx).Table(q.Source.Table)
	if exprs := whereExprs(q.Predicates); len(exprs) > 0 {
		tx = tx.Clauses(clause.Where{Exprs: exprs})
	}
	return tx
}

func whereExprs(preds []Predicate) []clause.Expression {
	exprs := make([]clause.Expression, 0, len(preds))
	for _, p := range preds {
		col := clause.Column{Name: p.Column}
		switch p.Op {
		case OpIsNull:
			exprs = append(exprs, clause.Expr{SQL: "? IS NULL", Vars: []any{col}})
		case OpIsNotNull:
			exprs = append(exprs, clause.Expr{SQL: "? IS NOT NULL", Vars: []any{col}})
		case OpEq:
			if p.Value.Kind == KindNull {
				exprs = append(exprs, clause.Expr{SQL: "? IS NULL", Vars: []any{col}})
			} else {
				exprs = append(exprs, clause.Eq{Column: col, Value: p.Value.Arg()})
			}
		case OpNeq:
			if p.Value.Kind == KindNull {
				exprs = append(exprs, clause.Expr{SQL: "? IS NOT NULL", Vars: []any{col}})
			} else {
				exprs = append(exprs, clause.Neq{Column: col, Value: p.Value.Arg()})
			}
		case OpGt:
			exprs = append(exprs, clause.Gt{Column: col, Value: p.Value.Arg()})
		case OpGte:
			exprs = append(exprs, clause.Gte{Column: col, Value: p.Value.Arg()})
		case OpLt:
			exprs = append(exprs, clause.Lt{Column: col, Value: p.Value.Arg()})
		case OpLte:
			exprs = append(exprs, clause.Lte{Column: col, Value: p.Value.Arg()})
		case OpLike:
			exprs = append(exprs, clause.Expr{SQL: "? ILIKE ?", Vars: []any{col, likePattern(p.Value.Str)}})
		case OpIn:
			exprs = append(exprs, clause.IN{Column: col, Values: listArgs(p.Value)})
		case OpNotIn:
			exprs = append(exprs, clause.Not(clause.IN{Column: col, Values: listArgs(p.Value)}))
		}
	}
	return exprs
}

func listArgs(v Value) []any {
	out := make([]any, len(v.List))
	for i, item := range v.List {
		out[i] = item.Arg()
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern matches s as a literal substring.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// selectList renders `<expr> AS "<name>"` for each projection.
func selectList(proj []Projection) (string, []any) {
	parts := make([]string, 0, len(proj))
	vars := make([]any, 0, 2*len(proj))
	for _, p := range proj {
		col := clause.Column{Name: p.Column}
		name := clause.Column{Name: p.Name}
		switch p.Agg {
		case "":
			parts = append(parts, "? AS ?")
		case AggCount:
			parts = append(parts, "COUNT(?) AS ?")
		case AggSum:
			parts = append(parts, "SUM(?) AS ?")
		case AggAvg:
			parts = append(parts, "AVG(?) AS ?")
		case AggMin:
			parts = append(parts, "MIN(?) AS ?")
		case AggMax:
			parts = append(parts, "MAX(?) AS ?")
		}
		vars = append(vars, col, name)
	}
	return strings.Join(parts, ", "), vars
}

func groupBy(refs []string) clause.GroupBy {
	cols := make([]clause.Column, len(refs))
	for i, ref := range refs {
		cols[i] = clause.Column{Name: ref}
	}
	return clause.GroupBy{Columns: cols}
}

// normalize converts driver values into JSON friendly forms: numerics become int64 or
// float64 and uuids become strings.
func normalize(v any, t SemanticType) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return normalizeText(string(x), t)
	case string:
		return normalizeText(x, t)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case decimal.Decimal:
		return decimalNumber(x)
	case [16]byte:
		return uuid.UUID(x).String()
	}
	return v
}

func normalizeText(s string, t SemanticType) any {
	switch t {
	case TypeNumber:
		if d, err := decimal.NewFromString(s); err == nil {
			return decimalNumber(d)
		}
	case TypeUUID:
		if id, err := uuid.Parse(s); err == nil {
			return id.String()
		}
	}
	return s
}

func decimalNumber(d decimal.Decimal) any {
	if d.IsInteger() && d.Abs().Cmp(maxExactInt) <= 0 {
		return d.IntPart()
	}
	return d.InexactFloat64()
}

var maxExactInt = decimal.NewFromInt(1 << 53)
