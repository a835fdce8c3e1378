package reportengine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// memoryExecutor evaluates plans over in-memory rows keyed by physical column.
type memoryExecutor struct {
	tables     map[string][]map[string]any
	rowCalls   int
	countCalls int
	last       *Query
	err        error
}

func (m *memoryExecutor) Rows(_ context.Context, q *Query) ([]Row, error) {
	m.rowCalls++
	m.last = q
	if m.err != nil {
		return nil, m.err
	}

	records := m.filtered(q)
	if q.Mode != ModePlain {
		records = aggregate(records, q)
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, o := range q.OrderBy {
			c := compareAny(records[i][o.Column], records[j][o.Column])
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	if q.Offset > 0 {
		if q.Offset >= len(records) {
			records = nil
		} else {
			records = records[q.Offset:]
		}
	}
	if q.Limit > 0 && len(records) > q.Limit {
		records = records[:q.Limit]
	}

	out := make([]Row, len(records))
	for i, rec := range records {
		row := Row{}
		for _, p := range q.Projection {
			if p.Agg == "" {
				row[p.Name] = rec[p.Column]
			} else {
				row[p.Name] = rec[p.Name]
			}
		}
		out[i] = row
	}
	return out, nil
}

func (m *memoryExecutor) Count(_ context.Context, q *Query) (int64, error) {
	m.countCalls++
	if m.err != nil {
		return 0, m.err
	}
	records := m.filtered(q)
	if len(q.GroupBy) > 0 {
		return int64(len(groupRecords(records, q.GroupBy))), nil
	}
	return int64(len(records)), nil
}

func (m *memoryExecutor) filtered(q *Query) []map[string]any {
	var out []map[string]any
	for _, row := range m.tables[q.Source.Table] {
		ok := true
		for _, p := range q.Predicates {
			if !matches(p, row[p.Column]) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, row)
		}
	}
	return out
}

func groupRecords(records []map[string]any, refs []string) [][]map[string]any {
	index := map[string]int{}
	var groups [][]map[string]any
	for _, rec := range records {
		parts := make([]string, len(refs))
		for i, ref := range refs {
			parts[i] = fmt.Sprintf("%v", rec[ref])
		}
		key := strings.Join(parts, "\x00")
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], rec)
	}
	return groups
}

func aggregate(records []map[string]any, q *Query) []map[string]any {
	groups := groupRecords(records, q.GroupBy)
	if len(q.GroupBy) == 0 {
		groups = [][]map[string]any{records}
	}
	out := make([]map[string]any, 0, len(groups))
	for _, g := range groups {
		rec := map[string]any{}
		if len(g) > 0 {
			for _, ref := range q.GroupBy {
				rec[ref] = g[0][ref]
			}
		}
		for _, p := range q.Projection {
			if p.Agg != "" {
				rec[p.Name] = aggregateValues(p, g)
			}
		}
		out = append(out, rec)
	}
	return out
}

func aggregateValues(p Projection, g []map[string]any) any {
	var values []any
	for _, rec := range g {
		if v := rec[p.Column]; v != nil {
			values = append(values, v)
		}
	}
	if p.Agg == AggCount {
		return int64(len(values))
	}
	if len(values) == 0 {
		return nil
	}
	switch p.Agg {
	case AggSum, AggAvg:
		sum := 0.0
		for _, v := range values {
			sum += toFloat(v)
		}
		if p.Agg == AggAvg {
			return sum / float64(len(values))
		}
		return sum
	default:
		best := values[0]
		for _, v := range values[1:] {
			c := compareAny(v, best)
			if (p.Agg == AggMin && c < 0) || (p.Agg == AggMax && c > 0) {
				best = v
			}
		}
		return best
	}
}

func matches(p Predicate, v any) bool {
	switch p.Op {
	case OpIsNull:
		return v == nil
	case OpIsNotNull:
		return v != nil
	case OpEq:
		if p.Value.Kind == KindNull {
			return v == nil
		}
		return v != nil && compareValue(v, p.Value) == 0
	case OpNeq:
		if p.Value.Kind == KindNull {
			return v != nil
		}
		return v != nil && compareValue(v, p.Value) != 0
	case OpGt:
		return v != nil && compareValue(v, p.Value) > 0
	case OpGte:
		return v != nil && compareValue(v, p.Value) >= 0
	case OpLt:
		return v != nil && compareValue(v, p.Value) < 0
	case OpLte:
		return v != nil && compareValue(v, p.Value) <= 0
	case OpLike:
		s, ok := v.(string)
		return ok && strings.Contains(strings.ToLower(s), strings.ToLower(p.Value.Str))
	case OpIn, OpNotIn:
		if v == nil {
			return false
		}
		found := false
		for _, item := range p.Value.List {
			if compareValue(v, item) == 0 {
				found = true
				break
			}
		}
		return found == (p.Op == OpIn)
	}
	return false
}

func compareValue(v any, val Value) int {
	switch val.Kind {
	case KindNumber:
		return decimal.NewFromFloat(toFloat(v)).Cmp(val.Num)
	case KindTime:
		return compareAny(v, val.Time)
	case KindUUID:
		return compareAny(v, val.UUID.String())
	default:
		return compareAny(v, val.Arg())
	}
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case float64:
		return x
	}
	return 0
}

// compareAny orders nil first, then values of the same dynamic type.
func compareAny(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch x := a.(type) {
	case string:
		return strings.Compare(x, b.(string))
	case time.Time:
		return x.Compare(b.(time.Time))
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	}
	fa, fb := toFloat(a), toFloat(b)
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	}
	return 0
}
