package reportengine

import (
	"time"

	"github.com/google/uuid"
)

// CompileFilters turns the definition's filters and date range into predicates. The
// tenant predicate is always first, followed by the soft delete predicate when the
// source has one. Fields must already be validated.
func CompileFilters(ds *DataSource, def *Definition, organisationID uuid.UUID) ([]Predicate, error) {
	preds := []Predicate{{
		Column: ds.TenantColumn,
		Type:   TypeUUID,
		Op:     OpEq,
		Value:  Value{Kind: KindUUID, UUID: organisationID},
	}}
	if ds.SoftDeleteColumn != "" {
		preds = append(preds, Predicate{Column: ds.SoftDeleteColumn, Type: TypeDate, Op: OpIsNull})
	}

	user, err := compileDefinitionFilters(ds, def)
	if err != nil {
		return nil, err
	}
	return append(preds, user...), nil
}

// compileDefinitionFilters coerces every operand against its column. Validate runs it
// too, so a definition that saves is one that compiles.
func compileDefinitionFilters(ds *DataSource, def *Definition) ([]Predicate, error) {
	preds := make([]Predicate, 0, len(def.Filters)+2)
	for _, f := range def.Filters {
		meta, ok := ds.Column(f.Field)
		if !ok {
			return nil, unknownField(ds, f.Field)
		}
		p, keep, err := compileFilter(f, meta)
		if err != nil {
			return nil, err
		}
		if keep {
			preds = append(preds, p)
		}
	}

	if dr := def.DateRange; dr != nil {
		rangePreds, err := compileDateRange(ds, dr)
		if err != nil {
			return nil, err
		}
		preds = append(preds, rangePreds...)
	}
	return preds, nil
}

func compileFilter(f Filter, meta ColumnMeta) (Predicate, bool, error) {
	p := Predicate{Field: f.Field, Column: meta.Ref, Type: meta.Type, Op: f.Operator}

	switch f.Operator {
	case OpIsNull, OpIsNotNull:
		return p, true, nil

	case OpEq, OpNeq:
		v, err := coerce(literalOf(f.Value), meta.Type)
		if err != nil {
			return p, false, invalidOp(f.Field, f.Operator, "%v", err)
		}
		p.Value = v
		return p, true, nil

	case OpGt, OpGte, OpLt, OpLte:
		if meta.Type != TypeNumber && meta.Type != TypeDate {
			return p, false, invalidOp(f.Field, f.Operator, "requires a number or date column, got %s", meta.Type)
		}
		if f.Value.IsNull() {
			return p, false, invalidOp(f.Field, f.Operator, "a value is required")
		}
		v, err := coerce(*f.Value, meta.Type)
		if err != nil {
			return p, false, invalidOp(f.Field, f.Operator, "%v", err)
		}
		p.Value = v
		return p, true, nil

	case OpLike:
		if meta.Type != TypeString {
			return p, false, invalidOp(f.Field, f.Operator, "requires a string column, got %s", meta.Type)
		}
		s, ok := f.Value.text()
		if !ok {
			return p, false, invalidOp(f.Field, f.Operator, "a string value is required")
		}
		p.Value = Value{Kind: KindString, Str: s}
		return p, true, nil

	case OpIn, OpNotIn:
		items, ok := f.Value.List()
		if !ok {
			return p, false, invalidOp(f.Field, f.Operator, "an array value is required")
		}
		if len(items) == 0 {
			return p, false, nil
		}
		list := make([]Value, len(items))
		for i, item := range items {
			if item.IsNull() {
				return p, false, invalidOp(f.Field, f.Operator, "array elements must not be null")
			}
			v, err := coerce(item, meta.Type)
			if err != nil {
				return p, false, invalidOp(f.Field, f.Operator, "element %d: %v", i, err)
			}
			list[i] = v
		}
		p.Value = Value{Kind: KindList, List: list}
		return p, true, nil
	}
	return p, false, invalidOp(f.Field, f.Operator, "unknown operator")
}

func compileDateRange(ds *DataSource, dr *DateRange) ([]Predicate, error) {
	meta, ok := ds.Column(dr.Field)
	if !ok {
		return nil, unknownField(ds, dr.Field)
	}
	if meta.Type != TypeDate {
		return nil, invalid(dr.Field, "date range requires a date column, got %s", meta.Type)
	}

	var preds []Predicate
	var start, end time.Time
	if dr.StartDate != "" {
		t, _, err := parseDate(dr.StartDate)
		if err != nil {
			return nil, invalid(dr.Field, "startDate: %v", err)
		}
		start = t
		preds = append(preds, Predicate{Field: dr.Field, Column: meta.Ref, Type: TypeDate, Op: OpGte, Value: Value{Kind: KindTime, Time: t}})
	}
	if dr.EndDate != "" {
		t, dateOnly, err := parseDate(dr.EndDate)
		if err != nil {
			return nil, invalid(dr.Field, "endDate: %v", err)
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		end = t
		preds = append(preds, Predicate{Field: dr.Field, Column: meta.Ref, Type: TypeDate, Op: OpLte, Value: Value{Kind: KindTime, Time: t}})
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return nil, invalid(dr.Field, "startDate is after endDate")
	}
	return preds, nil
}

func literalOf(l *Literal) Literal {
	if l == nil {
		return Literal{}
	}
	return *l
}
