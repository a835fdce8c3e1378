package reportengine

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValueKind tags a compiled operand.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindTime
	KindUUID
	KindList
)

// Value is a filter operand resolved against a column's semantic type.
type Value struct {
	Kind ValueKind
	Str  string
	Num  decimal.Decimal
	Bool bool
	Time time.Time
	UUID uuid.UUID
	List []Value
}

// Arg returns the value in the form database drivers bind.
func (v Value) Arg() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	case KindTime:
		return v.Time
	case KindUUID:
		return v.UUID.String()
	case KindList:
		out := make([]any, len(v.List))
		for i, item := range v.List {
			out[i] = item.Arg()
		}
		return out
	default:
		return nil
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate accepts ISO-8601 dates and timestamps. dateOnly reports whether the input
// carried no time component.
func parseDate(s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), layout == "2006-01-02", nil
		}
	}
	return time.Time{}, false, fmt.Errorf("%q is not an ISO-8601 date", s)
}

// coerce types a scalar literal for a column. Null literals yield KindNull.
func coerce(lit Literal, t SemanticType) (Value, error) {
	switch raw := lit.v.(type) {
	case nil:
		return Value{Kind: KindNull}, nil
	case []Literal:
		return Value{}, fmt.Errorf("expected a single value, got an array")
	case string:
		return coerceString(raw, t)
	case json.Number:
		switch t {
		case TypeNumber:
			d, err := decimal.NewFromString(raw.String())
			if err != nil {
				return Value{}, fmt.Errorf("%s is not a number", raw)
			}
			return Value{Kind: KindNumber, Num: d}, nil
		case TypeString:
			return Value{Kind: KindString, Str: raw.String()}, nil
		}
		return Value{}, fmt.Errorf("a number is not valid for a %s column", t)
	case bool:
		if t == TypeBoolean {
			return Value{Kind: KindBool, Bool: raw}, nil
		}
		return Value{}, fmt.Errorf("a boolean is not valid for a %s column", t)
	}
	return Value{}, fmt.Errorf("unsupported value %v", lit.v)
}

func coerceString(s string, t SemanticType) (Value, error) {
	switch t {
	case TypeString:
		return Value{Kind: KindString, Str: s}, nil
	case TypeNumber:
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return Value{}, fmt.Errorf("%q is not a number", s)
		}
		return Value{Kind: KindNumber, Num: d}, nil
	case TypeDate:
		tm, _, err := parseDate(s)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindTime, Time: tm}, nil
	case TypeBoolean:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			return Value{Kind: KindBool, Bool: true}, nil
		case "false":
			return Value{Kind: KindBool, Bool: false}, nil
		}
		return Value{}, fmt.Errorf("%q is not a boolean", s)
	case TypeUUID:
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return Value{}, fmt.Errorf("%q is not a uuid", s)
		}
		return Value{Kind: KindUUID, UUID: id}, nil
	}
	return Value{}, fmt.Errorf("unsupported column type %s", t)
}
