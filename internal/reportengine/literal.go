package reportengine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Literal is a filter operand exactly as the caller wrote it: a JSON string, number,
// boolean, null, or an array of those. It is typed against a column only at compile time.
type Literal struct {
	v any // nil, string, json.Number, bool or []Literal
}

func StringLiteral(s string) *Literal { return &Literal{v: s} }

func NumberLiteral(n string) *Literal { return &Literal{v: json.Number(n)} }

func BoolLiteral(b bool) *Literal { return &Literal{v: b} }

func ListLiteral(items ...Literal) *Literal {
	if items == nil {
		items = []Literal{}
	}
	return &Literal{v: items}
}

// IsNull reports whether the operand is absent or JSON null.
func (l *Literal) IsNull() bool {
	return l == nil || l.v == nil
}

// IsZero lets the BSON encoder honour omitempty.
func (l *Literal) IsZero() bool {
	return l.IsNull()
}

func (l *Literal) List() ([]Literal, bool) {
	if l == nil {
		return nil, false
	}
	items, ok := l.v.([]Literal)
	return items, ok
}

func (l *Literal) text() (string, bool) {
	if l == nil {
		return "", false
	}
	s, ok := l.v.(string)
	return s, ok
}

func (l *Literal) String() string {
	if l.IsNull() {
		return "null"
	}
	b, err := l.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%v", l.v)
	}
	return string(b)
}

func (l Literal) plain() any {
	switch v := l.v.(type) {
	case []Literal:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item.plain()
		}
		return out
	default:
		return v
	}
}

func (l *Literal) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("null"), nil
	}
	return json.Marshal(l.plain())
}

func (l *Literal) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	v, err := fromJSON(raw)
	if err != nil {
		return err
	}
	l.v = v
	return nil
}

func fromJSON(raw any) (any, error) {
	switch v := raw.(type) {
	case nil, string, json.Number, bool:
		return v, nil
	case []any:
		items := make([]Literal, len(v))
		for i, item := range v {
			iv, err := fromJSON(item)
			if err != nil {
				return nil, err
			}
			if _, nested := iv.([]Literal); nested {
				return nil, fmt.Errorf("nested arrays are not supported")
			}
			items[i] = Literal{v: iv}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", raw)
	}
}

// bsonable maps numbers that fit int64 to int64 and all others to Decimal128, so no digit
// is lost in storage.
func (l Literal) bsonable() (any, error) {
	switch v := l.v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		d, err := primitive.ParseDecimal128(v.String())
		if err != nil {
			return nil, fmt.Errorf("number %s cannot be stored: %w", v, err)
		}
		return d, nil
	case []Literal:
		out := make(bson.A, len(v))
		for i, item := range v {
			iv, err := item.bsonable()
			if err != nil {
				return nil, err
			}
			out[i] = iv
		}
		return out, nil
	default:
		return v, nil
	}
}

func (l *Literal) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if l.IsNull() {
		return bson.TypeNull, nil, nil
	}
	v, err := l.bsonable()
	if err != nil {
		return 0, nil, err
	}
	return bson.MarshalValue(v)
}

func (l *Literal) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v, err := fromBSON(bson.RawValue{Type: t, Value: data})
	if err != nil {
		return err
	}
	l.v = v
	return nil
}

func fromBSON(rv bson.RawValue) (any, error) {
	switch rv.Type {
	case bson.TypeNull, bson.TypeUndefined:
		return nil, nil
	case bson.TypeString:
		return rv.StringValue(), nil
	case bson.TypeBoolean:
		return rv.Boolean(), nil
	case bson.TypeInt32:
		return json.Number(strconv.FormatInt(int64(rv.Int32()), 10)), nil
	case bson.TypeInt64:
		return json.Number(strconv.FormatInt(rv.Int64(), 10)), nil
	case bson.TypeDouble:
		return json.Number(strconv.FormatFloat(rv.Double(), 'f', -1, 64)), nil
	case bson.TypeDecimal128:
		d := rv.Decimal128()
		if d.IsNaN() || d.IsInf() != 0 {
			return nil, fmt.Errorf("decimal %s is not a finite number", d)
		}
		return json.Number(d.String()), nil
	case bson.TypeArray:
		values, err := rv.Array().Values()
		if err != nil {
			return nil, err
		}
		items := make([]Literal, len(values))
		for i, item := range values {
			iv, err := fromBSON(item)
			if err != nil {
				return nil, err
			}
			items[i] = Literal{v: iv}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unsupported bson type %s", rv.Type)
	}
}
