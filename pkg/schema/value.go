package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"
)

// ValueKind identifies which case of the Value variant is populated.
type ValueKind uint8

const (
	NullValue ValueKind = iota
	BoolValue
	NumberValue
	StringValue
	ArrayValue
	ObjectValue
	TimeValue
)

var valueKindNames = [...]string{
	NullValue:   "null",
	BoolValue:   "boolean",
	NumberValue: "number",
	StringValue: "string",
	ArrayValue:  "array",
	ObjectValue: "object",
	TimeValue:   "date",
}

func (k ValueKind) String() string {
	if int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return fmt.Sprintf("ValueKind(%d)", uint8(k))
}

// Value is a parsed JSON-like document node. The zero Value is null.
// Values are immutable once built; accessors never expose internal storage
// for mutation except Items and Fields, which callers must treat as read-only.
type Value struct {
	kind ValueKind
	b    bool
	num  float64
	lit  string // original numeric literal, empty when built from a float
	str  string
	arr  []Value
	obj  map[string]Value
	t    time.Time
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: BoolValue, b: b} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: NumberValue, num: f} }

// NumberLiteral returns a numeric value that keeps its source literal.
// Literals beyond the float64 range become ±Inf.
func NumberLiteral(n json.Number) (Value, error) {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Value{}, fmt.Errorf("invalid number %q: %w", n.String(), err)
	}
	return Value{kind: NumberValue, num: f, lit: n.String()}, nil
}

// String returns a text value.
func String(s string) Value { return Value{kind: StringValue, str: s} }

// Array returns a sequence value.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: ArrayValue, arr: items}
}

// Object returns a key/value mapping value.
func Object(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: ObjectValue, obj: fields}
}

// Time returns a native date-time value.
func Time(t time.Time) Value { return Value{kind: TimeValue, t: t} }

// Kind returns the populated case.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == NullValue }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == BoolValue }

// AsFloat returns the numeric payload.
func (v Value) AsFloat() (float64, bool) { return v.num, v.kind == NumberValue }

// AsString returns the text payload.
func (v Value) AsString() (string, bool) { return v.str, v.kind == StringValue }

// AsTime returns the native date-time payload.
func (v Value) AsTime() (time.Time, bool) { return v.t, v.kind == TimeValue }

// Items returns the elements of an array value, or nil.
func (v Value) Items() []Value {
	if v.kind != ArrayValue {
		return nil
	}
	return v.arr
}

// Fields returns the mapping of an object value, or nil.
func (v Value) Fields() map[string]Value {
	if v.kind != ObjectValue {
		return nil
	}
	return v.obj
}

// Field looks up key in an object value.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != ObjectValue {
		return Value{}, false
	}
	f, ok := v.obj[key]
	return f, ok
}

// Len returns the number of elements or fields; zero for scalars.
func (v Value) Len() int {
	switch v.kind {
	case ArrayValue:
		return len(v.arr)
	case ObjectValue:
		return len(v.obj)
	}
	return 0
}

// IsInteger reports whether v is a number with no fractional part.
func (v Value) IsInteger() bool {
	if v.kind != NumberValue {
		return false
	}
	if v.lit != "" {
		if _, err := strconv.ParseInt(v.lit, 10, 64); err == nil {
			return true
		}
	}
	if math.IsInf(v.num, 0) || math.IsNaN(v.num) {
		return false
	}
	return math.Trunc(v.num) == v.num
}

// Interface converts v back into plain Go values: nil, bool, json.Number or
// float64, string, []any, map[string]any and time.Time.
func (v Value) Interface() any {
	switch v.kind {
	case BoolValue:
		return v.b
	case NumberValue:
		if v.lit != "" {
			return json.Number(v.lit)
		}
		return v.num
	case StringValue:
		return v.str
	case ArrayValue:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.Interface()
		}
		return out
	case ObjectValue:
		out := make(map[string]any, len(v.obj))
		for k, f := range v.obj {
			out[k] = f.Interface()
		}
		return out
	case TimeValue:
		return v.t
	}
	return nil
}

// MarshalJSON encodes v as plain JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes a JSON document into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ErrTrailingData is returned by ParseJSON when input continues after the
// first JSON value.
var ErrTrailingData = errors.New("unexpected data after top-level value")

// ParseJSON decodes exactly one JSON value, keeping numeric literals intact.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, ErrTrailingData
	}
	return FromAny(raw)
}

// FromAny converts a decoded Go value into a Value. It understands the output
// of encoding/json (with or without UseNumber) and gopkg.in/yaml.v3, plus
// native Go numbers and time.Time. Any other host type is rejected rather
// than guessed at.
func FromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case json.Number:
		return NumberLiteral(x)
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return intValue(int64(x)), nil
	case int8:
		return intValue(int64(x)), nil
	case int16:
		return intValue(int64(x)), nil
	case int32:
		return intValue(int64(x)), nil
	case int64:
		return intValue(x), nil
	case uint:
		return uintValue(uint64(x)), nil
	case uint8:
		return uintValue(uint64(x)), nil
	case uint16:
		return uintValue(uint64(x)), nil
	case uint32:
		return uintValue(uint64(x)), nil
	case uint64:
		return uintValue(x), nil
	case time.Time:
		return Time(x), nil
	case *time.Time:
		if x == nil {
			return Null(), nil
		}
		return Time(*x), nil
	case []any:
		items := make([]Value, len(x))
		for i, elem := range x {
			item, err := FromAny(elem)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = item
		}
		return Array(items...), nil
	case []string:
		items := make([]Value, len(x))
		for i, s := range x {
			items[i] = String(s)
		}
		return Array(items...), nil
	case []map[string]any:
		items := make([]Value, len(x))
		for i, m := range x {
			item, err := FromAny(m)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = item
		}
		return Array(items...), nil
	case map[string]any:
		fields := make(map[string]Value, len(x))
		for k, elem := range x {
			f, err := FromAny(elem)
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			fields[k] = f
		}
		return Object(fields), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}

func intValue(i int64) Value {
	return Value{kind: NumberValue, num: float64(i), lit: strconv.FormatInt(i, 10)}
}

func uintValue(u uint64) Value {
	return Value{kind: NumberValue, num: float64(u), lit: strconv.FormatUint(u, 10)}
}
