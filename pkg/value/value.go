// Package value provides the tagged-variant value tree that sitekit transports
// decode JSON and XML-RPC payloads into before any domain interpretation.
//
// A Value is immutable. Accessors are strict: AsString on an Int returns false
// rather than formatting it, so endpoint code fails closed on shape drift.
package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
	KindBytes
	KindSequence
	KindMapping
)

var kindNames = map[Kind]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "string",
	KindTime:     "time",
	KindBytes:    "bytes",
	KindSequence: "sequence",
	KindMapping:  "mapping",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is a node in a decoded payload tree. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	t    time.Time
	raw  []byte
	seq  []Value
	m    map[string]Value
}

func Null() Value                { return Value{} }
func Bool(b bool) Value          { return Value{kind: KindBool, b: b} }
func Int(i int64) Value          { return Value{kind: KindInt, i: i} }
func Float(f float64) Value      { return Value{kind: KindFloat, f: f} }
func String(s string) Value      { return Value{kind: KindString, s: s} }
func Time(t time.Time) Value     { return Value{kind: KindTime, t: t} }
func Bytes(b []byte) Value       { return Value{kind: KindBytes, raw: append([]byte(nil), b...)} }
func Sequence(vs ...Value) Value { return Value{kind: KindSequence, seq: append([]Value(nil), vs...)} }

// Mapping returns a mapping value holding a copy of m.
func Mapping(m map[string]Value) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: KindMapping, m: cp}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindInt
}

// AsFloat accepts both float and int values.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

func (v Value) AsTime() (time.Time, bool) {
	return v.t, v.kind == KindTime
}

func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return append([]byte(nil), v.raw...), true
}

func (v Value) AsSequence() ([]Value, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	return append([]Value(nil), v.seq...), true
}

func (v Value) AsMapping() (map[string]Value, bool) {
	if v.kind != KindMapping {
		return nil, false
	}
	cp := make(map[string]Value, len(v.m))
	for k, e := range v.m {
		cp[k] = e
	}
	return cp, true
}

// Len returns the number of elements of a sequence or mapping, and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.seq)
	case KindMapping:
		return len(v.m)
	}
	return 0
}

// Keys returns the sorted keys of a mapping.
func (v Value) Keys() []string {
	if v.kind != KindMapping {
		return nil
	}
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the member named key of a mapping.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMapping {
		return Value{}, false
	}
	e, ok := v.m[key]
	return e, ok
}

// Index returns the i-th element of a sequence.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindSequence || i < 0 || i >= len(v.seq) {
		return Value{}, false
	}
	return v.seq[i], true
}

// Lookup follows a chain of mapping keys.
func (v Value) Lookup(path ...string) (Value, bool) {
	cur := v
	for _, key := range path {
		next, ok := cur.Get(key)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// Interface converts the tree into plain Go values: nil, bool, int64, float64,
// string, time.Time, []byte, []any and map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindTime:
		return v.t
	case KindBytes:
		return append([]byte(nil), v.raw...)
	case KindSequence:
		out := make([]any, len(v.seq))
		for i, e := range v.seq {
			out[i] = e.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.m))
		for k, e := range v.m {
			out[k] = e.Interface()
		}
		return out
	default:
		return nil
	}
}

// Equal reports whether two trees hold the same data.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindTime:
		return v.t.Equal(o.t)
	case KindBytes:
		return bytes.Equal(v.raw, o.raw)
	case KindSequence:
		if len(v.seq) != len(o.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(o.seq[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, e := range v.m {
			oe, ok := o.m[k]
			if !ok || !e.Equal(oe) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON encodes the tree as JSON. Times are RFC 3339 strings and bytes
// are base64 strings.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// ParseJSON parses a single JSON document. Trailing data is an error.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("invalid JSON: trailing data after top-level value")
	}

	return FromAny(raw)
}

// FromAny converts Go values into a Value tree. It accepts the types produced
// by encoding/json (including json.Number), Go integer and float types,
// time.Time, []byte, Values, and slices and string-keyed maps of any of these.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return Float(f), nil
	case time.Time:
		return Time(t), nil
	case []byte:
		return Bytes(t), nil
	case []any:
		seq := make([]Value, len(t))
		for i, e := range t {
			ev, err := FromAny(e)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			seq[i] = ev
		}
		return Value{kind: KindSequence, seq: seq}, nil
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			ev, err := FromAny(e)
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			m[k] = ev
		}
		return Value{kind: KindMapping, m: m}, nil
	}

	return fromReflect(reflect.ValueOf(x))
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return FromAny(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		seq := make([]Value, rv.Len())
		for i := range seq {
			ev, err := FromAny(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			seq[i] = ev
		}
		return Value{kind: KindSequence, seq: seq}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, fmt.Errorf("unsupported map key type %s", rv.Type().Key())
		}
		m := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			ev, err := FromAny(iter.Value().Interface())
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", iter.Key().String(), err)
			}
			m[iter.Key().String()] = ev
		}
		return Value{kind: KindMapping, m: m}, nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	}

	return Value{}, fmt.Errorf("unsupported type %s", rv.Type())
}
