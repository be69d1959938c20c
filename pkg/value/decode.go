package value

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"
)

// ID is an identifier that backends send either as a JSON string or as a
// JSON integer.
type ID string

var (
	timeType = reflect.TypeOf(time.Time{})
	idType   = reflect.TypeOf(ID(""))
)

// Decode copies the tree into out, which must be a pointer to a struct, map
// or slice. Struct fields match payload keys either case-insensitively or by
// their snake_case form, so a field named RestoreID reads "restore_id".
//
// Decoding is strict: a member whose type does not match its field is an
// error. The exceptions are ID fields, which accept strings and integers,
// integer fields, which accept floats without a fractional part, and
// time.Time fields, which accept RFC 3339 and other common date strings as
// well as epoch seconds. Absent and null members leave fields untouched, so
// required fields should be pointers checked after decoding.
func Decode(v Value, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			timeHook,
			idHook,
			integerHook,
		),
		MatchName: matchName,
		Result:    out,
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}

	if err := dec.Decode(v.Interface()); err != nil {
		return err
	}
	return nil
}

func matchName(mapKey, fieldName string) bool {
	if strings.EqualFold(mapKey, fieldName) {
		return true
	}
	return strcase.ToSnake(fieldName) == mapKey
}

func timeHook(from, to reflect.Type, data any) (any, error) {
	if to != timeType {
		return data, nil
	}

	switch d := data.(type) {
	case time.Time:
		return d, nil
	case string:
		return ParseTime(d)
	case int64:
		return time.Unix(d, 0).UTC(), nil
	case float64:
		sec, frac := math.Modf(d)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
	}

	return nil, fmt.Errorf("cannot decode %s into time", from)
}

func idHook(from, to reflect.Type, data any) (any, error) {
	if to != idType {
		return data, nil
	}

	switch d := data.(type) {
	case ID:
		return d, nil
	case string:
		return ID(d), nil
	case int64:
		return ID(strconv.FormatInt(d, 10)), nil
	}

	return nil, fmt.Errorf("cannot decode %s into identifier", from)
}

// integerHook stops floats from being truncated into integer fields.
func integerHook(from, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return data, nil
	}

	f, ok := data.(float64)
	if !ok {
		return data, nil
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return nil, fmt.Errorf("cannot decode %v into %s", f, to)
	}
	return int64(f), nil
}

// ParseTime parses the date formats seen in backend payloads. Strings without a
// zone are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time string")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t, nil
}
