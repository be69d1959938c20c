package xmlrpc

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/hashicorp-forge/sitekit/pkg/value"
)

// DateTimeFormat is the layout of <dateTime.iso8601> values.
const DateTimeFormat = "20060102T15:04:05"

// EncodeMethodCall serializes a method call. Parameters are encoded in order.
// Supported parameter types are nil, bool, string, Go integer and float types,
// time.Time, []byte, value.Value, slices and arrays, and string-keyed maps.
// Struct members are written sorted by name. Integers are written as <int>,
// which holds 32 bits; a value outside that range is an error rather than a
// silently wrapped number.
func EncodeMethodCall(method string, params ...any) ([]byte, error) {
	if method == "" {
		return nil, fmt.Errorf("method name is required")
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<methodCall><methodName>")
	if err := xml.EscapeText(&buf, []byte(method)); err != nil {
		return nil, err
	}
	buf.WriteString("</methodName><params>")
	for i, p := range params {
		buf.WriteString("<param>")
		if err := encodeValue(&buf, p); err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		buf.WriteString("</param>")
	}
	buf.WriteString("</params></methodCall>")

	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, x any) error {
	buf.WriteString("<value>")
	if err := encodeInner(buf, x); err != nil {
		return err
	}
	buf.WriteString("</value>")
	return nil
}

func encodeInner(buf *bytes.Buffer, x any) error {
	switch t := x.(type) {
	case nil:
		buf.WriteString("<nil/>")
		return nil
	case value.Value:
		return encodeTree(buf, t)
	case bool:
		if t {
			buf.WriteString("<boolean>1</boolean>")
		} else {
			buf.WriteString("<boolean>0</boolean>")
		}
		return nil
	case string:
		return writeElement(buf, "string", t)
	case time.Time:
		return writeElement(buf, "dateTime.iso8601", t.UTC().Format(DateTimeFormat))
	case []byte:
		return writeElement(buf, "base64", base64.StdEncoding.EncodeToString(t))
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < math.MinInt32 || n > math.MaxInt32 {
			return fmt.Errorf("integer %d overflows <int>", n)
		}
		return writeElement(buf, "int", strconv.FormatInt(n, 10))
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		n := rv.Uint()
		if n > math.MaxInt32 {
			return fmt.Errorf("integer %d overflows <int>", n)
		}
		return writeElement(buf, "int", strconv.FormatUint(n, 10))
	case reflect.Float32, reflect.Float64:
		return writeElement(buf, "double", strconv.FormatFloat(rv.Float(), 'f', -1, 64))
	case reflect.String:
		return writeElement(buf, "string", rv.String())
	case reflect.Bool:
		return encodeInner(buf, rv.Bool())
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			buf.WriteString("<nil/>")
			return nil
		}
		return encodeInner(buf, rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			buf.WriteString("<array><data></data></array>")
			return nil
		}
		buf.WriteString("<array><data>")
		for i := 0; i < rv.Len(); i++ {
			if err := encodeValue(buf, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		buf.WriteString("</data></array>")
		return nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("unsupported map key type %s", rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)

		buf.WriteString("<struct>")
		for _, k := range keys {
			if err := writeMember(buf, k, rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface()); err != nil {
				return err
			}
		}
		buf.WriteString("</struct>")
		return nil
	}

	return fmt.Errorf("unsupported parameter type %T", x)
}

func encodeTree(buf *bytes.Buffer, v value.Value) error {
	switch v.Kind() {
	case value.KindNull:
		return encodeInner(buf, nil)
	case value.KindBool:
		b, _ := v.AsBool()
		return encodeInner(buf, b)
	case value.KindInt:
		i, _ := v.AsInt()
		return encodeInner(buf, i)
	case value.KindFloat:
		f, _ := v.AsFloat()
		return encodeInner(buf, f)
	case value.KindString:
		s, _ := v.AsString()
		return encodeInner(buf, s)
	case value.KindTime:
		t, _ := v.AsTime()
		return encodeInner(buf, t)
	case value.KindBytes:
		b, _ := v.AsBytes()
		return encodeInner(buf, b)
	case value.KindSequence:
		seq, _ := v.AsSequence()
		buf.WriteString("<array><data>")
		for _, e := range seq {
			if err := encodeValue(buf, e); err != nil {
				return err
			}
		}
		buf.WriteString("</data></array>")
		return nil
	case value.KindMapping:
		buf.WriteString("<struct>")
		for _, k := range v.Keys() {
			e, _ := v.Get(k)
			if err := writeMember(buf, k, e); err != nil {
				return err
			}
		}
		buf.WriteString("</struct>")
		return nil
	}
	return fmt.Errorf("unsupported value kind %s", v.Kind())
}

func writeMember(buf *bytes.Buffer, name string, x any) error {
	buf.WriteString("<member>")
	if err := writeElement(buf, "name", name); err != nil {
		return err
	}
	if err := encodeValue(buf, x); err != nil {
		return fmt.Errorf("member %q: %w", name, err)
	}
	buf.WriteString("</member>")
	return nil
}

func writeElement(buf *bytes.Buffer, tag, text string) error {
	buf.WriteString("<" + tag + ">")
	if err := xml.EscapeText(buf, []byte(text)); err != nil {
		return err
	}
	buf.WriteString("</" + tag + ">")
	return nil
}
