package xmlrpc

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/hashicorp-forge/sitekit/pkg/apierror"
	"github.com/hashicorp-forge/sitekit/pkg/value"
)

type methodResponse struct {
	XMLName xml.Name   `xml:"methodResponse"`
	Params  *xmlParams `xml:"params"`
	Fault   *xmlFault  `xml:"fault"`
}

type xmlParams struct {
	Params []xmlParam `xml:"param"`
}

type xmlParam struct {
	Value xmlValue `xml:"value"`
}

type xmlFault struct {
	Value xmlValue `xml:"value"`
}

type xmlValue struct {
	Text     string     `xml:",chardata"`
	String   *string    `xml:"string"`
	Int      *string    `xml:"int"`
	I4       *string    `xml:"i4"`
	I8       *string    `xml:"i8"`
	Boolean  *string    `xml:"boolean"`
	Double   *string    `xml:"double"`
	DateTime *string    `xml:"dateTime.iso8601"`
	Base64   *string    `xml:"base64"`
	Struct   *xmlStruct `xml:"struct"`
	Array    *xmlArray  `xml:"array"`
	Nil      *struct{}  `xml:"nil"`
	Other    []xmlAny   `xml:",any"`
}

type xmlAny struct {
	XMLName xml.Name
}

type xmlStruct struct {
	Members []xmlMember `xml:"member"`
}

type xmlMember struct {
	Name  string   `xml:"name"`
	Value xmlValue `xml:"value"`
}

type xmlArray struct {
	Data struct {
		Values []xmlValue `xml:"value"`
	} `xml:"data"`
}

// DecodeMethodResponse parses a <methodResponse> body. A fault is returned as
// a server fault error; a malformed body, or one with neither a fault nor a
// parameter, is a decoding failure.
func DecodeMethodResponse(body []byte) (value.Value, error) {
	var resp methodResponse
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = identityCharsetReader
	if err := dec.Decode(&resp); err != nil {
		return value.Null(), apierror.DecodingFailure(fmt.Errorf("invalid XML-RPC response: %w", err))
	}

	if resp.Fault != nil {
		return value.Null(), decodeFault(resp.Fault.Value)
	}

	if resp.Params == nil || len(resp.Params.Params) == 0 {
		return value.Null(), apierror.DecodingFailuref("XML-RPC response contains neither fault nor params")
	}
	if len(resp.Params.Params) > 1 {
		return value.Null(), apierror.DecodingFailuref("XML-RPC response contains %d params, expected 1", len(resp.Params.Params))
	}

	v, err := decodeValue(resp.Params.Params[0].Value)
	if err != nil {
		return value.Null(), apierror.DecodingFailure(err)
	}
	return v, nil
}

func decodeFault(xv xmlValue) error {
	v, err := decodeValue(xv)
	if err != nil {
		return apierror.DecodingFailure(fmt.Errorf("invalid fault: %w", err))
	}

	codeValue, ok := v.Get("faultCode")
	if !ok {
		return apierror.DecodingFailuref("fault is missing faultCode")
	}
	code, ok := codeValue.AsInt()
	if !ok {
		return apierror.DecodingFailuref("faultCode is %s, expected int", codeValue.Kind())
	}

	var message string
	if m, ok := v.Get("faultString"); ok {
		message, ok = m.AsString()
		if !ok {
			return apierror.DecodingFailuref("faultString is %s, expected string", m.Kind())
		}
	}

	return apierror.ServerFault(int(code), message)
}

func decodeValue(xv xmlValue) (value.Value, error) {
	if len(xv.Other) > 0 {
		return value.Null(), fmt.Errorf("unknown value type <%s>", xv.Other[0].XMLName.Local)
	}

	var (
		result value.Value
		err    error
		found  int
	)
	set := func(fn func() (value.Value, error)) {
		found++
		if found == 1 {
			result, err = fn()
		}
	}

	if xv.String != nil {
		set(func() (value.Value, error) { return value.String(*xv.String), nil })
	}
	for _, s := range []*string{xv.Int, xv.I4, xv.I8} {
		if s != nil {
			text := *s
			set(func() (value.Value, error) { return parseInt(text) })
		}
	}
	if xv.Boolean != nil {
		set(func() (value.Value, error) { return parseBool(*xv.Boolean) })
	}
	if xv.Double != nil {
		set(func() (value.Value, error) { return parseDouble(*xv.Double) })
	}
	if xv.DateTime != nil {
		set(func() (value.Value, error) { return parseDateTime(*xv.DateTime) })
	}
	if xv.Base64 != nil {
		set(func() (value.Value, error) { return parseBase64(*xv.Base64) })
	}
	if xv.Struct != nil {
		set(func() (value.Value, error) { return decodeStruct(xv.Struct) })
	}
	if xv.Array != nil {
		set(func() (value.Value, error) { return decodeArray(xv.Array) })
	}
	if xv.Nil != nil {
		set(func() (value.Value, error) { return value.Null(), nil })
	}

	switch found {
	case 0:
		// Untyped values are strings.
		return value.String(xv.Text), nil
	case 1:
		return result, err
	default:
		return value.Null(), fmt.Errorf("value has %d typed children, expected 1", found)
	}
}

func decodeStruct(s *xmlStruct) (value.Value, error) {
	m := make(map[string]value.Value, len(s.Members))
	for _, member := range s.Members {
		v, err := decodeValue(member.Value)
		if err != nil {
			return value.Null(), fmt.Errorf("member %q: %w", member.Name, err)
		}
		m[member.Name] = v
	}
	return value.Mapping(m), nil
}

func decodeArray(a *xmlArray) (value.Value, error) {
	seq := make([]value.Value, 0, len(a.Data.Values))
	for i, xv := range a.Data.Values {
		v, err := decodeValue(xv)
		if err != nil {
			return value.Null(), fmt.Errorf("element %d: %w", i, err)
		}
		seq = append(seq, v)
	}
	return value.Sequence(seq...), nil
}

func parseInt(s string) (value.Value, error) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return value.Null(), fmt.Errorf("invalid int %q", s)
	}
	return value.Int(i), nil
}

func parseBool(s string) (value.Value, error) {
	switch strings.TrimSpace(s) {
	case "1":
		return value.Bool(true), nil
	case "0":
		return value.Bool(false), nil
	}
	return value.Null(), fmt.Errorf("invalid boolean %q", s)
}

func parseDouble(s string) (value.Value, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return value.Null(), fmt.Errorf("invalid double %q", s)
	}
	return value.Float(f), nil
}

var dateTimeLayouts = []string{
	DateTimeFormat,
	"20060102T15:04:05Z07:00",
	"20060102T15:04:05Z",
}

func parseDateTime(s string) (value.Value, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return value.Time(t), nil
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return value.Null(), fmt.Errorf("invalid dateTime.iso8601 %q", s)
	}
	return value.Time(t), nil
}

func parseBase64(s string) (value.Value, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)
	b, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return value.Null(), fmt.Errorf("invalid base64: %w", err)
	}
	return value.Bytes(b), nil
}

// identityCharsetReader treats every declared charset as UTF-8.
func identityCharsetReader(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}
