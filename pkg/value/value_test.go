package value

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	v, err := ParseJSON([]byte(`{
		"totalItems": 2,
		"ratio": 0.5,
		"name": "Posts and Pages",
		"active": true,
		"missing": null,
		"items": [1, "two", {"three": 3}]
	}`))
	require.NoError(t, err)
	require.Equal(t, KindMapping, v.Kind())
	assert.Equal(t, []string{"active", "items", "missing", "name", "ratio", "totalItems"}, v.Keys())

	total, ok := v.Lookup("totalItems")
	require.True(t, ok)
	n, ok := total.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(2), n)

	ratio, _ := v.Get("ratio")
	f, ok := ratio.AsFloat()
	require.True(t, ok)
	assert.Equal(t, 0.5, f)
	_, ok = ratio.AsInt()
	assert.False(t, ok, "floats are not ints")

	missing, ok := v.Get("missing")
	require.True(t, ok)
	assert.True(t, missing.IsNull())

	items, _ := v.Get("items")
	assert.Equal(t, 3, items.Len())
	second, ok := items.Index(1)
	require.True(t, ok)
	s, ok := second.AsString()
	require.True(t, ok)
	assert.Equal(t, "two", s)
	_, ok = items.Index(3)
	assert.False(t, ok)

	three, ok := v.Lookup("items")
	require.True(t, ok)
	obj, _ := three.Index(2)
	got, ok := obj.Lookup("three")
	require.True(t, ok)
	assert.True(t, got.Equal(Int(3)))
}

func TestParseJSON_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ``},
		{"truncated", `{"totalItems": 2`},
		{"trailing data", `{"a": 1} {"b": 2}`},
		{"html", `<html><body>Bad gateway</body></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.input))
			require.Error(t, err)
		})
	}
}

func TestAccessorsAreStrict(t *testing.T) {
	v := Int(22)

	_, ok := v.AsString()
	assert.False(t, ok)
	_, ok = v.AsBool()
	assert.False(t, ok)
	_, ok = v.AsMapping()
	assert.False(t, ok)
	_, ok = v.Get("anything")
	assert.False(t, ok)

	f, ok := v.AsFloat()
	assert.True(t, ok)
	assert.Equal(t, 22.0, f)
}

func TestFromAny(t *testing.T) {
	when := time.Date(2017, 10, 11, 16, 13, 45, 0, time.UTC)

	v, err := FromAny(map[string]any{
		"id":      int32(7),
		"tags":    []string{"post", "user"},
		"when":    when,
		"payload": []byte("hi"),
		"ptr":     (*string)(nil),
	})
	require.NoError(t, err)

	tags, _ := v.Get("tags")
	assert.True(t, tags.Equal(Sequence(String("post"), String("user"))))

	ts, _ := v.Get("when")
	got, ok := ts.AsTime()
	require.True(t, ok)
	assert.True(t, when.Equal(got))

	payload, _ := v.Get("payload")
	b, ok := payload.AsBytes()
	require.True(t, ok)
	assert.Equal(t, []byte("hi"), b)

	ptr, _ := v.Get("ptr")
	assert.True(t, ptr.IsNull())

	_, err = FromAny(struct{ A int }{A: 1})
	require.Error(t, err)

	_, err = FromAny(map[int]string{1: "a"})
	require.Error(t, err)
}

func TestMarshalJSON(t *testing.T) {
	v := Mapping(map[string]Value{
		"count": Int(69),
		"name":  String("Posts and Pages"),
		"none":  Null(),
	})

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":69,"name":"Posts and Pages","none":null}`, string(data))
}

func TestMappingCopies(t *testing.T) {
	src := map[string]Value{"a": Int(1)}
	v := Mapping(src)
	src["b"] = Int(2)

	assert.Equal(t, 1, v.Len())

	m, _ := v.AsMapping()
	m["c"] = Int(3)
	assert.Equal(t, 1, v.Len())
}
