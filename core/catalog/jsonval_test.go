package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldLookupIsCaseInsensitive(t *testing.T) {
	doc, err := decodeJSON([]byte(`{"CreatorName": "Acme", "packageVersion": 3}`))
	assert.NoError(t, err)

	v, ok := doc.field("creatorName")
	assert.True(t, ok)
	assert.Equal(t, "Acme", v.asString())

	v, ok = doc.field("PACKAGEVERSION")
	assert.True(t, ok)
	assert.Equal(t, 3, v.asInt())

	_, ok = doc.field("missing")
	assert.False(t, ok)
}

func TestFieldExactMatchWinsOverFolded(t *testing.T) {
	doc, err := decodeJSON([]byte(`{"version": 1, "Version": 2}`))
	assert.NoError(t, err)

	v, ok := doc.field("version")
	assert.True(t, ok)
	assert.Equal(t, 1, v.asInt())
}

func TestScalarCoercion(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		get  func(v jsonValue) any
		want any
	}{
		{"number as string to int", `{"v": "12"}`, func(v jsonValue) any { return v.asInt() }, 12},
		{"float to int", `{"v": 12.7}`, func(v jsonValue) any { return v.asInt() }, 12},
		{"bool string to bool", `{"v": "true"}`, func(v jsonValue) any { return v.asBool() }, true},
		{"one string to bool", `{"v": "1"}`, func(v jsonValue) any { return v.asBool() }, true},
		{"number one to bool", `{"v": 1}`, func(v jsonValue) any { return v.asBool() }, true},
		{"number to string", `{"v": 3}`, func(v jsonValue) any { return v.asString() }, "3"},
		{"object to string is empty", `{"v": {}}`, func(v jsonValue) any { return v.asString() }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := decodeJSON([]byte(tt.doc))
			assert.NoError(t, err)
			v, ok := doc.field("v")
			assert.True(t, ok)
			assert.Equal(t, tt.want, tt.get(v))
		})
	}
}

func TestArrayAndObjectTraversal(t *testing.T) {
	doc, err := decodeJSON([]byte(`{"deps": {"b": {}, "a": {}}, "list": ["x", "y"]}`))
	assert.NoError(t, err)

	deps, ok := doc.field("deps")
	assert.True(t, ok)
	assert.True(t, deps.isObject())
	assert.Equal(t, []string{"a", "b"}, deps.keys())

	list, ok := doc.field("list")
	assert.True(t, ok)
	assert.True(t, list.isArray())
	assert.Len(t, list.items(), 2)
	assert.Equal(t, "x", list.items()[0].asString())
}

func TestDecodeJSONRejectsGarbage(t *testing.T) {
	_, err := decodeJSON([]byte(`{not json`))
	assert.Error(t, err)
}
