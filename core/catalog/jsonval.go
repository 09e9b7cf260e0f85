package catalog

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"var-manager/core/utils"
)

// Package manifests are duck-typed: the same field may be a string, a
// number-as-string, an array, or an object depending on which tool
// produced the archive, and property casing is not reliable. jsonValue
// is a small tagged union over the decoded document with one shared
// case-insensitive lookup helper, so the parser never touches raw
// map[string]any shapes.

type jsonKind int

const (
	jsonNull jsonKind = iota
	jsonBool
	jsonNumber
	jsonString
	jsonArray
	jsonObject
)

type jsonValue struct {
	kind jsonKind
	b    bool
	num  float64
	str  string
	arr  []jsonValue
	obj  map[string]jsonValue
}

// decodeJSON parses a document into a jsonValue tree.
func decodeJSON(data []byte) (jsonValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return jsonValue{}, err
	}
	return fromAny(raw), nil
}

func fromAny(raw any) jsonValue {
	switch v := raw.(type) {
	case nil:
		return jsonValue{kind: jsonNull}
	case bool:
		return jsonValue{kind: jsonBool, b: v}
	case json.Number:
		f, _ := v.Float64()
		return jsonValue{kind: jsonNumber, num: f, str: v.String()}
	case string:
		return jsonValue{kind: jsonString, str: v}
	case []any:
		arr := make([]jsonValue, 0, len(v))
		for _, item := range v {
			arr = append(arr, fromAny(item))
		}
		return jsonValue{kind: jsonArray, arr: arr}
	case map[string]any:
		obj := make(map[string]jsonValue, len(v))
		for k, item := range v {
			obj[k] = fromAny(item)
		}
		return jsonValue{kind: jsonObject, obj: obj}
	default:
		return jsonValue{kind: jsonString, str: utils.ToString(v)}
	}
}

func (v jsonValue) isNull() bool   { return v.kind == jsonNull }
func (v jsonValue) isArray() bool  { return v.kind == jsonArray }
func (v jsonValue) isObject() bool { return v.kind == jsonObject }
func (v jsonValue) isString() bool { return v.kind == jsonString }

// field performs a case-insensitive property lookup on an object value.
// An exact-case match wins over a folded match.
func (v jsonValue) field(name string) (jsonValue, bool) {
	if v.kind != jsonObject {
		return jsonValue{}, false
	}
	if val, ok := v.obj[name]; ok {
		return val, true
	}
	for k, val := range v.obj {
		if strings.EqualFold(k, name) {
			return val, true
		}
	}
	return jsonValue{}, false
}

// keys returns the object's property names, sorted for determinism.
func (v jsonValue) keys() []string {
	if v.kind != jsonObject {
		return nil
	}
	names := make([]string, 0, len(v.obj))
	for k := range v.obj {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (v jsonValue) items() []jsonValue {
	if v.kind != jsonArray {
		return nil
	}
	return v.arr
}

// asString coerces scalars to a string; composites yield "".
func (v jsonValue) asString() string {
	switch v.kind {
	case jsonString, jsonNumber:
		return v.str
	case jsonBool:
		return utils.ToString(v.b)
	default:
		return ""
	}
}

// asInt coerces a value to int, tolerating numbers-as-strings.
func (v jsonValue) asInt() int {
	switch v.kind {
	case jsonNumber:
		return int(v.num)
	case jsonString:
		return utils.ToInt(v.str)
	case jsonBool:
		if v.b {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// asBool coerces a value to bool, tolerating "true"/"1" strings.
func (v jsonValue) asBool() bool {
	switch v.kind {
	case jsonBool:
		return v.b
	case jsonString:
		return utils.ToBool(v.str)
	case jsonNumber:
		return v.num == 1
	default:
		return false
	}
}
