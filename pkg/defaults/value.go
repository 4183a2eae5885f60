// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package defaults

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Kind uint8

const (
	Null Kind = iota
	String
	Bool
	Int
	Float
	List
	Map
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case String:
		return "string"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case List:
		return "list"
	case Map:
		return "mapping"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Value is a decoded entry of a defaults file. Values are never modified
// after they are built.
type Value struct {
	kind Kind
	str  string
	b    bool
	i    int64
	f    float64
	list []Value
	m    map[string]Value
}

// ValueOf converts a value produced by the YAML or TOML decoder.
func ValueOf(v any) Value {
	switch v := v.(type) {
	case nil:
		return Value{}
	case Value:
		return v
	case string:
		return Value{kind: String, str: v}
	case bool:
		return Value{kind: Bool, b: v}
	case int:
		return Value{kind: Int, i: int64(v)}
	case int8:
		return Value{kind: Int, i: int64(v)}
	case int16:
		return Value{kind: Int, i: int64(v)}
	case int32:
		return Value{kind: Int, i: int64(v)}
	case int64:
		return Value{kind: Int, i: v}
	case uint:
		return unsignedValue(uint64(v))
	case uint8:
		return Value{kind: Int, i: int64(v)}
	case uint16:
		return Value{kind: Int, i: int64(v)}
	case uint32:
		return Value{kind: Int, i: int64(v)}
	case uint64:
		return unsignedValue(v)
	case float32:
		return Value{kind: Float, f: float64(v)}
	case float64:
		return Value{kind: Float, f: v}
	case time.Time:
		return Value{kind: String, str: v.Format(time.RFC3339Nano)}
	case []any:
		list := make([]Value, len(v))
		for i, e := range v {
			list[i] = ValueOf(e)
		}
		return Value{kind: List, list: list}
	case []map[string]any:
		list := make([]Value, len(v))
		for i, e := range v {
			list[i] = ValueOf(e)
		}
		return Value{kind: List, list: list}
	case map[string]any:
		m := make(map[string]Value, len(v))
		for k, e := range v {
			m[k] = ValueOf(e)
		}
		return Value{kind: Map, m: m}
	case map[any]any:
		m := make(map[string]Value, len(v))
		for k, e := range v {
			m[fmt.Sprint(k)] = ValueOf(e)
		}
		return Value{kind: Map, m: m}
	}
	return Value{kind: String, str: fmt.Sprint(v)}
}

func unsignedValue(u uint64) Value {
	if u > 1<<63-1 {
		return Value{kind: String, str: strconv.FormatUint(u, 10)}
	}
	return Value{kind: Int, i: int64(u)}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == Null
}

// Map returns the entries of a mapping value.
func (v Value) Map() (map[string]Value, bool) {
	if v.kind != Map {
		return nil, false
	}
	return v.m, true
}

func (v Value) List() ([]Value, bool) {
	if v.kind != List {
		return nil, false
	}
	return v.list, true
}

// Interface converts v back to plain Go values.
func (v Value) Interface() any {
	switch v.kind {
	case String:
		return v.str
	case Bool:
		return v.b
	case Int:
		return v.i
	case Float:
		return v.f
	case List:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Interface()
		}
		return out
	case Map:
		out := make(map[string]any, len(v.m))
		for k, e := range v.m {
			out[k] = e.Interface()
		}
		return out
	}
	return nil
}

// FlagString renders v the way it would be written after --flag= on the
// command line. Lists become comma separated. Mappings, and lists holding
// nulls, lists or mappings, have no flag form.
func (v Value) FlagString() (string, error) {
	switch v.kind {
	case List:
		parts := make([]string, 0, len(v.list))
		for _, e := range v.list {
			switch e.kind {
			case Null:
				return "", errors.New("null item in list")
			case List, Map:
				return "", fmt.Errorf("nested %s in list", e.kind)
			}
			s, _ := e.FlagString()
			if strings.Contains(s, ",") {
				return "", fmt.Errorf("list item %q contains a comma", s)
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	case Map:
		return "", errors.New("a mapping cannot be used as a flag value")
	}
	return v.String(), nil
}

func (v Value) String() string {
	switch v.kind {
	case Null:
		return ""
	case String:
		return v.str
	case Bool:
		return strconv.FormatBool(v.b)
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case List:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	case Map:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ":" + v.m[k].String()
		}
		return "map[" + strings.Join(parts, " ") + "]"
	}
	return ""
}
