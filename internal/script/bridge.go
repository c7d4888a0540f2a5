package script

import (
	"fmt"
	"reflect"
	"sort"

	lua "github.com/yuin/gopher-lua"
)

// bridge converts values between Go and Lua.
type bridge struct {
	L *lua.LState
}

// toGo converts a Lua value to a Go value. Integral numbers become int64,
// sequences become []interface{} and other tables map[string]interface{}.
// Functions have no Go form and convert to nil.
func (b *bridge) toGo(lv lua.LValue) interface{} {
	return b.toGoVisited(lv, make(map[*lua.LTable]bool))
}

func (b *bridge) toGoVisited(lv lua.LValue, visited map[*lua.LTable]bool) interface{} {
	switch v := lv.(type) {
	case nil:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		return b.tableToGo(v, visited)
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

// tableToGo converts a table to a slice when its keys are exactly 1..n.
func (b *bridge) tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) interface{} {
	if n, ok := sequenceLen(t); ok && n > 0 {
		arr := make([]interface{}, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = b.toGoVisited(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]interface{})
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = kv.String()
		default:
			key = k.String()
		}
		m[key] = b.toGoVisited(v, visited)
	})
	return m
}

// sequenceLen reports whether t is a sequence and its length.
func sequenceLen(t *lua.LTable) (int, bool) {
	isArray := true
	maxN, count := 0, 0
	t.ForEach(func(k, _ lua.LValue) {
		count++
		kn, ok := k.(lua.LNumber)
		if !ok || float64(kn) != float64(int(kn)) || int(kn) < 1 {
			isArray = false
			return
		}
		if int(kn) > maxN {
			maxN = int(kn)
		}
	})
	return maxN, isArray && count == maxN
}

// toLua converts a Go value to a Lua value.
func (b *bridge) toLua(v interface{}) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []byte:
		return lua.LString(val)
	case error:
		return lua.LString(val.Error())
	case []string:
		t := b.L.CreateTable(len(val), 0)
		for i, s := range val {
			t.RawSetInt(i+1, lua.LString(s))
		}
		return t
	case []interface{}:
		t := b.L.CreateTable(len(val), 0)
		for i, item := range val {
			t.RawSetInt(i+1, b.toLua(item))
		}
		return t
	case map[string]interface{}:
		t := b.L.CreateTable(0, len(val))
		for k, item := range val {
			t.RawSetString(k, b.toLua(item))
		}
		return t
	default:
		return b.reflectToLua(v)
	}
}

// reflectToLua handles named map and slice types and other numbers.
func (b *bridge) reflectToLua(v interface{}) lua.LValue {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return lua.LNil
		}
		return b.toLua(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())
	case reflect.String:
		return lua.LString(rv.String())
	case reflect.Slice, reflect.Array:
		t := b.L.CreateTable(rv.Len(), 0)
		for i := 0; i < rv.Len(); i++ {
			t.RawSetInt(i+1, b.toLua(rv.Index(i).Interface()))
		}
		return t
	case reflect.Map:
		t := b.L.CreateTable(0, rv.Len())
		for _, key := range rv.MapKeys() {
			t.RawSet(b.toLua(key.Interface()), b.toLua(rv.MapIndex(key).Interface()))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(v))
	}
}

// stringList reads a string or a sequence of values as command arguments.
func (b *bridge) stringList(lv lua.LValue) []string {
	switch v := lv.(type) {
	case lua.LString:
		return []string{string(v)}
	case *lua.LTable:
		n, _ := sequenceLen(v)
		args := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			args = append(args, asString(v.RawGetInt(i)))
		}
		return args
	default:
		return nil
	}
}

// envList reads either a KEY=VALUE sequence or a KEY to value table.
func (b *bridge) envList(t *lua.LTable) []string {
	if n, ok := sequenceLen(t); ok && n > 0 {
		return b.stringList(t)
	}
	var env []string
	t.ForEach(func(k, v lua.LValue) {
		env = append(env, asString(k)+"="+asString(v))
	})
	sort.Strings(env)
	return env
}

// asString renders a scalar the way tostring does.
func asString(lv lua.LValue) string {
	if lv == lua.LNil {
		return ""
	}
	return lv.String()
}
