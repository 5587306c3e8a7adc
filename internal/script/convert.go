package script

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/Shopify/go-lua"
)

// restoreState installs the persisted continuation as the global `state`
// table. With nothing persisted, a table the chunk defined at top level is
// kept as the initial value.
func restoreState(l *lua.State, saved State) error {
	if len(saved) == 0 {
		l.Global("state")
		isTable := l.TypeOf(-1) == lua.TypeTable
		l.Pop(1)
		if !isTable {
			l.NewTable()
			l.SetGlobal("state")
		}
		return nil
	}

	var v any
	if err := json.Unmarshal(saved, &v); err != nil {
		return err
	}
	if _, ok := v.(map[string]any); !ok {
		v = map[string]any{}
	}
	pushValue(l, v)
	l.SetGlobal("state")
	return nil
}

// captureState serializes the global `state` table. Only string keys of
// records and dense arrays survive; functions and userdata are dropped.
func captureState(l *lua.State) (State, error) {
	l.Global("state")
	defer l.Pop(1)
	if l.TypeOf(-1) != lua.TypeTable {
		return nil, nil
	}
	v := toGo(l, -1, 0)
	return json.Marshal(v)
}

const maxDepth = 32

func toGo(l *lua.State, index, depth int) any {
	switch l.TypeOf(index) {
	case lua.TypeString:
		s, _ := l.ToString(index)
		return s
	case lua.TypeNumber:
		n, _ := l.ToNumber(index)
		return normalizeNumber(n)
	case lua.TypeBoolean:
		return l.ToBoolean(index)
	case lua.TypeTable:
		if depth >= maxDepth {
			return nil
		}
		return tableToGo(l, index, depth+1)
	default:
		return nil
	}
}

func tableToGo(l *lua.State, index, depth int) any {
	index = l.AbsIndex(index)
	record := map[string]any{}
	numeric := map[int]any{}
	maxKey := 0

	l.PushNil()
	for l.Next(index) {
		switch l.TypeOf(-2) {
		case lua.TypeString:
			key, _ := l.ToString(-2)
			if v := toGo(l, -1, depth); v != nil {
				record[key] = v
			}
		case lua.TypeNumber:
			n, _ := l.ToNumber(-2)
			if k := int(n); float64(k) == n && k > 0 {
				numeric[k] = toGo(l, -1, depth)
				if k > maxKey {
					maxKey = k
				}
			}
		}
		l.Pop(1)
	}

	if len(record) == 0 && len(numeric) > 0 && maxKey == len(numeric) {
		list := make([]any, maxKey)
		for k, v := range numeric {
			list[k-1] = v
		}
		return list
	}
	return record
}

func normalizeNumber(n float64) any {
	if n == math.Trunc(n) && !math.IsInf(n, 0) && math.Abs(n) < 1<<53 {
		return int64(n)
	}
	return n
}

func pushValue(l *lua.State, v any) {
	switch t := v.(type) {
	case nil:
		l.PushNil()
	case bool:
		l.PushBoolean(t)
	case string:
		l.PushString(t)
	case int:
		l.PushInteger(t)
	case int64:
		l.PushNumber(float64(t))
	case float64:
		l.PushNumber(t)
	case []any:
		l.NewTable()
		for i, item := range t {
			pushValue(l, item)
			l.RawSetInt(-2, i+1)
		}
	case []string:
		l.NewTable()
		for i, item := range t {
			l.PushString(item)
			l.RawSetInt(-2, i+1)
		}
	case map[string]any:
		l.NewTable()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			pushValue(l, t[k])
			l.SetField(-2, k)
		}
	case map[string]int:
		l.NewTable()
		for k, n := range t {
			l.PushInteger(n)
			l.SetField(-2, k)
		}
	default:
		l.PushNil()
	}
}
