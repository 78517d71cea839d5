package pactffi

import (
	"encoding/json"
	"sort"
)

// ProviderState is a named precondition of a message. Params values are
// decoded JSON.
type ProviderState struct {
	Name   string
	Params map[string]any
}

// ProviderStateParam is a parameter with its value rendered as JSON text
type ProviderStateParam struct {
	Key   string
	Value string
}

// SortedParams returns the parameters ordered by key with JSON encoded values
func (ps ProviderState) SortedParams() []ProviderStateParam {
	keys := make([]string, 0, len(ps.Params))
	for k := range ps.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]ProviderStateParam, 0, len(keys))
	for _, k := range keys {
		out = append(out, ProviderStateParam{Key: k, Value: jsonText(ps.Params[k])})
	}
	return out
}

// clone copies the state so callers never share the params map with a message
func (ps ProviderState) clone() ProviderState {
	c := ProviderState{Name: ps.Name}
	if ps.Params != nil {
		c.Params = make(map[string]any, len(ps.Params))
		for k, v := range ps.Params {
			c.Params[k] = v
		}
	}
	return c
}

// jsonText renders a decoded JSON value back to compact text
func jsonText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
