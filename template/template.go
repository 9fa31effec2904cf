package template

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kbukum/paiflow/workflow"
)

// NodeOutputsKey is the reserved input key under which the state-graph
// engine passes every finished node's output to the output node.
const NodeOutputsKey = "__nodeOutputs__"

var placeholder = regexp.MustCompile(`\{\{(.*?)\}\}`)

// Render replaces each {{name}} in tmpl. Names are trimmed and looked up in
// the resolved params first, then in input; anything unresolved becomes "".
func Render(tmpl string, params []workflow.Param, input map[string]any) string {
	if tmpl == "" {
		return ""
	}
	values := ResolveParams(params, input)
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := strings.TrimSpace(m[2 : len(m)-2])
		if v, ok := values[name]; ok {
			return v
		}
		if v, ok := input[name]; ok && name != NodeOutputsKey {
			return String(v)
		}
		return ""
	})
}

// ResolveParams returns the string value of every param that resolves.
// Params that resolve to nothing are omitted.
func ResolveParams(params []workflow.Param, input map[string]any) map[string]string {
	values := make(map[string]string, len(params))
	for _, p := range params {
		if p.Name == "" {
			continue
		}
		if v, ok := Resolve(p, input); ok {
			values[p.Name] = String(v)
		}
	}
	return values
}

// Resolve returns the value of a single param. A literal ("input") param
// yields its value. A reference ("nodeId.field") is read from the node
// outputs map when input carries one with nodeId, and otherwise from input
// by its last path segment, with user_input falling back to input.
func Resolve(p workflow.Param, input map[string]any) (any, bool) {
	switch p.Type {
	case workflow.ParamInput:
		if p.Value == nil {
			return nil, false
		}
		return p.Value, true
	case workflow.ParamReference:
		return Lookup(p.ReferenceNode, input)
	}
	return nil, false
}

// Lookup resolves a "nodeId.field" reference against input.
func Lookup(ref string, input map[string]any) (any, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, false
	}
	nodeID, field, dotted := strings.Cut(ref, ".")
	if dotted {
		if outputs := nodeOutputs(input); outputs != nil {
			if out, ok := outputs[nodeID]; ok {
				if v, ok := fieldValue(out, field); ok {
					return v, true
				}
			}
		}
		field = ref[strings.LastIndex(ref, ".")+1:]
	} else {
		field = ref
	}

	if v, ok := input[field]; ok && v != nil {
		return v, true
	}
	if field == "user_input" {
		if v, ok := input["input"]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func nodeOutputs(input map[string]any) map[string]map[string]any {
	switch v := input[NodeOutputsKey].(type) {
	case map[string]map[string]any:
		return v
	case map[string]any:
		out := make(map[string]map[string]any, len(v))
		for id, o := range v {
			if m, ok := o.(map[string]any); ok {
				out[id] = m
			}
		}
		return out
	}
	return nil
}

func fieldValue(out map[string]any, field string) (any, bool) {
	if v, ok := out[field]; ok && v != nil {
		return v, true
	}
	if field == "user_input" {
		if v, ok := out["input"]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// String formats a resolved value for substitution. Maps and slices are
// rendered as JSON.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}
