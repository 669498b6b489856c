// Package rewrite replaces string values across a whole genesis document.
// Only exact, full string matches are replaced; object keys are never touched.
package rewrite

import (
	"sort"
	"strings"

	errorsmod "cosmossdk.io/errors"

	"github.com/kiichain/genesis-migrator/app/document"
	"github.com/kiichain/genesis-migrator/app/types"
)

// Map is a set of exact string substitutions.
type Map map[string]string

// Compose merges maps whose key sets are disjoint into one map.
func Compose(maps ...Map) (Map, error) {
	out := make(Map)
	var overlap []string
	for _, m := range maps {
		for k, v := range m {
			if _, ok := out[k]; ok {
				overlap = append(overlap, k)
				continue
			}
			out[k] = v
		}
	}
	if len(overlap) > 0 {
		sort.Strings(overlap)
		return nil, errorsmod.Wrapf(types.ErrInvalidConfig, "replacement maps overlap on %s", strings.Join(overlap, ", "))
	}
	return out, nil
}

// Rewrite returns a copy of node with every string value equal to a key of m
// replaced by the mapped value. node is left unmodified.
func Rewrite(node *document.Node, m Map) *document.Node {
	switch node.Kind() {
	case document.KindString:
		s, _ := node.AsString()
		if v, ok := m[s]; ok {
			return document.String(v)
		}
		return document.String(s)
	case document.KindArray:
		items, _ := node.AsArray()
		out := make([]*document.Node, len(items))
		for i, item := range items {
			out[i] = Rewrite(item, m)
		}
		return document.Array(out...)
	case document.KindObject:
		obj, _ := node.AsObject()
		out := document.NewObject()
		obj.Range(func(key string, value *document.Node) bool {
			out.Set(key, Rewrite(value, m))
			return true
		})
		return document.FromObject(out)
	default:
		return node.Clone()
	}
}

// Count returns how many string values of node Rewrite would replace.
func Count(node *document.Node, m Map) int {
	n := 0
	node.Walk(func(v *document.Node) {
		if s, ok := v.AsString(); ok {
			if _, hit := m[s]; hit {
				n++
			}
		}
	})
	return n
}
