package eval

import (
	"github.com/goccy/go-yaml"

	"github.com/confkit/confkit/ir"
)

// ToAny projects a tree onto plain Go values: objects become
// map[string]any (member order is lost), values their payloads with
// nested ordered maps flattened, references their path strings, and
// derivations a map with a "base" entry.  Intended for expression
// evaluation and debugging, not for round-tripping.
func ToAny(node *ir.Node) any {
	switch node.Kind {
	case ir.ValueKind:
		return anyValue(node.Value)
	case ir.ObjectKind:
		res := make(map[string]any, node.Len())
		for i := 0; i < node.Len(); i++ {
			name, child := node.MemberAt(i)
			res[name] = ToAny(child)
		}
		return res
	case ir.ReferenceKind:
		return node.Ref.String()
	case ir.DerivedKind:
		res := make(map[string]any, node.Overrides.Len()+1)
		bases := make([]any, len(node.Bases))
		for i, b := range node.Bases {
			bases[i] = b.String()
		}
		res["base"] = bases
		for i := 0; i < node.Overrides.Len(); i++ {
			name, child := node.Overrides.MemberAt(i)
			res[name] = ToAny(child)
		}
		return res
	}
	return nil
}

func anyValue(v any) any {
	switch x := v.(type) {
	case []any:
		res := make([]any, len(x))
		for i := range x {
			res[i] = anyValue(x[i])
		}
		return res
	case yaml.MapSlice:
		res := make(map[string]any, len(x))
		for _, item := range x {
			if k, ok := item.Key.(string); ok {
				res[k] = anyValue(item.Value)
			}
		}
		return res
	default:
		return v
	}
}
