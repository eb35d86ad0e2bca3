package encode

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/confkit/confkit/ir"
)

type encState struct {
	depth    int
	indent   int
	compact  bool
	document bool
	colors   *Colors
}

// Encode emits node in the canonical form: value members as "#name",
// reference members as "&name", derived objects with their "base" list
// first.  Object member order is the tree's insertion order.
func Encode(node *ir.Node, w io.Writer, opts ...EncodeOption) error {
	es := &encState{indent: 2}
	for _, opt := range opts {
		opt(es)
	}
	if es.document {
		if err := writeString(w, "{"+es.nl(1)+es.pad(1)+es.color(fieldColor, `"config"`)+": "); err != nil {
			return err
		}
		es.depth = 1
		if err := encode(node, w, es); err != nil {
			return err
		}
		es.depth = 0
		return writeString(w, es.nl(0)+"}"+"\n")
	}
	if err := encode(node, w, es); err != nil {
		return err
	}
	return writeString(w, "\n")
}

// String renders node to a string, for diagnostics and tests.
func String(node *ir.Node, opts ...EncodeOption) (string, error) {
	var b strings.Builder
	if err := Encode(node, &b, opts...); err != nil {
		return "", err
	}
	return b.String(), nil
}

func encode(node *ir.Node, w io.Writer, es *encState) error {
	switch node.Kind {
	case ir.ValueKind:
		return writeValue(node.Value, w, es)
	case ir.ObjectKind:
		return encodeObject(node, w, es, nil)
	case ir.ReferenceKind:
		return writeString(w, es.color(refColor, "%q", node.Ref.String()))
	case ir.DerivedKind:
		return encodeDerived(node, w, es)
	}
	return fmt.Errorf("cannot encode %s node", node.Kind)
}

// memberName returns the sigil-prefixed member name for child.
func memberName(name string, child *ir.Node) string {
	switch child.Kind {
	case ir.ValueKind:
		return "#" + name
	case ir.ReferenceKind:
		return "&" + name
	default:
		return name
	}
}

// head is written before the members; it carries a derived object's
// base list into the emitted object.
func encodeObject(node *ir.Node, w io.Writer, es *encState, head []string) error {
	if node.Len() == 0 && len(head) == 0 {
		return writeString(w, "{}")
	}
	if err := writeString(w, "{"); err != nil {
		return err
	}
	es.depth++
	first := true
	for _, h := range head {
		if err := writeMemberSep(w, es, &first); err != nil {
			return err
		}
		if err := writeString(w, h); err != nil {
			return err
		}
	}
	for i := 0; i < node.Len(); i++ {
		name, child := node.MemberAt(i)
		if err := writeMemberSep(w, es, &first); err != nil {
			return err
		}
		field := es.color(fieldColor, "%s", quote(memberName(name, child)))
		if err := writeString(w, field+": "); err != nil {
			return err
		}
		if err := encode(child, w, es); err != nil {
			return err
		}
	}
	es.depth--
	return writeString(w, es.nl(es.depth)+es.pad(es.depth)+"}")
}

func encodeDerived(node *ir.Node, w io.Writer, es *encState) error {
	var b strings.Builder
	b.WriteString(es.color(fieldColor, `"base"`) + ": [")
	for i, p := range node.Bases {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(es.color(refColor, "%s", quote(p.String())))
	}
	b.WriteString("]")
	return encodeObject(node.Overrides, w, es, []string{b.String()})
}

func writeMemberSep(w io.Writer, es *encState, first *bool) error {
	if *first {
		*first = false
		return writeString(w, es.nl(es.depth)+es.pad(es.depth))
	}
	if es.compact {
		return writeString(w, ", ")
	}
	return writeString(w, ","+es.nl(es.depth)+es.pad(es.depth))
}

// writeValue emits a value payload verbatim: scalars, arrays, and any
// ordered maps nested inside arrays.
func writeValue(v any, w io.Writer, es *encState) error {
	switch x := v.(type) {
	case nil:
		return writeString(w, es.color(nullColor, "null"))
	case bool:
		return writeString(w, es.color(boolColor, "%t", x))
	case string:
		return writeString(w, es.color(stringColor, "%s", quote(x)))
	case int:
		return writeString(w, es.color(numberColor, "%d", x))
	case int64:
		return writeString(w, es.color(numberColor, "%d", x))
	case uint64:
		return writeString(w, es.color(numberColor, "%d", x))
	case float64:
		return writeString(w, es.color(numberColor, "%s", strconv.FormatFloat(x, 'g', -1, 64)))
	case []any:
		if err := writeString(w, "["); err != nil {
			return err
		}
		for i := range x {
			if i > 0 {
				if err := writeString(w, ", "); err != nil {
					return err
				}
			}
			if err := writeValue(x[i], w, es); err != nil {
				return err
			}
		}
		return writeString(w, "]")
	case yaml.MapSlice:
		if err := writeString(w, "{"); err != nil {
			return err
		}
		for i, item := range x {
			if i > 0 {
				if err := writeString(w, ", "); err != nil {
					return err
				}
			}
			key := fmt.Sprintf("%v", item.Key)
			if err := writeString(w, es.color(fieldColor, "%s", quote(key))+": "); err != nil {
				return err
			}
			if err := writeValue(item.Value, w, es); err != nil {
				return err
			}
		}
		return writeString(w, "}")
	default:
		d, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("cannot encode value of type %T: %w", v, err)
		}
		return writeString(w, string(d))
	}
}

func quote(s string) string {
	d, _ := json.Marshal(s)
	return string(d)
}

func (es *encState) nl(depth int) string {
	if es.compact {
		return ""
	}
	return "\n"
}

func (es *encState) pad(depth int) string {
	if es.compact {
		return ""
	}
	return strings.Repeat(" ", depth*es.indent)
}

func (es *encState) color(attr colorAttr, format string, args ...any) string {
	if es.colors == nil {
		return fmt.Sprintf(format, args...)
	}
	return es.colors.sprintf(attr, format, args...)
}

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}
