package gomap

import (
	"fmt"

	"github.com/confkit/confkit/ir"
	"github.com/confkit/confkit/ir/npath"
)

// Store writes v as the value member name of obj, replacing an existing
// member in place.
func Store[T Loadable](v T, name string, obj *ir.Node) error {
	if obj == nil || obj.Kind != ir.ObjectKind {
		return fmt.Errorf("%w: storing %q into a non-object", ir.ErrValidation, name)
	}
	if !npath.IsName(name) {
		return fmt.Errorf("%w: %q", ir.ErrName, name)
	}
	node := ir.NewValue(storePayload(v))
	if obj.Member(name) != nil {
		return obj.Replace(name, node)
	}
	return obj.Append(name, node)
}

// StoreItem writes item as the object member name of obj.
func StoreItem(item Item, name string, obj *ir.Node) error {
	if obj == nil || obj.Kind != ir.ObjectKind {
		return fmt.Errorf("%w: storing %q into a non-object", ir.ErrValidation, name)
	}
	if !npath.IsName(name) {
		return fmt.Errorf("%w: %q", ir.ErrName, name)
	}
	sub := ir.NewObject()
	if err := item.StoreConfig(sub); err != nil {
		return err
	}
	if obj.Member(name) != nil {
		return obj.Replace(name, sub)
	}
	return obj.Append(name, sub)
}

// StoreValueAtPath writes v as a value node at the relative path p under
// obj, creating intermediate objects.  An existing node anywhere on the
// path — a non-object intermediate or an occupied final slot — is a
// parse error.
func StoreValueAtPath(v any, p npath.Path, obj *ir.Node) error {
	if obj == nil || obj.Kind != ir.ObjectKind {
		return fmt.Errorf("%w: storing at %s into a non-object", ir.ErrValidation, p)
	}
	if p.IsAbsolute() || p.Len() == 0 {
		return fmt.Errorf("%w: store path %q must be relative and non-empty", ir.ErrPath, p.String())
	}
	segs := p.Segments()
	cur := obj
	for _, seg := range segs[:len(segs)-1] {
		if seg == npath.Up {
			return fmt.Errorf("%w: store path %q must not traverse upward", ir.ErrPath, p.String())
		}
		next := cur.Member(seg)
		if next == nil {
			next = ir.NewObject()
			if err := cur.Append(seg, next); err != nil {
				return err
			}
		}
		if next.Kind != ir.ObjectKind {
			return fmt.Errorf("%w: %q on path %s is a %s, not an object",
				ir.ErrParse, seg, p.String(), next.Kind)
		}
		cur = next
	}
	last := segs[len(segs)-1]
	if last == npath.Up {
		return fmt.Errorf("%w: store path %q must not traverse upward", ir.ErrPath, p.String())
	}
	if cur.Member(last) != nil {
		return fmt.Errorf("%w: member %q at %s already exists", ir.ErrParse, last, cur.Path())
	}
	return cur.Append(last, ir.NewValue(v))
}

// storePayload maps a typed value onto the canonical payload types the
// writer and loaders expect.
func storePayload[T Loadable](v T) any {
	switch x := any(v).(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return uint64(x)
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case float32:
		return float64(x)
	default:
		return x
	}
}
