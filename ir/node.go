package ir

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/confkit/confkit/ir/npath"
)

// Kind discriminates the node variants.
type Kind int

const (
	// ValueKind is a leaf literal: a JSON scalar or array.
	ValueKind Kind = iota
	// ObjectKind is an ordered mapping from names to child nodes.
	ObjectKind
	// ReferenceKind is an unresolved alias to another node.
	ReferenceKind
	// DerivedKind is an unresolved derivation: base objects merged in
	// order, then overridden.
	DerivedKind
)

func (k Kind) String() string {
	switch k {
	case ValueKind:
		return "value"
	case ObjectKind:
		return "object"
	case ReferenceKind:
		return "reference"
	case DerivedKind:
		return "derived"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Node is one element of a configuration tree.  Exactly one payload is
// populated, selected by Kind.  Parent is a non-owning back-reference to
// the containing object, maintained by Append, Replace, and Remove; it is
// nil at the root and on detached subtrees.
type Node struct {
	Kind   Kind
	Parent *Node

	// Value is the ValueKind payload: string, bool, int64, uint64,
	// float64, nil, or []any (possibly holding nested yaml.MapSlice).
	Value any

	// Ref is the ReferenceKind payload.
	Ref npath.Path

	// Bases and Overrides are the DerivedKind payload.  Overrides is
	// always an ObjectKind node.
	Bases     []npath.Path
	Overrides *Node

	names    []string
	children []*Node
}

// NewValue returns a leaf literal node.
func NewValue(v any) *Node {
	return &Node{Kind: ValueKind, Value: v}
}

// NewObject returns an empty object node.
func NewObject() *Node {
	return &Node{Kind: ObjectKind}
}

// NewReference returns a reference node.  The empty path is rejected.
func NewReference(p npath.Path) (*Node, error) {
	if p.IsEmpty() {
		return nil, fmt.Errorf("%w: reference with empty path", ErrPath)
	}
	return &Node{Kind: ReferenceKind, Ref: p}, nil
}

// NewDerived returns a derivation node.  At least one base is required;
// a nil overrides is replaced with an empty object.
func NewDerived(bases []npath.Path, overrides *Node) (*Node, error) {
	if len(bases) == 0 {
		return nil, fmt.Errorf("%w: derived object with no base", ErrParse)
	}
	if overrides == nil {
		overrides = NewObject()
	}
	if overrides.Kind != ObjectKind {
		return nil, fmt.Errorf("%w: derived overrides must be an object, got %s", ErrParse, overrides.Kind)
	}
	return &Node{Kind: DerivedKind, Bases: bases, Overrides: overrides}, nil
}

// Len returns the member count of an object node.
func (node *Node) Len() int {
	return len(node.children)
}

// Names returns the member names of an object node in insertion order.
func (node *Node) Names() []string {
	if len(node.names) == 0 {
		return nil
	}
	res := make([]string, len(node.names))
	copy(res, node.names)
	return res
}

// Member returns the child under name, or nil.
func (node *Node) Member(name string) *Node {
	for i, n := range node.names {
		if n == name {
			return node.children[i]
		}
	}
	return nil
}

// MemberAt returns the i-th member in insertion order.
func (node *Node) MemberAt(i int) (string, *Node) {
	return node.names[i], node.children[i]
}

// Append inserts child under name at the end of the member order.  The
// name must be valid and not already present; child must be detached.
func (node *Node) Append(name string, child *Node) error {
	if node.Kind != ObjectKind {
		return fmt.Errorf("%w: appending to %s node", ErrParse, node.Kind)
	}
	if !npath.IsName(name) {
		return fmt.Errorf("%w: %q", ErrName, name)
	}
	if node.Member(name) != nil {
		return fmt.Errorf("%w: duplicate member %q at %s", ErrParse, name, node.Path())
	}
	if child.Parent != nil {
		return fmt.Errorf("%w: node %q already has a parent", ErrParse, name)
	}
	child.Parent = node
	node.names = append(node.names, name)
	node.children = append(node.children, child)
	return nil
}

// Remove detaches the member under name, reporting whether it existed.
func (node *Node) Remove(name string) bool {
	for i, n := range node.names {
		if n != name {
			continue
		}
		node.children[i].Parent = nil
		node.names = append(node.names[:i], node.names[i+1:]...)
		node.children = append(node.children[:i], node.children[i+1:]...)
		return true
	}
	return false
}

// Replace swaps the member under name with child, preserving its position
// in the member order.  The old child is detached.
func (node *Node) Replace(name string, child *Node) error {
	if child.Parent != nil {
		return fmt.Errorf("%w: replacement for %q already has a parent", ErrParse, name)
	}
	for i, n := range node.names {
		if n != name {
			continue
		}
		node.children[i].Parent = nil
		node.children[i] = child
		child.Parent = node
		return nil
	}
	return fmt.Errorf("%w: no member %q at %s", ErrParse, name, node.Path())
}

// Name returns the name this node is listed under in its parent, or ""
// for a root or detached node.
func (node *Node) Name() string {
	if node.Parent == nil {
		return ""
	}
	for i, c := range node.Parent.children {
		if c == node {
			return node.Parent.names[i]
		}
	}
	return ""
}

// Root returns the topmost ancestor.
func (node *Node) Root() *Node {
	res := node
	for res.Parent != nil {
		res = res.Parent
	}
	return res
}

// Path returns the absolute path of this node's position, for
// diagnostics.  The root prints as "/".
func (node *Node) Path() string {
	if node.Parent == nil {
		return "/"
	}
	prefix := node.Parent.Path()
	if prefix == "/" {
		return "/" + node.Name()
	}
	return prefix + "/" + node.Name()
}

// At walks p from this node (relative) or from the document root
// (absolute).  A step through a non-object or to a missing member
// returns (nil, nil); ".." above the root is ErrPath.
func (node *Node) At(p npath.Path) (*Node, error) {
	cur := node
	if p.IsAbsolute() {
		cur = node.Root()
	}
	for _, seg := range p.Segments() {
		if seg == npath.Up {
			if cur.Parent == nil {
				return nil, fmt.Errorf("%w: %q traverses above the root from %s", ErrPath, p, node.Path())
			}
			cur = cur.Parent
			continue
		}
		if cur.Kind != ObjectKind {
			return nil, nil
		}
		next := cur.Member(seg)
		if next == nil {
			return nil, nil
		}
		cur = next
	}
	return cur, nil
}

// Clone returns a detached deep copy of the subtree at node.
func (node *Node) Clone() *Node {
	res := &Node{Kind: node.Kind}
	switch node.Kind {
	case ValueKind:
		res.Value = cloneValue(node.Value)
	case ObjectKind:
		res.names = make([]string, len(node.names))
		copy(res.names, node.names)
		res.children = make([]*Node, len(node.children))
		for i, c := range node.children {
			cc := c.Clone()
			cc.Parent = res
			res.children[i] = cc
		}
	case ReferenceKind:
		res.Ref = node.Ref
	case DerivedKind:
		res.Bases = make([]npath.Path, len(node.Bases))
		copy(res.Bases, node.Bases)
		res.Overrides = node.Overrides.Clone()
	}
	return res
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case []any:
		res := make([]any, len(x))
		for i := range x {
			res[i] = cloneValue(x[i])
		}
		return res
	case yaml.MapSlice:
		res := make(yaml.MapSlice, len(x))
		for i := range x {
			res[i] = yaml.MapItem{Key: x[i].Key, Value: cloneValue(x[i].Value)}
		}
		return res
	default:
		return v
	}
}

// Visit walks the subtree in document order: f is called on each node
// before its children (isPost false) and after (isPost true).  Returning
// dive=false from the pre call skips the children.
func (node *Node) Visit(f func(node *Node, isPost bool) (bool, error)) error {
	dive, err := f(node, false)
	if err != nil {
		return err
	}
	if dive && node.Kind == ObjectKind {
		for _, c := range node.children {
			if err := c.Visit(f); err != nil {
				return err
			}
		}
	}
	_, err = f(node, true)
	return err
}

// Resolved reports whether the subtree at node contains no reference or
// derived nodes.
func (node *Node) Resolved() bool {
	res := true
	node.Visit(func(n *Node, isPost bool) (bool, error) {
		if !isPost && (n.Kind == ReferenceKind || n.Kind == DerivedKind) {
			res = false
		}
		return res, nil
	})
	return res
}
