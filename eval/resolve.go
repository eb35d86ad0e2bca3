package eval

import (
	"fmt"
	"strings"

	"github.com/confkit/confkit/debug"
	"github.com/confkit/confkit/ir"
	"github.com/confkit/confkit/ir/npath"
)

// DefaultMaxPasses bounds resolution on pathological inputs.
const DefaultMaxPasses = 64

// Alias binds a synthetic "$name" to a borrowed document root, making
// sibling documents reachable from reference paths during resolution.
type Alias struct {
	Name string
	Node *ir.Node
}

// Resolver rewrites a tree until it contains no reference or derived
// nodes.  It iterates passes over the tree; within one pass every
// replacement is computed from the pass-start state before any is
// committed, so resolution does not depend on traversal order.
type Resolver struct {
	// MaxPasses caps iteration; 0 means DefaultMaxPasses.
	MaxPasses int
	// Aliases is consulted for paths whose first segment is "$name",
	// later bindings shadowing earlier ones.
	Aliases []Alias
}

// Resolve rewrites root in place with a default Resolver.
func Resolve(root *ir.Node) error {
	return (&Resolver{}).Resolve(root)
}

// pending is one unresolved child slot observed during a pass.
type pending struct {
	node *ir.Node
	// replacement is non-nil once the target subtree was computed.
	replacement *ir.Node
	// blocked describes why the node was deferred this pass.
	blocked string
	// missing is set when every blocking target was absent, as opposed
	// to present but not yet resolved.
	missing bool
}

// Resolve rewrites root in place.
func (r *Resolver) Resolve(root *ir.Node) error {
	maxPasses := r.MaxPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	for pass := 0; pass < maxPasses; pass++ {
		// Aliased documents resolve in place alongside the main tree so
		// reference paths through an alias can reach resolved content;
		// leftovers inside aliases that the main tree never needed are
		// not an error.
		mainTodo := collect(root)
		if len(mainTodo) == 0 {
			return nil
		}
		todo := mainTodo
		for _, a := range r.Aliases {
			todo = append(todo, collect(a.Node)...)
		}
		// Compute every replacement from the pass-start tree before
		// committing any of them.  Pending slots are never nested inside
		// one another (references are leaves, derived overrides are not
		// walked), so the commits below touch disjoint child slots.
		for _, p := range todo {
			if err := r.compute(p); err != nil {
				return err
			}
		}
		committed := 0
		for _, p := range todo {
			if p.replacement == nil {
				continue
			}
			if err := p.node.Parent.Replace(p.node.Name(), p.replacement); err != nil {
				return err
			}
			committed++
		}
		if debug.Resolve() {
			debug.Logf("pass %d: %d unresolved, %d rewritten\n", pass, len(todo), committed)
		}
		if committed == 0 {
			return stuckErr(mainTodo)
		}
	}
	if todo := collect(root); len(todo) != 0 {
		return fmt.Errorf("%w: iteration cap reached with %d unresolved nodes", ir.ErrCycle, len(todo))
	}
	return nil
}

// collect gathers unresolved child slots in document order.  Derived
// overrides are not walked; their content surfaces after the merge.
func collect(root *ir.Node) []*pending {
	var res []*pending
	root.Visit(func(n *ir.Node, isPost bool) (bool, error) {
		if isPost {
			return true, nil
		}
		if n.Kind == ir.ReferenceKind || n.Kind == ir.DerivedKind {
			res = append(res, &pending{node: n})
		}
		return true, nil
	})
	return res
}

// compute fills in p.replacement, or records why p stays deferred.
// Structural path errors and non-object derivation bases fail hard.
func (r *Resolver) compute(p *pending) error {
	switch p.node.Kind {
	case ir.ReferenceKind:
		target, err := r.lookup(p.node.Ref, p.node.Parent)
		if err != nil {
			return fmt.Errorf("reference at %s: %w", p.node.Path(), err)
		}
		switch {
		case target == nil:
			p.blocked = fmt.Sprintf("%s: target %s not found", p.node.Path(), p.node.Ref)
			p.missing = true
		case target == p.node:
			p.blocked = fmt.Sprintf("%s: refers to itself", p.node.Path())
		case target.Kind == ir.ReferenceKind || target.Kind == ir.DerivedKind:
			p.blocked = fmt.Sprintf("%s: target %s is unresolved", p.node.Path(), p.node.Ref)
		default:
			p.replacement = target.Clone()
		}
		return nil

	case ir.DerivedKind:
		bases := make([]*ir.Node, 0, len(p.node.Bases))
		for _, bp := range p.node.Bases {
			target, err := r.lookup(bp, p.node.Parent)
			if err != nil {
				return fmt.Errorf("derivation at %s: %w", p.node.Path(), err)
			}
			if target == nil {
				p.blocked = fmt.Sprintf("%s: base %s not found", p.node.Path(), bp)
				p.missing = true
				return nil
			}
			if target.Kind == ir.ReferenceKind || target.Kind == ir.DerivedKind {
				p.blocked = fmt.Sprintf("%s: base %s is unresolved", p.node.Path(), bp)
				return nil
			}
			if target.Kind != ir.ObjectKind {
				return fmt.Errorf("%w: base %s of %s is a %s, not an object",
					ir.ErrMerge, bp, p.node.Path(), target.Kind)
			}
			bases = append(bases, target)
		}
		merged := ir.NewObject()
		for _, b := range bases {
			if err := mergeInto(merged, b); err != nil {
				return fmt.Errorf("derivation at %s: %w", p.node.Path(), err)
			}
		}
		if err := mergeInto(merged, p.node.Overrides); err != nil {
			return fmt.Errorf("derivation at %s: %w", p.node.Path(), err)
		}
		p.replacement = merged
		return nil
	}
	return nil
}

// lookup resolves a path from the containing object, consulting the
// alias stack when the path starts with an alias segment.
func (r *Resolver) lookup(p npath.Path, from *ir.Node) (*ir.Node, error) {
	if !p.HasAlias() {
		return from.At(p)
	}
	segs := p.Segments()
	for i := len(r.Aliases) - 1; i >= 0; i-- {
		a := r.Aliases[i]
		if a.Name != segs[0] {
			continue
		}
		cur := a.Node
		for _, seg := range segs[1:] {
			if cur.Kind != ir.ObjectKind {
				return nil, nil
			}
			cur = cur.Member(seg)
			if cur == nil {
				return nil, nil
			}
		}
		return cur, nil
	}
	return nil, nil
}

// mergeInto merges src's members into dst: absent names are cloned in,
// object-object pairs merge recursively, any other pair is replaced by
// the src side.
func mergeInto(dst, src *ir.Node) error {
	for i := 0; i < src.Len(); i++ {
		name, s := src.MemberAt(i)
		d := dst.Member(name)
		switch {
		case d == nil:
			if err := dst.Append(name, s.Clone()); err != nil {
				return err
			}
		case d.Kind == ir.ObjectKind && s.Kind == ir.ObjectKind:
			if err := mergeInto(d, s); err != nil {
				return err
			}
		default:
			if err := dst.Replace(name, s.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

// stuckErr reports the remaining unresolved nodes after a pass that
// committed nothing.
func stuckErr(todo []*pending) error {
	kind := ir.ErrUnresolved
	for _, p := range todo {
		if !p.missing {
			kind = ir.ErrCycle
			break
		}
	}
	var b strings.Builder
	for i, p := range todo {
		if i > 0 {
			b.WriteString("; ")
		}
		if p.blocked != "" {
			b.WriteString(p.blocked)
		} else {
			b.WriteString(p.node.Path())
		}
	}
	return fmt.Errorf("%w: %s", kind, b.String())
}
