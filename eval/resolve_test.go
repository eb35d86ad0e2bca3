package eval

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/confkit/confkit/ir"
	"github.com/confkit/confkit/ir/npath"
)

func obj(t *testing.T, members ...any) *ir.Node {
	t.Helper()
	res := ir.NewObject()
	for i := 0; i < len(members); i += 2 {
		name := members[i].(string)
		var child *ir.Node
		switch x := members[i+1].(type) {
		case *ir.Node:
			child = x
		default:
			child = ir.NewValue(x)
		}
		if err := res.Append(name, child); err != nil {
			t.Fatal(err)
		}
	}
	return res
}

func ref(t *testing.T, path string) *ir.Node {
	t.Helper()
	node, err := ir.NewReference(npath.MustParse(path))
	if err != nil {
		t.Fatal(err)
	}
	return node
}

func derived(t *testing.T, overrides *ir.Node, bases ...string) *ir.Node {
	t.Helper()
	ps := make([]npath.Path, len(bases))
	for i, b := range bases {
		ps[i] = npath.MustParse(b)
	}
	node, err := ir.NewDerived(ps, overrides)
	if err != nil {
		t.Fatal(err)
	}
	return node
}

func TestResolveReferenceChain(t *testing.T) {
	root := obj(t,
		"a", int64(42),
		"b", ref(t, "/a"),
		"c", ref(t, "/b"),
	)
	if err := Resolve(root); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b", "c"} {
		n := root.Member(name)
		if n.Kind != ir.ValueKind || n.Value != int64(42) {
			t.Errorf("/%s = %v (%s), want 42", name, n.Value, n.Kind)
		}
	}
}

func TestResolveRelativeReference(t *testing.T) {
	inner := obj(t,
		"x", int64(1),
		"y", ref(t, "x"),
		"up", ref(t, "../top"),
	)
	root := obj(t, "top", "hello", "inner", inner)
	if err := Resolve(root); err != nil {
		t.Fatal(err)
	}
	if got := root.Member("inner").Member("y").Value; got != int64(1) {
		t.Errorf("y = %v, want 1", got)
	}
	if got := root.Member("inner").Member("up").Value; got != "hello" {
		t.Errorf("up = %v, want hello", got)
	}
}

func TestResolveReferenceToObjectClones(t *testing.T) {
	root := obj(t,
		"src", obj(t, "v", int64(5)),
		"dst", ref(t, "/src"),
	)
	if err := Resolve(root); err != nil {
		t.Fatal(err)
	}
	dst := root.Member("dst")
	if dst.Kind != ir.ObjectKind {
		t.Fatalf("dst is %s", dst.Kind)
	}
	if dst == root.Member("src") {
		t.Error("reference target was not cloned")
	}
	if got := dst.Member("v").Value; got != int64(5) {
		t.Errorf("dst.v = %v", got)
	}
	if dst.Parent != root {
		t.Error("replacement not re-parented")
	}
}

func TestResolveCycle(t *testing.T) {
	root := obj(t,
		"x", ref(t, "/y"),
		"y", ref(t, "/x"),
	)
	err := Resolve(root)
	if !errors.Is(err, ir.ErrCycle) {
		t.Fatalf("err = %v, want ErrCycle", err)
	}
	for _, p := range []string{"/x", "/y"} {
		if !strings.Contains(err.Error(), p) {
			t.Errorf("error %q does not mention %s", err, p)
		}
	}
}

func TestResolveSelfReference(t *testing.T) {
	root := obj(t, "x", ref(t, "/x"))
	if err := Resolve(root); !errors.Is(err, ir.ErrCycle) {
		t.Fatalf("err = %v, want ErrCycle", err)
	}
}

func TestResolveDangling(t *testing.T) {
	root := obj(t, "x", ref(t, "/nowhere"))
	err := Resolve(root)
	if !errors.Is(err, ir.ErrUnresolved) {
		t.Fatalf("err = %v, want ErrUnresolved", err)
	}
	if !strings.Contains(err.Error(), "/nowhere") {
		t.Errorf("error %q does not carry the target path", err)
	}
}

func TestResolveDerivedOverride(t *testing.T) {
	root := obj(t,
		"base1", obj(t, "a", int64(1), "b", int64(2)),
		"derived", derived(t, obj(t, "b", int64(20), "c", int64(3)), "/base1"),
	)
	if err := Resolve(root); err != nil {
		t.Fatal(err)
	}
	d := root.Member("derived")
	if d.Kind != ir.ObjectKind {
		t.Fatalf("derived is %s", d.Kind)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, d.Names()); diff != "" {
		t.Errorf("member order (-want +got):\n%s", diff)
	}
	for name, want := range map[string]int64{"a": 1, "b": 20, "c": 3} {
		if got := d.Member(name).Value; got != want {
			t.Errorf("derived.%s = %v, want %d", name, got, want)
		}
	}
}

func TestResolveDerivedMultiBase(t *testing.T) {
	root := obj(t,
		"b1", obj(t, "x", int64(1), "nest", obj(t, "p", int64(1), "q", int64(1))),
		"b2", obj(t, "y", int64(2), "nest", obj(t, "q", int64(2), "r", int64(2))),
		"d", derived(t, ir.NewObject(), "/b1", "/b2"),
	)
	if err := Resolve(root); err != nil {
		t.Fatal(err)
	}
	d := root.Member("d")
	if diff := cmp.Diff([]string{"x", "nest", "y"}, d.Names()); diff != "" {
		t.Errorf("merged order (-want +got):\n%s", diff)
	}
	nest := d.Member("nest")
	if diff := cmp.Diff([]string{"p", "q", "r"}, nest.Names()); diff != "" {
		t.Errorf("nested merge order (-want +got):\n%s", diff)
	}
	if got := nest.Member("q").Value; got != int64(2) {
		t.Errorf("nest.q = %v, want 2 (later base wins)", got)
	}
}

func TestResolveDerivedScalarReplaces(t *testing.T) {
	root := obj(t,
		"b1", obj(t, "v", obj(t, "deep", int64(1))),
		"b2", obj(t, "v", int64(7)),
		"d", derived(t, ir.NewObject(), "/b1", "/b2"),
	)
	if err := Resolve(root); err != nil {
		t.Fatal(err)
	}
	v := root.Member("d").Member("v")
	if v.Kind != ir.ValueKind || v.Value != int64(7) {
		t.Errorf("d.v = %v (%s), want scalar 7", v.Value, v.Kind)
	}
}

func TestResolveDerivedOfDerived(t *testing.T) {
	root := obj(t,
		"base", obj(t, "a", int64(1)),
		"mid", derived(t, obj(t, "b", int64(2)), "/base"),
		"top", derived(t, obj(t, "c", int64(3)), "/mid"),
	)
	if err := Resolve(root); err != nil {
		t.Fatal(err)
	}
	top := root.Member("top")
	for name, want := range map[string]int64{"a": 1, "b": 2, "c": 3} {
		if got := top.Member(name).Value; got != want {
			t.Errorf("top.%s = %v, want %d", name, got, want)
		}
	}
}

func TestResolveDerivedBaseIsValue(t *testing.T) {
	root := obj(t,
		"v", int64(1),
		"d", derived(t, ir.NewObject(), "/v"),
	)
	if err := Resolve(root); !errors.Is(err, ir.ErrMerge) {
		t.Fatalf("err = %v, want ErrMerge", err)
	}
}

func TestResolveReferenceIntoDerivedResult(t *testing.T) {
	// the reference target only exists once the derivation has run
	root := obj(t,
		"base", obj(t, "a", int64(4)),
		"d", derived(t, ir.NewObject(), "/base"),
		"r", ref(t, "/d/a"),
	)
	if err := Resolve(root); err != nil {
		t.Fatal(err)
	}
	if got := root.Member("r").Value; got != int64(4) {
		t.Errorf("r = %v, want 4", got)
	}
}

func TestResolveReferenceInsideOverrides(t *testing.T) {
	root := obj(t,
		"val", int64(11),
		"base", obj(t, "a", int64(1)),
		"d", derived(t, obj(t, "b", ref(t, "/val")), "/base"),
	)
	if err := Resolve(root); err != nil {
		t.Fatal(err)
	}
	if got := root.Member("d").Member("b").Value; got != int64(11) {
		t.Errorf("d.b = %v, want 11", got)
	}
	if !root.Resolved() {
		t.Error("tree still has unresolved nodes")
	}
}

func TestResolveAlias(t *testing.T) {
	other := obj(t, "shared", obj(t, "tag", "from-other"))
	root := obj(t, "r", ref(t, "$other/shared/tag"))
	r := &Resolver{Aliases: []Alias{{Name: "$other", Node: other}}}
	if err := r.Resolve(root); err != nil {
		t.Fatal(err)
	}
	if got := root.Member("r").Value; got != "from-other" {
		t.Errorf("r = %v, want from-other", got)
	}
}

func TestResolveAliasShadowing(t *testing.T) {
	first := obj(t, "v", "first")
	second := obj(t, "v", "second")
	root := obj(t, "r", ref(t, "$doc/v"))
	r := &Resolver{Aliases: []Alias{
		{Name: "$doc", Node: first},
		{Name: "$doc", Node: second},
	}}
	if err := r.Resolve(root); err != nil {
		t.Fatal(err)
	}
	if got := root.Member("r").Value; got != "second" {
		t.Errorf("r = %v, want second (later binding shadows)", got)
	}
}

func TestResolveMaxPasses(t *testing.T) {
	// a chain longer than the pass cap cannot finish
	root := ir.NewObject()
	if err := root.Append("v", ir.NewValue(int64(0))); err != nil {
		t.Fatal(err)
	}
	prev := "v"
	for _, name := range []string{"c1", "c2", "c3", "c4", "c5"} {
		if err := root.Append(name, ref(t, "/"+prev)); err != nil {
			t.Fatal(err)
		}
		prev = name
	}
	r := &Resolver{MaxPasses: 2}
	if err := r.Resolve(root); !errors.Is(err, ir.ErrCycle) {
		t.Fatalf("err = %v, want ErrCycle (cap)", err)
	}
	if err := Resolve(root); err != nil {
		t.Fatalf("default cap: %v", err)
	}
}

func TestResolveSnapshotSemantics(t *testing.T) {
	// b copies a's pass-start state, not the same-pass rewrite of c
	root := obj(t,
		"seed", int64(1),
		"a", obj(t, "c", ref(t, "/seed")),
		"b", ref(t, "/a"),
	)
	if err := Resolve(root); err != nil {
		t.Fatal(err)
	}
	if !root.Resolved() {
		t.Fatal("tree still unresolved")
	}
	if got := root.Member("b").Member("c").Value; got != int64(1) {
		t.Errorf("b.c = %v, want 1", got)
	}
}
