package parse

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/confkit/confkit/debug"
	"github.com/confkit/confkit/eval"
	"github.com/confkit/confkit/ir"
	"github.com/confkit/confkit/ir/npath"
)

// Document member-name sigils.
const (
	valueSigil     = '#'
	referenceSigil = '&'
)

// Top-level document keys.
const (
	configKey   = "config"
	envKey      = "env"
	includesKey = "includes"
)

// Option configures a Reader.
type Option func(*Reader)

// WorkDir sets the directory include paths are resolved against.
func WorkDir(dir string) Option {
	return func(rd *Reader) { rd.workDir = dir }
}

// WithExpander sets the environment expander; one expander is shared
// across a document and all of its includes.
func WithExpander(x *eval.Expander) Option {
	return func(rd *Reader) { rd.expander = x }
}

// WithAliases seeds the alias stack with externally supplied document
// roots.
func WithAliases(aliases ...eval.Alias) Option {
	return func(rd *Reader) { rd.aliases = append(rd.aliases, aliases...) }
}

// SourceRoot selects the subtree of the incoming document to read;
// default "/".
func SourceRoot(p npath.Path) Option {
	return func(rd *Reader) { rd.srcRoot = p }
}

// DestinationRoot selects where the source subtree lands in the
// constructed tree; default "/".
func DestinationRoot(p npath.Path) Option {
	return func(rd *Reader) { rd.dstRoot = p }
}

// Reader builds an unresolved tree from one document plus its includes.
type Reader struct {
	workDir  string
	expander *eval.Expander
	aliases  []eval.Alias
	srcRoot  npath.Path
	dstRoot  npath.Path

	visited map[string]bool
	depth   int
}

// NewReader returns a Reader rooted at the current directory with a
// fresh expander unless options say otherwise.
func NewReader(opts ...Option) *Reader {
	rd := &Reader{
		workDir: ".",
		srcRoot: npath.Root(),
		dstRoot: npath.Root(),
		visited: map[string]bool{},
	}
	for _, opt := range opts {
		opt(rd)
	}
	if rd.expander == nil {
		rd.expander = eval.NewExpander()
	}
	return rd
}

// Expander returns the expander shared across this read.
func (rd *Reader) Expander() *eval.Expander {
	return rd.expander
}

// Aliases returns the alias stack accumulated while reading, for the
// resolver.
func (rd *Reader) Aliases() []eval.Alias {
	return rd.aliases
}

// Read builds the tree for an in-memory document.  Includes resolve
// against the Reader's working directory.
func (rd *Reader) Read(data []byte) (*ir.Node, error) {
	root := ir.NewObject()
	if err := rd.readDocument(data, rd.srcRoot, rd.dstRoot, root); err != nil {
		return nil, err
	}
	return root, nil
}

// readDocument reads one document into dst: env section first, includes
// in listed order, then the document's own config grafted from srcRoot
// under dstRoot.
func (rd *Reader) readDocument(data []byte, srcRoot, dstRoot npath.Path, dst *ir.Node) error {
	doc, err := decodeDocument(data)
	if err != nil {
		return err
	}
	var cfg yaml.MapSlice
	cfgSeen := false
	for _, item := range doc {
		key, ok := item.Key.(string)
		if !ok {
			return fmt.Errorf("%w: non-string top-level key %v", ir.ErrParse, item.Key)
		}
		switch key {
		case envKey:
			if err := rd.readEnv(item.Value); err != nil {
				return err
			}
		case includesKey, configKey:
		default:
			return fmt.Errorf("%w: unknown top-level key %q", ir.ErrParse, key)
		}
	}
	for _, item := range doc {
		if item.Key == includesKey {
			if err := rd.readIncludes(item.Value, dst); err != nil {
				return err
			}
		}
	}
	for _, item := range doc {
		if item.Key == configKey {
			ms, ok := item.Value.(yaml.MapSlice)
			if !ok {
				return fmt.Errorf("%w: %q must be an object, got %T", ir.ErrParse, configKey, item.Value)
			}
			cfg, cfgSeen = ms, true
		}
	}
	if !cfgSeen {
		return fmt.Errorf("%w: missing required top-level key %q", ir.ErrParse, configKey)
	}
	tree, err := rd.parseObject(cfg)
	if err != nil {
		return err
	}
	if debug.Parse() {
		debug.Logf("parsed config with %d members\n", tree.Len())
	}
	return graft(dst, tree, srcRoot, dstRoot)
}

// readEnv expands and injects the env section.  Every entry is expanded
// against the expander state before any entry is injected, so entries
// may chain through the process environment but not through siblings.
func (rd *Reader) readEnv(v any) error {
	ms, ok := v.(yaml.MapSlice)
	if !ok {
		return fmt.Errorf("%w: %q must be an object, got %T", ir.ErrParse, envKey, v)
	}
	type entry struct{ name, value string }
	entries := make([]entry, 0, len(ms))
	for _, item := range ms {
		name, ok := item.Key.(string)
		if !ok {
			return fmt.Errorf("%w: non-string env entry key %v", ir.ErrParse, item.Key)
		}
		s, err := scalarString(item.Value)
		if err != nil {
			return fmt.Errorf("%w: env entry %q: %v", ir.ErrParse, name, err)
		}
		expanded, err := rd.expander.Expand(s)
		if err != nil {
			return fmt.Errorf("env entry %q: %w", name, err)
		}
		entries = append(entries, entry{name, expanded})
	}
	for _, e := range entries {
		if err := rd.expander.Override(e.name, e.value); err != nil {
			return err
		}
	}
	return nil
}

// parseObject maps a decoded object onto tree nodes by the member-name
// sigil convention: "#name" is a value, "&name" a reference, a plain
// name an object, or a derivation when it carries a "base" member.
func (rd *Reader) parseObject(ms yaml.MapSlice) (*ir.Node, error) {
	obj := ir.NewObject()
	for _, item := range ms {
		rawName, ok := item.Key.(string)
		if !ok {
			return nil, fmt.Errorf("%w: non-string member key %v", ir.ErrParse, item.Key)
		}
		if rawName == "" {
			return nil, fmt.Errorf("%w: empty member name", ir.ErrName)
		}
		var (
			name  string
			child *ir.Node
			err   error
		)
		switch rawName[0] {
		case valueSigil:
			name = rawName[1:]
			child, err = rd.parseValue(item.Value)
		case referenceSigil:
			name = rawName[1:]
			child, err = parseReference(item.Value)
		default:
			name = rawName
			child, err = rd.parseSubObject(item.Value)
		}
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", rawName, err)
		}
		if err := obj.Append(name, child); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func (rd *Reader) parseValue(v any) (*ir.Node, error) {
	if _, ok := v.(yaml.MapSlice); ok {
		return nil, fmt.Errorf("%w: value member must be a scalar or array, got an object", ir.ErrParse)
	}
	expanded, err := rd.expandStrings(v)
	if err != nil {
		return nil, err
	}
	return ir.NewValue(expanded), nil
}

// expandStrings env-expands every string in a value payload, including
// inside arrays and nested maps carried opaquely by arrays.
func (rd *Reader) expandStrings(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return rd.expander.Expand(x)
	case []any:
		res := make([]any, len(x))
		for i := range x {
			xv, err := rd.expandStrings(x[i])
			if err != nil {
				return nil, err
			}
			res[i] = xv
		}
		return res, nil
	case yaml.MapSlice:
		res := make(yaml.MapSlice, len(x))
		for i := range x {
			xv, err := rd.expandStrings(x[i].Value)
			if err != nil {
				return nil, err
			}
			res[i] = yaml.MapItem{Key: x[i].Key, Value: xv}
		}
		return res, nil
	default:
		return v, nil
	}
}

func parseReference(v any) (*ir.Node, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: reference value must be a string path, got %T", ir.ErrParse, v)
	}
	p, err := npath.Parse(s)
	if err != nil {
		return nil, err
	}
	return ir.NewReference(p)
}

// parseSubObject handles a plain-named member: an object, or a derived
// object when a "base" member with a string or string-array value is
// present.
func (rd *Reader) parseSubObject(v any) (*ir.Node, error) {
	ms, ok := v.(yaml.MapSlice)
	if !ok {
		return nil, fmt.Errorf("%w: plain member must be an object, got %T", ir.ErrParse, v)
	}
	var baseVal any
	baseSeen := false
	rest := make(yaml.MapSlice, 0, len(ms))
	for _, item := range ms {
		if item.Key == "base" {
			baseVal, baseSeen = item.Value, true
			continue
		}
		rest = append(rest, item)
	}
	if !baseSeen || !isBaseShape(baseVal) {
		return rd.parseObject(ms)
	}
	bases, err := parseBases(baseVal)
	if err != nil {
		return nil, err
	}
	overrides, err := rd.parseObject(rest)
	if err != nil {
		return nil, err
	}
	return ir.NewDerived(bases, overrides)
}

func isBaseShape(v any) bool {
	switch x := v.(type) {
	case string:
		return true
	case []any:
		for _, e := range x {
			if _, ok := e.(string); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func parseBases(v any) ([]npath.Path, error) {
	var texts []string
	switch x := v.(type) {
	case string:
		texts = []string{x}
	case []any:
		for _, e := range x {
			texts = append(texts, e.(string))
		}
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: empty base list", ir.ErrParse)
	}
	bases := make([]npath.Path, len(texts))
	for i, t := range texts {
		p, err := npath.Parse(t)
		if err != nil {
			return nil, fmt.Errorf("base %q: %w", t, err)
		}
		bases[i] = p
	}
	return bases, nil
}

// graft detaches the subtree at srcRoot in sub and attaches its members
// under dstRoot in dst, creating intermediate objects as needed.  A
// non-object on the destination path or a member collision is fatal.
func graft(dst, sub *ir.Node, srcRoot, dstRoot npath.Path) error {
	src, err := sub.At(srcRoot)
	if err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("%w: source node %s not found", ir.ErrInclude, srcRoot)
	}
	if src.Kind != ir.ObjectKind {
		return fmt.Errorf("%w: source node %s is a %s, not an object", ir.ErrInclude, srcRoot, src.Kind)
	}
	target := dst
	for _, seg := range dstRoot.Segments() {
		next := target.Member(seg)
		if next == nil {
			next = ir.NewObject()
			if err := target.Append(seg, next); err != nil {
				return err
			}
		}
		if next.Kind != ir.ObjectKind {
			return fmt.Errorf("%w: destination node %s collides with a %s at %q",
				ir.ErrInclude, dstRoot, next.Kind, seg)
		}
		target = next
	}
	// Members are cloned, not moved: the source document stays intact
	// behind its alias for reference resolution.
	for i := 0; i < src.Len(); i++ {
		name, child := src.MemberAt(i)
		if target.Member(name) != nil {
			return fmt.Errorf("%w: destination member %q under %s already exists",
				ir.ErrInclude, name, dstRoot)
		}
		if err := target.Append(name, child.Clone()); err != nil {
			return err
		}
	}
	return nil
}

// scalarString renders a decoded scalar for the env section.
func scalarString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return fmt.Sprintf("%t", x), nil
	case int64, uint64:
		return fmt.Sprintf("%d", x), nil
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", x), "0"), "."), nil
	default:
		return "", fmt.Errorf("value must be a scalar, got %T", v)
	}
}
