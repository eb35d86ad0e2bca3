package parse

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/tidwall/jsonc"

	"github.com/confkit/confkit/debug"
	"github.com/confkit/confkit/eval"
	"github.com/confkit/confkit/ir"
	"github.com/confkit/confkit/ir/npath"
)

// maxIncludeDepth backs up the include-cycle detector.
const maxIncludeDepth = 100

// Include descriptor fields.
const (
	includeTypeFile   = "file"
	includeTypeEnvVar = "environment-variable"
)

// ReadFile reads the document at path, processing its includes, and
// returns the unresolved tree.
func (rd *Reader) ReadFile(path string) (*ir.Node, error) {
	data, err := rd.loadFile(path)
	if err != nil {
		return nil, err
	}
	root := ir.NewObject()
	if err := rd.readDocument(data, rd.srcRoot, rd.dstRoot, root); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

func (rd *Reader) loadFile(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ir.ErrIO, path, err)
	}
	if rd.visited[abs] {
		return nil, fmt.Errorf("%w: include cycle through %s", ir.ErrInclude, path)
	}
	rd.visited[abs] = true
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ir.ErrIO, path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".jsonc") {
		data = jsonc.ToJSON(data)
	}
	return data, nil
}

// decodeDocument decodes JSON or YAML with member order preserved.
func decodeDocument(data []byte) (yaml.MapSlice, error) {
	var doc any
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("%w: %v", ir.ErrParse, err)
	}
	ms, ok := doc.(yaml.MapSlice)
	if !ok {
		return nil, fmt.Errorf("%w: document must be an object, got %T", ir.ErrParse, doc)
	}
	return ms, nil
}

// include is one decoded include descriptor.
type include struct {
	typ     string
	path    string
	name    string
	srcNode string
	dstNode string
}

// readIncludes processes the includes array in listed order, grafting
// each included document into dst and pushing its root on the alias
// stack as "$<basename>".
func (rd *Reader) readIncludes(v any, dst *ir.Node) error {
	arr, ok := v.([]any)
	if !ok {
		return fmt.Errorf("%w: %q must be an array, got %T", ir.ErrParse, includesKey, v)
	}
	for i, e := range arr {
		inc, err := decodeInclude(e)
		if err != nil {
			return fmt.Errorf("include %d: %w", i, err)
		}
		if err := rd.readInclude(inc, dst); err != nil {
			return fmt.Errorf("include %d: %w", i, err)
		}
	}
	return nil
}

func decodeInclude(e any) (*include, error) {
	ms, ok := e.(yaml.MapSlice)
	if !ok {
		return nil, fmt.Errorf("%w: include descriptor must be an object, got %T", ir.ErrParse, e)
	}
	inc := &include{typ: includeTypeFile, srcNode: "/", dstNode: "/"}
	for _, item := range ms {
		key, ok := item.Key.(string)
		if !ok {
			return nil, fmt.Errorf("%w: non-string include key %v", ir.ErrParse, item.Key)
		}
		s, ok := item.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: include field %q must be a string, got %T", ir.ErrParse, key, item.Value)
		}
		switch key {
		case "type":
			inc.typ = s
		case "path":
			inc.path = s
		case "name":
			inc.name = s
		case "source_node":
			inc.srcNode = s
		case "destination_node":
			inc.dstNode = s
		default:
			return nil, fmt.Errorf("%w: unknown include field %q", ir.ErrParse, key)
		}
	}
	return inc, nil
}

func (rd *Reader) readInclude(inc *include, dst *ir.Node) error {
	var path string
	switch inc.typ {
	case includeTypeFile:
		if inc.path == "" {
			return fmt.Errorf("%w: file include without %q", ir.ErrParse, "path")
		}
		expanded, err := rd.expander.Expand(inc.path)
		if err != nil {
			return err
		}
		path = expanded
	case includeTypeEnvVar:
		if inc.name == "" {
			return fmt.Errorf("%w: environment-variable include without %q", ir.ErrParse, "name")
		}
		v, ok := rd.expander.Lookup(inc.name)
		if !ok {
			return fmt.Errorf("%w: include variable %q is not set", ir.ErrEnv, inc.name)
		}
		path = v
	default:
		return fmt.Errorf("%w: unknown include type %q", ir.ErrParse, inc.typ)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(rd.workDir, path)
	}
	srcRoot, err := npath.Parse(inc.srcNode)
	if err != nil {
		return fmt.Errorf("source_node: %w", err)
	}
	if !srcRoot.IsAbsolute() {
		return fmt.Errorf("%w: source_node %q must be absolute", ir.ErrParse, inc.srcNode)
	}
	dstRoot, err := npath.Parse(inc.dstNode)
	if err != nil {
		return fmt.Errorf("destination_node: %w", err)
	}
	if !dstRoot.IsAbsolute() {
		return fmt.Errorf("%w: destination_node %q must be absolute", ir.ErrParse, inc.dstNode)
	}
	if debug.Include() {
		debug.Logf("include %s: %s -> %s\n", path, srcRoot, dstRoot)
	}

	sub := &Reader{
		workDir:  filepath.Dir(path),
		expander: rd.expander,
		aliases:  rd.aliases,
		srcRoot:  npath.Root(),
		dstRoot:  npath.Root(),
		visited:  rd.visited,
		depth:    rd.depth + 1,
	}
	if sub.depth > maxIncludeDepth {
		return fmt.Errorf("%w: include depth exceeds %d", ir.ErrInclude, maxIncludeDepth)
	}
	data, err := sub.loadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ir.ErrInclude, path, err)
	}
	subRoot := ir.NewObject()
	if err := sub.readDocument(data, npath.Root(), npath.Root(), subRoot); err != nil {
		return fmt.Errorf("%w: %s: %w", ir.ErrInclude, path, err)
	}
	rd.unvisit(path)

	// The included document's root becomes visible to later includes and
	// to the including document's resolution as "$<basename>".
	rd.aliases = append(sub.aliases, eval.Alias{
		Name: "$" + aliasName(path),
		Node: subRoot,
	})

	if err := graft(dst, subRoot, srcRoot, dstRoot); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// unvisit pops path from the cycle detector once its document has been
// read, so diamond-shaped include graphs are not reported as cycles.
func (rd *Reader) unvisit(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		delete(rd.visited, abs)
	}
}

// aliasName derives the alias name from a file path: the base name with
// its extension stripped and non-name bytes mapped to underscores.
func aliasName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	b := []byte(base)
	for i, c := range b {
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && i > 0:
		default:
			b[i] = '_'
		}
	}
	if len(b) == 0 || !npath.IsName(string(b)) {
		return "_" + string(b)
	}
	return string(b)
}
