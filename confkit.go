package confkit

import (
	"path/filepath"

	"github.com/confkit/confkit/eval"
	"github.com/confkit/confkit/ir"
	"github.com/confkit/confkit/parse"
)

// Option configures Load.
type Option func(*loadConfig)

type loadConfig struct {
	workDir   string
	maxPasses int
	expander  *eval.Expander
	dotenv    []string
	aliases   []eval.Alias
}

// WithWorkDir overrides the directory include paths resolve against;
// the default is the loaded file's directory.
func WithWorkDir(dir string) Option {
	return func(c *loadConfig) { c.workDir = dir }
}

// WithMaxPasses caps resolver iteration.
func WithMaxPasses(n int) Option {
	return func(c *loadConfig) { c.maxPasses = n }
}

// WithExpander supplies a pre-configured environment expander.
func WithExpander(x *eval.Expander) Option {
	return func(c *loadConfig) { c.expander = x }
}

// WithDotenv loads dotenv files into the expander before reading.
func WithDotenv(filenames ...string) Option {
	return func(c *loadConfig) { c.dotenv = append(c.dotenv, filenames...) }
}

// WithAliases exposes externally supplied document roots to reference
// resolution.
func WithAliases(aliases ...eval.Alias) Option {
	return func(c *loadConfig) { c.aliases = append(c.aliases, aliases...) }
}

// Load reads the document at path, processes its includes, resolves all
// references and derivations, and returns the resolved tree.
func Load(path string, opts ...Option) (*ir.Node, error) {
	c := &loadConfig{workDir: filepath.Dir(path)}
	for _, opt := range opts {
		opt(c)
	}
	rd, err := c.reader()
	if err != nil {
		return nil, err
	}
	root, err := rd.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return root, c.resolve(root, rd)
}

// LoadBytes is Load for an in-memory document; includes resolve against
// the configured working directory.
func LoadBytes(data []byte, opts ...Option) (*ir.Node, error) {
	c := &loadConfig{workDir: "."}
	for _, opt := range opts {
		opt(c)
	}
	rd, err := c.reader()
	if err != nil {
		return nil, err
	}
	root, err := rd.Read(data)
	if err != nil {
		return nil, err
	}
	return root, c.resolve(root, rd)
}

func (c *loadConfig) reader() (*parse.Reader, error) {
	x := c.expander
	if x == nil {
		x = eval.NewExpander()
	}
	if len(c.dotenv) > 0 {
		if err := x.LoadDotenv(c.dotenv...); err != nil {
			return nil, err
		}
	}
	return parse.NewReader(
		parse.WorkDir(c.workDir),
		parse.WithExpander(x),
		parse.WithAliases(c.aliases...),
	), nil
}

func (c *loadConfig) resolve(root *ir.Node, rd *parse.Reader) error {
	res := &eval.Resolver{
		MaxPasses: c.maxPasses,
		Aliases:   rd.Aliases(),
	}
	return res.Resolve(root)
}
