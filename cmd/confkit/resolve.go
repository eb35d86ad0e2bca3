package main

import (
	"fmt"
	"path/filepath"

	"github.com/scott-cotton/cli"

	"github.com/confkit/confkit"
	"github.com/confkit/confkit/encode"
	"github.com/confkit/confkit/eval"
	"github.com/confkit/confkit/ir"
	"github.com/confkit/confkit/parse"
)

func resolve(cfg *ResolveConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Resolve.Parse(cc, args)
	if err != nil {
		cfg.Resolve.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: resolve requires at least one file", cli.ErrUsage)
	}
	for _, arg := range args {
		root, err := loadArg(cfg.MainConfig, arg, !cfg.Raw)
		if err != nil {
			return err
		}
		opts := append(cfg.encOpts(cc.Out), encode.AsDocument(true))
		if err := encode.Encode(root, cc.Out, opts...); err != nil {
			return err
		}
	}
	return nil
}

// loadArg reads one document, resolving it unless raw output was asked
// for.
func loadArg(cfg *MainConfig, path string, resolved bool) (*ir.Node, error) {
	if resolved {
		opts, err := cfg.loadOpts()
		if err != nil {
			return nil, err
		}
		return confkit.Load(path, opts...)
	}
	x := eval.NewExpander()
	for k, v := range cfg.env {
		if err := x.Override(k, v); err != nil {
			return nil, err
		}
	}
	if len(cfg.dotenv) > 0 {
		if err := x.LoadDotenv(cfg.dotenv...); err != nil {
			return nil, err
		}
	}
	rd := parse.NewReader(parse.WorkDir(filepath.Dir(path)), parse.WithExpander(x))
	return rd.ReadFile(path)
}
