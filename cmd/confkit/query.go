package main

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/scott-cotton/cli"

	"github.com/confkit/confkit/eval"
)

func query(cfg *QueryConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Query.Parse(cc, args)
	if err != nil {
		cfg.Query.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: query requires an expression and at least one file", cli.ErrUsage)
	}
	code := args[0]
	for _, arg := range args[1:] {
		root, err := loadArg(cfg.MainConfig, arg, true)
		if err != nil {
			return err
		}
		env, ok := eval.ToAny(root).(map[string]any)
		if !ok {
			return fmt.Errorf("%s: resolved document is not an object", arg)
		}
		out, err := expr.Eval(code, env)
		if err != nil {
			return fmt.Errorf("%s: evaluating %q: %w", arg, code, err)
		}
		if _, err := fmt.Fprintf(cc.Out, "%v\n", out); err != nil {
			return err
		}
	}
	return nil
}
