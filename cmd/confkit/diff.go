package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/confkit/confkit"
	"github.com/confkit/confkit/encode"
	"github.com/confkit/confkit/libdiff"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires exactly two files", cli.ErrUsage)
	}
	from, err := loadArg(cfg.MainConfig, args[0], true)
	if err != nil {
		return err
	}
	to, err := loadArg(cfg.MainConfig, args[1], true)
	if err != nil {
		return err
	}
	if cfg.Structural {
		patch, err := confkit.StructuralDiff(from, to)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cc.Out, "%s\n", patch)
		return err
	}
	fromDoc, err := encode.String(from, encode.AsDocument(true))
	if err != nil {
		return err
	}
	toDoc, err := encode.String(to, encode.AsDocument(true))
	if err != nil {
		return err
	}
	diffs := libdiff.Diff(fromDoc, toDoc)
	if libdiff.Equal(diffs) {
		return nil
	}
	color := cfg.Color
	if !color {
		if f, ok := cc.Out.(*os.File); ok {
			color = isatty.IsTerminal(f.Fd())
		}
	}
	if _, err := fmt.Fprint(cc.Out, libdiff.Sprint(diffs, color)); err != nil {
		return err
	}
	return cli.ExitCodeErr(1)
}
