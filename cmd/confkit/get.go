package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/confkit/confkit/encode"
	"github.com/confkit/confkit/ir/npath"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		cfg.Get.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: get requires a path and at least one file", cli.ErrUsage)
	}
	p, err := npath.Parse(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", cli.ErrUsage, err)
	}
	for _, arg := range args[1:] {
		root, err := loadArg(cfg.MainConfig, arg, true)
		if err != nil {
			return err
		}
		node, err := root.At(p)
		if err != nil {
			return err
		}
		if node == nil {
			return fmt.Errorf("%s: no node at %s", arg, p)
		}
		if err := encode.Encode(node, cc.Out, cfg.encOpts(cc.Out)...); err != nil {
			return err
		}
	}
	return nil
}
