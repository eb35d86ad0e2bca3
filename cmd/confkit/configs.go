package main

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/confkit/confkit"
	"github.com/confkit/confkit/encode"
	"github.com/confkit/confkit/eval"
)

type MainConfig struct {
	Color   bool `cli:"name=c aliases=color desc='force color output'"`
	Compact bool `cli:"name=compact desc='emit on one line'"`

	Out      string
	CloseOut func() error

	env    map[string]string
	dotenv []string

	Main *cli.Command
}

func (cfg *MainConfig) outOpt(cc *cli.Context, a string) (any, error) {
	cfg.Out = a
	if a == "-" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	cc.Out = f
	cfg.CloseOut = f.Close
	return nil, nil
}

func (cfg *MainConfig) envOpt(cc *cli.Context, a string) (any, error) {
	i := strings.IndexByte(a, '=')
	if i <= 0 {
		return nil, cli.ErrUsage
	}
	if cfg.env == nil {
		cfg.env = map[string]string{}
	}
	cfg.env[a[:i]] = a[i+1:]
	return nil, nil
}

func (cfg *MainConfig) dotenvOpt(cc *cli.Context, a string) (any, error) {
	cfg.dotenv = append(cfg.dotenv, a)
	return nil, nil
}

func (cfg *MainConfig) loadOpts() ([]confkit.Option, error) {
	var opts []confkit.Option
	if len(cfg.env) > 0 {
		x := eval.NewExpander()
		for k, v := range cfg.env {
			if err := x.Override(k, v); err != nil {
				return nil, err
			}
		}
		opts = append(opts, confkit.WithExpander(x))
	}
	if len(cfg.dotenv) > 0 {
		opts = append(opts, confkit.WithDotenv(cfg.dotenv...))
	}
	return opts, nil
}

func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	res := []encode.EncodeOption{
		encode.Compact(cfg.Compact),
	}
	if cfg.Color {
		return append(res, encode.EncodeColors(encode.NewColors()))
	}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		res = append(res, encode.EncodeColors(encode.NewColors()))
	}
	return res
}

type ResolveConfig struct {
	*MainConfig
	Raw bool `cli:"name=raw desc='emit the unresolved tree'"`

	Resolve *cli.Command
}

type GetConfig struct {
	*MainConfig

	Get *cli.Command
}

type DiffConfig struct {
	*MainConfig
	Structural bool `cli:"name=s aliases=structural desc='emit an RFC 7386 merge patch'"`

	Diff *cli.Command
}

type QueryConfig struct {
	*MainConfig

	Query *cli.Command
}
