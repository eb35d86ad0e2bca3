package eval

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/confkit/confkit/debug"
	"github.com/confkit/confkit/ir"
	"github.com/confkit/confkit/ir/npath"
)

// Expander substitutes ${NAME} occurrences in string values.  The
// process environment is captured once at construction and never reread;
// overrides (dotenv files, a document's env section) take precedence over
// it.  Expansion is a single pass: substituted text is not rescanned.
type Expander struct {
	procEnv   map[string]string
	overrides map[string]string
}

// NewExpander captures the current process environment.
func NewExpander() *Expander {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	return &Expander{procEnv: env, overrides: map[string]string{}}
}

// NewExpanderFrom builds an expander over an explicit environment,
// ignoring the process environment.
func NewExpanderFrom(env map[string]string) *Expander {
	procEnv := make(map[string]string, len(env))
	for k, v := range env {
		procEnv[k] = v
	}
	return &Expander{procEnv: procEnv, overrides: map[string]string{}}
}

// Override binds name to value, shadowing the captured environment.
func (x *Expander) Override(name, value string) error {
	if !npath.IsName(name) {
		return fmt.Errorf("%w: override variable %q", ir.ErrEnv, name)
	}
	x.overrides[name] = value
	return nil
}

// LoadDotenv reads dotenv files and injects their entries as overrides.
func (x *Expander) LoadDotenv(filenames ...string) error {
	env, err := godotenv.Read(filenames...)
	if err != nil {
		return fmt.Errorf("%w: dotenv: %v", ir.ErrEnv, err)
	}
	if debug.ExpandEnv() {
		debug.Logf("dotenv loaded: %v\n", env)
	}
	for k, v := range env {
		if err := x.Override(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the binding for name, overrides first.
func (x *Expander) Lookup(name string) (string, bool) {
	if v, ok := x.overrides[name]; ok {
		return v, true
	}
	v, ok := x.procEnv[name]
	return v, ok
}

// Expand substitutes every ${NAME} in s.  A '$' not followed by '{' is
// literal.  An unterminated "${", a malformed variable name, or an unset
// variable is an error carrying the variable name.
func (x *Expander) Expand(s string) (string, error) {
	if !strings.Contains(s, "${") {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		if c != '$' || i+1 >= len(s) || s[i+1] != '{' {
			b.WriteByte(c)
			i++
			continue
		}
		end := strings.IndexByte(s[i+2:], '}')
		if end < 0 {
			return "", fmt.Errorf("%w: unterminated ${ in %q", ir.ErrEnv, s)
		}
		name := s[i+2 : i+2+end]
		if !npath.IsName(name) {
			return "", fmt.Errorf("%w: malformed variable name %q in %q", ir.ErrEnv, name, s)
		}
		v, ok := x.Lookup(name)
		if !ok {
			return "", fmt.Errorf("%w: variable %q is not set", ir.ErrEnv, name)
		}
		b.WriteString(v)
		i += 2 + end + 1
	}
	if debug.ExpandEnv() {
		debug.Logf("expanded %q -> %q\n", s, b.String())
	}
	return b.String(), nil
}
