package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Parse     bool
	Include   bool
	ExpandEnv bool
	Resolve   bool
}

var d *debug

func init() {
	d = &debug{}
	d.Parse = boolEnv("CONFKIT_DEBUG_PARSE")
	d.Include = boolEnv("CONFKIT_DEBUG_INCLUDE")
	d.ExpandEnv = boolEnv("CONFKIT_DEBUG_EXPAND_ENV")
	d.Resolve = boolEnv("CONFKIT_DEBUG_RESOLVE")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Parse() bool {
	return d.Parse
}
func Include() bool {
	return d.Include
}
func ExpandEnv() bool {
	return d.ExpandEnv
}
func Resolve() bool {
	return d.Resolve
}
