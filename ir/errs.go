package ir

import (
	"errors"

	"github.com/confkit/confkit/ir/npath"
)

var (
	ErrName = npath.ErrName
	ErrPath = npath.ErrPath

	// ErrParse reports malformed input, a wrong member shape, or a
	// forbidden collision.
	ErrParse = errors.New("parse error")
	// ErrEnv reports an unknown or malformed ${...} substitution.
	ErrEnv = errors.New("environment error")
	// ErrInclude reports a missing or unreadable include, an include
	// cycle, or a destination collision.
	ErrInclude = errors.New("include error")
	// ErrIO reports an underlying file read failure.
	ErrIO = errors.New("io error")
	// ErrUnresolved reports a reference target still missing at the
	// resolution fixed point.
	ErrUnresolved = errors.New("unresolved reference")
	// ErrCycle reports unresolved nodes remaining after a pass that
	// made no progress.
	ErrCycle = errors.New("reference cycle")
	// ErrMerge reports a derivation base resolving to a non-object.
	ErrMerge = errors.New("merge error")
	// ErrValidation reports a consumer validator or typed-load failure.
	ErrValidation = errors.New("validation error")
)
