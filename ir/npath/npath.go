package npath

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrName reports a member or segment name that does not match
	// [A-Za-z_][A-Za-z0-9_]*.
	ErrName = errors.New("invalid name")
	// ErrPath reports a malformed path or a traversal escaping the
	// document root.
	ErrPath = errors.New("invalid path")
)

// Up is the parent-traversal segment.
const Up = ".."

// IsName reports whether s is a valid member name: a letter or underscore
// followed by letters, digits, or underscores.
func IsName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_':
		case 'a' <= c && c <= 'z':
		case 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// IsAlias reports whether s is an alias segment: '$' followed by a name.
// Alias segments address sibling documents on the include alias stack and
// may only appear as the first segment of a path.
func IsAlias(s string) bool {
	return len(s) > 1 && s[0] == '$' && IsName(s[1:])
}

// Path addresses a node in a configuration tree.  A Path is an immutable
// value: an absolute/relative flag plus a sequence of segments, each a
// name, an alias segment, or "..".  The zero value is the empty relative
// path, the identity of Append.
type Path struct {
	abs  bool
	segs []string
}

// Root returns the absolute root path, printed as "/".
func Root() Path {
	return Path{abs: true}
}

// Parse parses text into a Path.
//
//	Parse("/")      → root
//	Parse("/a/b")   → absolute a, b
//	Parse("../x")   → relative up, x
//	Parse("")       → ErrPath
//	Parse("/a//b")  → ErrPath (empty segment)
//	Parse("/..")    → ErrPath (escapes root)
//	Parse("9x")     → ErrName
func Parse(text string) (Path, error) {
	if text == "" {
		return Path{}, fmt.Errorf("%w: empty path", ErrPath)
	}
	p := Path{}
	rest := text
	if rest[0] == '/' {
		p.abs = true
		rest = rest[1:]
	}
	if rest == "" {
		if p.abs {
			return p, nil
		}
		return Path{}, fmt.Errorf("%w: empty path", ErrPath)
	}
	segs := strings.Split(rest, "/")
	for i, seg := range segs {
		switch {
		case seg == "":
			return Path{}, fmt.Errorf("%w: empty segment in %q", ErrPath, text)
		case seg == Up:
		case IsName(seg):
		case IsAlias(seg):
			if i != 0 {
				return Path{}, fmt.Errorf("%w: alias segment %q not at start of %q", ErrPath, seg, text)
			}
		default:
			return Path{}, fmt.Errorf("%w: segment %q in path %q", ErrName, seg, text)
		}
	}
	norm, err := normalize(p.abs, segs)
	if err != nil {
		return Path{}, fmt.Errorf("%w: %q", err, text)
	}
	p.segs = norm
	return p, nil
}

// MustParse is Parse for known-good literals; it panics on error.
func MustParse(text string) Path {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

// normalize collapses x/.. pairs.  Escaping the root of an absolute path
// is ErrPath; a relative path keeps leading ".."s.
func normalize(abs bool, segs []string) ([]string, error) {
	res := make([]string, 0, len(segs))
	for _, seg := range segs {
		if seg != Up {
			res = append(res, seg)
			continue
		}
		if n := len(res); n > 0 && res[n-1] != Up {
			res = res[:n-1]
			continue
		}
		if abs {
			return nil, fmt.Errorf("%w: traversal escapes root", ErrPath)
		}
		res = append(res, Up)
	}
	if len(res) == 0 {
		return nil, nil
	}
	return res, nil
}

func (p Path) IsAbsolute() bool { return p.abs }
func (p Path) IsRelative() bool { return !p.abs }

// IsRoot reports whether p is the absolute root path.
func (p Path) IsRoot() bool { return p.abs && len(p.segs) == 0 }

// IsEmpty reports whether p is the empty relative path (the zero value).
func (p Path) IsEmpty() bool { return !p.abs && len(p.segs) == 0 }

func (p Path) Len() int { return len(p.segs) }

// Segments returns a copy of p's segments.
func (p Path) Segments() []string {
	if len(p.segs) == 0 {
		return nil
	}
	res := make([]string, len(p.segs))
	copy(res, p.segs)
	return res
}

// First returns the first segment, or "" for the root and empty paths.
func (p Path) First() string {
	if len(p.segs) == 0 {
		return ""
	}
	return p.segs[0]
}

// HasAlias reports whether p starts with an alias segment.
func (p Path) HasAlias() bool {
	return len(p.segs) > 0 && p.segs[0][0] == '$'
}

// Append composes p and q.  If q is absolute the result is q; otherwise
// the result is p's segments followed by q's, normalized.  Normalizing
// past the root of an absolute path is ErrPath.
func (p Path) Append(q Path) (Path, error) {
	if q.abs {
		return q, nil
	}
	segs := make([]string, 0, len(p.segs)+len(q.segs))
	segs = append(segs, p.segs...)
	segs = append(segs, q.segs...)
	norm, err := normalize(p.abs, segs)
	if err != nil {
		return Path{}, fmt.Errorf("%w: appending %q to %q", err, q, p)
	}
	return Path{abs: p.abs, segs: norm}, nil
}

// Parent returns the path addressing p's parent.
func (p Path) Parent() (Path, error) {
	return p.Append(Path{segs: []string{Up}})
}

// Child returns p extended by one name segment.
func (p Path) Child(name string) (Path, error) {
	if !IsName(name) {
		return Path{}, fmt.Errorf("%w: %q", ErrName, name)
	}
	return p.Append(Path{segs: []string{name}})
}

// String emits the canonical form: a leading '/' iff absolute, the root
// as "/", the empty relative path as "".
func (p Path) String() string {
	joined := strings.Join(p.segs, "/")
	if p.abs {
		return "/" + joined
	}
	return joined
}

// Equal reports structural equality.
func (p Path) Equal(q Path) bool {
	if p.abs != q.abs || len(p.segs) != len(q.segs) {
		return false
	}
	for i := range p.segs {
		if p.segs[i] != q.segs[i] {
			return false
		}
	}
	return true
}
