package libdiff

import (
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Diff computes a character-level diff between two rendered documents,
// with semantic cleanup applied.
func Diff(from, to string) []diffpatch.Diff {
	dmp := diffpatch.New()
	diffs := dmp.DiffMain(from, to, true)
	return dmp.DiffCleanupSemantic(diffs)
}

// Sprint renders diffs inline: inserted text is prefixed with '+' and
// deleted text with '-'; with color, inserts are green and deletes red
// (DiffPrettyText) and no markers are written.
func Sprint(diffs []diffpatch.Diff, color bool) string {
	if color {
		return diffpatch.New().DiffPrettyText(diffs)
	}
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffInsert:
			b.WriteString("+")
			b.WriteString(d.Text)
		case diffpatch.DiffDelete:
			b.WriteString("-")
			b.WriteString(d.Text)
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// Equal reports whether the diff carries no insert or delete.
func Equal(diffs []diffpatch.Diff) bool {
	for _, d := range diffs {
		if d.Type != diffpatch.DiffEqual {
			return false
		}
	}
	return true
}
