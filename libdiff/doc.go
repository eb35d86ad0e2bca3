// Package libdiff renders textual diffs between canonical documents.
package libdiff
