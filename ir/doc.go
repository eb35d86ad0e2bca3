// Package ir holds the configuration tree representation: a rooted tree
// of nodes, each a literal value, an ordered object, a reference to
// another node, or a derivation of base objects.  Trees are built by
// package parse, rewritten to resolved form by package eval, and emitted
// by package encode.
package ir
