// Package eval turns unresolved configuration trees into resolved ones.
// It holds the environment-variable expander used while reading and the
// fixed-point resolver that eliminates reference and derived nodes.
package eval
