// Package gomap projects resolved configuration trees onto Go records:
// required and optional scalar loaders with validators, container
// loaders driven by construction callbacks, and the store counterparts
// writing records back into objects.
package gomap
