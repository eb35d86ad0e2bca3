// Package confkit is a layered, reference-resolving configuration
// engine.  Documents in a JSON-like form carry typed members — literal
// values, references to other nodes, and derived objects merging base
// objects with overrides — plus cross-file includes and ${NAME}
// environment substitution.  Load reads a document and returns the
// fully resolved tree; package gomap projects it onto Go records.
//
//	root, err := confkit.Load("service.json")
//	if err != nil { ... }
//	var port int
//	err = gomap.LoadRequired(&port, "port", root.Member("server"),
//		gomap.Range(1, 65535))
package confkit
