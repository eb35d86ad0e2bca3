// Package parse reads configuration documents into unresolved trees.
//
// A document is a JSON, JSONC, or YAML object with a required "config"
// member, an optional "env" member of scalar overrides for ${NAME}
// expansion, and an optional "includes" array pulling in further
// documents.  Member names inside "config" select node kinds: "#name"
// is a literal value, "&name" a reference path, and a plain name an
// object — or a derived object when it carries a "base" member.
package parse
