package confkit

import (
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"

	"github.com/confkit/confkit/encode"
	"github.com/confkit/confkit/ir"
)

// StructuralDiff returns the RFC 7386 merge patch that turns a's
// document form into b's.
func StructuralDiff(a, b *ir.Node) ([]byte, error) {
	da, err := encode.String(a, encode.AsDocument(true), encode.Compact(true))
	if err != nil {
		return nil, err
	}
	db, err := encode.String(b, encode.AsDocument(true), encode.Compact(true))
	if err != nil {
		return nil, err
	}
	patch, err := jsonpatch.CreateMergePatch([]byte(da), []byte(db))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ir.ErrParse, err)
	}
	return patch, nil
}

// Equivalent reports whether two trees encode to semantically equal
// documents, ignoring member order.
func Equivalent(a, b *ir.Node) (bool, error) {
	da, err := encode.String(a, encode.AsDocument(true), encode.Compact(true))
	if err != nil {
		return false, err
	}
	db, err := encode.String(b, encode.AsDocument(true), encode.Compact(true))
	if err != nil {
		return false, err
	}
	return jsonpatch.Equal([]byte(da), []byte(db)), nil
}
