package encode

// EncodeOption configures Encode.
type EncodeOption func(*encState)

// Indent sets the indent width; default 2.
func Indent(n int) EncodeOption {
	return func(es *encState) { es.indent = n }
}

// Compact emits everything on one line.
func Compact(v bool) EncodeOption {
	return func(es *encState) { es.compact = v }
}

// AsDocument wraps the emitted tree in a {"config": ...} document so the
// output reads back through the Reader.
func AsDocument(v bool) EncodeOption {
	return func(es *encState) { es.document = v }
}

// EncodeColors colorizes the output.
func EncodeColors(c *Colors) EncodeOption {
	return func(es *encState) { es.colors = c }
}
