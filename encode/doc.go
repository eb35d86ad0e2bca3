// Package encode serializes configuration trees back to the canonical
// document form, inverting the reader's member-name sigils.
package encode
