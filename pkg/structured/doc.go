// Package structured holds the codec used for every structured-data form
// field: a typed decoder that callers can degrade to an empty collection,
// a compact encoder for bound fields, and the canonical multi-line layout
// applied by the Formatter when a field is loaded or loses focus.
package structured
