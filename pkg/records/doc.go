// Package records implements the repeated-record editor: an ordered list of
// uniform records bound to one structured form field. The list is built from
// the field once, mutated through Add, Edit and Delete, and written back to
// the field in compact form after every mutation.
//
// Records are addressed by synthetic identifiers assigned when they are
// decoded or added. Positions are only used for display and serialization
// order, so an event raised against a record that has since been deleted
// fails with ErrUnknownRecord instead of landing on its neighbour.
//
// Attributes present in stored content but missing from the shape are kept
// on the record and written back untouched.
package records
