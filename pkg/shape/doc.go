// Package shape describes the uniform records held by repeated-record
// editors: which attributes a record carries, in which order, with which
// defaults, and how raw control input is coerced before it is stored.
//
// Built-in shapes for the landing-page fields ship embedded as YAML; callers
// can load additional documents with LoadFS and layer them on top with Merge.
package shape
