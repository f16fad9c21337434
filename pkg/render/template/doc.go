// Package template defines the seam between renderers and a template
// engine. The pongo subpackage provides the default implementation.
package template
