// Package session wires the editors of a product or course form together.
//
// A Session formats every structured field once, then builds one editor per
// binding whose field is present in the form. Bindings whose field is
// missing are skipped so one absent field never disables the others. Hosts
// feed UI interactions back through Apply and re-render from View.
package session
