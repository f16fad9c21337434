// Package matrix implements the product comparison editor: competitors as
// columns, features as rows, and one cell per intersection.
//
// Each feature carries an explicit cell kind (boolean or text) fixed when
// the feature is created; legacy content without the tag is classified once
// while decoding. Cells are stored positionally, aligned with the competitor
// list. Adding a competitor does not extend existing rows; missing cells read
// as the kind's zero value until they are edited. Deleting competitor i
// splices position i out of every row long enough to have it, so
// len(row) <= len(competitors) holds after every operation.
package matrix
