// Package certid generates human-scannable certificate identifiers of the
// form CERT-<studentId>-<4digits>.
//
// The 4-digit suffix gives only 9000 possibilities per student, so the result
// is not unique by construction. The store enforces uniqueness and the
// issuing service retries generation on collision. IDs are opaque tokens:
// a studentId may itself contain the delimiter, so nothing must ever parse a
// studentId back out of a generated ID.
package certid

import (
	"fmt"
	"math/rand/v2"
)

const (
	// Prefix starts every generated certificate ID.
	Prefix = "CERT"

	delimiter = "-"
	suffixMin = 1000
	suffixMax = 9999
)

// Generate returns a candidate certificate ID for the given student.
func Generate(studentID string) string {
	suffix := suffixMin + rand.IntN(suffixMax-suffixMin+1)
	return fmt.Sprintf("%s%s%s%s%04d", Prefix, delimiter, studentID, delimiter, suffix)
}
