package booking

import (
	"fmt"
	"strings"
)

// ReferencePrefix starts every public booking reference.
const ReferencePrefix = "BK-"

// MaxReferenceLength is the length of the reference for the largest int64 id.
const MaxReferenceLength = len(ReferencePrefix) + 19

// FormatReference derives the public reference from a booking id, e.g. BK-000042.
// Ids beyond six digits simply widen the number.
func FormatReference(id int64) string {
	return fmt.Sprintf("%s%06d", ReferencePrefix, id)
}

// NormalizeReference trims and upper-cases user input so "bk-000042 " matches.
func NormalizeReference(ref string) string {
	return strings.ToUpper(strings.TrimSpace(ref))
}

// NormalizePhone keeps digits and a single leading '+', dropping spaces,
// dashes, dots and parentheses.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var sb strings.Builder
	sb.Grow(len(phone))
	for i, r := range phone {
		switch {
		case r == '+' && i == 0:
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
