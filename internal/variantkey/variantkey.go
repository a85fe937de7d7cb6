// Package variantkey computes the normalized identity key of a product
// variant description. Two descriptions of the same real configuration,
// differing only in casing, accents or whitespace, always map to the same
// key, so reconciliation can match submitted descriptors against stored
// rows without trusting client-supplied identifiers.
package variantkey

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// EmptyToken is the sentinel a nil or empty attribute value normalizes to.
const EmptyToken = "-"

// Separator joins the key segments.
const Separator = "|"

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes one free-text attribute value: lowercase, strip
// diacritics, collapse runs of non-alphanumerics to single dashes, trim.
// Empty input (or input with no alphanumerics at all) yields EmptyToken.
func Normalize(value string) string {
	folded, _, err := transform.String(stripMarks, value)
	if err != nil {
		// Fall back to the raw value; normalization must never fail the caller.
		folded = value
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		} else {
			pendingSep = true
		}
	}

	if b.Len() == 0 {
		return EmptyToken
	}
	return b.String()
}

// NormalizePtr normalizes an optional attribute value.
func NormalizePtr(value *string) string {
	if value == nil {
		return EmptyToken
	}
	return Normalize(*value)
}

// Compute returns the deterministic composite key
// productID|brandID|size|model|material for one variant description.
// A nil brand contributes EmptyToken, same as any empty text attribute.
func Compute(productID uuid.UUID, brandID *uuid.UUID, size, model, material *string) string {
	brand := EmptyToken
	if brandID != nil {
		brand = brandID.String()
	}
	segments := []string{
		productID.String(),
		brand,
		NormalizePtr(size),
		NormalizePtr(model),
		NormalizePtr(material),
	}
	return strings.Join(segments, Separator)
}
