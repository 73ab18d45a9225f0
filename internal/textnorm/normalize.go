// Package textnorm provides the text canonicalization and fingerprinting
// used for duplicate detection. All duplicate checks operate on the
// normalized form so that casing, accents and punctuation never mask
// a repeated item.
package textnorm

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FingerprintLen is the fixed width, in hex characters, of a content
// fingerprint (64 bits of the SHA-256 digest).
const FingerprintLen = 16

// stripMarks decomposes text and removes combining marks, turning
// "café" into "cafe".
var stripMarks = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize canonicalizes text for comparison: lowercase, diacritics
// stripped, every non-alphanumeric rune replaced by a space, and runs of
// whitespace collapsed to a single space.
func Normalize(s string) string {
	s = strings.ToLower(s)

	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Fingerprint returns the fixed-width hex fingerprint of the normalized
// form of s. An empty normalized string yields an empty fingerprint.
func Fingerprint(s string) string {
	n := Normalize(s)
	if n == "" {
		return ""
	}

	sum := sha256.Sum256([]byte(n))
	return hex.EncodeToString(sum[:])[:FingerprintLen]
}

// WordCount reports the number of whitespace-separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
