// Package naming implements the Galaxy role naming policy: the validity
// predicate used during discovery and the total normalization function that
// computes a compliant replacement for any input name.
//
// Galaxy role naming requirements:
//   - Only lowercase letters, digits, and underscores
//   - Cannot start with a digit
//   - No hyphens (must use underscores)
//   - Must be between 2 and 55 characters
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MinLength is the minimum length of a valid role name
	MinLength = 2
	// MaxLength is the maximum length of a valid role name
	MaxLength = 55
	// placeholderPrefix is prepended when normalization would otherwise
	// produce a name starting with a digit or shorter than MinLength
	placeholderPrefix = "role_"
)

// stripMarks decomposes Unicode input and removes combining marks, so
// accented letters transliterate to their base letter instead of being
// dropped by the ASCII filter below.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// IsValid reports whether name satisfies the Galaxy role naming policy.
func IsValid(name string) bool {
	if len(name) < MinLength || len(name) > MaxLength {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !isLower(c) && !isDigit(c) && c != '_' {
			return false
		}
	}
	return !isDigit(name[0])
}

// Normalize converts any name into one that satisfies IsValid. It is total
// and idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(name string) string {
	fixed := strings.ToLower(name)
	if out, _, err := transform.String(stripMarks, fixed); err == nil {
		fixed = out
	}
	fixed = strings.ReplaceAll(fixed, "-", "_")

	var b strings.Builder
	b.Grow(len(fixed))
	for i := 0; i < len(fixed); i++ {
		c := fixed[i]
		if isLower(c) || isDigit(c) || c == '_' {
			b.WriteByte(c)
		}
	}
	fixed = b.String()

	if fixed != "" && isDigit(fixed[0]) {
		fixed = placeholderPrefix + fixed
	}
	if len(fixed) < MinLength {
		fixed = placeholderPrefix + fixed
	}
	if len(fixed) > MaxLength {
		fixed = fixed[:MaxLength]
	}
	return fixed
}

func isLower(c byte) bool {
	return c >= 'a' && c <= 'z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
