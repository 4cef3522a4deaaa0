// Package isbn implements detection, validation, conversion and
// formatting of ISBN-10 and ISBN-13 identifiers. Everything here is
// pure: malformed input yields false or an empty result, never an
// error.
package isbn

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

// Normalize strips whitespace and hyphens and uppercases the rest, so
// a trailing "x" check digit becomes "X". It performs no validation.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r == '-' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// IsValid10 reports whether s is a checksum-valid ISBN-10. The input
// must already be normalized; positions 0..8 are weighted 10 down to
// 2, the check digit counts once, with X worth 10.
func IsValid10(s string) bool {
	if len(s) != 10 {
		return false
	}
	sum := 0
	for i := 0; i < 9; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		sum += int(c-'0') * (10 - i)
	}
	switch c := s[9]; {
	case c == 'X':
		sum += 10
	case c >= '0' && c <= '9':
		sum += int(c - '0')
	default:
		return false
	}
	return sum%11 == 0
}

// IsValid13 reports whether s is a checksum-valid ISBN-13: thirteen
// decimal digits with alternating 1/3 weights summing to 0 mod 10.
func IsValid13(s string) bool {
	if len(s) != 13 {
		return false
	}
	sum := 0
	for i := 0; i < 13; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return sum%10 == 0
}

// IsValid normalizes raw and dispatches on length. 13-character forms
// must carry the 978 or 979 bookland prefix.
func IsValid(raw string) bool {
	s := Normalize(raw)
	switch len(s) {
	case 10:
		return IsValid10(s)
	case 13:
		if !strings.HasPrefix(s, "978") && !strings.HasPrefix(s, "979") {
			return false
		}
		return IsValid13(s)
	default:
		return false
	}
}

// To13 converts an ISBN-10 to its ISBN-13 form by prepending 978 and
// recomputing the check digit. Returns an empty string if the input is
// not a valid ISBN-10.
func To13(raw string) string {
	s := Normalize(raw)
	if !IsValid10(s) {
		return ""
	}
	base := "978" + s[:9]
	sum := 0
	for i := 0; i < len(base); i++ {
		d := int(base[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	check := (10 - sum%10) % 10
	return base + strconv.Itoa(check)
}

// Format hyphenates an ISBN for display: 3-1-3-5-1 for ISBN-13 and
// 1-3-5-1 for ISBN-10. This is a fixed cosmetic split, not a
// registrant-range lookup. Anything else is returned unchanged.
func Format(raw string) string {
	s := Normalize(raw)
	switch len(s) {
	case 13:
		return s[:3] + "-" + s[3:4] + "-" + s[4:7] + "-" + s[7:12] + "-" + s[12:]
	case 10:
		return s[:1] + "-" + s[1:4] + "-" + s[4:9] + "-" + s[9:]
	default:
		return raw
	}
}

// SearchURL builds the external catalog search link for an ISBN. Pure
// string formatting, no network call.
func SearchURL(raw string) string {
	return "https://openlibrary.org/search?isbn=" + url.QueryEscape(Normalize(raw))
}
