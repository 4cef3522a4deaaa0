package isbn

import "regexp"

// The two shapes are scanned independently: 978/979-prefixed 13-digit
// runs and 10-character runs ending in a digit or X, each allowing
// single hyphen or space separators and an optional ISBN label.
var (
	re13    = regexp.MustCompile(`(?i)\b(?:ISBN(?:-13)?:?\s*)?97[89](?:[- ]?[0-9]){10}\b`)
	re10    = regexp.MustCompile(`(?i)\b(?:ISBN(?:-10)?:?\s*)?[0-9](?:[- ]?[0-9]){8}[- ]?[0-9X]\b`)
	reLabel = regexp.MustCompile(`(?i)^ISBN(?:-1[03])?:?\s*`)
)

// Extract scans free-form text for checksum-valid ISBNs and returns
// them normalized, deduplicated, in first-acceptance order. The
// ISBN-13 scan runs first so an ambiguous digit run registers as 13
// digits; dedup keys the exact normalized string, so a 10-character
// identifier and its 13-character conversion stay independent hits.
func Extract(text string) []string {
	seen := make(map[string]bool)
	var out []string

	accept := func(raw string, want int) {
		s := Normalize(reLabel.ReplaceAllString(raw, ""))
		// Label stripping can change the effective length; re-check
		// before the checksum gate.
		if len(s) != want || !IsValid(s) || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	for _, m := range re13.FindAllString(text, -1) {
		accept(m, 13)
	}
	for _, m := range re10.FindAllString(text, -1) {
		accept(m, 10)
	}
	return out
}
