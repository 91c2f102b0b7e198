// Package normalize canonicalizes free-text restaurant names and addresses so
// the matcher can compare listings against government registry records. All
// functions are pure and total: bad input yields empty fields, never an error.
package normalize

import (
	"regexp"
	"strings"
)

// corporateSuffixes are stripped from the tail of a business name, repeatedly,
// so "Oasis Grill Co Inc" reduces to "oasis grill".
var corporateSuffixes = map[string]bool{
	"inc":         true,
	"corp":        true,
	"llc":         true,
	"co":          true,
	"company":     true,
	"corporation": true,
}

// streetTypes maps long street-type tokens to the canonical abbreviation used
// on both sides of a comparison.
var streetTypes = map[string]string{
	"street":    "st",
	"avenue":    "ave",
	"boulevard": "blvd",
	"road":      "rd",
	"place":     "pl",
	"drive":     "dr",
	"lane":      "ln",
	"court":     "ct",
}

var directionals = map[string]string{
	"north":     "n",
	"south":     "s",
	"east":      "e",
	"west":      "w",
	"northeast": "ne",
	"northwest": "nw",
	"southeast": "se",
	"southwest": "sw",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeName lowercases a business name, folds punctuation, expands the
// ampersand, and strips trailing corporate suffixes.
func NormalizeName(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "-", " ")

	var b strings.Builder
	for _, r := range s {
		switch r {
		case '.', ',', '\'', '"':
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	s = collapseSpaces(b.String())

	tokens := strings.Fields(s)
	for len(tokens) > 1 && corporateSuffixes[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

// NormalizeAddress lowercases an address, folds punctuation to spaces,
// abbreviates street types and directionals, and collapses the NY/NYC
// spellings to "new york". Government registry addresses are hand-typed, so
// the goal is a comparable form, not a postal-valid one.
func NormalizeAddress(address string) string {
	s := strings.ToLower(address)
	s = strings.ReplaceAll(s, ".", " ")
	s = strings.ReplaceAll(s, ",", " ")
	s = collapseSpaces(s)

	s = strings.ReplaceAll(s, "new york city", "new york")

	tokens := strings.Fields(s)
	for i, tok := range tokens {
		if abbr, ok := streetTypes[tok]; ok {
			tokens[i] = abbr
			continue
		}
		if abbr, ok := directionals[tok]; ok {
			tokens[i] = abbr
			continue
		}
		if tok == "ny" || tok == "nyc" {
			tokens[i] = "new york"
		}
	}
	return strings.Join(tokens, " ")
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
