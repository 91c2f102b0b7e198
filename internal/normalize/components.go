package normalize

import (
	"regexp"
	"strings"
)

// AddressParts holds the components extracted from a free-text address.
// Absent components are empty strings.
type AddressParts struct {
	Number string
	Street string
	City   string
	State  string
	Zip    string
}

var (
	leadingNumberRe = regexp.MustCompile(`^\s*(\d+)`)
	zipRe           = regexp.MustCompile(`\b(\d{5})(?:-\d{4})?\b`)
)

// usStates is the two-letter token whitelist for state detection. Matching on
// an enumerated set avoids false positives from street tokens like "ST".
var usStates = map[string]bool{
	"al": true, "ak": true, "az": true, "ar": true, "ca": true, "co": true,
	"ct": true, "de": true, "fl": true, "ga": true, "hi": true, "id": true,
	"il": true, "in": true, "ia": true, "ks": true, "ky": true, "la": true,
	"me": true, "md": true, "ma": true, "mi": true, "mn": true, "ms": true,
	"mo": true, "mt": true, "ne": true, "nv": true, "nh": true, "nj": true,
	"nm": true, "ny": true, "nc": true, "nd": true, "oh": true, "ok": true,
	"or": true, "pa": true, "ri": true, "sc": true, "sd": true, "tn": true,
	"tx": true, "ut": true, "vt": true, "va": true, "wa": true, "wv": true,
	"wi": true, "wy": true, "dc": true,
}

// ExtractComponents splits a free-text address into comparable parts.
// The street number is the leading digit run, the street name runs from the
// number to the next comma, the ZIP is the first five-digit token, and the
// state is the first whitelisted two-letter token.
func ExtractComponents(address string) AddressParts {
	parts := AddressParts{}
	if strings.TrimSpace(address) == "" {
		return parts
	}

	if m := leadingNumberRe.FindStringSubmatch(address); m != nil {
		parts.Number = m[1]
	}

	segments := strings.Split(address, ",")
	first := segments[0]
	street := first
	if parts.Number != "" {
		if idx := strings.Index(first, parts.Number); idx >= 0 {
			street = first[idx+len(parts.Number):]
		}
	}
	parts.Street = NormalizeAddress(street)

	if m := zipRe.FindStringSubmatch(address); m != nil {
		parts.Zip = m[1]
	}

	for _, tok := range strings.Fields(strings.ToLower(address)) {
		tok = strings.Trim(tok, ".,")
		if len(tok) == 2 && usStates[tok] {
			parts.State = strings.ToUpper(tok)
			break
		}
	}

	if len(segments) > 1 {
		parts.City = cityFromSegment(segments[1], parts)
	}

	return parts
}

// cityFromSegment takes the segment after the street and strips state and ZIP
// tokens; whatever remains is treated as the city.
func cityFromSegment(segment string, parts AddressParts) string {
	var kept []string
	for _, tok := range strings.Fields(strings.ToLower(segment)) {
		trimmed := strings.Trim(tok, ".,")
		if parts.Zip != "" && strings.HasPrefix(trimmed, parts.Zip) {
			continue
		}
		if len(trimmed) == 2 && usStates[trimmed] {
			continue
		}
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, " ")
}
