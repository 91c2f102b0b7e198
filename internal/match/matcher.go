// Package match links restaurant listings to registry records. Three passes
// run in strict order, each loosening the name comparison while tightening
// the location requirement, so noisy registry text cannot inflate false
// positives. The first record a pass accepts wins; ambiguity is resolved by
// iteration order, never reported as an error.
package match

import (
	"strings"

	"dinehalal/internal/normalize"
	"dinehalal/internal/registry"
	"dinehalal/internal/restaurants"
)

// Pass identifies which matching pass accepted a record.
type Pass string

const (
	PassExact   Pass = "exact"
	PassSimilar Pass = "similar"
	PassKeyword Pass = "keyword"
)

// keywordStopwords are too generic to link names on their own.
var keywordStopwords = map[string]bool{
	"the": true, "and": true, "of": true, "in": true,
	"halal": true, "food": true, "restaurant": true,
}

// FindMatch returns the registry record matching the restaurant, or nil.
// At most one record is returned; within a pass the first record in registry
// iteration order wins.
func FindMatch(r restaurants.Restaurant, regs []registry.Establishment) (*registry.Establishment, Pass) {
	if len(regs) == 0 {
		return nil, ""
	}

	cand := newCandidate(r)

	for i := range regs {
		if cand.exactMatch(&regs[i]) {
			return &regs[i], PassExact
		}
	}
	for i := range regs {
		if cand.similarMatch(&regs[i]) {
			return &regs[i], PassSimilar
		}
	}
	for i := range regs {
		if cand.keywordMatch(&regs[i]) {
			return &regs[i], PassKeyword
		}
	}
	return nil, ""
}

// candidate caches the restaurant's normalized forms across passes.
type candidate struct {
	name    string
	address string
	parts   normalize.AddressParts
}

func newCandidate(r restaurants.Restaurant) candidate {
	return candidate{
		name:    normalize.NormalizeName(r.Name),
		address: normalize.NormalizeAddress(r.Vicinity),
		parts:   normalize.ExtractComponents(r.Vicinity),
	}
}

// exactMatch requires equal-or-contained names plus a related address:
// address containment, equal ZIPs, or the same street number on overlapping
// street names.
func (c candidate) exactMatch(e *registry.Establishment) bool {
	if !namesEqual(c.name, normalize.NormalizeName(e.Name)) {
		return false
	}
	return c.addressRelated(e)
}

func (c candidate) addressRelated(e *registry.Establishment) bool {
	regAddr := normalize.NormalizeAddress(e.Address)
	if containsEither(c.address, regAddr) {
		return true
	}
	regParts := normalize.ExtractComponents(e.Address)
	if c.parts.Zip != "" && c.parts.Zip == regParts.Zip {
		return true
	}
	return c.parts.Number != "" && c.parts.Number == regParts.Number &&
		containsEither(c.parts.Street, regParts.Street)
}

// similarMatch loosens the name test but insists on the same street number.
func (c candidate) similarMatch(e *registry.Establishment) bool {
	if c.parts.Number == "" {
		return false
	}
	if !namesSimilar(c.name, normalize.NormalizeName(e.Name)) {
		return false
	}
	return c.parts.Number == normalize.ExtractComponents(e.Address).Number
}

// keywordMatch links on a single shared significant token, so the ZIP codes
// must agree; weak name evidence needs strong location evidence.
func (c candidate) keywordMatch(e *registry.Establishment) bool {
	if c.parts.Zip == "" {
		return false
	}
	if c.parts.Zip != normalize.ExtractComponents(e.Address).Zip {
		return false
	}
	return shareKeyword(c.name, normalize.NormalizeName(e.Name))
}

func namesEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a == b || containsEither(a, b)
}

func namesSimilar(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if containsEither(a, b) {
		return true
	}
	if strings.TrimPrefix(a, "the ") == strings.TrimPrefix(b, "the ") {
		return true
	}
	return len(a) >= 6 && len(b) >= 6 && a[:5] == b[:5]
}

func shareKeyword(a, b string) bool {
	bTokens := make(map[string]bool)
	for _, tok := range strings.Fields(b) {
		bTokens[tok] = true
	}
	for _, tok := range strings.Fields(a) {
		if len(tok) > 3 && !keywordStopwords[tok] && bTokens[tok] {
			return true
		}
	}
	return false
}

func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
