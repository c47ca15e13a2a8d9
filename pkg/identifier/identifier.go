// Package identifier resolves child references whose values were produced by
// two different storage generations: store-assigned ids and the free-text ids
// that predate them. Matching is pure string comparison with a strict-first
// fallback chain.
package identifier

import "strings"

// Candidate is the identifier pair carried by a child record.
type Candidate struct {
	StoreID  string
	LegacyID string
}

// MatchKind reports which strategy resolved a reference.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchStoreID
	MatchLegacyID
	// MatchContainment is the last-resort strategy covering historic rows
	// that stored a truncated or prefixed form of the id. It can produce
	// false positives and exists only until a one-time reference migration
	// rewrites legacy values to canonical ids.
	MatchContainment
)

// Normalize trims and lowercases an identifier for comparison.
func Normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Equal reports whether two identifier values are the same after
// normalization.
func Equal(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb
}

// Match resolves a stored child reference against a candidate, trying exact
// store-id equality, then legacy-id equality, then containment in either
// direction.
func Match(ref string, cand Candidate) MatchKind {
	norm := Normalize(ref)
	if norm == "" {
		return MatchNone
	}

	if Equal(norm, cand.StoreID) {
		return MatchStoreID
	}
	if Equal(norm, cand.LegacyID) {
		return MatchLegacyID
	}

	for _, id := range []string{Normalize(cand.StoreID), Normalize(cand.LegacyID)} {
		if id == "" {
			continue
		}
		if strings.Contains(id, norm) || strings.Contains(norm, id) {
			return MatchContainment
		}
	}
	return MatchNone
}

// Matches reports whether the reference resolves to the candidate by any
// strategy.
func Matches(ref string, cand Candidate) bool {
	return Match(ref, cand) != MatchNone
}

// Resolve returns the index of the first candidate the reference matches,
// preferring exact matches over containment across the whole list.
func Resolve(ref string, cands []Candidate) (int, MatchKind) {
	best := -1
	bestKind := MatchNone
	for i, cand := range cands {
		switch kind := Match(ref, cand); kind {
		case MatchStoreID, MatchLegacyID:
			return i, kind
		case MatchContainment:
			if best == -1 {
				best, bestKind = i, kind
			}
		}
	}
	return best, bestKind
}
