package place

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
)

// Resolution kinds returned by Resolve.
type ResolutionKind int

const (
	// ResolvedExact means the text matched a catalog label or alias.
	ResolvedExact ResolutionKind = iota
	// ResolvedSuggestions means ranked fuzzy candidates need a user pick.
	ResolvedSuggestions
	// ResolvedFreeform means the text was accepted without catalog backing.
	ResolvedFreeform
	// ResolvedNone means the text does not look like a place at all.
	ResolvedNone
)

// Resolution is the outcome of resolving free text to a place.
type Resolution struct {
	Kind        ResolutionKind
	Place       string
	Suggestions []model.PlaceCandidate
}

const (
	maxSuggestions = 3
	// minSimilarity is the floor below which a fuzzy candidate is noise.
	minSimilarity = 0.55
)

var roomTokenRe = regexp.MustCompile(`\b(\d{3,4})\b`)

// placeKeywords mark text with place-like structure even when the catalog
// has no match. Hotel layouts always include ad hoc staff-only locations.
var placeKeywords = []string{
	"cuarto", "habitacion", "habitación", "suite", "piso", "nivel", "area", "área",
	"bodega", "almacen", "almacén", "cuarto de maquinas", "azotea", "sotano", "sótano",
	"entrada", "salida", "escalera", "rampa", "caseta", "room", "floor", "basement",
}

var prepositionalRe = regexp.MustCompile(`(?i)\b(?:en|junto a|frente a|atras de|atrás de|cerca de|detras de|detrás de|sobre|bajo)\s+\S+`)

// Resolver resolves free text against a catalog with graduated freeform
// acceptance.
type Resolver struct {
	catalog *Catalog
}

// NewResolver creates a resolver over the given catalog.
func NewResolver(catalog *Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Catalog exposes the underlying catalog.
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// RoomToken extracts a 3-4 digit room number token, if present.
func RoomToken(text string) (string, bool) {
	m := roomTokenRe.FindString(text)
	return m, m != ""
}

// RoomLabel formats a room token as a canonical room place.
func RoomLabel(token string) string {
	return fmt.Sprintf("Habitación %s", token)
}

// LooksLikePlace reports whether text has place-like structure: a room
// token, a known place keyword, or a prepositional location pattern.
func LooksLikePlace(text string) bool {
	if _, ok := RoomToken(text); ok {
		return true
	}
	norm := Normalize(text)
	for _, kw := range placeKeywords {
		if strings.Contains(norm, Normalize(kw)) {
			return true
		}
	}
	return prepositionalRe.MatchString(text)
}

// Resolve maps free text to a place. attempt is the session's running count
// of unresolved tries for the current prompt: the first refusal returns
// suggestions or none, a repeat attempt degrades to freeform acceptance
// when the text still looks place-like.
func (r *Resolver) Resolve(text string, attempt int) Resolution {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Resolution{Kind: ResolvedNone}
	}

	// Room numbers are canonical without catalog backing.
	if token, ok := RoomToken(trimmed); ok && isMostlyRoomRef(trimmed) {
		return Resolution{Kind: ResolvedExact, Place: RoomLabel(token)}
	}

	if label, ok := r.catalog.Lookup(trimmed); ok {
		return Resolution{Kind: ResolvedExact, Place: label}
	}

	if suggestions := r.fuzzyCandidates(trimmed); len(suggestions) > 0 {
		return Resolution{Kind: ResolvedSuggestions, Suggestions: suggestions}
	}

	// Graduated freeform acceptance: place-like text is accepted after one
	// refusal, anything is accepted after two. Hotel layouts always include
	// ad hoc staff-only locations the catalog cannot enumerate.
	if LooksLikePlace(trimmed) && attempt >= 1 {
		return Resolution{Kind: ResolvedFreeform, Place: trimmed}
	}
	if attempt >= 2 {
		return Resolution{Kind: ResolvedFreeform, Place: trimmed}
	}

	return Resolution{Kind: ResolvedNone}
}

// fuzzyCandidates ranks catalog labels by levenshtein similarity.
// Candidates are never auto-selected; the caller must prompt.
func (r *Resolver) fuzzyCandidates(text string) []model.PlaceCandidate {
	norm := Normalize(text)
	var candidates []model.PlaceCandidate
	for _, label := range r.catalog.Labels() {
		score := similarity(norm, Normalize(label))
		if score >= minSimilarity && score < 1.0 {
			candidates = append(candidates, model.PlaceCandidate{
				Label: label,
				Score: score,
				Via:   "fuzzy",
			})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Label < candidates[j].Label
	})
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	return candidates
}

// similarity converts edit distance to a 0..1 score.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(d)/float64(longest)
}

// isMostlyRoomRef reports whether the text is essentially a room reference
// ("1205", "hab 1205", "cuarto 304") rather than a sentence containing a
// number.
func isMostlyRoomRef(text string) bool {
	norm := Normalize(text)
	norm = roomTokenRe.ReplaceAllString(norm, "")
	norm = strings.TrimSpace(norm)
	if norm == "" {
		return true
	}
	for _, prefix := range []string{"hab", "hab.", "habitacion", "cuarto", "room", "suite", "la", "el", "en", "en la", "en el"} {
		if norm == prefix {
			return true
		}
	}
	return len(norm) <= 4
}
