// Package splitter decides whether one inbound message describes one or
// several independent problems.
package splitter

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/lang"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/oracle"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/place"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/logger"
)

// Splitter extracts incident fragments from a message. The oracle is the
// primary path; a local segmentation heuristic is the fallback.
type Splitter struct {
	oracle   oracle.Client
	resolver *place.Resolver
	logger   *logger.Logger
}

// New creates a splitter.
func New(oracleClient oracle.Client, resolver *place.Resolver, log *logger.Logger) *Splitter {
	return &Splitter{
		oracle:   oracleClient,
		resolver: resolver,
		logger:   log,
	}
}

// Split returns the independent problems in text. lastPlace is the most
// recently seen place in the conversation; fragments without their own
// place inherit it. Splitting is idempotent on already-atomic input.
func (s *Splitter) Split(ctx context.Context, text, lastPlace string) []model.Incident {
	if s.oracle != nil {
		incidents, err := s.oracle.SplitIncidents(ctx, text)
		if err != nil {
			s.logger.Warn("oracle split failed, using local segmentation", zap.Error(err))
		} else if len(incidents) > 0 {
			return s.inheritPlaces(incidents, lastPlace)
		}
	}

	incidents := s.localSplit(text)
	return s.inheritPlaces(incidents, lastPlace)
}

// LocalSplit runs only the fallback segmentation heuristic, without place
// inheritance. The state machine compares it against the oracle's reading
// to detect competing interpretations.
func (s *Splitter) LocalSplit(text string) []model.Incident {
	return s.localSplit(text)
}

// Colon patterns that must not be treated as separators: times of day
// ("3:30 pm") and host:port-like tokens.
var (
	timeColonRe = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)
	portColonRe = regexp.MustCompile(`\b[\w.\-]+:\d{2,5}\b`)
)

const colonGuard = "\x00"

// strongConnectors split unconditionally.
var strongConnectors = []string{";", "\n", " ademas ", " además ", " tambien hay ", " también hay "}

// localSplit is the fallback segmentation heuristic.
func (s *Splitter) localSplit(text string) []model.Incident {
	guarded := guardColons(text)

	fragments := []string{guarded}
	for _, conn := range strongConnectors {
		fragments = splitEach(fragments, conn)
	}
	// Colons not protected above act as separators ("cuarto 12: sin luz").
	fragments = splitEach(fragments, ":")

	// Conditional split on the conjunction: only when both sides
	// independently look like distinct problem statements, so a list inside
	// one request ("toallas y sábanas") stays together.
	fragments = splitConjunction(fragments, " y ")
	fragments = splitConjunction(fragments, " and ")

	incidents := make([]model.Incident, 0, len(fragments))
	for _, f := range fragments {
		f = strings.TrimSpace(unguardColons(f))
		if f == "" {
			continue
		}
		incidents = append(incidents, model.Incident{Text: f})
	}
	if len(incidents) == 0 {
		incidents = append(incidents, model.Incident{Text: strings.TrimSpace(text)})
	}
	return incidents
}

func guardColons(text string) string {
	protect := func(m string) string {
		return strings.ReplaceAll(m, ":", colonGuard)
	}
	text = timeColonRe.ReplaceAllStringFunc(text, protect)
	return portColonRe.ReplaceAllStringFunc(text, protect)
}

func unguardColons(text string) string {
	return strings.ReplaceAll(text, colonGuard, ":")
}

func splitEach(fragments []string, sep string) []string {
	var out []string
	for _, f := range fragments {
		for _, part := range strings.Split(f, sep) {
			if strings.TrimSpace(part) != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func splitConjunction(fragments []string, conj string) []string {
	var out []string
	for _, f := range fragments {
		left, right, found := strings.Cut(strings.ToLower(f), conj)
		if !found || !looksLikeDistinctProblem(left) || !looksLikeDistinctProblem(right) {
			out = append(out, f)
			continue
		}
		// Cut on the original casing at the same position.
		idx := len(left)
		out = append(out, f[:idx], f[idx+len(conj):])
	}
	return out
}

// looksLikeDistinctProblem reports whether a fragment can stand alone as an
// incident: it needs its own problem vocabulary, not just a noun.
func looksLikeDistinctProblem(fragment string) bool {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return false
	}
	return lang.LooksLikeProblem(fragment)
}

// inheritPlaces fills each fragment's place, carrying the most recently
// seen place onto fragments that do not state their own.
func (s *Splitter) inheritPlaces(incidents []model.Incident, lastPlace string) []model.Incident {
	current := lastPlace
	for i := range incidents {
		if incidents[i].Place != "" {
			if token, ok := place.RoomToken(incidents[i].Place); ok {
				incidents[i].Place = place.RoomLabel(token)
			}
			current = incidents[i].Place
			continue
		}
		if extracted, ok := s.extractPlace(incidents[i].Text); ok {
			incidents[i].Place = extracted
			current = extracted
			continue
		}
		incidents[i].Place = current
	}
	return incidents
}

// extractPlace pulls an explicit place out of a fragment's text.
func (s *Splitter) extractPlace(text string) (string, bool) {
	if token, ok := place.RoomToken(text); ok {
		return place.RoomLabel(token), true
	}
	if s.resolver == nil {
		return "", false
	}
	norm := place.Normalize(text)
	for _, label := range s.resolver.Catalog().Labels() {
		if strings.Contains(norm, place.Normalize(label)) {
			return label, true
		}
	}
	return "", false
}
