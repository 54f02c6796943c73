package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/oracle"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/logger"
)

func TestHeuristic(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		intent model.Intent
	}{
		{"cancel", "ya no, cancela eso", model.IntentCancel},
		{"search by folio", "cómo va el INS-000042", model.IntentSearch},
		{"greeting only", "buenos días", model.IntentGreeting},
		{"close", "ya quedó, gracias", model.IntentClose},
		{"problem", "no funciona el aire acondicionado", model.IntentNewIncident},
		{"other", "jajaja ok", model.IntentOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Heuristic(tc.text)
			assert.Equal(t, tc.intent, got.Intent)
			assert.Equal(t, "heuristic", got.Source)
			assert.Less(t, got.Confidence, 0.7, "heuristic never reaches the oracle confidence band")
		})
	}
}

func TestHeuristicHints(t *testing.T) {
	got := Heuristic("no hay agua caliente en la 1205")
	assert.Equal(t, model.IntentNewIncident, got.Intent)
	assert.Equal(t, "1205", got.Hints.PlaceHint)
	assert.True(t, got.Hints.MaybeIncident)
	assert.Equal(t, 0.55, got.Confidence, "problem plus room token is a strong signal")

	got = Heuristic("no sirve el elevador")
	assert.Equal(t, 0.35, got.Confidence, "problem without a room token stays weak")

	// A bare room number is not a problem statement, but it is a hint.
	got = Heuristic("1205")
	assert.Equal(t, model.IntentOther, got.Intent)
	assert.True(t, got.Hints.MaybeIncident)
}

type fakeIntentOracle struct {
	oracle.Client
	result *oracle.TopLevelResult
	err    error
	calls  int
}

func (f *fakeIntentOracle) ClassifyTopLevel(ctx context.Context, text string, octx oracle.Context) (*oracle.TopLevelResult, error) {
	f.calls++
	return f.result, f.err
}

func newTestRouter(t *testing.T, oracleClient oracle.Client) *Router {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)
	return NewRouter(oracleClient, log)
}

func TestRouterPrefersOracle(t *testing.T) {
	fake := &fakeIntentOracle{result: &oracle.TopLevelResult{
		Intent:     model.IntentSearch,
		Confidence: 0.9,
	}}
	r := newTestRouter(t, fake)

	got := r.Classify(context.Background(), "no hay agua en la 1205", oracle.Context{})
	assert.Equal(t, model.IntentSearch, got.Intent)
	assert.Equal(t, "oracle", got.Source)
	assert.Empty(t, got.FallbackReason)
	assert.Equal(t, 1, fake.calls)

	// Heuristic hints the oracle missed are merged in.
	assert.Equal(t, "1205", got.Hints.PlaceHint)
	assert.True(t, got.Hints.MaybeIncident)
}

func TestRouterFallsBackOnOracleError(t *testing.T) {
	fake := &fakeIntentOracle{err: assert.AnError}
	r := newTestRouter(t, fake)

	got := r.Classify(context.Background(), "no hay agua en la 1205", oracle.Context{})
	assert.Equal(t, model.IntentNewIncident, got.Intent)
	assert.Equal(t, "heuristic", got.Source)
	assert.NotEmpty(t, got.FallbackReason)
}

func TestRouterWithoutOracle(t *testing.T) {
	r := newTestRouter(t, nil)

	got := r.Classify(context.Background(), "hola buen día", oracle.Context{})
	assert.Equal(t, model.IntentGreeting, got.Intent)
	assert.Equal(t, "heuristic", got.Source)
}

func TestRouterKeepsOracleHints(t *testing.T) {
	fake := &fakeIntentOracle{result: &oracle.TopLevelResult{
		Intent:     model.IntentNewIncident,
		Confidence: 0.85,
		Hints:      model.IntentHints{PlaceHint: "801", AreaHint: "maintenance"},
	}}
	r := newTestRouter(t, fake)

	got := r.Classify(context.Background(), "se rompió algo en la 1205", oracle.Context{})
	assert.Equal(t, "801", got.Hints.PlaceHint, "oracle hint is not overwritten")
	assert.Equal(t, "maintenance", got.Hints.AreaHint)
}
