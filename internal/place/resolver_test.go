package place

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
)

func newTestResolver() *Resolver {
	return NewResolver(DefaultCatalog())
}

func TestResolveRoomNumber(t *testing.T) {
	r := newTestResolver()

	for _, text := range []string{"1205", "hab 1205", "cuarto 1205", "la 1205"} {
		res := r.Resolve(text, 0)
		assert.Equal(t, ResolvedExact, res.Kind, text)
		assert.Equal(t, "Habitación 1205", res.Place, text)
	}
}

func TestResolveCatalogAlias(t *testing.T) {
	r := newTestResolver()

	res := r.Resolve("piscina", 0)
	assert.Equal(t, ResolvedExact, res.Kind)
	assert.Equal(t, "Alberca", res.Place)

	res = r.Resolve("Recepción", 0)
	assert.Equal(t, ResolvedExact, res.Kind)
	assert.Equal(t, "Lobby", res.Place)
}

func TestResolveNearMissYieldsSuggestions(t *testing.T) {
	r := newTestResolver()

	res := r.Resolve("alverca", 0)
	require.Equal(t, ResolvedSuggestions, res.Kind, "misspelling must never auto-select")
	require.NotEmpty(t, res.Suggestions)
	assert.Equal(t, "Alberca", res.Suggestions[0].Label)
	assert.LessOrEqual(t, len(res.Suggestions), 3)
}

func TestResolveGraduatedFreeformAcceptance(t *testing.T) {
	r := newTestResolver()

	// Place-like text is refused on the first attempt and accepted on the
	// second.
	placeLike := "bodega de blancos del piso 9"
	res := r.Resolve(placeLike, 0)
	assert.Equal(t, ResolvedNone, res.Kind)

	res = r.Resolve(placeLike, 1)
	assert.Equal(t, ResolvedFreeform, res.Kind)
	assert.Equal(t, placeLike, res.Place)

	// Arbitrary text needs one more refusal.
	odd := "zzz qqq"
	assert.Equal(t, ResolvedNone, r.Resolve(odd, 1).Kind)
	assert.Equal(t, ResolvedFreeform, r.Resolve(odd, 2).Kind)
}

func TestResolveEmpty(t *testing.T) {
	r := newTestResolver()
	assert.Equal(t, ResolvedNone, r.Resolve("   ", 5).Kind)
}

func TestLooksLikePlace(t *testing.T) {
	assert.True(t, LooksLikePlace("cuarto de máquinas"))
	assert.True(t, LooksLikePlace("junto a la entrada principal"))
	assert.True(t, LooksLikePlace("1205"))
	assert.False(t, LooksLikePlace("gracias"))
}

func TestResolveArea(t *testing.T) {
	cases := map[string]model.AreaCode{
		"mantenimiento": model.AreaMaintenance,
		"1":             model.AreaMaintenance,
		"ama de llaves": model.AreaHousekeeping,
		"limpieza":      model.AreaHousekeeping,
		"room service":  model.AreaRoomService,
		"seguridad":     model.AreaSecurity,
		"wifi":          model.AreaIT,
		"que vaya a sistemas por favor": model.AreaIT,
	}
	for text, want := range cases {
		code, ok := ResolveArea(text)
		require.True(t, ok, text)
		assert.Equal(t, want, code, text)
	}

	_, ok := ResolveArea("no tengo idea")
	assert.False(t, ok)
}

func TestResolveAreasMulti(t *testing.T) {
	codes := ResolveAreas("puede ser mantenimiento o limpieza")
	assert.Equal(t, []model.AreaCode{model.AreaMaintenance, model.AreaHousekeeping}, codes)

	codes = ResolveAreas("seguridad")
	assert.Equal(t, []model.AreaCode{model.AreaSecurity}, codes)

	assert.Empty(t, ResolveAreas("hola"))
}

func TestAreaMenuListsAllAreas(t *testing.T) {
	menu := AreaMenu()
	for _, code := range model.AllAreaCodes() {
		assert.Contains(t, menu, code.DisplayName())
	}
}
