package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "habitacion 1205", Normalize("  Habitación 1205! "))
	assert.Equal(t, "si", Normalize("¿Sí?"))
}

func TestLooksLikeProblem(t *testing.T) {
	assert.True(t, LooksLikeProblem("no hay agua caliente en la 1205"))
	assert.True(t, LooksLikeProblem("la regadera está goteando"))
	assert.True(t, LooksLikeProblem("the AC is not working"))
	assert.False(t, LooksLikeProblem("hola buenos días"))
	assert.False(t, LooksLikeProblem("gracias por todo"))
}

func TestIsGreetingOnly(t *testing.T) {
	assert.True(t, IsGreetingOnly("Hola"))
	assert.True(t, IsGreetingOnly("buenas tardes"))
	assert.False(t, IsGreetingOnly("hola, no funciona el aire"))
}

func TestIsCancel(t *testing.T) {
	assert.True(t, IsCancel("cancelar"))
	assert.True(t, IsCancel("olvídalo"))
	assert.True(t, IsCancel("ya no"))
	assert.False(t, IsCancel("sí, mándalo"))
}

func TestIsConfirm(t *testing.T) {
	assert.True(t, IsConfirm("sí"))
	assert.True(t, IsConfirm("si mandalo"))
	assert.True(t, IsConfirm("dale"))
	assert.False(t, IsConfirm("no"))
	assert.False(t, IsConfirm("el aire acondicionado sigue haciendo un ruido raro, confirmo que no sirve"))
}

func TestExtractFolio(t *testing.T) {
	folio, ok := ExtractFolio("¿cómo va el INS-000123?")
	assert.True(t, ok)
	assert.Equal(t, "INS-000123", folio)

	folio, ok = ExtractFolio("ya quedó el ins-004501")
	assert.True(t, ok, "folio matching is case-insensitive")
	assert.Equal(t, "INS-004501", folio)

	_, ok = ExtractFolio("no hay agua en la 1205")
	assert.False(t, ok)
}

func TestHasRoomToken(t *testing.T) {
	assert.True(t, HasRoomToken("fuga en la 1205"))
	assert.True(t, HasRoomToken("cuarto 304"))
	assert.False(t, HasRoomToken("fuga en la alberca"))
	assert.False(t, HasRoomToken("piso 12"))
}
