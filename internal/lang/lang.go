// Package lang provides the local text heuristics shared by the intent
// router, turn interpreter and splitter. These are the synchronous fallback
// when the oracle is unavailable, so they must never block or error.
package lang

import (
	"regexp"
	"strings"
)

var problemVocabulary = []string{
	"no hay", "no funciona", "no sirve", "no enciende", "no prende", "no abre",
	"no cierra", "no jala", "descompuesto", "descompuesta", "roto", "rota",
	"se rompio", "se rompió", "fuga", "gotea", "goteando", "tapado", "tapada",
	"atascado", "atascada", "falla", "fallando", "falta", "faltan", "sin agua",
	"sin luz", "apagado", "apagada", "quemado", "fundido", "fundida", "sucio",
	"sucia", "derrame", "ruido", "huele", "mal olor", "broken", "leaking",
	"not working", "doesn't work", "missing", "clogged", "damaged",
}

var greetings = []string{
	"hola", "buenos dias", "buenos días", "buenas tardes", "buenas noches",
	"buen dia", "buen día", "que tal", "qué tal", "hello", "hi", "hey",
	"saludos",
}

var cancelWords = []string{
	"cancelar", "cancela", "cancelalo", "cancélalo", "olvidalo", "olvídalo",
	"ya no", "dejalo", "déjalo", "cancel", "nevermind", "never mind", "forget it",
}

var confirmWords = []string{
	"si", "sí", "sip", "simon", "simón", "claro", "correcto", "confirmo",
	"confirmar", "enviar", "mandalo", "mándalo", "envialo", "envíalo", "dale",
	"ok", "okay", "va", "sale", "listo", "yes", "yep", "confirm", "send",
	"send it", "adelante", "asi esta bien", "así está bien", "de acuerdo",
}

var searchWords = []string{
	"estatus", "status", "estado de", "como va", "cómo va", "que paso con",
	"qué pasó con", "buscar", "consultar", "folio",
}

var closeWords = []string{
	"cerrar", "cierra", "ya quedo", "ya quedó", "resuelto", "ya esta listo",
	"ya está listo", "ya se arreglo", "ya se arregló", "close", "resolved",
	"fixed", "done",
}

var previewWords = []string{
	"ver", "preview", "resumen", "muestrame", "muéstrame", "como va el ticket",
	"ver ticket", "mostrar",
}

var normalizer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
)

// Normalize lowers, trims and strips accents/punctuation tails for matching.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = normalizer.Replace(s)
	return strings.Trim(s, " .,!?¡¿")
}

func containsAny(norm string, words []string) bool {
	for _, w := range words {
		if strings.Contains(norm, Normalize(w)) {
			return true
		}
	}
	return false
}

func equalsAny(norm string, words []string) bool {
	for _, w := range words {
		if norm == Normalize(w) {
			return true
		}
	}
	return false
}

// LooksLikeProblem reports whether text contains incident vocabulary.
func LooksLikeProblem(text string) bool {
	return containsAny(Normalize(text), problemVocabulary)
}

// IsGreetingOnly reports whether the message is a short greeting and
// nothing else.
func IsGreetingOnly(text string) bool {
	norm := Normalize(text)
	if len([]rune(norm)) > 30 {
		return false
	}
	return equalsAny(norm, greetings) || (containsAny(norm, greetings) && !LooksLikeProblem(norm))
}

// IsCancel reports whether the message asks to cancel.
func IsCancel(text string) bool {
	norm := Normalize(text)
	return equalsAny(norm, cancelWords) || containsAny(norm, cancelWords)
}

// IsConfirm reports whether the message is an affirmative confirmation.
func IsConfirm(text string) bool {
	norm := Normalize(text)
	if equalsAny(norm, confirmWords) {
		return true
	}
	// Short affirmatives with trailing words ("si mandalo", "ok enviar").
	if len([]rune(norm)) <= 20 {
		return containsAny(norm, confirmWords)
	}
	return false
}

// IsSearch reports whether the message asks for a ticket status/lookup.
func IsSearch(text string) bool {
	return containsAny(Normalize(text), searchWords)
}

// IsClose reports whether the message claims the issue is resolved.
func IsClose(text string) bool {
	return containsAny(Normalize(text), closeWords)
}

// WantsPreview reports whether the message asks to see the draft again.
func WantsPreview(text string) bool {
	norm := Normalize(text)
	return len([]rune(norm)) <= 30 && containsAny(norm, previewWords)
}

var roomTokenRe = regexp.MustCompile(`\b\d{3,4}\b`)

// HasRoomToken reports whether text carries a 3-4 digit number token,
// a strong room signal.
func HasRoomToken(text string) bool {
	return roomTokenRe.MatchString(text)
}

// FolioRe matches human-readable ticket folios like INS-000123.
var FolioRe = regexp.MustCompile(`\b([A-Z]{2,5})-(\d{4,8})\b`)

// ExtractFolio pulls the first ticket folio reference out of text.
func ExtractFolio(text string) (string, bool) {
	m := FolioRe.FindString(strings.ToUpper(text))
	return m, m != ""
}
