package place

import (
	"strings"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
)

// areaAliases maps normalized free text to area codes. Resolution never
// guesses: anything outside this table re-prompts with the fixed menu.
var areaAliases = map[string]model.AreaCode{
	"man":            model.AreaMaintenance,
	"mantenimiento":  model.AreaMaintenance,
	"mant":           model.AreaMaintenance,
	"maintenance":    model.AreaMaintenance,
	"tecnico":        model.AreaMaintenance,
	"hk":             model.AreaHousekeeping,
	"ama de llaves":  model.AreaHousekeeping,
	"housekeeping":   model.AreaHousekeeping,
	"limpieza":       model.AreaHousekeeping,
	"camarista":      model.AreaHousekeeping,
	"rs":             model.AreaRoomService,
	"room service":   model.AreaRoomService,
	"roomservice":    model.AreaRoomService,
	"servicio":       model.AreaRoomService,
	"alimentos":      model.AreaRoomService,
	"seg":            model.AreaSecurity,
	"seguridad":      model.AreaSecurity,
	"security":       model.AreaSecurity,
	"vigilancia":     model.AreaSecurity,
	"it":             model.AreaIT,
	"sistemas":       model.AreaIT,
	"ti":             model.AreaIT,
	"internet":       model.AreaIT,
	"wifi":           model.AreaIT,
	"computo":        model.AreaIT,
	"1":              model.AreaMaintenance,
	"2":              model.AreaHousekeeping,
	"3":              model.AreaRoomService,
	"4":              model.AreaSecurity,
	"5":              model.AreaIT,
}

// ResolveArea maps free text to an area code from the fixed set.
func ResolveArea(text string) (model.AreaCode, bool) {
	norm := Normalize(text)
	if code, ok := areaAliases[norm]; ok {
		return code, true
	}
	// Tolerate the alias embedded in a short reply ("que vaya a mantenimiento").
	for alias, code := range areaAliases {
		if len(alias) >= 4 && strings.Contains(norm, alias) {
			return code, true
		}
	}
	return "", false
}

// ResolveAreas finds every distinct area named in the text, in canonical
// area order. A single-token exact alias still yields exactly one code.
func ResolveAreas(text string) []model.AreaCode {
	norm := Normalize(text)
	if code, ok := areaAliases[norm]; ok {
		return []model.AreaCode{code}
	}
	found := map[model.AreaCode]bool{}
	for alias, code := range areaAliases {
		if len(alias) >= 4 && strings.Contains(norm, alias) {
			found[code] = true
		}
	}
	var codes []model.AreaCode
	for _, code := range model.AllAreaCodes() {
		if found[code] {
			codes = append(codes, code)
		}
	}
	return codes
}

// AreaMenu returns the fixed numbered menu used whenever area input is
// unresolved.
func AreaMenu() string {
	var b strings.Builder
	for i, code := range model.AllAreaCodes() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(numberedLine(i+1, code.DisplayName()))
	}
	return b.String()
}

func numberedLine(n int, label string) string {
	return string(rune('0'+n)) + ". " + label
}
