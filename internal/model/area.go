package model

import "fmt"

// AreaCode identifies the operational team a ticket is routed to.
// The set is closed: drafts may only dispatch to one of these.
type AreaCode string

const (
	AreaMaintenance  AreaCode = "man"
	AreaHousekeeping AreaCode = "hk"
	AreaRoomService  AreaCode = "rs"
	AreaSecurity     AreaCode = "seg"
	AreaIT           AreaCode = "it"
)

// AllAreaCodes returns the fixed area set in menu order.
func AllAreaCodes() []AreaCode {
	return []AreaCode{AreaMaintenance, AreaHousekeeping, AreaRoomService, AreaSecurity, AreaIT}
}

var areaDisplayNames = map[AreaCode]string{
	AreaMaintenance:  "Mantenimiento",
	AreaHousekeeping: "Ama de Llaves",
	AreaRoomService:  "Room Service",
	AreaSecurity:     "Seguridad",
	AreaIT:           "Sistemas",
}

// DisplayName returns the human-readable team name for prompts.
func (a AreaCode) DisplayName() string {
	if name, ok := areaDisplayNames[a]; ok {
		return name
	}
	return string(a)
}

// Valid reports whether a belongs to the fixed area set.
func (a AreaCode) Valid() bool {
	_, ok := areaDisplayNames[a]
	return ok
}

// ParseAreaCode validates a raw code against the fixed set.
func ParseAreaCode(raw string) (AreaCode, error) {
	a := AreaCode(raw)
	if !a.Valid() {
		return "", fmt.Errorf("unknown area code %q", raw)
	}
	return a, nil
}
