package model

import "strings"

// Status is the lifecycle state of a persisted ticket.
type Status string

const (
	StatusOpen                 Status = "open"
	StatusInProgress           Status = "in_progress"
	StatusAwaitingConfirmation Status = "awaiting_confirmation"
	StatusDone                 Status = "done"
	StatusCanceled             Status = "canceled"
)

// Valid reports whether s is one of the canonical statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusAwaitingConfirmation, StatusDone, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions apply except reopen.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusCanceled
}

// NormalizeStatus folds external status aliases into the canonical set.
// Unrecognized input normalizes to open so the lifecycle engine never
// operates on an undefined status.
func NormalizeStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "open", "new", "pending", "nuevo", "pendiente", "abierto":
		return StatusOpen
	case "in_progress", "in progress", "working", "en progreso", "en proceso":
		return StatusInProgress
	case "awaiting_confirmation", "awaiting confirmation", "por confirmar":
		return StatusAwaitingConfirmation
	case "done", "resolved", "closed", "resuelto", "cerrado", "terminado":
		return StatusDone
	case "canceled", "cancelled", "cancelado":
		return StatusCanceled
	default:
		return StatusOpen
	}
}
