package flow

import (
	"fmt"
	"strings"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/place"
)

// User-visible prompts. Text is deliberately short: staff read these on
// phones between tasks.

const (
	msgStartOver         = "Empecemos de nuevo. Cuéntame el problema y dónde está."
	msgCanceled          = "Listo, cancelado. Cuando necesites reportar algo aquí estoy."
	msgNothingActive     = "No hay ningún reporte en curso. Cuéntame el problema si quieres levantar uno."
	msgGreeting          = "¡Hola! Cuéntame si hay algún problema que reportar y en dónde."
	msgDispatchRetryable = "No pude guardar el ticket, el sistema no respondió. Tu reporte sigue aquí, intenta de nuevo en un momento con \"enviar\"."
	msgAskDescription    = "¿Cuál es el problema? Descríbelo brevemente."
	msgNotUnderstood     = "No te entendí. ¿Hay algún problema que reportar?"
)

func promptAskPlace(d *model.Draft) string {
	if d == nil || d.Description == "" {
		return "¿En dónde está el problema?"
	}
	return fmt.Sprintf("Anoté: \"%s\". ¿En dónde está el problema? (habitación o área)", d.Description)
}

func promptPlaceRetry() string {
	return "No ubico ese lugar. Dime la habitación (ej. 1205) o el nombre del área."
}

func promptAreaMenu(d *model.Draft) string {
	header := "¿A qué equipo lo mando?"
	if d != nil && d.Place != "" {
		header = fmt.Sprintf("Perfecto, %s. ¿A qué equipo lo mando?", d.Place)
	}
	return header + "\n" + place.AreaMenu()
}

func promptAreaRetry() string {
	return "Elige uno de estos equipos (número o nombre):\n" + place.AreaMenu()
}

func promptAreaPick(codes []model.AreaCode) string {
	var b strings.Builder
	b.WriteString("Mencionaste varios equipos y el reporte solo puede ir a uno. ¿Cuál?\n")
	for i, code := range codes {
		fmt.Fprintf(&b, "%d. %s\n", i+1, code.DisplayName())
	}
	b.WriteString("Si aplica a varios, después puedo levantar otro reporte para el resto.")
	return b.String()
}

func promptPreview(d *model.Draft) string {
	var b strings.Builder
	b.WriteString("Así va tu reporte:\n")
	b.WriteString("📋 " + d.Description + "\n")
	b.WriteString("📍 " + d.Place)
	if d.FreeformPlace {
		b.WriteString(" (lugar nuevo, no está en el catálogo)")
	}
	b.WriteString("\n")
	b.WriteString("👥 " + d.AreaCode.DisplayName() + "\n")
	if len(d.PendingMedia) > 0 {
		fmt.Fprintf(&b, "📎 %d adjunto(s)\n", len(d.PendingMedia))
	}
	b.WriteString("¿Lo envío? (sí / no / cambiar lugar / cambiar equipo / corregir descripción)")
	return b.String()
}

func promptCandidates(candidates []model.PlaceCandidate) string {
	var b strings.Builder
	b.WriteString("No encontré ese lugar tal cual. ¿Te refieres a alguno de estos?\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.Label)
	}
	b.WriteString("Responde con el número, o escribe el lugar de nuevo.")
	return b.String()
}

func promptPlaceConflict(current string, pendingPlace string) string {
	return fmt.Sprintf(
		"Mencionas %s pero el reporte actual es en %s. ¿Qué hacemos?\n1. Corregir el lugar del reporte actual\n2. Es otro problema aparte, levantar otro ticket\n3. Cancelar",
		pendingPlace, current,
	)
}

func promptBatchPreview(drafts []*model.Draft) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tengo %d reportes:\n", len(drafts))
	for _, d := range drafts {
		fmt.Fprintf(&b, "%d) %s — %s", d.TicketNumber, d.Description, orPending(d.Place))
		if d.AreaCode.Valid() {
			b.WriteString(" → " + d.AreaCode.DisplayName())
		}
		b.WriteString("\n")
	}
	b.WriteString("Puedes: \"enviar todos\", \"enviar N\", \"editar N\", \"borrar N\" o \"cancelar\".")
	return b.String()
}

func promptBatchArea(d *model.Draft) string {
	return fmt.Sprintf("Para el reporte %d (%s, %s), ¿a qué equipo lo mando?\n%s",
		d.TicketNumber, d.Description, orPending(d.Place), place.AreaMenu())
}

func promptBatchPlace(d *model.Draft) string {
	return fmt.Sprintf("Para el reporte %d (%s), ¿en dónde está?", d.TicketNumber, d.Description)
}

func promptNewTicketDecision(pendingText string) string {
	return fmt.Sprintf(
		"Parece que \"%s\" es otro problema distinto. ¿Qué hacemos?\n1. Levantar otro ticket aparte\n2. Agregarlo como detalle del reporte actual\n3. Ignorarlo",
		pendingText,
	)
}

func promptDifferentProblem() string {
	return "Parece un problema distinto al que estamos armando. ¿Qué hacemos?\n1. Terminar primero el reporte actual\n2. Cambiar al problema nuevo (descarta el actual)\n3. Levantar los dos"
}

func promptDescriptionOrNew(pendingText string) string {
	return fmt.Sprintf(
		"¿\"%s\" es parte del mismo problema o es otro reporte?\n1. Es parte del mismo\n2. Es otro reporte",
		pendingText,
	)
}

func promptConfusedRecovery(d *model.Draft) string {
	var b strings.Builder
	b.WriteString("Me perdí un poco. Esto es lo que tengo:\n")
	if d != nil {
		b.WriteString("📋 " + orPending(d.Description) + "\n")
		b.WriteString("📍 " + orPending(d.Place) + "\n")
		if d.AreaCode.Valid() {
			b.WriteString("👥 " + d.AreaCode.DisplayName() + "\n")
		}
	}
	b.WriteString("¿Seguimos con este reporte (1) o lo cancelamos y empezamos de nuevo (2)?")
	return b.String()
}

func promptIncidentVersions(incidents []model.Incident) string {
	var b strings.Builder
	b.WriteString("¿Esto es un solo reporte o varios?\n1. Uno solo\n2. Separarlos así:\n")
	for i, in := range incidents {
		fmt.Fprintf(&b, "   %d.%d %s", 2, i+1, in.Text)
		if in.Place != "" {
			b.WriteString(" — " + in.Place)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func promptFollowupDecision(folio, place string) string {
	return fmt.Sprintf(
		"¿Tu mensaje es sobre el ticket %s (%s) o es un problema nuevo?\n1. Es sobre ese ticket\n2. Es un problema nuevo",
		folio, place,
	)
}

func promptFollowupPlaceDecision(records []followupOption) string {
	var b strings.Builder
	b.WriteString("Hay varios tickets recientes en este grupo. ¿De cuál hablas?\n")
	for i, r := range records {
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, r.Folio, r.Place)
	}
	fmt.Fprintf(&b, "%d. Ninguno, es un problema nuevo", len(records)+1)
	return b.String()
}

func msgDispatched(folio string, d *model.Draft) string {
	return fmt.Sprintf("✅ Ticket %s enviado a %s.\n📋 %s\n📍 %s\nTe aviso cuando el equipo responda.",
		folio, d.AreaCode.DisplayName(), d.Description, d.Place)
}

func msgTicketStatus(t *model.Ticket) string {
	return fmt.Sprintf("Ticket %s\n📋 %s\n📍 %s\n👥 %s\nEstado: %s",
		t.Folio, t.Description, t.Place, t.AreaCode.DisplayName(), statusLabel(t.Status))
}

func statusLabel(s model.Status) string {
	switch s {
	case model.StatusOpen:
		return "abierto"
	case model.StatusInProgress:
		return "en proceso"
	case model.StatusAwaitingConfirmation:
		return "por confirmar"
	case model.StatusDone:
		return "resuelto"
	case model.StatusCanceled:
		return "cancelado"
	default:
		return string(s)
	}
}

func msgStatusChanged(t *model.Ticket, to model.Status) string {
	switch to {
	case model.StatusInProgress:
		return fmt.Sprintf("🔧 El equipo ya está trabajando en el ticket %s (%s).", t.Folio, t.Place)
	case model.StatusAwaitingConfirmation:
		return fmt.Sprintf("El equipo reporta resuelto el ticket %s (%s). ¿Confirmas que ya quedó?", t.Folio, t.Place)
	case model.StatusDone:
		return fmt.Sprintf("✅ Ticket %s cerrado. ¡Gracias!", t.Folio)
	case model.StatusOpen:
		return fmt.Sprintf("🔁 Ticket %s reabierto, el equipo fue notificado.", t.Folio)
	case model.StatusCanceled:
		return fmt.Sprintf("Ticket %s cancelado.", t.Folio)
	default:
		return fmt.Sprintf("Ticket %s actualizado: %s.", t.Folio, statusLabel(to))
	}
}

func orPending(s string) string {
	if s == "" {
		return "(pendiente)"
	}
	return s
}
