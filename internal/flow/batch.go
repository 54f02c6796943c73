package flow

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/dispatch"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/lang"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
)

var (
	sendAllRe  = regexp.MustCompile(`(?i)^\s*(?:enviar?|mandar?|manda)\s+todos?\s*$`)
	sendOneRe  = regexp.MustCompile(`(?i)^\s*(?:enviar?|mandar?|manda)\s+(?:el\s+)?(\d+)\s*$`)
	editOneRe  = regexp.MustCompile(`(?i)^\s*(?:editar?|cambiar?|corregir)\s+(?:el\s+)?(\d+)\s*(.*)$`)
	dropOneRe  = regexp.MustCompile(`(?i)^\s*(?:borrar?|eliminar?|quitar?)\s+(?:el\s+)?(\d+)\s*$`)
	fieldWords = map[string]model.Mode{
		"lugar":       model.ModeEditPlace,
		"ubicacion":   model.ModeEditPlace,
		"equipo":      model.ModeEditArea,
		"area":        model.ModeEditArea,
		"descripcion": model.ModeEditDescription,
		"detalle":     model.ModeEditDescription,
		"texto":       model.ModeEditDescription,
	}
)

// handleMultipleTickets is a pass-through: the batch walker leaves this mode
// immediately, so any message that lands here just re-runs the walk.
func (m *Machine) handleMultipleTickets(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	if lang.IsCancel(msg.Text) {
		return m.cancelSession(ctx, session)
	}
	if len(session.MultipleDrafts) == 0 {
		session.Reset()
		return m.send(ctx, session.ChatID, msgStartOver)
	}
	return m.advanceBatch(ctx, session)
}

// handleConfirmBatch processes the batch preview commands: send all, send
// one, edit one, drop one, or cancel everything.
func (m *Machine) handleConfirmBatch(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	if lang.IsCancel(msg.Text) {
		return m.cancelSession(ctx, session)
	}
	if len(session.MultipleDrafts) == 0 {
		session.Reset()
		return m.send(ctx, session.ChatID, msgStartOver)
	}

	text := strings.TrimSpace(msg.Text)

	// Pending "editar N" waiting for the field name.
	if session.EditTarget > 0 {
		if mode, ok := fieldWords[lang.Normalize(text)]; ok {
			session.PriorMode = model.ModeConfirmBatch
			session.SetMode(mode)
			return m.promptEdit(ctx, session, mode)
		}
	}

	if sendAllRe.MatchString(text) || lang.IsConfirm(text) {
		return m.dispatchBatchAll(ctx, session)
	}

	if mm := sendOneRe.FindStringSubmatch(text); mm != nil {
		n, _ := strconv.Atoi(mm[1])
		return m.dispatchBatchOne(ctx, session, n)
	}

	if mm := editOneRe.FindStringSubmatch(text); mm != nil {
		n, _ := strconv.Atoi(mm[1])
		if m.batchDraft(session, n) == nil {
			return m.reprompt(ctx, session, promptBatchPreview(session.MultipleDrafts))
		}
		session.EditTarget = n
		// The field may ride along ("editar 2 lugar").
		if mode, ok := fieldWords[lang.Normalize(mm[2])]; ok {
			session.PriorMode = model.ModeConfirmBatch
			session.SetMode(mode)
			return m.promptEdit(ctx, session, mode)
		}
		return m.send(ctx, session.ChatID,
			fmt.Sprintf("¿Qué cambio del reporte %d? (lugar / equipo / descripción)", n))
	}

	if mm := dropOneRe.FindStringSubmatch(text); mm != nil {
		n, _ := strconv.Atoi(mm[1])
		return m.dropBatchDraft(ctx, session, n)
	}

	return m.reprompt(ctx, session, promptBatchPreview(session.MultipleDrafts))
}

func (m *Machine) promptEdit(ctx context.Context, session *model.Session, mode model.Mode) error {
	draft := m.targetDraft(session)
	switch mode {
	case model.ModeEditPlace:
		return m.send(ctx, session.ChatID, promptAskPlace(draft))
	case model.ModeEditArea:
		return m.send(ctx, session.ChatID, promptAreaMenu(draft))
	default:
		return m.send(ctx, session.ChatID, msgAskDescription)
	}
}

// dispatchBatchAll sends every remaining draft. A store failure stops the
// run and keeps the unsent drafts; a validation failure re-enters the walk
// for the offending draft.
func (m *Machine) dispatchBatchAll(ctx context.Context, session *model.Session) error {
	var sent []string

	for len(session.MultipleDrafts) > 0 {
		draft := session.MultipleDrafts[0]
		receipt, err := m.gate.Dispatch(ctx, session, draft)
		if err != nil {
			var vErr *dispatch.ValidationError
			if errors.As(err, &vErr) {
				session.SetMode(model.ModeMultipleTickets)
				return m.advanceBatch(ctx, session)
			}
			m.logger.WithChat(session.ChatID).Error("batch dispatch failed",
				zap.Error(err), zap.Int("remaining", len(session.MultipleDrafts)))
			if len(sent) > 0 {
				return m.send(ctx, session.ChatID,
					batchDispatchedMsg(sent)+"\n"+msgDispatchRetryable)
			}
			return m.send(ctx, session.ChatID, msgDispatchRetryable)
		}
		sent = append(sent, receipt.Folio)
		session.LastPlace = draft.Place
		session.MultipleDrafts = session.MultipleDrafts[1:]
	}

	lastPlace := session.LastPlace
	session.Reset()
	session.LastPlace = lastPlace
	return m.send(ctx, session.ChatID, batchDispatchedMsg(sent))
}

// dispatchBatchOne sends one draft by batch position and keeps the rest.
func (m *Machine) dispatchBatchOne(ctx context.Context, session *model.Session, n int) error {
	draft := m.batchDraft(session, n)
	if draft == nil {
		return m.reprompt(ctx, session, promptBatchPreview(session.MultipleDrafts))
	}

	receipt, err := m.gate.Dispatch(ctx, session, draft)
	if err != nil {
		var vErr *dispatch.ValidationError
		if errors.As(err, &vErr) {
			session.EditTarget = n
			session.SetMode(model.ModeMultipleTickets)
			return m.advanceBatch(ctx, session)
		}
		m.logger.WithChat(session.ChatID).Error("dispatch failed", zap.Error(err))
		return m.send(ctx, session.ChatID, msgDispatchRetryable)
	}

	session.LastPlace = draft.Place
	session.MultipleDrafts = append(session.MultipleDrafts[:n-1], session.MultipleDrafts[n:]...)
	session.RenumberDrafts()

	if err := m.send(ctx, session.ChatID, msgDispatched(receipt.Folio, draft)); err != nil {
		return err
	}
	return m.afterBatchShrink(ctx, session)
}

// dropBatchDraft removes one draft by batch position.
func (m *Machine) dropBatchDraft(ctx context.Context, session *model.Session, n int) error {
	if m.batchDraft(session, n) == nil {
		return m.reprompt(ctx, session, promptBatchPreview(session.MultipleDrafts))
	}
	session.MultipleDrafts = append(session.MultipleDrafts[:n-1], session.MultipleDrafts[n:]...)
	session.RenumberDrafts()
	return m.afterBatchShrink(ctx, session)
}

// afterBatchShrink re-establishes the right mode after the batch lost a
// draft: empty resets, a single survivor collapses back to the plain
// confirm preview, anything else refreshes the batch preview.
func (m *Machine) afterBatchShrink(ctx context.Context, session *model.Session) error {
	session.EditTarget = 0
	switch {
	case len(session.MultipleDrafts) == 0:
		lastPlace := session.LastPlace
		session.Reset()
		session.LastPlace = lastPlace
		return m.send(ctx, session.ChatID, "Listo, no queda ningún reporte pendiente.")
	case session.CollapseBatch():
		session.SetMode(model.ModeConfirm)
		return m.send(ctx, session.ChatID, promptPreview(session.Draft))
	default:
		session.SetMode(model.ModeConfirmBatch)
		return m.send(ctx, session.ChatID, promptBatchPreview(session.MultipleDrafts))
	}
}

func batchDispatchedMsg(folios []string) string {
	if len(folios) == 1 {
		return "✅ Ticket " + folios[0] + " enviado."
	}
	return fmt.Sprintf("✅ %d tickets enviados: %s.", len(folios), strings.Join(folios, ", "))
}
