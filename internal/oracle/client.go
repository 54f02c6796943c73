package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/logger"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/metrics"
)

// Context carries conversation state handed to the oracle as grounding.
type Context struct {
	Mode         string
	DraftSummary string
	LastPlace    string
	IsGroup      bool
}

// TopLevelResult is the oracle's reading of a message's top-level intent.
type TopLevelResult struct {
	Intent     model.Intent
	Confidence float64
	Hints      model.IntentHints
}

// TurnResult is the oracle's reading of a reply against the current prompt focus.
type TurnResult struct {
	Ops                  []model.TurnOp
	NewIncidentCandidate bool
	PlaceCorrectionOnly  bool
	Hints                model.IntentHints
	Confidence           float64
}

// Client is the classification oracle consumed by the state machine.
// Implementations must validate every response at the boundary: fields
// outside the enumerated sets are dropped and replaced with safe defaults.
type Client interface {
	ClassifyTopLevel(ctx context.Context, text string, octx Context) (*TopLevelResult, error)
	ClassifyTurn(ctx context.Context, text, focus, draftSummary string) (*TurnResult, error)
	ClassifyFeedback(ctx context.Context, text string, roleHint model.FeedbackRole, ticketSummary string, history []string) (*model.FeedbackClassification, error)
	SplitIncidents(ctx context.Context, text string) ([]model.Incident, error)
}

// LLMClient implements Client over a provider Completer.
type LLMClient struct {
	completer Completer
	model     string
	timeout   time.Duration
	logger    *logger.Logger
}

// NewLLMClient creates an oracle client with a bounded per-call timeout.
func NewLLMClient(completer Completer, modelName string, timeout time.Duration, log *logger.Logger) *LLMClient {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &LLMClient{
		completer: completer,
		model:     modelName,
		timeout:   timeout,
		logger:    log,
	}
}

func (c *LLMClient) complete(ctx context.Context, purpose, system, user string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.completer.Complete(callCtx, &CompletionRequest{
		Model:       c.model,
		System:      system,
		Messages:    []ChatMessage{{Role: "user", Content: user}},
		MaxTokens:   1024,
		Temperature: 0,
		JSONOnly:    true,
	})
	duration := time.Since(start).Seconds()

	if err != nil {
		metrics.RecordOracleCall(purpose, "error", duration)
		return "", fmt.Errorf("oracle %s call failed: %w", purpose, err)
	}

	metrics.RecordOracleCall(purpose, "ok", duration)
	return resp.Content, nil
}

// extractJSON strips markdown fences and surrounding prose from a model reply.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	end := strings.LastIndexAny(s, "}]")
	if end < start {
		return s
	}
	return strings.TrimSpace(s[start : end+1])
}

// ClassifyTopLevel returns the top-level intent of an inbound message.
func (c *LLMClient) ClassifyTopLevel(ctx context.Context, text string, octx Context) (*TopLevelResult, error) {
	user := fmt.Sprintf("Mode: %s\nDraft: %s\nLast place: %s\nMessage: %s",
		octx.Mode, orNone(octx.DraftSummary), orNone(octx.LastPlace), text)

	content, err := c.complete(ctx, "top_level", topLevelSystemPrompt, user)
	if err != nil {
		return nil, err
	}

	var payload topLevelPayload
	if err := json.Unmarshal([]byte(extractJSON(content)), &payload); err != nil {
		return nil, fmt.Errorf("oracle top_level returned malformed JSON: %w", err)
	}

	return payload.coerce(), nil
}

// ClassifyTurn interprets a reply against the current prompt focus.
func (c *LLMClient) ClassifyTurn(ctx context.Context, text, focus, draftSummary string) (*TurnResult, error) {
	user := fmt.Sprintf("Focus: %s\nDraft: %s\nReply: %s", focus, orNone(draftSummary), text)

	content, err := c.complete(ctx, "turn", turnSystemPrompt, user)
	if err != nil {
		return nil, err
	}

	var payload turnPayload
	if err := json.Unmarshal([]byte(extractJSON(content)), &payload); err != nil {
		return nil, fmt.Errorf("oracle turn returned malformed JSON: %w", err)
	}

	return payload.coerce(), nil
}

// ClassifyFeedback classifies a post-dispatch follow-up message.
func (c *LLMClient) ClassifyFeedback(ctx context.Context, text string, roleHint model.FeedbackRole, ticketSummary string, history []string) (*model.FeedbackClassification, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Role hint: %s\nTicket: %s\n", roleHint, orNone(ticketSummary))
	if len(history) > 0 {
		sb.WriteString("History:\n")
		for _, h := range history {
			sb.WriteString("- " + h + "\n")
		}
	}
	sb.WriteString("Message: " + text)

	content, err := c.complete(ctx, "feedback", feedbackSystemPrompt, sb.String())
	if err != nil {
		return nil, err
	}

	var payload feedbackPayload
	if err := json.Unmarshal([]byte(extractJSON(content)), &payload); err != nil {
		return nil, fmt.Errorf("oracle feedback returned malformed JSON: %w", err)
	}

	return payload.coerce(roleHint), nil
}

// SplitIncidents asks the oracle for the independent problems in a message.
func (c *LLMClient) SplitIncidents(ctx context.Context, text string) ([]model.Incident, error) {
	content, err := c.complete(ctx, "split", splitSystemPrompt, "Message: "+text)
	if err != nil {
		return nil, err
	}

	var payload splitPayload
	if err := json.Unmarshal([]byte(extractJSON(content)), &payload); err != nil {
		return nil, fmt.Errorf("oracle split returned malformed JSON: %w", err)
	}

	return payload.coerce(), nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
