// Package bot wires the pipeline for one conversational turn: normalize,
// extract, classify, advance the state machine, then retrieve facts when
// the turn needs an answer. The engine produces a structured result; it
// never generates natural-language replies.
package bot

import (
	"context"

	"go.uber.org/zap"

	"github.com/RivenKid69/crm-sales-bot/internal/dialog"
	"github.com/RivenKid69/crm-sales-bot/internal/knowledge"
	"github.com/RivenKid69/crm-sales-bot/internal/model"
	"github.com/RivenKid69/crm-sales-bot/internal/nlu"
)

// TurnResult is everything a response generator needs for one turn.
type TurnResult struct {
	SessionID  string           `json:"session_id"`
	State      model.State      `json:"state"`
	PrevState  model.State      `json:"prev_state"`
	Action     string           `json:"action"`
	Intent     model.Intent     `json:"intent"`
	Confidence float64          `json:"confidence"`
	Method     string           `json:"method"`
	Slots      map[string]any   `json:"slots,omitempty"`
	Collected  map[string]any   `json:"collected,omitempty"`
	Missing    []string         `json:"missing,omitempty"`
	Facts      []knowledge.Fact `json:"facts,omitempty"`
	Final      bool             `json:"final"`
}

// Engine runs turns against a shared retriever. Sessions are owned by
// the caller; the engine itself is stateless and safe for concurrent use
// as long as each session is confined to one goroutine.
type Engine struct {
	retriever *knowledge.Retriever
	logger    *zap.Logger
}

// New builds an engine. logger must not be nil; pass zap.NewNop() to
// silence it.
func New(retriever *knowledge.Retriever, logger *zap.Logger) *Engine {
	return &Engine{retriever: retriever, logger: logger}
}

// Process runs one user utterance through the full pipeline and mutates
// the session accordingly.
func (e *Engine) Process(ctx context.Context, s *model.Session, utterance string) (*TurnResult, error) {
	tokens := nlu.Normalize(utterance)
	slots := nlu.Extract(utterance)
	cls := nlu.Classify(tokens, s.State, slots)
	res := dialog.Advance(s, utterance, cls.Intent, slots)

	out := &TurnResult{
		SessionID:  s.ID,
		State:      res.Next,
		PrevState:  res.Prev,
		Action:     res.Action,
		Intent:     cls.Intent,
		Confidence: cls.Confidence,
		Method:     cls.Method,
		Slots:      slots,
		Collected:  s.Snapshot(),
		Missing:    res.Missing,
		Final:      res.Final,
	}

	if e.wantsFacts(cls.Intent) {
		matches, err := e.retriever.Retrieve(ctx, utterance, cls.Intent)
		if err != nil {
			// A degraded knowledge lookup must not kill the turn.
			e.logger.Warn("fact retrieval failed",
				zap.String("session", s.ID),
				zap.String("intent", string(cls.Intent)),
				zap.Error(err))
		}
		for _, m := range matches {
			out.Facts = append(out.Facts, m.Fact)
		}
	}

	e.logger.Debug("turn processed",
		zap.String("session", s.ID),
		zap.String("intent", string(cls.Intent)),
		zap.Int("tier", cls.Tier),
		zap.Float64("confidence", cls.Confidence),
		zap.String("rule", res.Rule),
		zap.String("prev", string(res.Prev)),
		zap.String("next", string(res.Next)),
		zap.String("action", res.Action),
		zap.Int("facts", len(out.Facts)),
		zap.Int("slots", len(slots)))

	return out, nil
}

// wantsFacts reports whether the intent should be backed by knowledge
// base lookups: direct questions and objections that are countered with
// concrete product facts.
func (e *Engine) wantsFacts(intent model.Intent) bool {
	if intent.IsQuestion() {
		return true
	}
	switch intent {
	case model.IntentObjectionPrice, model.IntentObjectionCompetitor,
		model.IntentObjectionThink, model.IntentObjectionNoTime:
		return true
	}
	return false
}
