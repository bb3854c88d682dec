package model

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Slot names. Collected values are typed: ints for counts, strings for
// categorical tags and free text, bools for flags.
const (
	SlotCompanySize       = "company_size"
	SlotPainPoint         = "pain_point"
	SlotPainImpact        = "pain_impact"
	SlotCurrentTools      = "current_tools"
	SlotBusinessType      = "business_type"
	SlotDesiredOutcome    = "desired_outcome"
	SlotValueAcknowledged = "value_acknowledged"
	SlotHighInterest      = "high_interest"
	SlotContactInfo       = "contact_info"
	SlotClientName        = "client_name"
	SlotUrgency           = "urgency"
	SlotBudgetRange       = "budget_range"
	SlotRole              = "role"
	SlotPreferredChannel  = "preferred_channel"
	SlotTimeline          = "timeline"
)

// RegisteredSlots is the closed slot vocabulary. Collected data never carries
// a key outside this set.
var RegisteredSlots = map[string]bool{
	SlotCompanySize:       true,
	SlotPainPoint:         true,
	SlotPainImpact:        true,
	SlotCurrentTools:      true,
	SlotBusinessType:      true,
	SlotDesiredOutcome:    true,
	SlotValueAcknowledged: true,
	SlotHighInterest:      true,
	SlotContactInfo:       true,
	SlotClientName:        true,
	SlotUrgency:           true,
	SlotBudgetRange:       true,
	SlotRole:              true,
	SlotPreferredChannel:  true,
	SlotTimeline:          true,
}

// TurnRecord is one processed turn, kept for diagnostics only.
type TurnRecord struct {
	Utterance   string    `json:"utterance"`
	Intent      Intent    `json:"intent"`
	StateBefore State     `json:"state_before"`
	StateAfter  State     `json:"state_after"`
	At          time.Time `json:"at"`
}

// Session is the mutable per-conversation record. It is owned by a single
// conversation and never accessed concurrently.
type Session struct {
	ID        string         `json:"id"`
	State     State          `json:"state"`
	Collected map[string]any `json:"collected_data"`
	History   []TurnRecord   `json:"history,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

var sessionEntropy = rand.New(rand.NewSource(time.Now().UnixNano()))

// NewSession creates a session in the initial greeting state.
func NewSession() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        ulid.MustNew(ulid.Timestamp(now), sessionEntropy).String(),
		State:     StateGreeting,
		Collected: map[string]any{},
		CreatedAt: now,
	}
}

// Reset returns the session to its initial state, dropping collected data and
// history. The session keeps its ID.
func (s *Session) Reset() {
	s.State = StateGreeting
	s.Collected = map[string]any{}
	s.History = nil
}

// Merge writes slots into collected data. Later writes win; unregistered or
// empty values are dropped.
func (s *Session) Merge(slots map[string]any) {
	for name, v := range slots {
		if !RegisteredSlots[name] {
			continue
		}
		switch val := v.(type) {
		case nil:
			continue
		case string:
			if val == "" {
				continue
			}
		case int:
			if val == 0 {
				continue
			}
		case bool:
			if !val {
				continue
			}
		}
		s.Collected[name] = v
	}
}

// Has reports whether a slot carries a non-zero value.
func (s *Session) Has(name string) bool {
	_, ok := s.Collected[name]
	return ok
}

// Bool reads a boolean slot; missing slots read false.
func (s *Session) Bool(name string) bool {
	v, _ := s.Collected[name].(bool)
	return v
}

// Record appends a turn to the diagnostic history.
func (s *Session) Record(utterance string, intent Intent, before, after State) {
	s.History = append(s.History, TurnRecord{
		Utterance:   utterance,
		Intent:      intent,
		StateBefore: before,
		StateAfter:  after,
		At:          time.Now().UTC(),
	})
}

// Snapshot returns a copy of collected data, safe to hand across the boundary.
func (s *Session) Snapshot() map[string]any {
	out := make(map[string]any, len(s.Collected))
	for k, v := range s.Collected {
		out[k] = v
	}
	return out
}

// Status is the diagnostic surface for an external shell.
type Status struct {
	SessionID string         `json:"session_id"`
	State     State          `json:"state"`
	SpinPhase SpinPhase      `json:"spin_phase,omitempty"`
	Collected map[string]any `json:"collected_data"`
	Turns     int            `json:"turns"`
}

// Status reports the session's current state, SPIN phase and collected data.
func (s *Session) Status() Status {
	return Status{
		SessionID: s.ID,
		State:     s.State,
		SpinPhase: s.State.Phase(),
		Collected: s.Snapshot(),
		Turns:     len(s.History),
	}
}
