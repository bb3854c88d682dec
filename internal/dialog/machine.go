package dialog

import (
	"github.com/RivenKid69/crm-sales-bot/internal/model"
)

// Result is the outcome of one advance: the fired rule is recorded so a test
// or a debug log can see exactly why the machine moved.
type Result struct {
	Action  string      `json:"action"`
	Prev    model.State `json:"prev_state"`
	Next    model.State `json:"next_state"`
	Missing []string    `json:"missing_data,omitempty"`
	Final   bool        `json:"is_final"`
	Rule    string      `json:"rule"`
}

// Advance consumes the classified intent and extracted slots, mutates the
// session (slot merge, state update, history record) and returns the
// resulting action. Deterministic with respect to its inputs.
//
// Resolution order: terminal no-op, question override, rejection override,
// SPIN progress with interest-based skipping, state-specific rules, generic
// fallback, stay.
func Advance(s *model.Session, utterance string, intent model.Intent, slots map[string]any) Result {
	if s.State.IsTerminal() {
		return Result{Action: ActionFinal, Prev: s.State, Next: s.State, Final: true, Rule: "terminal"}
	}

	before := s.State
	s.Merge(slots)

	res := resolve(s, intent)
	s.State = res.Next
	s.Record(utterance, intent, before, res.Next)

	if cfg, ok := stateConfigs[res.Next]; ok {
		res.Missing = missingRequired(cfg, s)
		res.Final = cfg.terminal
	}
	return res
}

func resolve(s *model.Session, intent model.Intent) Result {
	cfg := stateConfigs[s.State]

	// Questions are answered in place; phase progress is unaffected.
	if intent.IsQuestion() {
		return Result{Action: ActionAnswerQuestion, Prev: s.State, Next: s.State, Rule: "question"}
	}

	// Rejection discards normal phase logic from any non-terminal state.
	if intent == model.IntentRejection {
		return Result{Action: ActionTransition(model.StateSoftClose), Prev: s.State,
			Next: model.StateSoftClose, Rule: "rejection"}
	}

	// SPIN progress: advance when the phase intent fires and the phase's
	// required data is collected, skipping phases the prospect has earned
	// past.
	if cfg.phase != "" {
		if next, ok := spinAdvance(s, cfg, intent); ok {
			return Result{Action: ActionTransition(next), Prev: s.State, Next: next, Rule: "spin_progress"}
		}
		if next, ok := cfg.on[intent]; ok {
			return Result{Action: ActionTransition(next), Prev: s.State, Next: next, Rule: "state_rule"}
		}
		// Stay in phase and ask a follow-up for the missing data.
		return Result{Action: ActionFollowUp(s.State), Prev: s.State, Next: s.State, Rule: "spin_followup"}
	}

	// State-specific rules.
	if next, ok := cfg.on[intent]; ok {
		action := ActionTransition(next)
		if next == s.State {
			action = ActionFollowUp(s.State)
		}
		return Result{Action: action, Prev: s.State, Next: next, Rule: "state_rule"}
	}

	// Generic fallback transition.
	if cfg.fallback != "" {
		return Result{Action: ActionTransition(cfg.fallback), Prev: s.State, Next: cfg.fallback, Rule: "fallback"}
	}

	// No applicable rule: hold position and keep the conversation moving.
	return Result{Action: ActionContinue, Prev: s.State, Next: s.State, Rule: "stay"}
}

// spinAdvance decides whether the current SPIN phase is done. Progress needs
// either the phase-contextual intent or any intent once the required slots
// arrived; the target then skips past phases shouldSkipPhase rules out.
func spinAdvance(s *model.Session, cfg stateConfig, intent model.Intent) (model.State, bool) {
	dataComplete := len(missingRequired(cfg, s)) == 0
	if !dataComplete {
		return "", false
	}

	// The matching (or a later) phase intent is direct progress; completed
	// data alone also moves on, whatever the intent was.
	if phase, ok := intent.SpinProgressPhase(); ok {
		if model.PhaseIndex(phase) < model.PhaseIndex(cfg.phase) {
			return "", false
		}
	}

	next := cfg.complete
	for next.IsSpin() && shouldSkipPhase(next.Phase(), s) {
		next = stateConfigs[next].complete
	}
	return next, true
}

// ValidateRules checks that every reachable state resolves every intent to a
// member of the fixed state set. A gap here is a logic defect, caught by the
// property test rather than at runtime.
func ValidateRules() []string {
	var defects []string
	for _, st := range model.AllStates() {
		if _, ok := stateConfigs[st]; !ok {
			defects = append(defects, "state without config: "+string(st))
		}
	}
	return defects
}
