// Package dialog implements the SPIN dialogue state machine: priority-tiered
// transition rules over the fixed state set, with conditional phase skipping.
package dialog

import "github.com/RivenKid69/crm-sales-bot/internal/model"

// Action keys. The engine never produces natural language; the generator
// turns an action key plus collected data into text.
const (
	ActionAnswerQuestion = "answer_question"
	ActionContinue       = "continue_current_goal"
	ActionFinal          = "final"
)

// ActionTransition builds the transition action key for a target state.
func ActionTransition(to model.State) string {
	return "transition_to_" + string(to)
}

// ActionFollowUp is the stay-in-phase action: ask the phase's next question.
func ActionFollowUp(s model.State) string {
	return string(s)
}

// stateConfig declares one state's transition behavior as data.
type stateConfig struct {
	phase    model.SpinPhase
	required []string                     // slots needed for data_complete
	optional []string                     // nice-to-have slots, reported but not gating
	on       map[model.Intent]model.State // intent-specific transitions
	complete model.State                  // target once required data is collected
	fallback model.State                  // "any" transition; zero means stay
	terminal bool
}

// stateConfigs is the full rule table. Every non-terminal state resolves to a
// defined state for every intent, by rule or by staying put.
var stateConfigs = map[model.State]stateConfig{
	model.StateGreeting: {
		fallback: model.StateSpinSituation,
		on: map[model.Intent]model.State{
			model.IntentRejection: model.StateSoftClose,
			model.IntentFarewell:  model.StateSoftClose,
		},
	},
	model.StateSpinSituation: {
		phase:    model.PhaseSituation,
		required: []string{model.SlotCompanySize},
		optional: []string{model.SlotCurrentTools, model.SlotBusinessType},
		complete: model.StateSpinProblem,
	},
	model.StateSpinProblem: {
		phase:    model.PhaseProblem,
		required: []string{model.SlotPainPoint},
		complete: model.StateSpinImplication,
		on: map[model.Intent]model.State{
			// No admitted problem: pain amplification is pointless, pitch.
			model.IntentNoProblem: model.StatePresentation,
		},
	},
	model.StateSpinImplication: {
		phase:    model.PhaseImplication,
		required: []string{model.SlotPainImpact},
		complete: model.StateSpinNeedPayoff,
		on: map[model.Intent]model.State{
			model.IntentAgreement: model.StateSpinNeedPayoff,
		},
	},
	model.StateSpinNeedPayoff: {
		phase:    model.PhaseNeedPayoff,
		required: []string{model.SlotDesiredOutcome},
		optional: []string{model.SlotValueAcknowledged},
		complete: model.StatePresentation,
		on: map[model.Intent]model.State{
			model.IntentAgreement: model.StatePresentation,
		},
	},
	model.StatePresentation: {
		on: map[model.Intent]model.State{
			model.IntentAgreement:           model.StateClose,
			model.IntentDemoRequest:         model.StateClose,
			model.IntentCallbackRequest:     model.StateClose,
			model.IntentContactProvided:     model.StateClose,
			model.IntentObjectionPrice:      model.StateHandleObjection,
			model.IntentObjectionCompetitor: model.StateHandleObjection,
			model.IntentObjectionNoTime:     model.StateHandleObjection,
			model.IntentObjectionThink:      model.StateHandleObjection,
		},
	},
	model.StateClose: {
		on: map[model.Intent]model.State{
			model.IntentAgreement:           model.StateSuccess,
			model.IntentContactProvided:     model.StateSuccess,
			model.IntentObjectionPrice:      model.StateHandleObjection,
			model.IntentObjectionCompetitor: model.StateHandleObjection,
			model.IntentObjectionThink:      model.StateHandleObjection,
			model.IntentFarewell:            model.StateSoftClose,
		},
	},
	model.StateHandleObjection: {
		// One exchange, then back to the close.
		fallback: model.StateClose,
		on: map[model.Intent]model.State{
			model.IntentAgreement: model.StateClose,
		},
	},
	model.StateSoftClose: {terminal: true},
	model.StateSuccess:   {terminal: true},
}

// missingRequired lists the phase's required slots absent from the session.
func missingRequired(cfg stateConfig, s *model.Session) []string {
	var missing []string
	for _, name := range cfg.required {
		if !s.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// shouldSkipPhase implements the interest-based fast path: a sufficiently
// motivated prospect does not need further pain amplification, and an already
// stated desired outcome makes the need-payoff questions redundant.
func shouldSkipPhase(phase model.SpinPhase, s *model.Session) bool {
	switch phase {
	case model.PhaseImplication, model.PhaseNeedPayoff:
		if s.Bool(model.SlotHighInterest) {
			return true
		}
		if phase == model.PhaseNeedPayoff && s.Has(model.SlotDesiredOutcome) {
			return true
		}
	}
	return false
}
