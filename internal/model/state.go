// Package model defines the core dialogue data types.
package model

// State is a dialogue state. States are identified by stable strings so that
// transition tables and action keys can be plain data.
type State string

const (
	StateGreeting        State = "greeting"
	StateSpinSituation   State = "spin_situation"
	StateSpinProblem     State = "spin_problem"
	StateSpinImplication State = "spin_implication"
	StateSpinNeedPayoff  State = "spin_need_payoff"
	StatePresentation    State = "presentation"
	StateClose           State = "close"
	StateHandleObjection State = "handle_objection"
	StateSoftClose       State = "soft_close"
	StateSuccess         State = "success"
)

// SpinPhase is one of the four SPIN questioning phases.
type SpinPhase string

const (
	PhaseSituation   SpinPhase = "situation"
	PhaseProblem     SpinPhase = "problem"
	PhaseImplication SpinPhase = "implication"
	PhaseNeedPayoff  SpinPhase = "need_payoff"
)

// SpinPhases lists the phases in methodology order.
var SpinPhases = []SpinPhase{PhaseSituation, PhaseProblem, PhaseImplication, PhaseNeedPayoff}

// spinStateByPhase maps each phase to its dialogue state.
var spinStateByPhase = map[SpinPhase]State{
	PhaseSituation:   StateSpinSituation,
	PhaseProblem:     StateSpinProblem,
	PhaseImplication: StateSpinImplication,
	PhaseNeedPayoff:  StateSpinNeedPayoff,
}

// SpinState returns the dialogue state for a phase.
func SpinState(p SpinPhase) State {
	return spinStateByPhase[p]
}

// AllStates returns every dialogue state.
func AllStates() []State {
	return []State{
		StateGreeting,
		StateSpinSituation,
		StateSpinProblem,
		StateSpinImplication,
		StateSpinNeedPayoff,
		StatePresentation,
		StateClose,
		StateHandleObjection,
		StateSoftClose,
		StateSuccess,
	}
}

// IsValid reports whether s is a member of the fixed state set.
func (s State) IsValid() bool {
	switch s {
	case StateGreeting, StateSpinSituation, StateSpinProblem, StateSpinImplication,
		StateSpinNeedPayoff, StatePresentation, StateClose, StateHandleObjection,
		StateSoftClose, StateSuccess:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the state ends the conversation.
func (s State) IsTerminal() bool {
	return s == StateSuccess || s == StateSoftClose
}

// Phase returns the SPIN phase for a SPIN state, or "" for non-SPIN states.
func (s State) Phase() SpinPhase {
	switch s {
	case StateSpinSituation:
		return PhaseSituation
	case StateSpinProblem:
		return PhaseProblem
	case StateSpinImplication:
		return PhaseImplication
	case StateSpinNeedPayoff:
		return PhaseNeedPayoff
	default:
		return ""
	}
}

// IsSpin reports whether the state belongs to the SPIN question sequence.
func (s State) IsSpin() bool {
	return s.Phase() != ""
}

// NextPhase returns the phase after p, or false after need_payoff.
func NextPhase(p SpinPhase) (SpinPhase, bool) {
	for i, ph := range SpinPhases {
		if ph == p && i < len(SpinPhases)-1 {
			return SpinPhases[i+1], true
		}
	}
	return "", false
}

// PhaseIndex returns the position of p in the SPIN sequence, or -1.
func PhaseIndex(p SpinPhase) int {
	for i, ph := range SpinPhases {
		if ph == p {
			return i
		}
	}
	return -1
}

func (s State) String() string { return string(s) }
