package dialog

import (
	"testing"

	"github.com/RivenKid69/crm-sales-bot/internal/model"
)

func sessionIn(state model.State) *model.Session {
	s := model.NewSession()
	s.State = state
	return s
}

// Advancing from any state with any intent must land on a member of the
// fixed state set.
func TestAdvance_StateSetClosed(t *testing.T) {
	intents := []model.Intent{
		model.IntentPriceQuestion, model.IntentRejection, model.IntentInfoProvided,
		model.IntentSituationProvided, model.IntentProblemRevealed,
		model.IntentImplicationAcknowledged, model.IntentNeedExpressed,
		model.IntentObjectionPrice, model.IntentObjectionThink,
		model.IntentDemoRequest, model.IntentCallbackRequest,
		model.IntentContactProvided, model.IntentNoProblem,
		model.IntentGreeting, model.IntentAgreement, model.IntentFarewell,
		model.IntentGratitude, model.IntentSmallTalk, model.IntentUnclear,
	}
	for _, state := range model.AllStates() {
		for _, intent := range intents {
			s := sessionIn(state)
			res := Advance(s, "x", intent, nil)
			if !res.Next.IsValid() {
				t.Errorf("(%s, %s) -> %q: not a valid state", state, intent, res.Next)
			}
			if s.State != res.Next {
				t.Errorf("(%s, %s): session state %s != result %s", state, intent, s.State, res.Next)
			}
		}
	}
}

func TestAdvance_TerminalIsIdempotent(t *testing.T) {
	for _, state := range []model.State{model.StateSuccess, model.StateSoftClose} {
		s := sessionIn(state)
		res := Advance(s, "ещё что-то", model.IntentAgreement, map[string]any{model.SlotCompanySize: 5})
		if res.Next != state {
			t.Errorf("%s: moved to %s", state, res.Next)
		}
		if !res.Final || res.Action != ActionFinal {
			t.Errorf("%s: res = %+v, want final", state, res)
		}
		if len(s.Collected) != 0 || len(s.History) != 0 {
			t.Errorf("%s: terminal turn mutated the session", state)
		}
	}
}

func TestAdvance_RejectionOverridesEverything(t *testing.T) {
	for _, state := range model.AllStates() {
		if state.IsTerminal() {
			continue
		}
		s := sessionIn(state)
		res := Advance(s, "не интересно", model.IntentRejection, nil)
		if res.Next != model.StateSoftClose {
			t.Errorf("%s: rejection -> %s, want soft_close", state, res.Next)
		}
		if !res.Final {
			t.Errorf("%s: rejection result not final", state)
		}
	}
}

func TestAdvance_QuestionKeepsState(t *testing.T) {
	for _, state := range model.AllStates() {
		if state.IsTerminal() {
			continue
		}
		s := sessionIn(state)
		res := Advance(s, "сколько стоит", model.IntentPriceQuestion, nil)
		if res.Next != state {
			t.Errorf("%s: question moved state to %s", state, res.Next)
		}
		if res.Action != ActionAnswerQuestion {
			t.Errorf("%s: action = %s, want %s", state, res.Action, ActionAnswerQuestion)
		}
	}
}

func TestAdvance_SpinProgressNeedsData(t *testing.T) {
	// Phase intent without the required slot stays and asks a follow-up.
	s := sessionIn(model.StateSpinSituation)
	res := Advance(s, "работаем в экселе", model.IntentSituationProvided,
		map[string]any{model.SlotCurrentTools: "Excel"})
	if res.Next != model.StateSpinSituation {
		t.Errorf("moved to %s without company_size", res.Next)
	}
	if res.Rule != "spin_followup" {
		t.Errorf("rule = %s, want spin_followup", res.Rule)
	}
	if len(res.Missing) != 1 || res.Missing[0] != model.SlotCompanySize {
		t.Errorf("missing = %v, want [company_size]", res.Missing)
	}

	// The slot arriving completes the phase.
	res = Advance(s, "нас 15 человек", model.IntentSituationProvided,
		map[string]any{model.SlotCompanySize: 15})
	if res.Next != model.StateSpinProblem {
		t.Errorf("got %s, want spin_problem", res.Next)
	}
}

func TestAdvance_NoProblemSkipsToPresentation(t *testing.T) {
	s := sessionIn(model.StateSpinProblem)
	res := Advance(s, "нет", model.IntentNoProblem, nil)
	if res.Next != model.StatePresentation {
		t.Errorf("got %s, want presentation", res.Next)
	}
}

func TestAdvance_HighInterestSkipsPhases(t *testing.T) {
	s := sessionIn(model.StateSpinProblem)
	res := Advance(s, "теряем клиентов, очень срочно нужно решение", model.IntentProblemRevealed,
		map[string]any{
			model.SlotPainPoint:    "потеря клиентов",
			model.SlotHighInterest: true,
		})
	if res.Next != model.StatePresentation {
		t.Errorf("got %s, want presentation (implication and need_payoff skipped)", res.Next)
	}
}

func TestAdvance_DesiredOutcomeSkipsNeedPayoff(t *testing.T) {
	s := sessionIn(model.StateSpinImplication)
	res := Advance(s, "теряем 5 клиентов в месяц, хотим автоматизировать",
		model.IntentImplicationAcknowledged,
		map[string]any{
			model.SlotPainImpact:     "теряем 5 клиентов",
			model.SlotDesiredOutcome: "автоматизация",
		})
	if res.Next != model.StatePresentation {
		t.Errorf("got %s, want presentation (need_payoff skipped)", res.Next)
	}
}

func TestAdvance_EarlierPhaseIntentDoesNotAdvance(t *testing.T) {
	// A situation-level fact inside the implication phase is not progress,
	// even when the phase data happens to be complete.
	s := sessionIn(model.StateSpinImplication)
	s.Merge(map[string]any{model.SlotPainImpact: "теряем 5 клиентов"})
	res := Advance(s, "кстати нас 10 человек", model.IntentSituationProvided,
		map[string]any{model.SlotCompanySize: 10})
	if res.Next != model.StateSpinImplication {
		t.Errorf("got %s, want spin_implication", res.Next)
	}
}

func TestAdvance_ObjectionLoop(t *testing.T) {
	s := sessionIn(model.StatePresentation)

	res := Advance(s, "дорого", model.IntentObjectionPrice, nil)
	if res.Next != model.StateHandleObjection {
		t.Fatalf("objection: got %s, want handle_objection", res.Next)
	}

	res = Advance(s, "ну хорошо", model.IntentAgreement, nil)
	if res.Next != model.StateClose {
		t.Fatalf("after objection: got %s, want close", res.Next)
	}

	res = Advance(s, "надо подумать", model.IntentObjectionThink, nil)
	if res.Next != model.StateHandleObjection {
		t.Fatalf("objection at close: got %s, want handle_objection", res.Next)
	}
}

func TestAdvance_FullHappyPath(t *testing.T) {
	s := model.NewSession()

	steps := []struct {
		utterance string
		intent    model.Intent
		slots     map[string]any
		want      model.State
	}{
		{"здравствуйте", model.IntentGreeting, nil, model.StateSpinSituation},
		{"у нас 15 человек", model.IntentSituationProvided,
			map[string]any{model.SlotCompanySize: 15}, model.StateSpinProblem},
		{"теряем клиентов", model.IntentProblemRevealed,
			map[string]any{model.SlotPainPoint: "потеря клиентов"}, model.StateSpinImplication},
		{"теряем 5 клиентов в месяц", model.IntentImplicationAcknowledged,
			map[string]any{model.SlotPainImpact: "теряем 5 клиентов"}, model.StateSpinNeedPayoff},
		{"хотим навести порядок", model.IntentNeedExpressed,
			map[string]any{model.SlotDesiredOutcome: "порядок в данных"}, model.StatePresentation},
		{"давайте демо", model.IntentDemoRequest, nil, model.StateClose},
		{"мой номер +7 777 123 45 67", model.IntentContactProvided,
			map[string]any{model.SlotContactInfo: "+7 777 123 45 67"}, model.StateSuccess},
	}
	for i, st := range steps {
		res := Advance(s, st.utterance, st.intent, st.slots)
		if res.Next != st.want {
			t.Fatalf("step %d (%s): got %s, want %s", i, st.intent, res.Next, st.want)
		}
	}
	if !s.State.IsTerminal() {
		t.Errorf("final state %s not terminal", s.State)
	}
	if len(s.History) != len(steps) {
		t.Errorf("history has %d records, want %d", len(s.History), len(steps))
	}
}

func TestAdvance_UnclearStays(t *testing.T) {
	s := sessionIn(model.StatePresentation)
	res := Advance(s, "ъъъ", model.IntentUnclear, nil)
	if res.Next != model.StatePresentation {
		t.Errorf("got %s, want presentation", res.Next)
	}
	if res.Action != ActionContinue {
		t.Errorf("action = %s, want %s", res.Action, ActionContinue)
	}
}

func TestValidateRules(t *testing.T) {
	if defects := ValidateRules(); len(defects) != 0 {
		t.Errorf("rule table defects: %v", defects)
	}
}
