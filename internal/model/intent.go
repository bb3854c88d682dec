package model

// Intent is a classified conversational intent.
type Intent string

const (
	// Tier 0: questions that are always answered in place.
	IntentPriceQuestion        Intent = "price_question"
	IntentPricingDetails       Intent = "pricing_details"
	IntentQuestionFeatures     Intent = "question_features"
	IntentQuestionIntegrations Intent = "question_integrations"
	IntentComparison           Intent = "comparison"

	// Tier 1: hard rejection.
	IntentRejection Intent = "rejection"

	// Tier 2: SPIN progress. info_provided is the raw signal; the four
	// phase intents are its phase-contextual relabelings.
	IntentInfoProvided            Intent = "info_provided"
	IntentSituationProvided       Intent = "situation_provided"
	IntentProblemRevealed         Intent = "problem_revealed"
	IntentImplicationAcknowledged Intent = "implication_acknowledged"
	IntentNeedExpressed           Intent = "need_expressed"

	// Tier 3: state-specific signals.
	IntentObjectionPrice      Intent = "objection_price"
	IntentObjectionNoTime     Intent = "objection_no_time"
	IntentObjectionThink      Intent = "objection_think"
	IntentObjectionCompetitor Intent = "objection_competitor"
	IntentDemoRequest         Intent = "demo_request"
	IntentCallbackRequest     Intent = "callback_request"
	IntentConsultationRequest Intent = "consultation_request"
	IntentContactProvided     Intent = "contact_provided"
	IntentNoProblem           Intent = "no_problem"

	// Tier 4: generic transitions.
	IntentGreeting  Intent = "greeting"
	IntentAgreement Intent = "agreement"
	IntentFarewell  Intent = "farewell"
	IntentGratitude Intent = "gratitude"
	IntentSmallTalk Intent = "small_talk"
	IntentUnclear   Intent = "unclear"
)

// Priority tiers. Lower wins: a question beats everything, a rejection beats
// everything except a question.
const (
	TierQuestion      = 0
	TierRejection     = 1
	TierSpinProgress  = 2
	TierStateSpecific = 3
	TierGeneric       = 4
)

var intentTiers = map[Intent]int{
	IntentPriceQuestion:        TierQuestion,
	IntentPricingDetails:       TierQuestion,
	IntentQuestionFeatures:     TierQuestion,
	IntentQuestionIntegrations: TierQuestion,
	IntentComparison:           TierQuestion,

	IntentRejection: TierRejection,

	IntentInfoProvided:            TierSpinProgress,
	IntentSituationProvided:       TierSpinProgress,
	IntentProblemRevealed:         TierSpinProgress,
	IntentImplicationAcknowledged: TierSpinProgress,
	IntentNeedExpressed:           TierSpinProgress,

	IntentObjectionPrice:      TierStateSpecific,
	IntentObjectionNoTime:     TierStateSpecific,
	IntentObjectionThink:      TierStateSpecific,
	IntentObjectionCompetitor: TierStateSpecific,
	IntentDemoRequest:         TierStateSpecific,
	IntentCallbackRequest:     TierStateSpecific,
	IntentConsultationRequest: TierStateSpecific,
	IntentContactProvided:     TierStateSpecific,
	IntentNoProblem:           TierStateSpecific,

	IntentGreeting:  TierGeneric,
	IntentAgreement: TierGeneric,
	IntentFarewell:  TierGeneric,
	IntentGratitude: TierGeneric,
	IntentSmallTalk: TierGeneric,
	IntentUnclear:   TierGeneric,
}

// Tier returns the priority tier of the intent. Unknown intents fall into the
// generic tier.
func (i Intent) Tier() int {
	if t, ok := intentTiers[i]; ok {
		return t
	}
	return TierGeneric
}

// IsQuestion reports whether the intent is answered in place without a state
// transition.
func (i Intent) IsQuestion() bool {
	return i.Tier() == TierQuestion
}

// SpinProgressPhase maps a phase intent to the phase it advances, or false.
func (i Intent) SpinProgressPhase() (SpinPhase, bool) {
	switch i {
	case IntentSituationProvided:
		return PhaseSituation, true
	case IntentProblemRevealed:
		return PhaseProblem, true
	case IntentImplicationAcknowledged:
		return PhaseImplication, true
	case IntentNeedExpressed:
		return PhaseNeedPayoff, true
	default:
		return "", false
	}
}

func (i Intent) String() string { return string(i) }
