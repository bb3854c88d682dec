package nlu

import (
	"sort"
	"strings"

	"github.com/RivenKid69/crm-sales-bot/internal/model"
)

// Classifier thresholds, mirrors the tuning of the production bot.
const (
	highConfidence = 0.7
	minConfidence  = 0.3
	rootMatchUnit  = 0.35
	phraseBonus    = 0.25
	gapBonus       = 0.2
)

// ScoredIntent is one ranked candidate.
type ScoredIntent struct {
	Intent     model.Intent `json:"intent"`
	Confidence float64      `json:"confidence"`
}

// Classification is the full result for one utterance.
type Classification struct {
	Intent     model.Intent   `json:"intent"`
	Confidence float64        `json:"confidence"`
	Tier       int            `json:"tier"`
	Method     string         `json:"method"` // "slots", "context", "pattern", "stem"
	Candidates []ScoredIntent `json:"candidates,omitempty"`
}

// relabelByState is the phase-contextual relabeling table: the same raw
// "client stated a fact" signal carries a different intent per SPIN phase.
var relabelByState = map[model.State]model.Intent{
	model.StateSpinSituation:   model.IntentSituationProvided,
	model.StateSpinProblem:     model.IntentProblemRevealed,
	model.StateSpinImplication: model.IntentImplicationAcknowledged,
	model.StateSpinNeedPayoff:  model.IntentNeedExpressed,
}

// RelabelSignal reinterprets the raw info_provided signal for the current
// state. Non-SPIN states and other signals pass through unchanged.
func RelabelSignal(signal model.Intent, state model.State) model.Intent {
	if signal == model.IntentInfoProvided {
		if r, ok := relabelByState[state]; ok {
			return r
		}
	}
	return signal
}

// Classify maps normalized tokens plus extracted slots and the current state
// to a ranked intent set. Only the highest-tier match drives the transition;
// ties within a tier resolve by pattern registration order.
func Classify(tokens []string, state model.State, slots map[string]any) Classification {
	if len(tokens) == 0 {
		return Classification{Intent: model.IntentUnclear, Method: "pattern"}
	}

	// Tier 0: always-answer questions, regardless of state.
	if c, ok := bestMatch(tokens, model.TierQuestion); ok {
		return c
	}

	// Tier 1: rejection. A leading bare negation is contextual; explicit
	// rejection phrasing is not.
	if c, ok := classifyRejection(tokens, state); ok {
		return c
	}

	// Tier 2: slot evidence is the raw "fact stated" signal, relabeled by
	// the current SPIN phase.
	if intent, ok := slotSignal(slots, state); ok {
		return Classification{Intent: intent, Confidence: 0.95, Tier: intent.Tier(), Method: "slots"}
	}

	// Tier 2: bare affirmations inside a SPIN phase count as phase progress.
	if c, ok := classifyShortAnswer(tokens, state); ok {
		return c
	}

	// Tiers 3 and 4: state-specific and generic patterns over the fast
	// root path.
	rootResult, rootOK := bestMatch(tokens, model.TierStateSpecific, model.TierGeneric)
	if rootOK && rootResult.Confidence >= highConfidence {
		return rootResult
	}

	// Morphological fallback: re-reduce every token aggressively and retry,
	// keeping whichever path scored higher.
	stemmed := make([]string, len(tokens))
	for i, t := range tokens {
		stemmed[i] = stemRu(t)
	}
	if c, ok := bestMatch(stemmed, model.TierQuestion, model.TierRejection, model.TierStateSpecific, model.TierGeneric); ok {
		if !rootOK || c.Confidence > rootResult.Confidence {
			c.Method = "stem"
			rootResult, rootOK = c, true
		}
	}
	if rootOK && rootResult.Confidence >= minConfidence {
		return rootResult
	}

	// Unmatched input degrades to a neutral classification, never an error.
	return Classification{Intent: model.IntentUnclear, Tier: model.TierGeneric, Method: "pattern"}
}

// slotSignal derives the data-driven intent from extracted slots. The
// relabeled fact signal only applies inside a SPIN phase; outside of it the
// same words are judged by patterns ("уже используем битрикс" at the
// presentation is an objection, not data).
func slotSignal(slots map[string]any, state model.State) (model.Intent, bool) {
	if _, spin := relabelByState[state]; spin {
		for _, name := range []string{
			model.SlotCompanySize, model.SlotPainPoint, model.SlotPainImpact,
			model.SlotCurrentTools, model.SlotBusinessType, model.SlotDesiredOutcome,
		} {
			if _, ok := slots[name]; ok {
				return RelabelSignal(model.IntentInfoProvided, state), true
			}
		}
	}
	if _, ok := slots[model.SlotValueAcknowledged]; ok && state == model.StateSpinNeedPayoff {
		return model.IntentNeedExpressed, true
	}
	if _, ok := slots[model.SlotContactInfo]; ok {
		return model.IntentContactProvided, true
	}
	return "", false
}

func classifyRejection(tokens []string, state model.State) (Classification, bool) {
	if c, ok := bestMatch(tokens, model.TierRejection); ok {
		return c, true
	}
	if !negationTokens[tokens[0]] {
		return Classification{}, false
	}
	// Bare "нет": a positive continuation is a redirect, not a refusal.
	for _, t := range tokens[1:] {
		for _, root := range positiveRoots {
			if strings.HasPrefix(t, root) {
				return Classification{Intent: model.IntentAgreement, Confidence: 0.8,
					Tier: model.TierGeneric, Method: "context"}, true
			}
		}
	}
	if state == model.StateSpinProblem {
		return Classification{Intent: model.IntentNoProblem, Confidence: 0.8,
			Tier: model.TierStateSpecific, Method: "context"}, true
	}
	return Classification{Intent: model.IntentRejection, Confidence: 0.8,
		Tier: model.TierRejection, Method: "context"}, true
}

// affirmationTokens are answers that mean "yes" once normalized.
var affirmationTokens = map[string]bool{
	"да": true, "конечно": true, "хорошо": true, "точно": true, "верно": true, "понятно": true,
}

func classifyShortAnswer(tokens []string, state model.State) (Classification, bool) {
	if !state.IsSpin() || len(tokens) > 3 {
		return Classification{}, false
	}
	for _, t := range tokens {
		if affirmationTokens[t] {
			return Classification{
				Intent:     RelabelSignal(model.IntentInfoProvided, state),
				Confidence: 0.75,
				Tier:       model.TierSpinProgress,
				Method:     "context",
			}, true
		}
	}
	return Classification{}, false
}

// bestMatch scores every registered pattern in the given tiers and returns
// the winner. Earlier-registered patterns win score ties.
func bestMatch(tokens []string, tiers ...int) (Classification, bool) {
	inTier := map[int]bool{}
	for _, t := range tiers {
		inTier[t] = true
	}

	type scored struct {
		intent model.Intent
		score  float64
		order  int
	}
	var hits []scored
	for order, p := range intentPatterns {
		if !inTier[p.intent.Tier()] {
			continue
		}
		score := scorePattern(p, tokens)
		if score > 0 {
			hits = append(hits, scored{p.intent, score, order})
		}
	}
	for tok, intent := range exactTokenIntents {
		if !inTier[intent.Tier()] {
			continue
		}
		for _, t := range tokens {
			if t == tok {
				hits = append(hits, scored{intent, 1, len(intentPatterns)})
				break
			}
		}
	}
	if len(hits) == 0 {
		return Classification{}, false
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].order < hits[j].order
	})

	best := hits[0]
	conf := best.score * rootMatchUnit
	if len(hits) > 1 && best.score-hits[1].score >= 2 {
		conf += gapBonus
	}
	if conf > 1 {
		conf = 1
	}

	cands := make([]ScoredIntent, 0, len(hits))
	for _, h := range hits {
		c := h.score * rootMatchUnit
		if c > 1 {
			c = 1
		}
		cands = append(cands, ScoredIntent{Intent: h.intent, Confidence: c})
	}

	return Classification{
		Intent:     best.intent,
		Confidence: conf,
		Tier:       best.intent.Tier(),
		Method:     "pattern",
		Candidates: cands,
	}, true
}

// scorePattern counts root hits (1 each) and phrase hits (length + bonus).
func scorePattern(p intentPattern, tokens []string) float64 {
	var score float64
	for _, root := range p.roots {
		for _, t := range tokens {
			if strings.HasPrefix(t, root) {
				score++
				break
			}
		}
	}
	for _, phrase := range p.phrases {
		if matchPhrase(phrase, tokens) {
			score += float64(len(phrase)) + phraseBonus
		}
	}
	return score
}

// matchPhrase reports whether the phrase roots match consecutive tokens.
func matchPhrase(phrase []string, tokens []string) bool {
	if len(phrase) > len(tokens) {
		return false
	}
	for start := 0; start+len(phrase) <= len(tokens); start++ {
		ok := true
		for i, root := range phrase {
			if !strings.HasPrefix(tokens[start+i], root) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
