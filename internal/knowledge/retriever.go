package knowledge

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode"

	"github.com/RivenKid69/crm-sales-bot/internal/embedding"
	"github.com/RivenKid69/crm-sales-bot/internal/model"
)

// ErrIndexNotReady is returned by embedding retrieval when the vector
// index has not been built for the current base.
var ErrIndexNotReady = errors.New("knowledge: embedding index not ready")

const (
	// DefaultTopK bounds how many facts a single query returns.
	DefaultTopK = 2

	// similarityFloor filters out embedding matches that are not
	// actually about the query. Below it we prefer returning nothing.
	similarityFloor = 0.4

	// wordBonus rewards a keyword that matches on a word boundary
	// rather than inside a longer word.
	wordBonus = 0.5
)

// intentCategories narrows the search space per intent before scoring.
// An intent absent from the map searches the whole base.
var intentCategories = map[model.Intent][]string{
	model.IntentPriceQuestion:        {"pricing"},
	model.IntentPricingDetails:       {"pricing"},
	model.IntentQuestionFeatures:     {"features"},
	model.IntentQuestionIntegrations: {"integrations"},
	model.IntentComparison:           {"competitors", "features"},
	model.IntentObjectionPrice:       {"pricing", "competitors"},
	model.IntentObjectionCompetitor:  {"competitors"},
	model.IntentObjectionThink:       {"features", "pricing"},
	model.IntentObjectionNoTime:      {"features"},
	model.IntentDemoRequest:          {"features", "pricing"},
}

// Match is one retrieved fact with its score.
type Match struct {
	Fact  Fact
	Score float64
	// Method is "keyword" or "embedding".
	Method string
}

// Retriever answers fact lookups over a loaded base. The embedder is
// optional; with a nil embedder retrieval is keyword-only.
type Retriever struct {
	base     *Base
	embedder embedding.Embedder
	topK     int
}

// NewRetriever builds a retriever over base. embedder may be nil.
func NewRetriever(base *Base, embedder embedding.Embedder) *Retriever {
	return &Retriever{base: base, embedder: embedder, topK: DefaultTopK}
}

// SetTopK overrides the result cap. k < 1 resets to the default.
func (r *Retriever) SetTopK(k int) {
	if k < 1 {
		k = DefaultTopK
	}
	r.topK = k
}

// Retrieve returns up to topK facts relevant to the query. The keyword
// stage runs first and wins outright when it matches anything; the
// embedding stage runs only on a keyword miss. An empty result with a
// nil error means the base has nothing relevant, which is a valid
// answer the caller should surface honestly rather than pad.
func (r *Retriever) Retrieve(ctx context.Context, query string, intent model.Intent) ([]Match, error) {
	candidates := r.narrow(intent)
	if len(candidates) == 0 {
		return nil, nil
	}

	if matches := r.keywordSearch(query, candidates); len(matches) > 0 {
		return matches, nil
	}

	if r.embedder == nil {
		return nil, nil
	}
	return r.embeddingSearch(ctx, query, candidates)
}

func (r *Retriever) narrow(intent model.Intent) []Fact {
	cats, ok := intentCategories[intent]
	if !ok {
		return r.base.Facts
	}
	var out []Fact
	for _, c := range cats {
		out = append(out, r.base.ByCategory(c)...)
	}
	return out
}

// keywordSearch scores candidates by keyword overlap with the query.
// Substring hit scores 1, a hit on a word boundary scores 1.5. Ties
// break on priority, then on registration order.
func (r *Retriever) keywordSearch(query string, candidates []Fact) []Match {
	q := strings.ToLower(query)
	type scored struct {
		m   Match
		ord int
	}
	var hits []scored
	for i, f := range candidates {
		var score float64
		for _, kw := range f.Keywords {
			kw = strings.ToLower(kw)
			if kw == "" {
				continue
			}
			idx := strings.Index(q, kw)
			if idx < 0 {
				continue
			}
			score += 1
			if wholeWordAt(q, idx, len(kw)) {
				score += wordBonus
			}
		}
		if score > 0 {
			hits = append(hits, scored{m: Match{Fact: f, Score: score, Method: "keyword"}, ord: i})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].m.Score != hits[b].m.Score {
			return hits[a].m.Score > hits[b].m.Score
		}
		if hits[a].m.Fact.Priority != hits[b].m.Fact.Priority {
			return hits[a].m.Fact.Priority > hits[b].m.Fact.Priority
		}
		return hits[a].ord < hits[b].ord
	})
	if len(hits) > r.topK {
		hits = hits[:r.topK]
	}
	out := make([]Match, len(hits))
	for i, h := range hits {
		out[i] = h.m
	}
	return out
}

// wholeWordAt reports whether the match at [idx, idx+n) in s sits on
// word boundaries. regexp's \b treats Cyrillic letters as non-word
// characters, so the check is done by hand over runes.
func wholeWordAt(s string, idx, n int) bool {
	before := []rune(s[:idx])
	if len(before) > 0 && isWordRune(before[len(before)-1]) {
		return false
	}
	after := []rune(s[idx+n:])
	if len(after) > 0 && isWordRune(after[0]) {
		return false
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// embeddingSearch ranks candidates by cosine similarity to the query
// vector. Facts without a vector mean the index was never built.
func (r *Retriever) embeddingSearch(ctx context.Context, query string, candidates []Fact) ([]Match, error) {
	indexed := false
	for _, f := range candidates {
		if len(f.Embedding) > 0 {
			indexed = true
			break
		}
	}
	if !indexed {
		return nil, ErrIndexNotReady
	}

	qv, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	var hits []Match
	for _, f := range candidates {
		if len(f.Embedding) == 0 {
			continue
		}
		sim := embedding.CosineSimilarity(qv, f.Embedding)
		if sim < similarityFloor {
			continue
		}
		hits = append(hits, Match{Fact: f, Score: sim, Method: "embedding"})
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
	if len(hits) > r.topK {
		hits = hits[:r.topK]
	}
	return hits, nil
}
