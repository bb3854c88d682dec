package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/RivenKid69/crm-sales-bot/internal/embedding"
	"github.com/RivenKid69/crm-sales-bot/internal/model"
)

// fakeEmbedder returns a fixed vector and counts calls.
type fakeEmbedder struct {
	vec   embedding.Vector
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (embedding.Vector, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func (f *fakeEmbedder) Dims() int    { return len(f.vec) }
func (f *fakeEmbedder) Name() string { return "fake" }

func testBase() *Base {
	return &Base{
		Company: "Wipon",
		Facts: []Fact{
			{ID: "tariffs", Category: "pricing", Topic: "tariffs",
				Keywords: []string{"тариф", "цена", "стоит", "сколько"},
				Priority: 9, Text: "Тарифы от 5,990 тг."},
			{ID: "trial", Category: "pricing", Topic: "trial",
				Keywords: []string{"пробный", "бесплатно"},
				Priority: 7, Text: "Пробный период 14 дней."},
			{ID: "kaspi", Category: "integrations", Topic: "kaspi",
				Keywords: []string{"kaspi", "каспи"},
				Priority: 8, Text: "Интеграция с Kaspi."},
		},
	}
}

func TestRetrieve_KeywordStageWinsWithoutEmbedding(t *testing.T) {
	// The embedder must not be called when keywords match.
	fake := &fakeEmbedder{err: errors.New("must not be called")}
	r := NewRetriever(testBase(), fake)

	matches, err := r.Retrieve(context.Background(), "Сколько стоит?", model.IntentPriceQuestion)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) == 0 {
		t.Fatal("no matches")
	}
	if matches[0].Fact.ID != "tariffs" {
		t.Errorf("top match = %s, want tariffs", matches[0].Fact.ID)
	}
	if matches[0].Method != "keyword" {
		t.Errorf("method = %s, want keyword", matches[0].Method)
	}
	if fake.calls != 0 {
		t.Errorf("embedder called %d times", fake.calls)
	}
}

func TestRetrieve_IntentNarrowsCategories(t *testing.T) {
	r := NewRetriever(testBase(), nil)

	// "kaspi" is a keyword of the integrations fact, but a price question
	// only searches pricing.
	matches, err := r.Retrieve(context.Background(), "kaspi", model.IntentPriceQuestion)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("got %v, want nothing outside pricing", matches)
	}

	matches, err = r.Retrieve(context.Background(), "работаете с kaspi?", model.IntentQuestionIntegrations)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Fact.ID != "kaspi" {
		t.Errorf("matches = %v, want [kaspi]", matches)
	}
}

func TestRetrieve_EmptyResultIsValid(t *testing.T) {
	r := NewRetriever(testBase(), nil)
	matches, err := r.Retrieve(context.Background(), "есть интеграция с SAP?", model.IntentPriceQuestion)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("got %v, want empty", matches)
	}
}

func TestRetrieve_WholeWordOutranksSubstring(t *testing.T) {
	base := &Base{Facts: []Fact{
		{ID: "sub", Category: "features", Keywords: []string{"кас"}, Priority: 5, Text: "a"},
		{ID: "word", Category: "features", Keywords: []string{"касса"}, Priority: 5, Text: "b"},
	}}
	r := NewRetriever(base, nil)

	matches, err := r.Retrieve(context.Background(), "нужна касса", model.IntentUnclear)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	// "касса" matches as a whole word (1.5), "кас" only as a prefix (1.0).
	if matches[0].Fact.ID != "word" {
		t.Errorf("top = %s, want word", matches[0].Fact.ID)
	}
}

func TestRetrieve_PriorityBreaksTies(t *testing.T) {
	base := &Base{Facts: []Fact{
		{ID: "low", Category: "pricing", Keywords: []string{"цена"}, Priority: 3, Text: "a"},
		{ID: "high", Category: "pricing", Keywords: []string{"цена"}, Priority: 9, Text: "b"},
		{ID: "mid", Category: "pricing", Keywords: []string{"цена"}, Priority: 5, Text: "c"},
	}}
	r := NewRetriever(base, nil)

	matches, err := r.Retrieve(context.Background(), "какая цена", model.IntentPriceQuestion)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != DefaultTopK {
		t.Fatalf("got %d matches, want %d", len(matches), DefaultTopK)
	}
	if matches[0].Fact.ID != "high" || matches[1].Fact.ID != "mid" {
		t.Errorf("order = %s, %s; want high, mid", matches[0].Fact.ID, matches[1].Fact.ID)
	}
}

func TestRetrieve_IndexNotReady(t *testing.T) {
	fake := &fakeEmbedder{vec: embedding.Vector{1, 0}}
	r := NewRetriever(testBase(), fake)

	// No fact carries a vector: a keyword miss cannot fall back.
	_, err := r.Retrieve(context.Background(), "что-то совсем другое", model.IntentUnclear)
	if !errors.Is(err, ErrIndexNotReady) {
		t.Fatalf("err = %v, want ErrIndexNotReady", err)
	}
}

func TestRetrieve_EmbeddingFallbackWithFloor(t *testing.T) {
	base := testBase()
	base.Facts[0].Embedding = embedding.Vector{1, 0} // sim 1.0 to the query
	base.Facts[1].Embedding = embedding.Vector{0, 1} // sim 0, below the floor
	base.Facts[2].Embedding = embedding.Vector{1, 0}

	fake := &fakeEmbedder{vec: embedding.Vector{1, 0}}
	r := NewRetriever(base, fake)

	matches, err := r.Retrieve(context.Background(), "подскажите по возможностям", model.IntentUnclear)
	if err != nil {
		t.Fatal(err)
	}
	if fake.calls != 1 {
		t.Errorf("embedder called %d times, want 1", fake.calls)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2 (orthogonal fact filtered)", len(matches))
	}
	for _, m := range matches {
		if m.Fact.ID == "trial" {
			t.Error("below-floor fact returned")
		}
		if m.Method != "embedding" {
			t.Errorf("method = %s, want embedding", m.Method)
		}
	}
}

func TestSetTopK(t *testing.T) {
	r := NewRetriever(testBase(), nil)
	r.SetTopK(1)

	matches, err := r.Retrieve(context.Background(), "сколько стоит пробный период", model.IntentPriceQuestion)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Errorf("got %d matches, want 1", len(matches))
	}
}
