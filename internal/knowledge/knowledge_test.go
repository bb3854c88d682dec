package knowledge

import (
	"os"
	"path/filepath"
	"testing"
)

const testYAML = `
company: Wipon
description: Автоматизация торговли.
facts:
  - id: pricing-tariffs
    category: pricing
    topic: tariffs
    keywords: [тариф, цена, стоимость, сколько, стоит]
    priority: 9
    text: Тарифы от 5,990 тг в месяц.
  - id: features-kassa
    category: features
    topic: kassa
    keywords: [касса, чек, офд]
    priority: 8
    text: Онлайн-касса с передачей чеков в ОФД.
  - id: integrations-kaspi
    category: integrations
    topic: kaspi
    keywords: [kaspi, каспи]
    priority: 7
    text: Интеграция с Kaspi Pay и Kaspi QR.
`

func loadTestBase(t *testing.T) *Base {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "kb.yaml")
	if err := os.WriteFile(path, []byte(testYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	base, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return base
}

func TestLoad(t *testing.T) {
	base := loadTestBase(t)
	if base.Company != "Wipon" {
		t.Errorf("company = %q", base.Company)
	}
	if len(base.Facts) != 3 {
		t.Fatalf("got %d facts, want 3", len(base.Facts))
	}
	if base.Facts[0].Priority != 9 {
		t.Errorf("priority = %d, want 9", base.Facts[0].Priority)
	}
	if len(base.Facts[0].Keywords) != 5 {
		t.Errorf("keywords = %v", base.Facts[0].Keywords)
	}
	if got := base.CompanyInfo(); got != "Wipon: Автоматизация торговли." {
		t.Errorf("CompanyInfo() = %q", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		base Base
		ok   bool
	}{
		{"valid", Base{Facts: []Fact{{ID: "a", Category: "pricing", Text: "x", Priority: 5}}}, true},
		{"missing id", Base{Facts: []Fact{{Category: "pricing", Text: "x"}}}, false},
		{"duplicate id", Base{Facts: []Fact{
			{ID: "a", Category: "pricing", Text: "x"},
			{ID: "a", Category: "features", Text: "y"},
		}}, false},
		{"missing category", Base{Facts: []Fact{{ID: "a", Text: "x"}}}, false},
		{"missing text", Base{Facts: []Fact{{ID: "a", Category: "pricing"}}}, false},
		{"priority out of range", Base{Facts: []Fact{{ID: "a", Category: "pricing", Text: "x", Priority: 11}}}, false},
	}
	for _, tt := range tests {
		err := tt.base.Validate()
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestByCategory(t *testing.T) {
	base := loadTestBase(t)
	pricing := base.ByCategory("pricing")
	if len(pricing) != 1 || pricing[0].ID != "pricing-tariffs" {
		t.Errorf("ByCategory(pricing) = %v", pricing)
	}
	if got := base.ByCategory("absent"); len(got) != 0 {
		t.Errorf("ByCategory(absent) = %v", got)
	}
}

func TestByTopic(t *testing.T) {
	base := loadTestBase(t)
	f, ok := base.ByTopic("kassa")
	if !ok || f.ID != "features-kassa" {
		t.Errorf("ByTopic(kassa) = %v, %v", f, ok)
	}
	if _, ok := base.ByTopic("absent"); ok {
		t.Error("ByTopic(absent) found something")
	}
}
