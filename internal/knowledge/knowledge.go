// Package knowledge holds the read-only product fact base and the hybrid
// retriever: deterministic keyword search first, embedding similarity as the
// fallback. The fact set is loaded once at startup and never mutated.
package knowledge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RivenKid69/crm-sales-bot/internal/embedding"
)

// Fact is one knowledge snippet. Immutable once loaded.
type Fact struct {
	ID        string           `yaml:"id" json:"id"`
	Category  string           `yaml:"category" json:"category"`
	Topic     string           `yaml:"topic" json:"topic"`
	Keywords  []string         `yaml:"keywords" json:"keywords"`
	Text      string           `yaml:"text" json:"text"`
	Priority  int              `yaml:"priority" json:"priority"`
	Embedding embedding.Vector `yaml:"-" json:"-"`
}

// Base is the knowledge base as a whole.
type Base struct {
	Company     string `yaml:"company" json:"company"`
	Description string `yaml:"description" json:"description"`
	Facts       []Fact `yaml:"facts" json:"facts"`
}

// Load reads a knowledge base from a YAML file and validates it.
func Load(path string) (*Base, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	var base Base
	if err := yaml.Unmarshal(b, &base); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}
	return &base, nil
}

// Validate checks structural invariants of the loaded base.
func (b *Base) Validate() error {
	seen := map[string]bool{}
	for i, f := range b.Facts {
		if f.ID == "" {
			return fmt.Errorf("fact %d: missing id", i)
		}
		if seen[f.ID] {
			return fmt.Errorf("fact %q: duplicate id", f.ID)
		}
		seen[f.ID] = true
		if f.Category == "" {
			return fmt.Errorf("fact %q: missing category", f.ID)
		}
		if f.Text == "" {
			return fmt.Errorf("fact %q: missing text", f.ID)
		}
		if f.Priority < 0 || f.Priority > 10 {
			return fmt.Errorf("fact %q: priority %d out of range", f.ID, f.Priority)
		}
	}
	return nil
}

// ByCategory returns the facts in a category, in registration order.
func (b *Base) ByCategory(category string) []Fact {
	var out []Fact
	for _, f := range b.Facts {
		if f.Category == category {
			out = append(out, f)
		}
	}
	return out
}

// ByTopic returns the fact for a topic, or false.
func (b *Base) ByTopic(topic string) (Fact, bool) {
	for _, f := range b.Facts {
		if f.Topic == topic {
			return f, true
		}
	}
	return Fact{}, false
}

// CompanyInfo returns the one-line company summary.
func (b *Base) CompanyInfo() string {
	return b.Company + ": " + b.Description
}
