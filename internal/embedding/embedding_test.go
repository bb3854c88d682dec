package embedding

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Vector
		want  float64
		delta float64
	}{
		{"identical", Vector{1, 0, 0}, Vector{1, 0, 0}, 1.0, 0.001},
		{"orthogonal", Vector{1, 0, 0}, Vector{0, 1, 0}, 0.0, 0.001},
		{"opposite", Vector{1, 0, 0}, Vector{-1, 0, 0}, -1.0, 0.001},
		{"45 degrees", Vector{1, 1, 0}, Vector{1, 0, 0}, 0.707, 0.01},
		{"empty", Vector{}, Vector{}, 0.0, 0.001},
		{"length mismatch", Vector{1, 0}, Vector{1, 0, 0}, 0.0, 0.001},
		{"zero vector", Vector{0, 0, 0}, Vector{1, 0, 0}, 0.0, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.delta {
				t.Errorf("CosineSimilarity(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("SALESBOT_EMBED_PROVIDER", "")
	t.Setenv("SALESBOT_EMBED_MODEL", "")
	t.Setenv("SALESBOT_EMBED_URL", "")
	if e := NewFromEnv(); e != nil {
		t.Error("expected nil embedder with no provider configured")
	}

	t.Setenv("SALESBOT_EMBED_PROVIDER", "ollama")
	e := NewFromEnv()
	if e == nil {
		t.Fatal("expected ollama embedder")
	}
	if e.Name() != "ollama/nomic-embed-text" {
		t.Errorf("name = %s", e.Name())
	}
}
