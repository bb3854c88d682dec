package nlu

import (
	"reflect"
	"testing"
)

func TestNormalize_Basic(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Сколько стоит?", []string{"сколько", "стоит"}},
		{"ПРИВЕТ!!!", []string{"привет"}},
		{"  добрый   день  ", []string{"добрый", "день"}},
		{"", nil},
		{"???", nil},
	}
	for _, tt := range tests {
		got := Normalize(tt.in)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Normalize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_Typos(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"скока стоит", []string{"сколько", "стоит"}},
		{"че по цене", []string{"что", "по", "цене"}},
		{"спс", []string{"спасибо"}},
		{"здрасте", []string{"здравствуйте"}},
		{"ок, давайте", []string{"хорошо", "давайте"}},
	}
	for _, tt := range tests {
		got := Normalize(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Normalize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_WrongLayout(t *testing.T) {
	// "ghbdtn" is "привет" typed on an EN layout.
	got := Normalize("ghbdtn")
	if !reflect.DeepEqual(got, []string{"привет"}) {
		t.Errorf("Normalize(ghbdtn) = %v, want [привет]", got)
	}
}

func TestNormalize_LatinVocabularySurvives(t *testing.T) {
	// Real latin words must not be layout-converted.
	for _, word := range []string{"crm", "api", "excel", "kaspi"} {
		got := Normalize(word)
		if len(got) != 1 || got[0] != word {
			t.Errorf("Normalize(%q) = %v, want [%s]", word, got, word)
		}
	}
}

func TestNormalize_FusedWords(t *testing.T) {
	got := Normalize("ненадо")
	if !reflect.DeepEqual(got, []string{"не", "надо"}) {
		t.Errorf("Normalize(ненадо) = %v, want [не надо]", got)
	}
}

func TestStemRu(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"менеджеров", "менеджер"},
		{"клиентами", "клиент"},
		{"кот", "кот"}, // too short to strip
	}
	for _, tt := range tests {
		if got := stemRu(tt.in); got != tt.want {
			t.Errorf("stemRu(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
