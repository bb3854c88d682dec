// Package nlu implements the lexical normalizer, the hybrid intent
// classifier and the slot extractor of the dialogue engine. All matching is
// driven by the pattern dictionaries in patterns.go; the code here is only
// the matching machinery.
package nlu

import (
	"regexp"
	"strings"
)

var tokenRe = regexp.MustCompile(`[а-яёa-z0-9]+`)

// Normalize reduces an utterance to comparable root tokens: lower-case,
// punctuation stripped, typos and wrong-layout words fixed, inflected forms
// reduced to known roots. Unknown tokens pass through unchanged. Pure.
func Normalize(text string) []string {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, f := range fusedWords {
		lower = strings.ReplaceAll(lower, f[0], f[1])
	}

	raw := tokenRe.FindAllString(lower, -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if fix, ok := typoFixes[tok]; ok {
			tokens = append(tokens, strings.Fields(fix)...)
			continue
		}
		if conv, ok := convertLayout(tok); ok {
			tok = conv
		}
		tokens = append(tokens, reduceToken(tok))
	}
	return tokens
}

// convertLayout maps an all-latin token through the ЙЦУКЕН layout. The
// conversion is accepted only when it lands on a known word, so real latin
// vocabulary ("crm", "excel") survives untouched.
func convertLayout(tok string) (string, bool) {
	if latinKeepWords[tok] || !isLatin(tok) {
		return tok, false
	}
	var b strings.Builder
	for _, r := range tok {
		m, ok := layoutEnToRu[r]
		if !ok {
			return tok, false
		}
		b.WriteRune(m)
	}
	conv := b.String()
	if fix, ok := typoFixes[conv]; ok {
		return fix, true
	}
	if rootPrefix(conv) != "" {
		return conv, true
	}
	return tok, false
}

func isLatin(tok string) bool {
	for _, r := range tok {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return len(tok) > 0
}

// reduceToken is the two-stage root reduction: a fast lookup against the
// static root dictionary first, and a suffix-stripping morphological fallback
// for inflected forms the dictionary does not cover.
func reduceToken(tok string) string {
	if root := rootPrefix(tok); root != "" {
		return tok
	}
	if stem := stemRu(tok); rootPrefix(stem) != "" {
		return stem
	}
	return tok
}

// rootPrefix returns the longest known root that prefixes tok, or "".
func rootPrefix(tok string) string {
	runes := []rune(tok)
	for l := len(runes); l >= 2; l-- {
		if cand := string(runes[:l]); knownRoots[cand] {
			return cand
		}
	}
	return ""
}

// ruStemEndings are common Russian inflection endings, longest first.
var ruStemEndings = []string{
	"иями", "ением", "остью",
	"ями", "ами", "ует", "уют", "яют", "ают", "яет", "еет", "ает",
	"ого", "его", "ому", "ему", "ыми", "ими", "ите", "ете", "ешь", "ишь",
	"ать", "ять", "еть", "ить", "уть", "ост", "ени",
	"ый", "ий", "ой", "ая", "яя", "ое", "ее", "ые", "ие",
	"ов", "ев", "ей", "ах", "ях", "ам", "ям", "ом", "ем", "ут", "ют", "ат", "ят", "ет", "ит",
	"ла", "ли", "ло", "ть",
	"а", "я", "о", "е", "у", "ю", "ы", "и", "ь",
}

// stemRu strips inflection endings until the stem is short or no ending
// matches. A deliberately light analysis: just enough to land unseen forms on
// the root dictionary.
func stemRu(tok string) string {
	runes := []rune(tok)
	for len(runes) > 4 {
		matched := false
		for _, suf := range ruStemEndings {
			sr := []rune(suf)
			if len(runes)-len(sr) < 3 {
				continue
			}
			if string(runes[len(runes)-len(sr):]) == suf {
				runes = runes[:len(runes)-len(sr)]
				matched = true
				break
			}
		}
		if !matched {
			break
		}
	}
	return string(runes)
}
