package scorer

import (
	"math"
	"strings"
	"unicode"
)

const minTermLength = 3

// QueryTerms normalizes a query into lexical search terms: lower-cased,
// every rune outside [a-z0-9] and whitespace replaced by a space, tokens
// shorter than three characters dropped. Repeated terms are kept.
func QueryTerms(query string) []string {
	normalized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case unicode.IsSpace(r):
			return r
		default:
			return ' '
		}
	}, strings.ToLower(query))

	var terms []string
	for _, tok := range strings.Fields(normalized) {
		if len(tok) >= minTermLength {
			terms = append(terms, tok)
		}
	}
	return terms
}

// LexicalScore counts the terms occurring anywhere in text as a substring.
// Each term in the list counts once, so a repeated query term counts twice.
func LexicalScore(terms []string, text string) float64 {
	lower := strings.ToLower(text)
	score := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			score++
		}
	}
	return float64(score)
}

// CosineSimilarity returns dot(a,b)/(|a||b|) in [-1, 1]. Vectors of different
// length, empty vectors and all-zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case math.IsNaN(sim):
		return 0
	case sim > 1:
		return 1
	case sim < -1:
		return -1
	}
	return sim
}
