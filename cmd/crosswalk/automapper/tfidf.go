package automapper

import (
	"math"
	"regexp"
	"strings"
)

// tokenPattern splits documents into word tokens of two or more characters.
var tokenPattern = regexp.MustCompile(`[a-z0-9][a-z0-9]+`)

// englishStopWords is the usual stop word list applied before weighting.
var englishStopWords = map[string]bool{
	"a": true, "about": true, "above": true, "after": true, "again": true,
	"against": true, "all": true, "am": true, "an": true, "and": true,
	"any": true, "are": true, "as": true, "at": true, "be": true,
	"because": true, "been": true, "before": true, "being": true, "below": true,
	"between": true, "both": true, "but": true, "by": true, "can": true,
	"did": true, "do": true, "does": true, "doing": true, "down": true,
	"during": true, "each": true, "few": true, "for": true, "from": true,
	"further": true, "had": true, "has": true, "have": true, "having": true,
	"he": true, "her": true, "here": true, "hers": true, "him": true,
	"his": true, "how": true, "i": true, "if": true, "in": true,
	"into": true, "is": true, "it": true, "its": true, "just": true,
	"me": true, "more": true, "most": true, "my": true, "no": true,
	"nor": true, "not": true, "now": true, "of": true, "off": true,
	"on": true, "once": true, "only": true, "or": true, "other": true,
	"our": true, "ours": true, "out": true, "over": true, "own": true,
	"same": true, "she": true, "so": true, "some": true, "such": true,
	"than": true, "that": true, "the": true, "their": true, "theirs": true,
	"them": true, "then": true, "there": true, "these": true, "they": true,
	"this": true, "those": true, "through": true, "to": true, "too": true,
	"under": true, "until": true, "up": true, "very": true, "was": true,
	"we": true, "were": true, "what": true, "when": true, "where": true,
	"which": true, "while": true, "who": true, "whom": true, "why": true,
	"will": true, "with": true, "you": true, "your": true, "yours": true,
}

func tokenize(doc string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(doc), -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if !englishStopWords[t] {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// tfidfCosine computes the cosine similarity of the TF-IDF vectors of two
// documents. The corpus is just the two documents, with smoothed IDF
// (ln((1+n)/(1+df)) + 1) and L2-normalized vectors. Any degenerate input
// (empty text, no shared vocabulary) scores zero.
func tfidfCosine(docA, docB string) float64 {
	tokensA := tokenize(docA)
	tokensB := tokenize(docB)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	countsA := termCounts(tokensA)
	countsB := termCounts(tokensB)

	vocab := make(map[string]bool, len(countsA)+len(countsB))
	for term := range countsA {
		vocab[term] = true
	}
	for term := range countsB {
		vocab[term] = true
	}

	var dot, normA, normB float64
	for term := range vocab {
		df := 0
		if countsA[term] > 0 {
			df++
		}
		if countsB[term] > 0 {
			df++
		}
		idf := math.Log(3.0/float64(1+df)) + 1

		wa := float64(countsA[term]) * idf
		wb := float64(countsB[term]) * idf
		dot += wa * wb
		normA += wa * wa
		normB += wb * wb
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}
