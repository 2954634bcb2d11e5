package evaluator

import (
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[a-zA-Z0-9_-]+`)

var stopwords = map[string]bool{
	"the": true, "and": true, "that": true, "this": true, "with": true,
	"for": true, "from": true, "have": true, "has": true, "will": true,
	"would": true, "could": true, "should": true, "about": true,
	"your": true, "you": true, "our": true, "are": true, "can": true,
	"what": true, "when": true, "which": true, "how": true, "into": true,
	"their": true, "there": true, "been": true, "being": true, "was": true,
	"were": true, "they": true, "them": true, "than": true, "then": true,
	"also": true, "some": true, "more": true, "most": true, "such": true,
	"please": true, "need": true, "want": true, "like": true,
}

// synonyms for common business terms so fact matching is not purely lexical
var termSynonyms = map[string][]string{
	"pricing":        {"price", "cost", "costs", "fee", "fees", "rate", "rates", "charge"},
	"price":          {"pricing", "cost", "costs", "fee", "fees"},
	"information":    {"info", "details", "data"},
	"timeline":       {"timeframe", "schedule", "duration", "timing", "takes"},
	"implementation": {"setup", "deployment", "installation", "rollout"},
	"meeting":        {"appointment", "call", "session", "demo"},
	"support":        {"assistance", "help"},
}

// keyTerms extracts the content-bearing lowercase words of a phrase.
func keyTerms(text string) []string {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	seen := make(map[string]bool, len(words))
	var out []string
	for _, w := range words {
		if len(w) <= 3 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// termCoverage reports what fraction of target's key terms appear in text,
// counting synonyms as matches. Empty targets cover trivially.
func termCoverage(text, target string) float64 {
	terms := keyTerms(target)
	if len(terms) == 0 {
		return 1.0
	}
	lower := strings.ToLower(text)
	matched := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			matched++
			continue
		}
		for _, syn := range termSynonyms[term] {
			if strings.Contains(lower, syn) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(terms))
}

// mentions reports whether text covers most of target's key terms.
func mentions(text, target string) bool {
	return termCoverage(text, target) >= 0.6
}

var sentenceRe = regexp.MustCompile(`[.!?]+`)

func splitSentences(text string) []string {
	parts := sentenceRe.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func countAny(text string, indicators []string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, ind := range indicators {
		if strings.Contains(lower, ind) {
			n++
		}
	}
	return n
}
