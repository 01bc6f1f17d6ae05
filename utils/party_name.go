package utils

import "strings"

// PartyMatchThreshold is the similarity above which two party names are
// treated as the same entity.
const PartyMatchThreshold = 0.85

// legal-form words that ledgers and documents add or drop freely
var partyNoiseWords = map[string]bool{
	"m": true, "s": true, "the": true,
	"pvt": true, "private": true, "ltd": true, "limited": true,
	"llp": true, "llc": true, "inc": true, "co": true,
	"corp": true, "corporation": true, "company": true,
	"gmbh": true, "plc": true,
}

// PartyTokens lowercases a party name, splits it on non-alphanumerics and
// drops legal-form words.
func PartyTokens(name string) []string {
	var out []string
	for _, tok := range filenameSeparator.Split(strings.ToLower(name), -1) {
		if tok == "" || partyNoiseWords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// PartyNamesAgree reports whether a ledger party and a document party refer
// to the same entity: equal or contained after normalisation, or close by
// edit distance.
func PartyNamesAgree(ledger, document string) bool {
	a := strings.Join(PartyTokens(ledger), "")
	b := strings.Join(PartyTokens(document), "")
	if a == "" || b == "" {
		return false
	}
	if a == b || strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	return NameSimilarity(a, b) >= PartyMatchThreshold
}

// NameSimilarity returns 1 - levenshtein(a, b) / max(len(a), len(b)).
func NameSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(ra, rb))/float64(longest)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
