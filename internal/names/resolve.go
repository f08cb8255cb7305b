package names

import "strings"

// strategy is one matching rule tried against every candidate in order.
// Keeping the rules in an explicit ordered list keeps the precedence contract
// visible; the UI depends on it.
type strategy struct {
	name  string
	match func(query, candidate string) bool
}

func runStrategies(query string, candidates []string, strategies []strategy) (string, bool) {
	if strings.TrimSpace(query) == "" {
		return "", false
	}
	for _, s := range strategies {
		for _, c := range candidates {
			if s.match(query, c) {
				return c, true
			}
		}
	}
	return "", false
}

func matchExact(query, candidate string) bool {
	q := Normalize(query)
	return q != "" && q == Normalize(candidate)
}

// matchSubstring is the last-resort containment check: either normalized name
// contains the other. Single words shorter than 3 runes are skipped to keep
// "al" from matching half the league.
func matchSubstring(query, candidate string) bool {
	q, c := Normalize(query), Normalize(candidate)
	if len(q) < 3 || len(c) < 3 {
		return false
	}
	return strings.Contains(c, q) || strings.Contains(q, c)
}
