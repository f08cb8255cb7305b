package names

import "strings"

// firstNameVariants maps common first-name abbreviations both ways, so
// "Alex Sarr" resolves against "Alexandre Sarr" and vice versa. Curated, not
// exhaustive; extend when an upstream book ships a new spelling.
var firstNameVariants = map[string][]string{
	"alex":      {"alexandre", "alexander", "alexey"},
	"alexandre": {"alex"},
	"alexander": {"alex"},
	"mike":      {"michael"},
	"michael":   {"mike"},
	"nic":       {"nicolas", "nikola"},
	"nick":      {"nicolas", "nikola"},
	"nicolas":   {"nic", "nick"},
	"cam":       {"cameron"},
	"cameron":   {"cam"},
	"herb":      {"herbert"},
	"herbert":   {"herb"},
	"moe":       {"moritz"},
	"moritz":    {"moe"},
	"pj":        {"paul"},
	"cj":        {"chris", "christopher"},
	"kj":        {"kenyon"},
	"matt":      {"matthew"},
	"matthew":   {"matt"},
	"josh":      {"joshua"},
	"joshua":    {"josh"},
	"zach":      {"zachary"},
	"zachary":   {"zach"},
}

// ResolvePlayer picks the candidate naming the same player as query.
// Strategies in order: exact normalized match, curated first-name variants,
// substring containment, last-name equality with first-initial compatibility
// (resolves "T. Herro" vs "Tyler Herro"). First hit wins, candidate order
// breaks ties. Heuristic: colliding names may resolve wrong, by contract.
func ResolvePlayer(query string, candidates []string) (string, bool) {
	return runStrategies(query, candidates, playerStrategies)
}

var playerStrategies = []strategy{
	{"exact", matchExact},
	{"nickname", matchFirstNameVariant},
	{"substring", matchSubstring},
	{"lastname-initial", matchLastNameInitial},
}

// matchFirstNameVariant matches when last names agree and the first names are
// known variants of each other.
func matchFirstNameVariant(query, candidate string) bool {
	q, c := nameParts(query), nameParts(candidate)
	if len(q) < 2 || len(c) < 2 {
		return false
	}
	if q[len(q)-1] != c[len(c)-1] {
		return false
	}
	if q[0] == c[0] {
		return true
	}
	for _, v := range firstNameVariants[q[0]] {
		if v == c[0] {
			return true
		}
	}
	return false
}

// matchLastNameInitial is the final fallback for abbreviated upstream formats:
// last names must be equal and the first initials must agree.
func matchLastNameInitial(query, candidate string) bool {
	q, c := nameParts(query), nameParts(candidate)
	if len(q) < 2 || len(c) < 2 {
		return false
	}
	if q[len(q)-1] != c[len(c)-1] {
		return false
	}
	return strings.HasPrefix(q[0], c[0][:1]) || strings.HasPrefix(c[0], q[0][:1])
}
