package names

import "strings"

// Team is one entry of the static NBA team directory. NBAID is the
// stats.nba.com team identifier.
type Team struct {
	Abbr     string `json:"abbr"`
	NBAID    int64  `json:"nbaId"`
	City     string `json:"city"`
	Nickname string `json:"nickname"`
	FullName string `json:"fullName"`
	// Aliases holds extra variants seen in upstream payloads beyond
	// city/nickname/full name ("LA Lakers", "Philadelphia Sixers", ...).
	Aliases []string `json:"-"`
}

// Teams is the static NBA team directory, doubling as the alias table for
// team-name resolution.
var Teams = []Team{
	{Abbr: "ATL", NBAID: 1610612737, City: "Atlanta", Nickname: "Hawks", FullName: "Atlanta Hawks"},
	{Abbr: "BOS", NBAID: 1610612738, City: "Boston", Nickname: "Celtics", FullName: "Boston Celtics"},
	{Abbr: "BKN", NBAID: 1610612751, City: "Brooklyn", Nickname: "Nets", FullName: "Brooklyn Nets"},
	{Abbr: "CHA", NBAID: 1610612766, City: "Charlotte", Nickname: "Hornets", FullName: "Charlotte Hornets"},
	{Abbr: "CHI", NBAID: 1610612741, City: "Chicago", Nickname: "Bulls", FullName: "Chicago Bulls"},
	{Abbr: "CLE", NBAID: 1610612739, City: "Cleveland", Nickname: "Cavaliers", FullName: "Cleveland Cavaliers", Aliases: []string{"Cavs"}},
	{Abbr: "DAL", NBAID: 1610612742, City: "Dallas", Nickname: "Mavericks", FullName: "Dallas Mavericks", Aliases: []string{"Mavs"}},
	{Abbr: "DEN", NBAID: 1610612743, City: "Denver", Nickname: "Nuggets", FullName: "Denver Nuggets"},
	{Abbr: "DET", NBAID: 1610612765, City: "Detroit", Nickname: "Pistons", FullName: "Detroit Pistons"},
	{Abbr: "GSW", NBAID: 1610612744, City: "Golden State", Nickname: "Warriors", FullName: "Golden State Warriors", Aliases: []string{"GS Warriors"}},
	{Abbr: "HOU", NBAID: 1610612745, City: "Houston", Nickname: "Rockets", FullName: "Houston Rockets"},
	{Abbr: "IND", NBAID: 1610612754, City: "Indiana", Nickname: "Pacers", FullName: "Indiana Pacers"},
	{Abbr: "LAC", NBAID: 1610612746, City: "Los Angeles", Nickname: "Clippers", FullName: "Los Angeles Clippers", Aliases: []string{"LA Clippers"}},
	{Abbr: "LAL", NBAID: 1610612747, City: "Los Angeles", Nickname: "Lakers", FullName: "Los Angeles Lakers", Aliases: []string{"LA Lakers"}},
	{Abbr: "MEM", NBAID: 1610612763, City: "Memphis", Nickname: "Grizzlies", FullName: "Memphis Grizzlies"},
	{Abbr: "MIA", NBAID: 1610612748, City: "Miami", Nickname: "Heat", FullName: "Miami Heat"},
	{Abbr: "MIL", NBAID: 1610612749, City: "Milwaukee", Nickname: "Bucks", FullName: "Milwaukee Bucks"},
	{Abbr: "MIN", NBAID: 1610612750, City: "Minnesota", Nickname: "Timberwolves", FullName: "Minnesota Timberwolves", Aliases: []string{"Wolves"}},
	{Abbr: "NOP", NBAID: 1610612740, City: "New Orleans", Nickname: "Pelicans", FullName: "New Orleans Pelicans", Aliases: []string{"Pels"}},
	{Abbr: "NYK", NBAID: 1610612752, City: "New York", Nickname: "Knicks", FullName: "New York Knicks", Aliases: []string{"NY Knicks"}},
	{Abbr: "OKC", NBAID: 1610612760, City: "Oklahoma City", Nickname: "Thunder", FullName: "Oklahoma City Thunder"},
	{Abbr: "ORL", NBAID: 1610612753, City: "Orlando", Nickname: "Magic", FullName: "Orlando Magic"},
	{Abbr: "PHI", NBAID: 1610612755, City: "Philadelphia", Nickname: "76ers", FullName: "Philadelphia 76ers", Aliases: []string{"Sixers", "Philadelphia Sixers"}},
	{Abbr: "PHX", NBAID: 1610612756, City: "Phoenix", Nickname: "Suns", FullName: "Phoenix Suns"},
	{Abbr: "POR", NBAID: 1610612757, City: "Portland", Nickname: "Trail Blazers", FullName: "Portland Trail Blazers", Aliases: []string{"Blazers"}},
	{Abbr: "SAC", NBAID: 1610612758, City: "Sacramento", Nickname: "Kings", FullName: "Sacramento Kings"},
	{Abbr: "SAS", NBAID: 1610612759, City: "San Antonio", Nickname: "Spurs", FullName: "San Antonio Spurs", Aliases: []string{"SA Spurs"}},
	{Abbr: "TOR", NBAID: 1610612761, City: "Toronto", Nickname: "Raptors", FullName: "Toronto Raptors"},
	{Abbr: "UTA", NBAID: 1610612762, City: "Utah", Nickname: "Jazz", FullName: "Utah Jazz"},
	{Abbr: "WAS", NBAID: 1610612764, City: "Washington", Nickname: "Wizards", FullName: "Washington Wizards", Aliases: []string{"Wiz"}},
}

// aliasGroups maps a normalized alias to the index of its team in Teams.
var aliasGroups = buildAliasGroups()

func buildAliasGroups() map[string]int {
	groups := make(map[string]int)
	for i, t := range Teams {
		for _, v := range t.variants() {
			groups[Normalize(v)] = i
		}
	}
	return groups
}

func (t Team) variants() []string {
	variants := []string{t.Abbr, t.FullName, t.Nickname, t.City}
	return append(variants, t.Aliases...)
}

// TeamByAbbr looks up a team by its abbreviation, case-insensitive.
func TeamByAbbr(abbr string) (Team, bool) {
	abbr = strings.ToUpper(strings.TrimSpace(abbr))
	for _, t := range Teams {
		if t.Abbr == abbr {
			return t, true
		}
	}
	return Team{}, false
}

// TeamByName resolves any known team variant to its directory entry.
func TeamByName(name string) (Team, bool) {
	if i, ok := aliasGroups[Normalize(name)]; ok {
		return Teams[i], true
	}
	return Team{}, false
}

// ResolveTeam picks the candidate that refers to the same team as query.
// Strategies are tried in order: exact normalized match, alias-table
// membership, substring containment. The first hit wins; candidate order
// breaks ties. Returns ("", false) when nothing matched.
func ResolveTeam(query string, candidates []string) (string, bool) {
	return runStrategies(query, candidates, teamStrategies)
}

var teamStrategies = []strategy{
	{"exact", matchExact},
	{"alias", matchTeamAlias},
	{"substring", matchSubstring},
}

// matchTeamAlias matches when both names resolve to the same alias group
// ("Lakers" vs "Los Angeles Lakers").
func matchTeamAlias(query, candidate string) bool {
	qi, qok := aliasGroups[Normalize(query)]
	ci, cok := aliasGroups[Normalize(candidate)]
	return qok && cok && qi == ci
}
