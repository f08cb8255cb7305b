package service

import (
	"fmt"
	"time"
)

// Cache keys are plain `<prefix>_<discriminators>` strings shared across
// routes and the background refresher; the format is load-bearing. Schema
// changes to a payload bump the version in the prefix (v2).
const (
	KeyOdds                 = "odds_v2"
	keyPlayerPropsPrefix    = "player_props_v2_"
	keyTeamDefensePrefix    = "team_defense_stats_"
	keyLeagueRankingsPrefix = "league_defense_rankings_"
)

// eastern is the league's home timezone; date-scoped keys roll over on
// Eastern midnight, not UTC.
var eastern = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		// Unreachable once the binary embeds time/tzdata; kept so tests and
		// tools that link this package alone still get a sane zone.
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

// KeyPlayerProps is the derived player-props key for the given instant's
// Eastern date.
func KeyPlayerProps(t time.Time) string {
	return keyPlayerPropsPrefix + t.In(eastern).Format("2006-01-02")
}

// KeyShotChart keys a player's aggregated shot zones. opponent is a team
// abbreviation or empty for all opponents.
func KeyShotChart(playerID int64, opponent, season string) string {
	if opponent == "" {
		opponent = "none"
	}
	return fmt.Sprintf("shot_enhanced_%d_%s_%s", playerID, opponent, season)
}

// KeyTeamDefense keys one team's defense-vs-position stats.
func KeyTeamDefense(teamAbbr, season string) string {
	return keyTeamDefensePrefix + teamAbbr + "_" + season
}

// KeyLeagueRankings keys the league-wide defense rankings.
func KeyLeagueRankings(season string) string {
	return keyLeagueRankingsPrefix + season
}
