package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/names"
	"github.com/fortuna/courtside/internal/upstream/depthchart"
	"github.com/fortuna/courtside/internal/upstream/nba"
)

// StatsFetcher is the slice of the stats API the defense service needs.
type StatsFetcher interface {
	TeamGameLog(ctx context.Context, teamID int64, season string) (*nba.Response, error)
	BoxScoreTraditional(ctx context.Context, gameID string) (*nba.Response, error)
}

// PositionFetcher resolves a team's roster to position buckets.
type PositionFetcher interface {
	FetchPositions(ctx context.Context, teamAbbr string) (map[string]string, error)
}

// defenseMaxGames caps how many recent games feed one team's computation;
// each game costs a boxscore call.
const defenseMaxGames = 50

// TeamDefense is what one team allows per game to each opposing position
// bucket, for one stat.
type TeamDefense struct {
	Team        string             `json:"team"`
	Season      string             `json:"season"`
	Metric      string             `json:"metric"`
	SampleGames int                `json:"sampleGames"`
	PerGame     map[string]float64 `json:"perGame"`
}

// DefenseRankings places one team's defense within the league. Rank 0 means
// per-position stats exist but the league-wide ordering has not been built.
type DefenseRankings struct {
	Team       string             `json:"team"`
	Season     string             `json:"season"`
	Rank       int                `json:"rank"`
	PerGame    map[string]float64 `json:"perGame"`
	ByPosition map[string]int     `json:"byPosition,omitempty"`
}

// leagueRankings is the cached league-wide payload.
type leagueRankings struct {
	Season string                     `json:"season"`
	Teams  map[string]DefenseRankings `json:"teams"`
}

// DefenseService computes defense-vs-position stats: per team, how many
// points it allows per game to each opposing position bucket.
type DefenseService struct {
	cache     *cache.TieredCache
	stats     StatsFetcher
	positions PositionFetcher
	maxGames  int
	cacheTTL  time.Duration
}

// NewDefenseService wires the defense service. maxGames <= 0 or above the
// cap falls back to the cap.
func NewDefenseService(c *cache.TieredCache, stats StatsFetcher, positions PositionFetcher, maxGames int, cacheTTL time.Duration) *DefenseService {
	if maxGames <= 0 || maxGames > defenseMaxGames {
		maxGames = defenseMaxGames
	}
	return &DefenseService{cache: c, stats: stats, positions: positions, maxGames: maxGames, cacheTTL: cacheTTL}
}

// TeamDefense returns cached defense-vs-position stats for a team, computing
// and caching them on a miss. startYear is the season's starting year.
func (s *DefenseService) TeamDefense(ctx context.Context, teamAbbr string, startYear int) (*TeamDefense, error) {
	season := nba.SeasonLabel(startYear)
	key := KeyTeamDefense(teamAbbr, season)

	if payload, _, ok := s.cache.Get(ctx, key, s.cacheTTL); ok {
		var td TeamDefense
		if err := json.Unmarshal(payload, &td); err == nil {
			return &td, nil
		}
	}

	td, err := s.compute(ctx, teamAbbr, startYear, true)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(td); err == nil {
		s.cache.Set(ctx, key, payload, s.cacheTTL)
	}
	return td, nil
}

// compute walks a team's recent games and sums the points opposing players
// scored, bucketed by position. Early in a season there may be no processable
// games yet, so the previous season is tried once.
func (s *DefenseService) compute(ctx context.Context, teamAbbr string, startYear int, allowFallback bool) (*TeamDefense, error) {
	team, ok := names.TeamByAbbr(teamAbbr)
	if !ok {
		return nil, fmt.Errorf("unknown team %q", teamAbbr)
	}
	season := nba.SeasonLabel(startYear)

	gameLog, err := s.stats.TeamGameLog(ctx, team.NBAID, season)
	if err != nil {
		return nil, fmt.Errorf("team game log for %s: %w", teamAbbr, err)
	}
	gameIDs := nba.ParseGameIDs(gameLog)
	if len(gameIDs) > s.maxGames {
		gameIDs = gameIDs[:s.maxGames]
	}

	totals := make(map[string]float64, len(depthchart.Buckets))
	rosterPositions := make(map[string]map[string]string)
	processed := 0

	for _, gameID := range gameIDs {
		box, err := s.stats.BoxScoreTraditional(ctx, gameID)
		if err != nil {
			log.Printf("[defense] boxscore %s failed, skipping: %v", gameID, err)
			continue
		}

		counted := false
		for _, line := range nba.ParseBoxScorePlayers(box) {
			if line.TeamID == team.NBAID || line.Pts == 0 {
				continue
			}
			bucket := s.bucketFor(ctx, rosterPositions, line)
			if bucket == "" {
				continue
			}
			totals[bucket] += line.Pts
			counted = true
		}
		if counted {
			processed++
		}
	}

	if processed == 0 {
		if allowFallback {
			log.Printf("[defense] no processable games for %s in %s, trying previous season", teamAbbr, season)
			return s.compute(ctx, teamAbbr, startYear-1, false)
		}
		return nil, fmt.Errorf("no processable games for %s in %s", teamAbbr, season)
	}

	perGame := make(map[string]float64, len(depthchart.Buckets))
	for _, bucket := range depthchart.Buckets {
		perGame[bucket] = round1(totals[bucket] / float64(processed))
	}

	return &TeamDefense{
		Team:        team.Abbr,
		Season:      season,
		Metric:      "pts",
		SampleGames: processed,
		PerGame:     perGame,
	}, nil
}

// bucketFor places an opposing player in a position bucket, preferring the
// published depth chart and falling back to a stat-profile heuristic on the
// player's listed start position.
func (s *DefenseService) bucketFor(ctx context.Context, rosters map[string]map[string]string, line nba.PlayerLine) string {
	if line.TeamAbbr != "" {
		roster, ok := rosters[line.TeamAbbr]
		if !ok {
			fetched, err := s.positions.FetchPositions(ctx, line.TeamAbbr)
			if err != nil {
				log.Printf("[defense] depth chart for %s unavailable: %v", line.TeamAbbr, err)
				fetched = map[string]string{}
			}
			rosters[line.TeamAbbr] = fetched
			roster = fetched
		}
		if bucket, ok := roster[names.Normalize(line.Player)]; ok {
			return bucket
		}
	}
	return heuristicBucket(line)
}

// heuristicBucket infers a bucket from the start position plus the stat
// line: playmaking guards are point guards, big-stat forwards slide to PF.
func heuristicBucket(line nba.PlayerLine) string {
	switch line.StartPos {
	case "G":
		if line.Ast >= 5 {
			return "PG"
		}
		return "SG"
	case "F":
		if line.Reb >= 8 || line.Blk >= 2 {
			return "PF"
		}
		return "SF"
	case "C":
		return "C"
	default:
		if line.Reb >= 7 {
			return "PF"
		}
		return "C"
	}
}

// OpponentRankings resolves a team's defensive rankings for the shot-chart
// route without ever blocking it: cached league rankings first, then cached
// team stats with an unranked placeholder, and finally nothing, which the
// caller pairs with a background fetch.
func (s *DefenseService) OpponentRankings(ctx context.Context, teamAbbr string, startYear int) *DefenseRankings {
	season := nba.SeasonLabel(startYear)

	if payload, _, ok := s.cache.Get(ctx, KeyLeagueRankings(season), s.cacheTTL); ok {
		var league leagueRankings
		if err := json.Unmarshal(payload, &league); err == nil {
			if r, ok := league.Teams[teamAbbr]; ok {
				return &r
			}
		}
	}

	if payload, _, ok := s.cache.Get(ctx, KeyTeamDefense(teamAbbr, season), s.cacheTTL); ok {
		var td TeamDefense
		if err := json.Unmarshal(payload, &td); err == nil {
			return &DefenseRankings{Team: td.Team, Season: td.Season, Rank: 0, PerGame: td.PerGame}
		}
	}

	return nil
}

// RefreshLeagueRankings recomputes and caches the league-wide ordering from
// every team's defense stats. It is expensive and meant for the background
// refresher or the admin route.
func (s *DefenseService) RefreshLeagueRankings(ctx context.Context, startYear int) error {
	season := nba.SeasonLabel(startYear)

	totals := make([]teamTotal, 0, len(names.Teams))

	for i := range names.Teams {
		abbr := names.Teams[i].Abbr
		td, err := s.TeamDefense(ctx, abbr, startYear)
		if err != nil {
			log.Printf("[defense] skipping %s in league rankings: %v", abbr, err)
			continue
		}
		var sum float64
		for _, v := range td.PerGame {
			sum += v
		}
		totals = append(totals, teamTotal{abbr: abbr, td: td, allowed: sum})
	}
	if len(totals) == 0 {
		return fmt.Errorf("no team defense stats available for %s", season)
	}

	// Rank 1 is the stingiest defense.
	sort.Slice(totals, func(i, j int) bool { return totals[i].allowed < totals[j].allowed })

	league := leagueRankings{Season: season, Teams: make(map[string]DefenseRankings, len(totals))}
	for rank, tt := range totals {
		league.Teams[tt.abbr] = DefenseRankings{
			Team:       tt.abbr,
			Season:     season,
			Rank:       rank + 1,
			PerGame:    tt.td.PerGame,
			ByPosition: positionRanks(totals, tt.abbr),
		}
	}

	payload, err := json.Marshal(league)
	if err != nil {
		return err
	}
	s.cache.Set(ctx, KeyLeagueRankings(season), payload, s.cacheTTL)
	log.Printf("[defense] league rankings rebuilt for %s (%d teams)", season, len(totals))
	return nil
}

type teamTotal struct {
	abbr    string
	td      *TeamDefense
	allowed float64
}

// positionRanks orders one team against the field for each bucket.
func positionRanks(totals []teamTotal, abbr string) map[string]int {
	ranks := make(map[string]int, len(depthchart.Buckets))
	for _, bucket := range depthchart.Buckets {
		rank := 1
		var own float64
		for _, tt := range totals {
			if tt.abbr == abbr {
				own = tt.td.PerGame[bucket]
			}
		}
		for _, tt := range totals {
			if tt.abbr != abbr && tt.td.PerGame[bucket] < own {
				rank++
			}
		}
		ranks[bucket] = rank
	}
	return ranks
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
