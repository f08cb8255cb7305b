package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/names"
	"github.com/fortuna/courtside/internal/upstream/nba"
)

// ShotFetcher is the slice of the stats API the shot-chart service needs.
type ShotFetcher interface {
	ShotChartDetail(ctx context.Context, playerID, opponentID int64, season string) (*nba.Response, error)
}

// ShotZones are the six court zones every response carries, present even
// when a zone saw no attempts.
var ShotZones = []string{
	"Restricted Area",
	"In The Paint (Non-RA)",
	"Mid-Range",
	"Left Corner 3",
	"Right Corner 3",
	"Above the Break 3",
}

// ZoneStats aggregates one zone's attempts.
type ZoneStats struct {
	FGM   int     `json:"fgm"`
	FGA   int     `json:"fga"`
	FGPct float64 `json:"fgPct"`
	Pts   int     `json:"pts"`
}

// ShotChartResponse is the shot-chart route's body. The route always answers
// 200; upstream failures surface in Error alongside whatever stale data was
// available.
type ShotChartResponse struct {
	PlayerID         int64                `json:"playerId"`
	Season           string               `json:"season"`
	ShotZones        map[string]ZoneStats `json:"shotZones"`
	OpponentTeam     string               `json:"opponentTeam,omitempty"`
	OpponentRankings *DefenseRankings     `json:"opponentRankings,omitempty"`
	Stale            bool                 `json:"stale,omitempty"`
	Error            string               `json:"error,omitempty"`
	CachedAt         time.Time            `json:"cachedAt"`
}

// ShotChartService serves per-zone shooting splits, optionally against one
// opponent, decorated with that opponent's defensive rankings when cached.
type ShotChartService struct {
	cache     *cache.TieredCache
	shots     ShotFetcher
	defense   *DefenseService
	refresher TaskSubmitter
	cacheTTL  time.Duration
}

func NewShotChartService(c *cache.TieredCache, shots ShotFetcher, defense *DefenseService, refresher TaskSubmitter, cacheTTL time.Duration) *ShotChartService {
	return &ShotChartService{cache: c, shots: shots, defense: defense, refresher: refresher, cacheTTL: cacheTTL}
}

// Get returns the aggregated shot chart for a player. opponentAbbr may be
// empty for all opponents; bypassCache skips the read path but still writes.
func (s *ShotChartService) Get(ctx context.Context, playerID int64, opponentAbbr string, startYear int, bypassCache bool) *ShotChartResponse {
	season := nba.SeasonLabel(startYear)
	key := KeyShotChart(playerID, opponentAbbr, season)

	if !bypassCache {
		if payload, writtenAt, ok := s.cache.Get(ctx, key, s.cacheTTL); ok {
			var resp ShotChartResponse
			if err := json.Unmarshal(payload, &resp); err == nil {
				resp.CachedAt = writtenAt
				s.decorate(ctx, &resp, opponentAbbr, startYear)
				return &resp
			}
		}
	}

	resp, cacheable := s.fetch(ctx, playerID, opponentAbbr, season)
	if resp.Error != "" {
		if payload, writtenAt, ok := s.cache.GetStale(ctx, key); ok {
			var staleResp ShotChartResponse
			if err := json.Unmarshal(payload, &staleResp); err == nil {
				staleResp.Stale = true
				staleResp.CachedAt = writtenAt
				staleResp.Error = resp.Error
				s.decorate(ctx, &staleResp, opponentAbbr, startYear)
				return &staleResp
			}
		}
	} else if cacheable {
		if payload, err := json.Marshal(resp); err == nil {
			s.cache.Set(ctx, key, payload, s.cacheTTL)
		}
	}

	s.decorate(ctx, resp, opponentAbbr, startYear)
	return resp
}

// fetch pulls and aggregates shot events. The second return reports whether
// the result is worth caching: an all-zero aggregate usually means the
// upstream quietly served an empty row set, and caching it would pin a bad
// answer for the TTL.
func (s *ShotChartService) fetch(ctx context.Context, playerID int64, opponentAbbr, season string) (*ShotChartResponse, bool) {
	resp := &ShotChartResponse{
		PlayerID:  playerID,
		Season:    season,
		ShotZones: EmptyZones(),
		CachedAt:  time.Now().UTC(),
	}

	var opponentID int64
	if opponentAbbr != "" {
		team, ok := names.TeamByAbbr(opponentAbbr)
		if !ok {
			resp.Error = fmt.Sprintf("unknown opponent team %q", opponentAbbr)
			return resp, false
		}
		opponentID = team.NBAID
		resp.OpponentTeam = team.Abbr
	}

	detail, err := s.shots.ShotChartDetail(ctx, playerID, opponentID, season)
	if err != nil {
		log.Printf("[shotchart] fetch failed for player %d: %v", playerID, err)
		resp.Error = "shot chart data unavailable"
		return resp, false
	}

	totalFGA := 0
	for _, event := range nba.ParseShotEvents(detail) {
		zone, ok := resp.ShotZones[event.ZoneBasic]
		if !ok {
			// Backcourt heaves and other oddities stay out of the six zones.
			continue
		}
		zone.FGA++
		totalFGA++
		if event.Made {
			zone.FGM++
			zone.Pts += event.PointValue
		}
		resp.ShotZones[event.ZoneBasic] = zone
	}

	for name, zone := range resp.ShotZones {
		if zone.FGA > 0 {
			zone.FGPct = float64(zone.FGM) / float64(zone.FGA)
		}
		resp.ShotZones[name] = zone
	}

	return resp, totalFGA > 0
}

// decorate attaches opponent defensive rankings when they can be had without
// an upstream call. A full miss queues a background fetch so the next request
// can be decorated.
func (s *ShotChartService) decorate(ctx context.Context, resp *ShotChartResponse, opponentAbbr string, startYear int) {
	if opponentAbbr == "" || s.defense == nil {
		return
	}
	if rankings := s.defense.OpponentRankings(ctx, opponentAbbr, startYear); rankings != nil {
		resp.OpponentRankings = rankings
		return
	}
	if s.refresher != nil {
		s.refresher.Submit("defense-"+opponentAbbr, func(taskCtx context.Context) error {
			_, err := s.defense.TeamDefense(taskCtx, opponentAbbr, startYear)
			return err
		})
	}
}

// EmptyZones builds the six-zone scaffold with zeroed stats.
func EmptyZones() map[string]ZoneStats {
	zones := make(map[string]ZoneStats, len(ShotZones))
	for _, name := range ShotZones {
		zones[name] = ZoneStats{}
	}
	return zones
}
