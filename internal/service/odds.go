package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/odds"
)

// SnapshotFetcher produces a fresh odds snapshot from the upstream provider.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context) (*odds.Snapshot, error)
}

// Limiter gates upstream fetches per caller. A nil-safe implementation lives
// in internal/ratelimit.
type Limiter interface {
	Allow(ctx context.Context, caller string) bool
}

// TaskSubmitter hands work to the background refresher without blocking.
type TaskSubmitter interface {
	Submit(name string, run func(context.Context) error) bool
}

// Notifier is told after every successful snapshot refresh. Used to push
// update events to websocket subscribers; failures there never surface here.
type Notifier interface {
	NotifyOddsUpdated(ctx context.Context, gameCount int, updatedAt time.Time)
}

// OddsResponse is the envelope every odds route returns. Data is always
// present, even when empty, so clients never branch on a missing field.
type OddsResponse struct {
	Success     bool        `json:"success"`
	Data        interface{} `json:"data"`
	LastUpdated *time.Time  `json:"lastUpdated,omitempty"`
	NextUpdate  *time.Time  `json:"nextUpdate,omitempty"`
	Stale       bool        `json:"stale,omitempty"`
	Loading     bool        `json:"loading,omitempty"`
	Message     string      `json:"message,omitempty"`
	// Consensus is set on player-filtered responses only.
	Consensus []odds.StatConsensus `json:"consensus,omitempty"`
}

// OddsResult pairs the response body with the status the handler should write.
type OddsResult struct {
	Status int
	Body   OddsResponse
}

// OddsQuery carries the request parameters for a single odds lookup.
type OddsQuery struct {
	Team    string
	Player  string
	Caller  string
	Refresh bool
}

// OddsService owns the odds snapshot lifecycle: cache reads, rate-limited
// upstream refreshes, stale fallbacks, and the filtered views the routes
// serve.
type OddsService struct {
	cache     *cache.TieredCache
	fetcher   SnapshotFetcher
	limiter   Limiter
	refresher TaskSubmitter
	notifier  Notifier

	freshFor time.Duration
	cacheTTL time.Duration
}

// NewOddsService wires the odds service. freshFor is how old a cached
// snapshot may be and still be served without an upstream call; cacheTTL is
// the in-process retention for written snapshots. notifier may be nil.
func NewOddsService(c *cache.TieredCache, fetcher SnapshotFetcher, limiter Limiter, refresher TaskSubmitter, notifier Notifier, freshFor, cacheTTL time.Duration) *OddsService {
	return &OddsService{
		cache:     c,
		fetcher:   fetcher,
		limiter:   limiter,
		refresher: refresher,
		notifier:  notifier,
		freshFor:  freshFor,
		cacheTTL:  cacheTTL,
	}
}

// Query serves one odds request end to end. A fresh cached snapshot is served
// directly; otherwise the caller's rate-limit budget decides between an
// upstream fetch and a stale fallback. refresh=1 spends the same budget, then
// drops the cache, queues an async refetch, and returns a loading response
// immediately.
func (s *OddsService) Query(ctx context.Context, q OddsQuery) OddsResult {
	if q.Refresh {
		return s.forceRefresh(ctx, q)
	}

	snap, stale, ok := s.loadSnapshot(ctx)
	if !ok {
		if !s.limiter.Allow(ctx, q.Caller) {
			if staleSnap, _, found := s.staleSnapshot(ctx); found {
				log.Printf("[odds] rate limited caller %s, serving stale snapshot", q.Caller)
				return s.shape(staleSnap, q, true)
			}
			return OddsResult{
				Status: http.StatusTooManyRequests,
				Body:   OddsResponse{Success: false, Data: []interface{}{}, Message: "Rate limit exceeded, please retry shortly"},
			}
		}

		fetched, err := s.refreshSnapshot(ctx)
		if err != nil {
			log.Printf("[odds] upstream fetch failed: %v", err)
			if staleSnap, _, found := s.staleSnapshot(ctx); found {
				return s.shape(staleSnap, q, true)
			}
			return OddsResult{
				Status: http.StatusOK,
				Body:   OddsResponse{Success: true, Data: []interface{}{}, Message: "Odds data is loading, please try again shortly"},
			}
		}
		snap, stale = fetched, false
	}

	return s.shape(snap, q, stale)
}

// Clear drops the odds snapshot from both cache tiers. When playerProps is
// set, date-scoped player-prop keys are swept as well.
func (s *OddsService) Clear(ctx context.Context, playerProps bool) {
	s.cache.Delete(ctx, KeyOdds)
	if playerProps {
		s.cache.DeletePrefix(ctx, keyPlayerPropsPrefix)
	}
	log.Printf("[odds] cache cleared (playerProps=%v)", playerProps)
}

// Refresh fetches a new snapshot and writes it through both tiers. It is
// the body of background refresh tasks.
func (s *OddsService) Refresh(ctx context.Context) error {
	_, err := s.refreshSnapshot(ctx)
	return err
}

// forceRefresh spends the caller's rate-limit budget like any other upstream
// trigger. A denied caller keeps the cache intact and gets the usual
// stale-or-429 treatment.
func (s *OddsService) forceRefresh(ctx context.Context, q OddsQuery) OddsResult {
	if !s.limiter.Allow(ctx, q.Caller) {
		if staleSnap, _, found := s.staleSnapshot(ctx); found {
			log.Printf("[odds] rate limited refresh from caller %s, serving cached snapshot", q.Caller)
			return s.shape(staleSnap, q, true)
		}
		return OddsResult{
			Status: http.StatusTooManyRequests,
			Body:   OddsResponse{Success: false, Data: []interface{}{}, Message: "Rate limit exceeded, please retry shortly"},
		}
	}

	s.cache.Delete(ctx, KeyOdds)
	s.refresher.Submit("odds-refresh", s.Refresh)
	return OddsResult{
		Status: http.StatusOK,
		Body:   OddsResponse{Success: true, Data: []interface{}{}, Loading: true, Message: "Refresh started"},
	}
}

// loadSnapshot reads the cached snapshot if one exists within the freshness
// window. A payload that no longer decodes is treated as a miss.
func (s *OddsService) loadSnapshot(ctx context.Context) (*odds.Snapshot, bool, bool) {
	payload, _, ok := s.cache.Get(ctx, KeyOdds, s.freshFor)
	if !ok {
		return nil, false, false
	}
	var snap odds.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		log.Printf("[odds] corrupt cached snapshot, refetching: %v", err)
		return nil, false, false
	}
	return &snap, false, true
}

func (s *OddsService) staleSnapshot(ctx context.Context) (*odds.Snapshot, time.Time, bool) {
	payload, writtenAt, ok := s.cache.GetStale(ctx, KeyOdds)
	if !ok {
		return nil, time.Time{}, false
	}
	var snap odds.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, time.Time{}, false
	}
	return &snap, writtenAt, true
}

func (s *OddsService) refreshSnapshot(ctx context.Context) (*odds.Snapshot, error) {
	snap, err := s.fetcher.FetchSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	s.cache.Set(ctx, KeyOdds, payload, s.cacheTTL)
	s.writePropsIndex(ctx, snap)

	if s.notifier != nil {
		s.notifier.NotifyOddsUpdated(ctx, len(snap.Games), snap.LastUpdated)
	}
	return snap, nil
}

// writePropsIndex derives today's flattened player-prop rows from the
// snapshot and caches them under the Eastern-date key. The snapshot stays
// authoritative for queries; this is the artifact the admin clear's
// playerProps sweep targets.
func (s *OddsService) writePropsIndex(ctx context.Context, snap *odds.Snapshot) {
	index := make(map[string][]odds.BookRow)
	for i := range snap.Games {
		for player, rows := range snap.Games[i].PlayerRowsByPlayer() {
			index[player] = append(index[player], rows...)
		}
	}
	if len(index) == 0 {
		return
	}
	payload, err := json.Marshal(index)
	if err != nil {
		return
	}
	s.cache.Set(ctx, KeyPlayerProps(time.Now()), payload, s.cacheTTL)
}

// shape applies the team/player filters and builds the response envelope.
// A filter that matches nothing is a successful empty response, not an error.
func (s *OddsService) shape(snap *odds.Snapshot, q OddsQuery, stale bool) OddsResult {
	resp := OddsResponse{Success: true, Stale: stale}
	if !snap.LastUpdated.IsZero() {
		resp.LastUpdated = &snap.LastUpdated
	}
	if !snap.NextUpdate.IsZero() {
		resp.NextUpdate = &snap.NextUpdate
	}

	switch {
	case q.Player != "":
		rows := snap.FindPlayerRows(q.Player)
		resp.Data = rows
		if len(rows) == 0 {
			resp.Message = fmt.Sprintf("No props found for player %q", q.Player)
		} else {
			resp.Consensus = odds.Consensus(rows)
		}
	case q.Team != "":
		game := snap.FindGame(q.Team)
		if game == nil {
			resp.Data = []interface{}{}
			resp.Message = fmt.Sprintf("No game found for team %q", q.Team)
		} else {
			resp.Data = game.Bookmakers
		}
	default:
		resp.Data = snap.Games
	}

	return OddsResult{Status: http.StatusOK, Body: resp}
}
