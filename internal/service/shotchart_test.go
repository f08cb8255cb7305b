package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/upstream/nba"
)

type fakeShots struct {
	resp  *nba.Response
	err   error
	calls int
}

func (f *fakeShots) ShotChartDetail(context.Context, int64, int64, string) (*nba.Response, error) {
	f.calls++
	return f.resp, f.err
}

// shotResponse builds a shotchartdetail-shaped response. Each row:
// zone, made flag, shot type.
func shotResponse(rows ...[]interface{}) *nba.Response {
	return &nba.Response{ResultSets: []nba.ResultSet{{
		Name:    "Shot_Chart_Detail",
		Headers: []string{"SHOT_ZONE_BASIC", "SHOT_MADE_FLAG", "SHOT_TYPE"},
		RowSet:  rows,
	}}}
}

func shot(zone string, made int, shotType string) []interface{} {
	return []interface{}{zone, made, shotType}
}

func newShotHarness(shots *fakeShots) (*ShotChartService, *cache.TieredCache, *fakeRunner) {
	tc := cache.NewTieredCache(cache.NewMemoryCache(), nil)
	runner := &fakeRunner{}
	svc := NewShotChartService(tc, shots, nil, runner, time.Hour)
	return svc, tc, runner
}

func TestShotChartAggregatesZones(t *testing.T) {
	shots := &fakeShots{resp: shotResponse(
		shot("Restricted Area", 1, "2PT Field Goal"),
		shot("Restricted Area", 0, "2PT Field Goal"),
		shot("Above the Break 3", 1, "3PT Field Goal"),
		shot("Backcourt", 0, "3PT Field Goal"), // not one of the six zones
	)}
	svc, _, _ := newShotHarness(shots)

	resp := svc.Get(context.Background(), 2544, "", 2025, false)

	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}
	if len(resp.ShotZones) != len(ShotZones) {
		t.Fatalf("expected all %d zones present, got %d", len(ShotZones), len(resp.ShotZones))
	}
	ra := resp.ShotZones["Restricted Area"]
	if ra.FGA != 2 || ra.FGM != 1 || ra.FGPct != 0.5 || ra.Pts != 2 {
		t.Errorf("Restricted Area = %+v", ra)
	}
	atb := resp.ShotZones["Above the Break 3"]
	if atb.FGA != 1 || atb.FGM != 1 || atb.Pts != 3 {
		t.Errorf("Above the Break 3 = %+v", atb)
	}
	if mid := resp.ShotZones["Mid-Range"]; mid.FGA != 0 || mid.FGPct != 0 {
		t.Errorf("untouched zone must stay zeroed, got %+v", mid)
	}
}

func TestShotChartCachesAndBypasses(t *testing.T) {
	shots := &fakeShots{resp: shotResponse(shot("Mid-Range", 1, "2PT Field Goal"))}
	svc, _, _ := newShotHarness(shots)
	ctx := context.Background()

	svc.Get(ctx, 2544, "BOS", 2025, false)
	svc.Get(ctx, 2544, "BOS", 2025, false)
	if shots.calls != 1 {
		t.Errorf("second call must be cached, got %d fetches", shots.calls)
	}

	svc.Get(ctx, 2544, "BOS", 2025, true)
	if shots.calls != 2 {
		t.Errorf("bypassCache must refetch, got %d fetches", shots.calls)
	}
}

func TestShotChartDoesNotCacheEmptyAggregate(t *testing.T) {
	shots := &fakeShots{resp: shotResponse()}
	svc, _, _ := newShotHarness(shots)
	ctx := context.Background()

	svc.Get(ctx, 2544, "", 2025, false)
	svc.Get(ctx, 2544, "", 2025, false)

	if shots.calls != 2 {
		t.Errorf("zero-attempt response must not be cached, got %d fetches", shots.calls)
	}
}

func TestShotChartUpstreamFailureServesStale(t *testing.T) {
	shots := &fakeShots{resp: shotResponse(shot("Mid-Range", 1, "2PT Field Goal"))}
	svc, _, _ := newShotHarness(shots)
	ctx := context.Background()

	svc.Get(ctx, 2544, "", 2025, false)

	shots.err = errors.New("upstream down")
	resp := svc.Get(ctx, 2544, "", 2025, true)

	if !resp.Stale {
		t.Error("fallback must be flagged stale")
	}
	if resp.Error == "" {
		t.Error("fallback must carry the upstream error")
	}
	if resp.ShotZones["Mid-Range"].FGA != 1 {
		t.Errorf("stale data must be served, got %+v", resp.ShotZones["Mid-Range"])
	}
}

func TestShotChartFailureWithoutCacheReportsError(t *testing.T) {
	shots := &fakeShots{err: errors.New("upstream down")}
	svc, _, _ := newShotHarness(shots)

	resp := svc.Get(context.Background(), 2544, "", 2025, false)

	if resp.Error == "" {
		t.Error("expected an in-body error")
	}
	if len(resp.ShotZones) != len(ShotZones) {
		t.Error("zones must be present even on failure")
	}
}

func TestShotChartUnknownOpponent(t *testing.T) {
	shots := &fakeShots{resp: shotResponse(shot("Mid-Range", 1, "2PT Field Goal"))}
	svc, _, _ := newShotHarness(shots)

	resp := svc.Get(context.Background(), 2544, "ZZZ", 2025, false)

	if resp.Error == "" {
		t.Error("unknown opponent must surface an in-body error")
	}
	if shots.calls != 0 {
		t.Error("unknown opponent must not reach upstream")
	}
}

func TestShotChartQueuesDefenseFetchOnRankingsMiss(t *testing.T) {
	shots := &fakeShots{resp: shotResponse(shot("Mid-Range", 1, "2PT Field Goal"))}
	tc := cache.NewTieredCache(cache.NewMemoryCache(), nil)
	runner := &fakeRunner{}
	defense := NewDefenseService(tc, &fakeStats{}, &fakePositions{}, 10, time.Hour)
	svc := NewShotChartService(tc, shots, defense, runner, time.Hour)

	resp := svc.Get(context.Background(), 2544, "BOS", 2025, false)

	if resp.OpponentRankings != nil {
		t.Error("cold cache must not produce rankings")
	}
	if len(runner.names) != 1 || runner.names[0] != "defense-BOS" {
		t.Errorf("expected queued defense fetch, got %v", runner.names)
	}
}
