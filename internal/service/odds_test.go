package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/odds"
)

type fakeFetcher struct {
	snap  *odds.Snapshot
	err   error
	calls int
}

func (f *fakeFetcher) FetchSnapshot(context.Context) (*odds.Snapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

type fakeLimiter struct {
	allow bool
	calls int
}

func (l *fakeLimiter) Allow(context.Context, string) bool {
	l.calls++
	return l.allow
}

type fakeRunner struct {
	names []string
}

func (r *fakeRunner) Submit(name string, _ func(context.Context) error) bool {
	r.names = append(r.names, name)
	return true
}

func testSnapshot() *odds.Snapshot {
	now := time.Now().UTC().Truncate(time.Second)
	return &odds.Snapshot{
		Games: []odds.GameOdds{
			{
				HomeTeam:     "Los Angeles Lakers",
				AwayTeam:     "Boston Celtics",
				CommenceTime: now.Add(3 * time.Hour),
				Bookmakers:   []odds.BookRow{{Bookmaker: "draftkings"}},
			},
		},
		LastUpdated: now,
		NextUpdate:  now.Add(5 * time.Minute),
	}
}

func newOddsHarness(t *testing.T, fetcher *fakeFetcher, limiter *fakeLimiter) (*OddsService, *cache.TieredCache, *fakeRunner) {
	t.Helper()
	tc := cache.NewTieredCache(cache.NewMemoryCache(), nil)
	runner := &fakeRunner{}
	svc := NewOddsService(tc, fetcher, limiter, runner, nil, 5*time.Minute, time.Hour)
	return svc, tc, runner
}

func seedSnapshot(t *testing.T, tc *cache.TieredCache, snap *odds.Snapshot, ttl time.Duration) {
	t.Helper()
	payload, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	tc.Set(context.Background(), KeyOdds, payload, ttl)
}

func TestQueryServesFreshCacheWithoutFetching(t *testing.T) {
	fetcher := &fakeFetcher{snap: testSnapshot()}
	limiter := &fakeLimiter{allow: true}
	svc, tc, _ := newOddsHarness(t, fetcher, limiter)
	seedSnapshot(t, tc, testSnapshot(), time.Hour)

	res := svc.Query(context.Background(), OddsQuery{Caller: "1.2.3.4"})

	if res.Status != http.StatusOK || !res.Body.Success {
		t.Fatalf("unexpected result: %+v", res)
	}
	if fetcher.calls != 0 {
		t.Errorf("fresh cache hit must not fetch upstream, got %d calls", fetcher.calls)
	}
	if limiter.calls != 0 {
		t.Errorf("fresh cache hit must not consume rate budget, got %d calls", limiter.calls)
	}
	if res.Body.Stale {
		t.Error("fresh snapshot must not be flagged stale")
	}
}

func TestQueryFetchesOnMissAndCaches(t *testing.T) {
	fetcher := &fakeFetcher{snap: testSnapshot()}
	svc, _, _ := newOddsHarness(t, fetcher, &fakeLimiter{allow: true})

	res := svc.Query(context.Background(), OddsQuery{Caller: "1.2.3.4"})
	if res.Status != http.StatusOK || !res.Body.Success {
		t.Fatalf("unexpected result: %+v", res)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected 1 upstream fetch, got %d", fetcher.calls)
	}

	svc.Query(context.Background(), OddsQuery{Caller: "1.2.3.4"})
	if fetcher.calls != 1 {
		t.Errorf("second query must hit cache, got %d fetches", fetcher.calls)
	}
}

func TestQueryRateLimitedWithStaleServesStale(t *testing.T) {
	fetcher := &fakeFetcher{snap: testSnapshot()}
	svc, tc, _ := newOddsHarness(t, fetcher, &fakeLimiter{allow: false})
	// Expired for the freshness window but still retrievable as stale.
	seedSnapshot(t, tc, testSnapshot(), time.Hour)
	svc.freshFor = 0

	res := svc.Query(context.Background(), OddsQuery{Caller: "1.2.3.4"})

	if res.Status != http.StatusOK || !res.Body.Success {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !res.Body.Stale {
		t.Error("rate-limited fallback must be flagged stale")
	}
	if fetcher.calls != 0 {
		t.Errorf("rate-limited caller must not fetch upstream, got %d calls", fetcher.calls)
	}
}

func TestQueryRateLimitedWithoutCacheReturns429(t *testing.T) {
	svc, _, _ := newOddsHarness(t, &fakeFetcher{snap: testSnapshot()}, &fakeLimiter{allow: false})

	res := svc.Query(context.Background(), OddsQuery{Caller: "1.2.3.4"})

	if res.Status != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", res.Status)
	}
	if res.Body.Success {
		t.Error("rate-limited response with no fallback must not report success")
	}
}

func TestQueryUpstreamFailureFallsBackToStale(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("upstream down")}
	svc, tc, _ := newOddsHarness(t, fetcher, &fakeLimiter{allow: true})
	seedSnapshot(t, tc, testSnapshot(), time.Hour)
	svc.freshFor = 0

	res := svc.Query(context.Background(), OddsQuery{Caller: "1.2.3.4"})

	if res.Status != http.StatusOK || !res.Body.Success {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !res.Body.Stale {
		t.Error("upstream failure fallback must be flagged stale")
	}
}

func TestQueryUpstreamFailureWithoutCacheIsEmptySuccess(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("upstream down")}
	svc, _, _ := newOddsHarness(t, fetcher, &fakeLimiter{allow: true})

	res := svc.Query(context.Background(), OddsQuery{Caller: "1.2.3.4"})

	if res.Status != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Status)
	}
	if !res.Body.Success || res.Body.Message == "" {
		t.Errorf("empty fallback must succeed with a message: %+v", res.Body)
	}
}

func TestQueryRefreshReturnsLoadingImmediately(t *testing.T) {
	fetcher := &fakeFetcher{snap: testSnapshot()}
	svc, tc, runner := newOddsHarness(t, fetcher, &fakeLimiter{allow: true})
	seedSnapshot(t, tc, testSnapshot(), time.Hour)

	res := svc.Query(context.Background(), OddsQuery{Caller: "1.2.3.4", Refresh: true})

	if !res.Body.Loading {
		t.Error("refresh must return a loading response")
	}
	if fetcher.calls != 0 {
		t.Error("refresh must not fetch synchronously")
	}
	if len(runner.names) != 1 {
		t.Fatalf("expected one submitted task, got %v", runner.names)
	}
	if _, _, ok := tc.Get(context.Background(), KeyOdds, time.Hour); ok {
		t.Error("refresh must drop the cached snapshot")
	}
}

func TestQueryRefreshRateLimitedKeepsCache(t *testing.T) {
	fetcher := &fakeFetcher{snap: testSnapshot()}
	limiter := &fakeLimiter{allow: false}
	svc, tc, runner := newOddsHarness(t, fetcher, limiter)
	seedSnapshot(t, tc, testSnapshot(), time.Hour)

	res := svc.Query(context.Background(), OddsQuery{Caller: "1.2.3.4", Refresh: true})

	if limiter.calls != 1 {
		t.Fatalf("refresh must consume rate budget, got %d limiter calls", limiter.calls)
	}
	if res.Status != http.StatusOK || !res.Body.Success {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !res.Body.Stale {
		t.Error("denied refresh must serve the cached snapshot flagged stale")
	}
	if len(runner.names) != 0 {
		t.Errorf("denied refresh must not queue a task, got %v", runner.names)
	}
	if _, _, ok := tc.GetStale(context.Background(), KeyOdds); !ok {
		t.Error("denied refresh must leave the cached snapshot intact")
	}
}

func TestQueryRefreshRateLimitedWithoutCacheReturns429(t *testing.T) {
	svc, _, runner := newOddsHarness(t, &fakeFetcher{snap: testSnapshot()}, &fakeLimiter{allow: false})

	res := svc.Query(context.Background(), OddsQuery{Caller: "1.2.3.4", Refresh: true})

	if res.Status != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", res.Status)
	}
	if len(runner.names) != 0 {
		t.Errorf("denied refresh must not queue a task, got %v", runner.names)
	}
}

func TestQueryTeamFilter(t *testing.T) {
	svc, tc, _ := newOddsHarness(t, &fakeFetcher{}, &fakeLimiter{allow: true})
	seedSnapshot(t, tc, testSnapshot(), time.Hour)

	res := svc.Query(context.Background(), OddsQuery{Team: "Lakers"})
	rows, ok := res.Body.Data.([]odds.BookRow)
	if !ok || len(rows) != 1 {
		t.Fatalf("expected the matched game's bookmaker rows, got %#v", res.Body.Data)
	}

	res = svc.Query(context.Background(), OddsQuery{Team: "Sonics"})
	if !res.Body.Success {
		t.Error("unmatched team must still succeed")
	}
	if res.Body.Message == "" {
		t.Error("unmatched team must carry a message")
	}
}

func TestQueryPlayerFilterCarriesConsensus(t *testing.T) {
	snap := testSnapshot()
	snap.Games[0].PlayerProps = map[string]map[string]odds.StatProps{
		"draftkings": {
			"Tyler Herro": {
				odds.StatPoints: {Kind: odds.KindLine, Line: &odds.LineOdds{Line: 22.5, Over: -110, Under: -110}},
			},
		},
		"fanduel": {
			"Tyler Herro": {
				odds.StatPoints: {Kind: odds.KindLine, Line: &odds.LineOdds{Line: 23.5, Over: -115, Under: -105}},
			},
		},
	}
	svc, tc, _ := newOddsHarness(t, &fakeFetcher{}, &fakeLimiter{allow: true})
	seedSnapshot(t, tc, snap, time.Hour)

	res := svc.Query(context.Background(), OddsQuery{Player: "Tyler Herro"})

	if len(res.Body.Consensus) != 1 {
		t.Fatalf("expected one consensus entry, got %v", res.Body.Consensus)
	}
	if got := res.Body.Consensus[0]; got.Stat != odds.StatPoints || got.Line != 23.0 {
		t.Errorf("consensus = %+v, want points at 23.0", got)
	}

	res = svc.Query(context.Background(), OddsQuery{Player: "LeBron James"})
	if res.Body.Consensus != nil {
		t.Errorf("unmatched player must not carry consensus, got %v", res.Body.Consensus)
	}
}

func TestRefreshWritesPropsIndex(t *testing.T) {
	snap := testSnapshot()
	snap.Games[0].PlayerProps = map[string]map[string]odds.StatProps{
		"draftkings": {
			"Tyler Herro": {
				odds.StatPoints: {Kind: odds.KindLine, Line: &odds.LineOdds{Line: 22.5, Over: -110, Under: -110}},
			},
		},
	}
	svc, tc, _ := newOddsHarness(t, &fakeFetcher{snap: snap}, &fakeLimiter{allow: true})

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	payload, _, ok := tc.GetStale(context.Background(), KeyPlayerProps(time.Now()))
	if !ok {
		t.Fatal("refresh must write the date-scoped props index")
	}
	var index map[string][]odds.BookRow
	if err := json.Unmarshal(payload, &index); err != nil {
		t.Fatal(err)
	}
	if len(index["Tyler Herro"]) != 1 {
		t.Errorf("index rows = %d, want 1", len(index["Tyler Herro"]))
	}
}

func TestClearSweepsPlayerPropKeys(t *testing.T) {
	svc, tc, _ := newOddsHarness(t, &fakeFetcher{}, &fakeLimiter{allow: true})
	ctx := context.Background()
	seedSnapshot(t, tc, testSnapshot(), time.Hour)
	tc.Set(ctx, KeyPlayerProps(time.Now()), []byte(`{}`), time.Hour)

	svc.Clear(ctx, true)

	if _, _, ok := tc.GetStale(ctx, KeyOdds); ok {
		t.Error("odds snapshot must be cleared")
	}
	if _, _, ok := tc.GetStale(ctx, KeyPlayerProps(time.Now())); ok {
		t.Error("player-props key must be cleared")
	}
}
