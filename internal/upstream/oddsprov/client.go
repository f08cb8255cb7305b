package oddsprov

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/fortuna/courtside/internal/odds"
	"github.com/fortuna/courtside/internal/upstream"
)

const (
	baseURL  = "https://api.the-odds-api.com/v4"
	sportKey = "basketball_nba"
)

// gameMarkets are the game-level markets requested on every refresh.
const gameMarkets = "h2h,spreads,totals"

// propMarkets maps provider player-prop market keys to our stat keys.
// The *_alternate markets carry the goblin/demon style alternate lines.
var propMarkets = []propMarket{
	{"player_points", odds.StatPoints, false},
	{"player_rebounds", odds.StatRebounds, false},
	{"player_assists", odds.StatAssists, false},
	{"player_threes", odds.StatThrees, false},
	{"player_points_rebounds_assists", odds.StatPRA, false},
	{"player_steals", odds.StatSteals, false},
	{"player_blocks", odds.StatBlocks, false},
	{"player_double_double", odds.StatDoubleDouble, false},
	{"player_points_alternate", odds.StatPoints, true},
	{"player_rebounds_alternate", odds.StatRebounds, true},
	{"player_assists_alternate", odds.StatAssists, true},
}

type propMarket struct {
	key       string
	stat      string
	alternate bool
}

// Client fetches the odds board from the provider and shapes it into an
// odds.Snapshot.
type Client struct {
	apiKey       string
	baseURL      string
	fetcher      *upstream.Client
	bookmakers   string
	refreshEvery time.Duration
}

// NewClient creates a provider client. fetcher supplies the retry/timeout
// policy; refreshEvery feeds the snapshot's nextUpdate hint for the UI.
func NewClient(apiKey string, fetcher *upstream.Client, refreshEvery time.Duration) *Client {
	return &Client{
		apiKey:       apiKey,
		baseURL:      baseURL,
		fetcher:      fetcher,
		bookmakers:   "draftkings,fanduel,betmgm",
		refreshEvery: refreshEvery,
	}
}

// FetchSnapshot pulls game odds plus per-event player props and converts them
// into a snapshot. A failed props fetch for one event is logged and skipped;
// the game keeps its game-level rows.
func (c *Client) FetchSnapshot(ctx context.Context) (*odds.Snapshot, error) {
	events, err := c.fetchGameOdds(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching game odds: %w", err)
	}

	games := make([]odds.GameOdds, 0, len(events))
	for _, event := range events {
		game := convertGame(event)

		props, err := c.fetchEventProps(ctx, event.ID)
		if err != nil {
			log.Printf("[odds-provider] props fetch failed for %s @ %s: %v",
				event.AwayTeam, event.HomeTeam, err)
		} else {
			game.PlayerProps = convertProps(props)
		}

		games = append(games, game)
	}

	now := time.Now().UTC()
	return &odds.Snapshot{
		Games:       games,
		LastUpdated: now,
		NextUpdate:  now.Add(c.refreshEvery),
	}, nil
}

func (c *Client) fetchGameOdds(ctx context.Context) ([]rawEvent, error) {
	params := url.Values{}
	params.Add("apiKey", c.apiKey)
	params.Add("regions", "us")
	params.Add("markets", gameMarkets)
	params.Add("oddsFormat", "american")
	params.Add("bookmakers", c.bookmakers)

	endpoint := fmt.Sprintf("%s/sports/%s/odds/?%s", c.baseURL, sportKey, params.Encode())

	var events []rawEvent
	if err := c.fetcher.FetchJSON(ctx, endpoint, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) fetchEventProps(ctx context.Context, eventID string) (*rawEvent, error) {
	markets := ""
	for i, m := range propMarkets {
		if i > 0 {
			markets += ","
		}
		markets += m.key
	}

	params := url.Values{}
	params.Add("apiKey", c.apiKey)
	params.Add("regions", "us")
	params.Add("markets", markets)
	params.Add("oddsFormat", "american")
	params.Add("bookmakers", c.bookmakers)

	endpoint := fmt.Sprintf("%s/sports/%s/events/%s/odds?%s", c.baseURL, sportKey, eventID, params.Encode())

	var event rawEvent
	if err := c.fetcher.FetchJSON(ctx, endpoint, nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
