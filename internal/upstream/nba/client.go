package nba

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/fortuna/courtside/internal/upstream"
)

const BaseURL = "https://stats.nba.com/stats"

// requiredHeaders is the header set stats.nba.com expects; requests without
// the origin/referer/token headers are rejected.
var requiredHeaders = map[string]string{
	"Accept":             "application/json, text/plain, */*",
	"Accept-Language":    "en-US,en;q=0.9",
	"Origin":             "https://www.nba.com",
	"Referer":            "https://www.nba.com/stats/",
	"User-Agent":         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Cache-Control":      "no-cache",
	"Pragma":             "no-cache",
	"x-nba-stats-origin": "stats",
	"x-nba-stats-token":  "true",
}

// Client handles stats.nba.com requests.
type Client struct {
	baseURL string
	fetcher *upstream.Client
}

// NewClient creates a stats.nba.com client on top of the shared fetcher.
func NewClient(fetcher *upstream.Client) *Client {
	return &Client{
		baseURL: BaseURL,
		fetcher: fetcher,
	}
}

// Response is the stats.nba.com envelope: tabular result sets with a header
// row and untyped cells.
type Response struct {
	Resource   string      `json:"resource"`
	ResultSets []ResultSet `json:"resultSets"`
}

// ResultSet is one table in a response.
type ResultSet struct {
	Name    string          `json:"name"`
	Headers []string        `json:"headers"`
	RowSet  [][]interface{} `json:"rowSet"`
}

// ShotChartDetail fetches a player's shot events for a season. opponentID 0
// means all opponents.
func (c *Client) ShotChartDetail(ctx context.Context, playerID, opponentID int64, season string) (*Response, error) {
	params := url.Values{}
	params.Set("PlayerID", strconv.FormatInt(playerID, 10))
	params.Set("TeamID", "0")
	params.Set("OpponentTeamID", strconv.FormatInt(opponentID, 10))
	params.Set("Season", season)
	params.Set("SeasonType", "Regular Season")
	params.Set("ContextMeasure", "FGA")
	params.Set("PlayerPosition", "")
	params.Set("GameID", "")
	params.Set("LastNGames", "0")
	params.Set("LeagueID", "00")
	params.Set("Month", "0")
	params.Set("Period", "0")

	return c.fetch(ctx, "shotchartdetail", params)
}

// TeamGameLog fetches a team's game log for a season.
func (c *Client) TeamGameLog(ctx context.Context, teamID int64, season string) (*Response, error) {
	params := url.Values{}
	params.Set("TeamID", strconv.FormatInt(teamID, 10))
	params.Set("Season", season)
	params.Set("SeasonType", "Regular Season")

	return c.fetch(ctx, "teamgamelog", params)
}

// BoxScoreTraditional fetches the traditional box score for a game.
func (c *Client) BoxScoreTraditional(ctx context.Context, gameID string) (*Response, error) {
	params := url.Values{}
	params.Set("GameID", gameID)
	params.Set("StartPeriod", "0")
	params.Set("EndPeriod", "0")
	params.Set("StartRange", "0")
	params.Set("EndRange", "0")
	params.Set("RangeType", "0")

	return c.fetch(ctx, "boxscoretraditionalv2", params)
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	fullURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	var resp Response
	if err := c.fetcher.FetchJSON(ctx, fullURL, requiredHeaders, &resp); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", endpoint, err)
	}
	return &resp, nil
}

// SeasonLabel formats a season start year the way stats.nba.com expects:
// 2025 -> "2025-26".
func SeasonLabel(startYear int) string {
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}
