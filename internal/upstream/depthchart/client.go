package depthchart

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fortuna/courtside/internal/names"
)

const (
	baseURL   = "https://www.espn.com/nba/team/depth/_/name"
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Buckets are the five position buckets of a depth chart, in page order.
var Buckets = []string{"PG", "SG", "SF", "PF", "C"}

// Client scrapes a team's depth chart page. The page is server-rendered
// HTML, so a plain GET plus goquery suffices.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a depth chart client.
func NewClient() *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FetchPositions returns normalized player name -> position bucket for a
// team. A missing or unparseable page returns an empty map, never an error
// map: callers fall back to the start-position heuristic.
func (c *Client) FetchPositions(ctx context.Context, teamAbbr string) (map[string]string, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, strings.ToLower(teamAbbr))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching depth chart for %s: %w", teamAbbr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("depth chart page for %s returned %d", teamAbbr, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing depth chart HTML: %w", err)
	}

	return ParsePositions(doc), nil
}

// ParsePositions walks the depth chart tables: the fixed left table lists
// the position per row, the companion table lists the players on that row.
func ParsePositions(doc *goquery.Document) map[string]string {
	positions := make(map[string]string)

	var buckets []string
	doc.Find("table").First().Find("tbody tr").Each(func(i int, row *goquery.Selection) {
		label := strings.ToUpper(strings.TrimSpace(row.Text()))
		if isBucket(label) {
			buckets = append(buckets, label)
		}
	})
	if len(buckets) == 0 {
		// Single-table layout: first cell of each row is the position.
		doc.Find("table tbody tr").Each(func(i int, row *goquery.Selection) {
			cells := row.Find("td")
			label := strings.ToUpper(strings.TrimSpace(cells.First().Text()))
			if !isBucket(label) {
				return
			}
			cells.Slice(1, cells.Length()).Each(func(_ int, cell *goquery.Selection) {
				addPlayers(positions, cell, label)
			})
		})
		return positions
	}

	tables := doc.Find("table")
	if tables.Length() < 2 {
		return positions
	}
	tables.Eq(1).Find("tbody tr").Each(func(i int, row *goquery.Selection) {
		if i >= len(buckets) {
			return
		}
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			addPlayers(positions, cell, buckets[i])
		})
	})

	return positions
}

func addPlayers(positions map[string]string, cell *goquery.Selection, bucket string) {
	anchors := cell.Find("a")
	if anchors.Length() == 0 {
		if name := names.Normalize(cell.Text()); name != "" {
			positions[name] = bucket
		}
		return
	}
	anchors.Each(func(_ int, a *goquery.Selection) {
		if name := names.Normalize(a.Text()); name != "" {
			positions[name] = bucket
		}
	})
}

func isBucket(label string) bool {
	for _, b := range Buckets {
		if label == b {
			return true
		}
	}
	return false
}
