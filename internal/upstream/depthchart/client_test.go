package depthchart

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const singleTableHTML = `
<html><body>
<table><tbody>
<tr><td>PG</td><td><a href="/p/1">Tyus Jones</a></td><td><a href="/p/2">Monte Morris</a></td></tr>
<tr><td>SG</td><td><a href="/p/3">Devin Booker</a></td></tr>
<tr><td>C</td><td><a href="/p/4">Nick Richards</a></td></tr>
</tbody></table>
</body></html>`

const twoTableHTML = `
<html><body>
<table><tbody>
<tr><td>PG</td></tr><tr><td>SG</td></tr><tr><td>SF</td></tr><tr><td>PF</td></tr><tr><td>C</td></tr>
</tbody></table>
<table><tbody>
<tr><td><a>Jrue Holiday</a></td></tr>
<tr><td><a>Derrick White</a></td></tr>
<tr><td><a>Jaylen Brown</a></td></tr>
<tr><td><a>Jayson Tatum</a></td></tr>
<tr><td><a>Kristaps Porzingis</a></td></tr>
</tbody></table>
</body></html>`

func parse(t *testing.T, html string) map[string]string {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return ParsePositions(doc)
}

func TestParsePositionsSingleTable(t *testing.T) {
	positions := parse(t, singleTableHTML)
	tests := []struct {
		player string
		want   string
	}{
		{"tyus jones", "PG"},
		{"monte morris", "PG"},
		{"devin booker", "SG"},
		{"nick richards", "C"},
	}
	for _, tt := range tests {
		if got := positions[tt.player]; got != tt.want {
			t.Errorf("positions[%q] = %q, want %q", tt.player, got, tt.want)
		}
	}
}

func TestParsePositionsTwoTables(t *testing.T) {
	positions := parse(t, twoTableHTML)
	if positions["jrue holiday"] != "PG" {
		t.Errorf("jrue holiday = %q, want PG", positions["jrue holiday"])
	}
	if positions["jayson tatum"] != "PF" {
		t.Errorf("jayson tatum = %q, want PF", positions["jayson tatum"])
	}
}

func TestParsePositionsEmptyPage(t *testing.T) {
	positions := parse(t, "<html><body><p>no tables here</p></body></html>")
	if len(positions) != 0 {
		t.Errorf("expected empty map, got %v", positions)
	}
}
