package service

import (
	"testing"
	"time"

	// The DST cases need real zone data even on hosts without a zoneinfo
	// database, same as the embed in cmd/courtside.
	_ "time/tzdata"
)

func TestKeyPlayerPropsEasternRollover(t *testing.T) {
	tests := []struct {
		name string
		utc  string
		want string
	}{
		// 04:30 UTC in July is 00:30 EDT: already the next Eastern day.
		{"summer after midnight", "2026-07-02T04:30:00Z", "player_props_v2_2026-07-02"},
		// 03:30 UTC in July is 23:30 EDT the day before.
		{"summer before midnight", "2026-07-02T03:30:00Z", "player_props_v2_2026-07-01"},
		// 04:30 UTC in January is 23:30 EST the day before.
		{"winter before midnight", "2026-01-02T04:30:00Z", "player_props_v2_2026-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instant, err := time.Parse(time.RFC3339, tt.utc)
			if err != nil {
				t.Fatal(err)
			}
			if got := KeyPlayerProps(instant); got != tt.want {
				t.Errorf("KeyPlayerProps(%s) = %q, want %q", tt.utc, got, tt.want)
			}
		})
	}
}

func TestKeyShotChartOpponentPlaceholder(t *testing.T) {
	if got := KeyShotChart(2544, "", "2025-26"); got != "shot_enhanced_2544_none_2025-26" {
		t.Errorf("key = %q", got)
	}
	if got := KeyShotChart(2544, "BOS", "2025-26"); got != "shot_enhanced_2544_BOS_2025-26" {
		t.Errorf("key = %q", got)
	}
}
