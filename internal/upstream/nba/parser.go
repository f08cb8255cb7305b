package nba

import "strings"

// FindResultSet returns the first result set whose name contains the given
// fragment, case-insensitive, or nil.
func (r *Response) FindResultSet(fragment string) *ResultSet {
	fragment = strings.ToLower(fragment)
	for i := range r.ResultSets {
		if strings.Contains(strings.ToLower(r.ResultSets[i].Name), fragment) {
			return &r.ResultSets[i]
		}
	}
	return nil
}

// ColumnIndex finds the index of the first matching header name,
// case-insensitive. Returns -1 when none match.
func (rs *ResultSet) ColumnIndex(names ...string) int {
	for _, name := range names {
		for i, h := range rs.Headers {
			if strings.EqualFold(h, name) {
				return i
			}
		}
	}
	return -1
}

// cell helpers tolerate the untyped rowSet cells: numbers decode as float64,
// everything else is best-effort.

func cellString(row []interface{}, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	s, _ := row[i].(string)
	return s
}

func cellFloat(row []interface{}, i int) float64 {
	if i < 0 || i >= len(row) {
		return 0
	}
	switch v := row[i].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func cellInt(row []interface{}, i int) int64 {
	return int64(cellFloat(row, i))
}

// ShotEvent is one field goal attempt from shotchartdetail.
type ShotEvent struct {
	ZoneBasic  string // SHOT_ZONE_BASIC, e.g. "Restricted Area"
	Made       bool
	PointValue int // 2 or 3
}

// ParseShotEvents extracts shot events from a shotchartdetail response.
func ParseShotEvents(resp *Response) []ShotEvent {
	rs := resp.FindResultSet("Shot_Chart_Detail")
	if rs == nil {
		return nil
	}

	iZone := rs.ColumnIndex("SHOT_ZONE_BASIC")
	iMade := rs.ColumnIndex("SHOT_MADE_FLAG")
	iType := rs.ColumnIndex("SHOT_TYPE")
	if iZone < 0 || iMade < 0 {
		return nil
	}

	events := make([]ShotEvent, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		pointValue := 2
		if strings.HasPrefix(cellString(row, iType), "3PT") {
			pointValue = 3
		}
		events = append(events, ShotEvent{
			ZoneBasic:  cellString(row, iZone),
			Made:       cellInt(row, iMade) == 1,
			PointValue: pointValue,
		})
	}
	return events
}

// PlayerLine is one player's row from a traditional box score.
type PlayerLine struct {
	TeamID   int64
	TeamAbbr string
	Player   string
	StartPos string
	Pts      float64
	Reb      float64
	Ast      float64
	Fg3m     float64
	Stl      float64
	Blk      float64
}

// ParseBoxScorePlayers extracts per-player lines from boxscoretraditionalv2.
func ParseBoxScorePlayers(resp *Response) []PlayerLine {
	rs := resp.FindResultSet("PlayerStats")
	if rs == nil {
		// Some responses name the set differently; fall back to any set
		// mentioning "player".
		rs = resp.FindResultSet("player")
	}
	if rs == nil {
		return nil
	}

	iTeamID := rs.ColumnIndex("TEAM_ID")
	iTeamAbbr := rs.ColumnIndex("TEAM_ABBREVIATION")
	iPlayer := rs.ColumnIndex("PLAYER_NAME")
	iStartPos := rs.ColumnIndex("START_POSITION")
	iPts := rs.ColumnIndex("PTS")
	iReb := rs.ColumnIndex("REB")
	iAst := rs.ColumnIndex("AST")
	iFg3m := rs.ColumnIndex("FG3M")
	iStl := rs.ColumnIndex("STL")
	iBlk := rs.ColumnIndex("BLK")
	if iTeamID < 0 || iPlayer < 0 {
		return nil
	}

	lines := make([]PlayerLine, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		lines = append(lines, PlayerLine{
			TeamID:   cellInt(row, iTeamID),
			TeamAbbr: cellString(row, iTeamAbbr),
			Player:   cellString(row, iPlayer),
			StartPos: strings.ToUpper(cellString(row, iStartPos)),
			Pts:      cellFloat(row, iPts),
			Reb:      cellFloat(row, iReb),
			Ast:      cellFloat(row, iAst),
			Fg3m:     cellFloat(row, iFg3m),
			Stl:      cellFloat(row, iStl),
			Blk:      cellFloat(row, iBlk),
		})
	}
	return lines
}

// ParseGameIDs extracts game IDs from a teamgamelog response, newest first
// as the API returns them.
func ParseGameIDs(resp *Response) []string {
	rs := resp.FindResultSet("TeamGameLog")
	if rs == nil && len(resp.ResultSets) > 0 {
		rs = &resp.ResultSets[0]
	}
	if rs == nil {
		return nil
	}

	iGame := rs.ColumnIndex("Game_ID", "GAME_ID")
	if iGame < 0 {
		return nil
	}

	ids := make([]string, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		if id := cellString(row, iGame); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
