package odds

import (
	"fmt"
	"sort"

	"github.com/fortuna/courtside/internal/names"
)

// FindPlayerRows searches every game's nested player-props map for the given
// player (fuzzy-matched) and flattens the matches into BookRows: one row per
// bookmaker for the primary lines, plus one row per alternate-line variant.
func (s *Snapshot) FindPlayerRows(player string) []BookRow {
	var rows []BookRow
	for i := range s.Games {
		rows = append(rows, s.Games[i].playerRows(player)...)
	}
	return rows
}

// FindGame resolves a caller-supplied team identifier against home/away names
// of every game via the fuzzy matcher.
func (s *Snapshot) FindGame(team string) *GameOdds {
	var candidates []string
	for _, g := range s.Games {
		candidates = append(candidates, g.HomeTeam, g.AwayTeam)
	}
	match, ok := names.ResolveTeam(team, candidates)
	if !ok {
		return nil
	}
	for i := range s.Games {
		if s.Games[i].HomeTeam == match || s.Games[i].AwayTeam == match {
			return &s.Games[i]
		}
	}
	return nil
}

// PlayerRowsByPlayer flattens every player's props across all bookmakers,
// keyed by the upstream player name.
func (g *GameOdds) PlayerRowsByPlayer() map[string][]BookRow {
	out := make(map[string][]BookRow)
	for _, bookmaker := range sortedKeys(g.PlayerProps) {
		byPlayer := g.PlayerProps[bookmaker]
		for _, player := range sortedKeys(byPlayer) {
			out[player] = append(out[player], FlattenProps(bookmaker, player, byPlayer[player])...)
		}
	}
	return out
}

func (g *GameOdds) playerRows(player string) []BookRow {
	var rows []BookRow
	for _, bookmaker := range sortedKeys(g.PlayerProps) {
		byPlayer := g.PlayerProps[bookmaker]
		match, ok := names.ResolvePlayer(player, sortedKeys(byPlayer))
		if !ok {
			continue
		}
		rows = append(rows, FlattenProps(bookmaker, match, byPlayer[match])...)
	}
	return rows
}

// FlattenProps turns one bookmaker's props for one player into flat rows.
// Scalar lines and boolean props share a single primary row; every
// alternate-line variant gets its own row tagged with meta.variantLabel. The
// primary row is omitted when the bookmaker carries variants only.
func FlattenProps(bookmaker, player string, props StatProps) []BookRow {
	primary := BookRow{
		Bookmaker: bookmaker,
		Player:    player,
		Meta:      &RowMeta{BaseName: player},
	}
	hasPrimary := false
	var variantRows []BookRow

	for _, stat := range sortedKeys(props) {
		prop := props[stat]
		switch prop.Kind {
		case KindLine:
			if prop.Line != nil {
				line := *prop.Line
				primary.setStat(stat, &line)
				primary.Meta.IsPickem = primary.Meta.IsPickem || isPickem(line)
				hasPrimary = true
			}
			// A primary line can still carry alternates alongside it.
			variantRows = append(variantRows, variantRowsFor(bookmaker, player, stat, prop.Variants)...)
		case KindBool:
			if prop.Bool == nil || stat != StatDoubleDouble {
				continue
			}
			b := *prop.Bool
			primary.DoubleDouble = &b
			hasPrimary = true
		case KindVariants:
			variantRows = append(variantRows, variantRowsFor(bookmaker, player, stat, prop.Variants)...)
		}
	}

	var rows []BookRow
	if hasPrimary {
		rows = append(rows, primary)
	}
	return append(rows, variantRows...)
}

// variantRowsFor emits one row per alternate line, tagged with the variant
// label (upstream label when present, positional otherwise).
func variantRowsFor(bookmaker, player, stat string, variants []LineOdds) []BookRow {
	rows := make([]BookRow, 0, len(variants))
	for i, v := range variants {
		label := v.Label
		if label == "" {
			label = fmt.Sprintf("alt%d", i+1)
		}
		line := v
		line.Label = label
		row := BookRow{
			Bookmaker: bookmaker,
			Player:    player,
			Meta: &RowMeta{
				BaseName:     player,
				VariantLabel: label,
				Stat:         stat,
				IsPickem:     isPickem(v),
			},
		}
		row.setStat(stat, &line)
		rows = append(rows, row)
	}
	return rows
}

// isPickem marks lines carrying no juice on either side (pick'em boards).
func isPickem(l LineOdds) bool {
	return l.Over == 0 && l.Under == 0
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
