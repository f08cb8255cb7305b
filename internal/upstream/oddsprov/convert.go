package oddsprov

import (
	"time"

	"github.com/fortuna/courtside/internal/odds"
)

// rawEvent mirrors the provider payload for one event: both the board
// response (array of events) and the per-event props response use this shape.
type rawEvent struct {
	ID           string         `json:"id"`
	CommenceTime time.Time      `json:"commence_time"`
	HomeTeam     string         `json:"home_team"`
	AwayTeam     string         `json:"away_team"`
	Bookmakers   []rawBookmaker `json:"bookmakers"`
}

type rawBookmaker struct {
	Key     string      `json:"key"`
	Title   string      `json:"title"`
	Markets []rawMarket `json:"markets"`
}

type rawMarket struct {
	Key      string       `json:"key"`
	Outcomes []rawOutcome `json:"outcomes"`
}

type rawOutcome struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"` // player name on prop markets
	Price       int      `json:"price"`
	Point       *float64 `json:"point,omitempty"`
}

// convertGame shapes an event's game-level markets into one BookRow per
// bookmaker.
func convertGame(event rawEvent) odds.GameOdds {
	game := odds.GameOdds{
		HomeTeam:     event.HomeTeam,
		AwayTeam:     event.AwayTeam,
		CommenceTime: event.CommenceTime,
	}

	for _, book := range event.Bookmakers {
		row := odds.BookRow{Bookmaker: book.Key}
		for _, market := range book.Markets {
			switch market.Key {
			case "h2h":
				row.Moneyline = convertMoneyline(market, event.HomeTeam)
			case "spreads":
				row.Spread = convertSpread(market, event.HomeTeam)
			case "totals":
				row.Total = convertTotal(market)
			}
		}
		game.Bookmakers = append(game.Bookmakers, row)
	}

	return game
}

func convertMoneyline(market rawMarket, homeTeam string) *odds.SideOdds {
	ml := &odds.SideOdds{}
	for _, outcome := range market.Outcomes {
		if outcome.Name == homeTeam {
			ml.Home = outcome.Price
		} else {
			ml.Away = outcome.Price
		}
	}
	return ml
}

// convertSpread keeps the home-team line; over/under carry the home and away
// prices respectively.
func convertSpread(market rawMarket, homeTeam string) *odds.LineOdds {
	spread := &odds.LineOdds{}
	for _, outcome := range market.Outcomes {
		if outcome.Name == homeTeam {
			if outcome.Point != nil {
				spread.Line = *outcome.Point
			}
			spread.Over = outcome.Price
		} else {
			spread.Under = outcome.Price
		}
	}
	return spread
}

func convertTotal(market rawMarket) *odds.LineOdds {
	total := &odds.LineOdds{}
	for _, outcome := range market.Outcomes {
		if outcome.Point != nil {
			total.Line = *outcome.Point
		}
		switch outcome.Name {
		case "Over":
			total.Over = outcome.Price
		case "Under":
			total.Under = outcome.Price
		}
	}
	return total
}

// convertProps shapes the per-event prop markets into the nested
// bookmaker -> player -> stat map. Standard markets become the primary line
// (extra points on the same market spill into variants); *_alternate markets
// are variants outright; double-double becomes a yes/no prop.
func convertProps(event *rawEvent) map[string]map[string]odds.StatProps {
	byBook := make(map[string]map[string]odds.StatProps)

	for _, book := range event.Bookmakers {
		for _, market := range book.Markets {
			def, ok := lookupMarket(market.Key)
			if !ok {
				continue
			}
			for player, prop := range convertMarket(market, def) {
				byPlayer := byBook[book.Key]
				if byPlayer == nil {
					byPlayer = make(map[string]odds.StatProps)
					byBook[book.Key] = byPlayer
				}
				props := byPlayer[player]
				if props == nil {
					props = make(odds.StatProps)
					byPlayer[player] = props
				}
				props[def.stat] = mergeProp(props[def.stat], prop)
			}
		}
	}

	if len(byBook) == 0 {
		return nil
	}
	return byBook
}

func lookupMarket(key string) (propMarket, bool) {
	for _, m := range propMarkets {
		if m.key == key {
			return m, true
		}
	}
	return propMarket{}, false
}

func convertMarket(market rawMarket, def propMarket) map[string]odds.StatProp {
	if def.stat == odds.StatDoubleDouble {
		return convertBoolMarket(market)
	}

	// Pair Over/Under outcomes per (player, point).
	type lineKey struct {
		player string
		point  float64
	}
	lines := make(map[lineKey]*odds.LineOdds)
	var order []lineKey
	for _, outcome := range market.Outcomes {
		if outcome.Description == "" || outcome.Point == nil {
			continue
		}
		k := lineKey{outcome.Description, *outcome.Point}
		line, ok := lines[k]
		if !ok {
			line = &odds.LineOdds{Line: *outcome.Point}
			lines[k] = line
			order = append(order, k)
		}
		switch outcome.Name {
		case "Over", "Yes":
			line.Over = outcome.Price
		case "Under", "No":
			line.Under = outcome.Price
		}
	}

	props := make(map[string]odds.StatProp)
	for _, k := range order {
		line := *lines[k]
		prop := props[k.player]
		if def.alternate || prop.Line != nil {
			// Alternate market, or a second point on a standard market.
			prop.Variants = append(prop.Variants, line)
		} else {
			prop.Line = &line
		}
		props[k.player] = normalizeProp(prop)
	}

	return props
}

func convertBoolMarket(market rawMarket) map[string]odds.StatProp {
	byPlayer := make(map[string]*odds.YesNoOdds)
	for _, outcome := range market.Outcomes {
		if outcome.Description == "" {
			continue
		}
		prop := byPlayer[outcome.Description]
		if prop == nil {
			prop = &odds.YesNoOdds{}
			byPlayer[outcome.Description] = prop
		}
		switch outcome.Name {
		case "Yes", "Over":
			prop.Yes = outcome.Price
		case "No", "Under":
			prop.No = outcome.Price
		}
	}

	props := make(map[string]odds.StatProp)
	for player, yn := range byPlayer {
		props[player] = odds.StatProp{Kind: odds.KindBool, Bool: yn}
	}
	return props
}

// mergeProp folds a market conversion into whatever the stat already holds,
// so player_points and player_points_alternate land on one prop: the primary
// line in the Line slot, everything else accumulated as variants.
func mergeProp(existing, incoming odds.StatProp) odds.StatProp {
	merged := existing
	if merged.Line == nil {
		merged.Line = incoming.Line
	}
	merged.Variants = append(merged.Variants, incoming.Variants...)
	if incoming.Bool != nil {
		merged.Bool = incoming.Bool
	}
	return normalizeProp(merged)
}

// normalizeProp keeps Kind consistent with the populated fields: a prop with
// variants only is KindVariants.
func normalizeProp(p odds.StatProp) odds.StatProp {
	switch {
	case p.Bool != nil:
		p.Kind = odds.KindBool
	case p.Line != nil:
		p.Kind = odds.KindLine
	default:
		p.Kind = odds.KindVariants
	}
	return p
}
