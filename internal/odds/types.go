package odds

import "time"

// Statistic keys used across bookmaker rows and player props.
const (
	StatMoneyline    = "moneyline"
	StatSpread       = "spread"
	StatTotal        = "total"
	StatPoints       = "points"
	StatRebounds     = "rebounds"
	StatAssists      = "assists"
	StatThrees       = "threes"
	StatPRA          = "pointsReboundsAssists"
	StatSteals       = "steals"
	StatBlocks       = "blocks"
	StatDoubleDouble = "doubleDouble"
)

// Snapshot is one refresh of the whole odds board, stored under a single
// versioned cache key. Produced by the refresher, consumed read-only by the
// odds route.
type Snapshot struct {
	Games       []GameOdds `json:"games"`
	LastUpdated time.Time  `json:"lastUpdated"`
	NextUpdate  time.Time  `json:"nextUpdate"`
}

// GameOdds holds the board for one game. HomeTeam/AwayTeam are free-form
// provider strings and are not guaranteed to match any canonical team code;
// matching a caller-supplied team goes through names.ResolveTeam.
type GameOdds struct {
	HomeTeam     string    `json:"homeTeam"`
	AwayTeam     string    `json:"awayTeam"`
	CommenceTime time.Time `json:"commenceTime"`
	Bookmakers   []BookRow `json:"bookmakers"`
	// PlayerProps is bookmaker -> player -> stat -> prop.
	PlayerProps map[string]map[string]StatProps `json:"playerProps,omitempty"`
}

// StatProps is every prop a bookmaker carries for one player, keyed by stat.
type StatProps map[string]StatProp

// PropKind tags the StatProp variant.
type PropKind string

const (
	KindLine     PropKind = "line"     // single primary line
	KindVariants PropKind = "variants" // alternate lines for the same stat
	KindBool     PropKind = "bool"     // yes/no prop
)

// StatProp is a tagged variant: exactly one of Line, Variants, Bool is set,
// per Kind. This replaces array-or-object duck typing in the upstream payload
// with an explicit match at flattening time.
type StatProp struct {
	Kind     PropKind   `json:"kind"`
	Line     *LineOdds  `json:"line,omitempty"`
	Variants []LineOdds `json:"variants,omitempty"`
	Bool     *YesNoOdds `json:"bool,omitempty"`
}

// LineOdds is one over/under line. Prices are American odds. Label is set on
// alternate-line variants only ("goblin", "demon", "alt1", ...).
type LineOdds struct {
	Line  float64 `json:"line"`
	Over  int     `json:"over"`
	Under int     `json:"under"`
	Label string  `json:"label,omitempty"`
}

// YesNoOdds is a boolean prop (double-double, first basket).
type YesNoOdds struct {
	Yes int `json:"yes"`
	No  int `json:"no"`
}

// SideOdds is a two-sided game market priced per team.
type SideOdds struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// BookRow is the flat per-bookmaker record the UI renders: one optional field
// per supported statistic. A row with Meta.VariantLabel set is an alternate
// line and is excluded from primary-line aggregations.
type BookRow struct {
	Bookmaker    string     `json:"bookmaker"`
	Player       string     `json:"player,omitempty"`
	Moneyline    *SideOdds  `json:"moneyline,omitempty"`
	Spread       *LineOdds  `json:"spread,omitempty"`
	Total        *LineOdds  `json:"total,omitempty"`
	Points       *LineOdds  `json:"points,omitempty"`
	Rebounds     *LineOdds  `json:"rebounds,omitempty"`
	Assists      *LineOdds  `json:"assists,omitempty"`
	Threes       *LineOdds  `json:"threes,omitempty"`
	PRA          *LineOdds  `json:"pointsReboundsAssists,omitempty"`
	Steals       *LineOdds  `json:"steals,omitempty"`
	Blocks       *LineOdds  `json:"blocks,omitempty"`
	DoubleDouble *YesNoOdds `json:"doubleDouble,omitempty"`
	Meta         *RowMeta   `json:"meta,omitempty"`
}

// RowMeta distinguishes a primary line from an alternate-line row.
type RowMeta struct {
	BaseName     string `json:"baseName,omitempty"`
	IsPickem     bool   `json:"isPickem,omitempty"`
	VariantLabel string `json:"variantLabel,omitempty"`
	Stat         string `json:"stat,omitempty"`
}

// IsVariant reports whether the row is an alternate line.
func (r *BookRow) IsVariant() bool {
	return r.Meta != nil && r.Meta.VariantLabel != ""
}

// setStat assigns a line prop to the named stat field. Unknown stats are
// dropped; the UI only renders the supported set.
func (r *BookRow) setStat(stat string, line *LineOdds) {
	switch stat {
	case StatSpread:
		r.Spread = line
	case StatTotal:
		r.Total = line
	case StatPoints:
		r.Points = line
	case StatRebounds:
		r.Rebounds = line
	case StatAssists:
		r.Assists = line
	case StatThrees:
		r.Threes = line
	case StatPRA:
		r.PRA = line
	case StatSteals:
		r.Steals = line
	case StatBlocks:
		r.Blocks = line
	}
}

// statLine returns the line prop stored under the named stat, if any.
func (r *BookRow) statLine(stat string) *LineOdds {
	switch stat {
	case StatSpread:
		return r.Spread
	case StatTotal:
		return r.Total
	case StatPoints:
		return r.Points
	case StatRebounds:
		return r.Rebounds
	case StatAssists:
		return r.Assists
	case StatThrees:
		return r.Threes
	case StatPRA:
		return r.PRA
	case StatSteals:
		return r.Steals
	case StatBlocks:
		return r.Blocks
	}
	return nil
}
