package odds

// PlayerLineStats are the over/under stats a consensus summary covers, in
// render order.
var PlayerLineStats = []string{
	StatPoints,
	StatRebounds,
	StatAssists,
	StatThrees,
	StatPRA,
	StatSteals,
	StatBlocks,
}

// StatConsensus is the cross-book primary-line average for one stat.
type StatConsensus struct {
	Stat  string   `json:"stat"`
	Line  float64  `json:"line"`
	Books []string `json:"books"`
}

// Consensus summarizes a player's rows: one entry per stat that at least one
// bookmaker prices with a primary line.
func Consensus(rows []BookRow) []StatConsensus {
	var summary []StatConsensus
	for _, stat := range PlayerLineStats {
		line, ok := ConsensusLine(rows, stat)
		if !ok {
			continue
		}
		summary = append(summary, StatConsensus{
			Stat:  stat,
			Line:  line,
			Books: BooksWithStat(rows, stat),
		})
	}
	return summary
}

// ConsensusLine averages the primary line for a stat across a set of rows.
// Alternate-line rows are excluded; an explicit opt-in would pass them
// through FlattenProps instead. Returns (0, false) when no primary line for
// the stat exists.
func ConsensusLine(rows []BookRow, stat string) (float64, bool) {
	var sum float64
	var n int
	for i := range rows {
		if rows[i].IsVariant() {
			continue
		}
		if line := rows[i].statLine(stat); line != nil {
			sum += line.Line
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// BooksWithStat lists the bookmakers carrying a primary line for the stat,
// in row order.
func BooksWithStat(rows []BookRow, stat string) []string {
	var books []string
	for i := range rows {
		if rows[i].IsVariant() {
			continue
		}
		if rows[i].statLine(stat) != nil {
			books = append(books, rows[i].Bookmaker)
		}
	}
	return books
}
