package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/courtside/internal/names"
	"github.com/fortuna/courtside/internal/service"
)

// OddsAPI is the slice of the odds service the handlers call.
type OddsAPI interface {
	Query(ctx context.Context, q service.OddsQuery) service.OddsResult
	Clear(ctx context.Context, playerProps bool)
}

// ShotChartAPI is the slice of the shot-chart service the handlers call.
type ShotChartAPI interface {
	Get(ctx context.Context, playerID int64, opponentAbbr string, startYear int, bypassCache bool) *service.ShotChartResponse
}

// DefenseAPI is the slice of the defense service the handlers call.
type DefenseAPI interface {
	TeamDefense(ctx context.Context, teamAbbr string, startYear int) (*service.TeamDefense, error)
	RefreshLeagueRankings(ctx context.Context, startYear int) error
}

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	odds       OddsAPI
	shotCharts ShotChartAPI
	defense    DefenseAPI
	adminToken string

	// Health probes for the dependencies; nil entries are skipped.
	dbCheck    func(ctx context.Context) error
	redisCheck func(ctx context.Context) error
}

// NewHandler creates a new handler. dbCheck/redisCheck may be nil when the
// corresponding backend is not configured.
func NewHandler(odds OddsAPI, shotCharts ShotChartAPI, defense DefenseAPI, adminToken string, dbCheck, redisCheck func(ctx context.Context) error) *Handler {
	return &Handler{
		odds:       odds,
		shotCharts: shotCharts,
		defense:    defense,
		adminToken: adminToken,
		dbCheck:    dbCheck,
		redisCheck: redisCheck,
	}
}

// HealthCheck reports service health plus per-dependency status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	deps := map[string]string{}
	healthy := true

	for name, check := range map[string]func(ctx context.Context) error{
		"database": h.dbCheck,
		"redis":    h.redisCheck,
	} {
		if check == nil {
			deps[name] = "not configured"
			continue
		}
		if err := check(r.Context()); err != nil {
			deps[name] = err.Error()
			healthy = false
		} else {
			deps[name] = "ok"
		}
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, map[string]interface{}{
		"status":       status,
		"service":      "courtside",
		"dependencies": deps,
	})
}

// GetOdds serves the odds board, optionally filtered by team or player.
func (h *Handler) GetOdds(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := service.OddsQuery{
		Team:    query.Get("team"),
		Player:  query.Get("player"),
		Caller:  callerIP(r),
		Refresh: query.Get("refresh") == "1",
	}

	res := h.odds.Query(r.Context(), q)
	respondJSON(w, res.Status, res.Body)
}

// ClearOdds drops the cached odds snapshot. Admin only.
func (h *Handler) ClearOdds(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respondError(w, http.StatusForbidden, "Forbidden", nil)
		return
	}

	playerProps := r.URL.Query().Get("playerProps") == "1"
	h.odds.Clear(r.Context(), playerProps)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Odds cache cleared",
		"playerProps": playerProps,
	})
}

// GetShotChart serves aggregated shot zones for a player. The route always
// answers 200 with errors carried in the body.
func (h *Handler) GetShotChart(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	playerID, err := strconv.ParseInt(query.Get("playerId"), 10, 64)
	if err != nil || playerID <= 0 {
		respondJSON(w, http.StatusOK, &service.ShotChartResponse{
			ShotZones: service.EmptyZones(),
			Error:     "playerId is required and must be a positive integer",
		})
		return
	}

	startYear := currentSeasonStartYear(time.Now())
	if s := query.Get("season"); s != "" {
		if y, err := strconv.Atoi(s); err == nil && y >= 1996 {
			startYear = y
		} else {
			respondJSON(w, http.StatusOK, &service.ShotChartResponse{
				PlayerID:  playerID,
				ShotZones: service.EmptyZones(),
				Error:     "season must be a starting year, e.g. 2025",
			})
			return
		}
	}

	resp := h.shotCharts.Get(
		r.Context(),
		playerID,
		strings.ToUpper(query.Get("opponentTeam")),
		startYear,
		query.Get("bypassCache") == "1",
	)
	respondJSON(w, http.StatusOK, resp)
}

// GetTeams serves the static team directory the matcher is built from.
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"teams": names.Teams,
		"count": len(names.Teams),
	})
}

// GetTeamDefense serves one team's defense-vs-position stats.
func (h *Handler) GetTeamDefense(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	team := strings.ToUpper(query.Get("team"))
	if _, ok := names.TeamByAbbr(team); !ok {
		respondError(w, http.StatusBadRequest, "team must be a valid NBA abbreviation", nil)
		return
	}

	startYear := currentSeasonStartYear(time.Now())
	if s := query.Get("season"); s != "" {
		if y, err := strconv.Atoi(s); err == nil {
			startYear = y
		}
	}

	td, err := h.defense.TeamDefense(r.Context(), team, startYear)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to compute defense stats", err)
		return
	}
	respondJSON(w, http.StatusOK, td)
}

// RefreshDefenseRankings rebuilds the league-wide rankings. Admin only; this
// walks every team and is expensive.
func (h *Handler) RefreshDefenseRankings(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respondError(w, http.StatusForbidden, "Forbidden", nil)
		return
	}

	startYear := currentSeasonStartYear(time.Now())
	if s := r.URL.Query().Get("season"); s != "" {
		if y, err := strconv.Atoi(s); err == nil {
			startYear = y
		}
	}

	if err := h.defense.RefreshLeagueRankings(r.Context(), startYear); err != nil {
		respondError(w, http.StatusBadGateway, "Failed to rebuild rankings", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "League rankings rebuilt",
	})
}

// authorized checks the admin bearer token. An unset token disables the
// admin routes entirely.
func (h *Handler) authorized(r *http.Request) bool {
	if h.adminToken == "" {
		return false
	}
	auth := r.Header.Get("Authorization")
	return strings.TrimPrefix(auth, "Bearer ") == h.adminToken && auth != h.adminToken
}

// callerIP identifies the caller for rate limiting, trusting the first
// X-Forwarded-For hop when present.
func callerIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}

// currentSeasonStartYear maps a date to the NBA season it falls in; seasons
// start in October.
func currentSeasonStartYear(now time.Time) int {
	if now.Month() >= time.October {
		return now.Year()
	}
	return now.Year() - 1
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
