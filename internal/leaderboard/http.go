package leaderboard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	ws "github.com/SamaChan/MLTNBTLGAME/pkg/http/ws"
)

// HTTPHandler exposes REST endpoints for leaderboard queries.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

// NewHTTPHandler constructs a leaderboard HTTP handler.
func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "leaderboard_http").Logger(),
	}
}

// HandleGet responds with the current leaderboard for a given window.
// Route: GET /v1/leaderboards/{window}?limit=10
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	window := strings.TrimPrefix(r.URL.Path, "/v1/leaderboards/")
	window = strings.TrimSuffix(window, "/")
	if !isValidWindow(window) {
		http.Error(w, "unknown leaderboard window", http.StatusNotFound)
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	var top []ws.LeaderboardEntry
	if h.svc != nil {
		entries, err := h.svc.Top(r.Context(), window, limit)
		if err != nil {
			h.logger.Warn().Err(err).Str("window", window).Msg("leaderboard fetch failed")
			http.Error(w, "failed to fetch leaderboard", http.StatusInternalServerError)
			return
		}
		top = toWSEntries(entries)
	}

	resp := map[string]interface{}{
		"window":      window,
		"top":         top,
		"retrievedAt": time.Now().UTC().Format(time.RFC3339),
	}
	writeJSON(w, resp)
}

func isValidWindow(window string) bool {
	switch window {
	case WindowWeekly, WindowAllTime:
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
