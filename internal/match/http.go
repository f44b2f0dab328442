package match

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/SamaChan/MLTNBTLGAME/internal/auth/jwt"
	"github.com/SamaChan/MLTNBTLGAME/internal/game"
	"github.com/SamaChan/MLTNBTLGAME/internal/logging"
)

// HTTPHandlers provides REST endpoints for match operations.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for match endpoints.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "match_http").Logger(),
	}
}

// CreateMatch handles POST /v1/matches
func (h *HTTPHandlers) CreateMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Extract JWT claims from context (set by auth middleware)
	claims, ok := r.Context().Value("claims").(*jwt.Claims)
	if !ok || claims == nil {
		h.respondError(w, http.StatusUnauthorized, "authentication_required", "Authentication required")
		return
	}

	// Decode request body
	var req CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	// Validate request fields
	if err := h.validateCreateMatchRequest(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	code, host, err := h.service.CreateMatch(r.Context(), req.Mode, req.WordLength, Participant{
		UserID:      claims.UserID,
		DisplayName: claims.Username,
		IsGuest:     claims.IsGuest,
	})
	if err != nil {
		reqLogger := logging.FromContext(r.Context())
		reqLogger.Error().Err(err).Str("user_id", claims.UserID.String()).Msg("failed to create match")
		h.respondError(w, http.StatusInternalServerError, "match_creation_failed", err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"match_id":    code,
		"mode":        req.Mode,
		"word_length": req.WordLength,
		"host_player": map[string]interface{}{
			"player_id":    host.ID.String(),
			"display_name": host.DisplayName,
		},
	})
}

// GetMatch handles GET /v1/matches/{code}
func (h *HTTPHandlers) GetMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	code := strings.TrimPrefix(r.URL.Path, "/v1/matches/")
	code = strings.TrimSuffix(code, "/")
	if code == "" {
		h.respondError(w, http.StatusBadRequest, "invalid_match_code", "Match code is required")
		return
	}

	snap, err := h.service.Snapshot(r.Context(), code)
	if err != nil || snap == nil {
		h.logger.Debug().Err(err).Str("match_id", code).Msg("match lookup failed")
		h.respondError(w, http.StatusNotFound, "match_not_found", "Match not found")
		return
	}

	h.respondJSON(w, http.StatusOK, h.matchToResponse(snap))
}

// GetHistory handles GET /v1/matches/history?limit=20
func (h *HTTPHandlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := r.Context().Value("claims").(*jwt.Claims)
	if !ok || claims == nil {
		h.respondError(w, http.StatusUnauthorized, "authentication_required", "Authentication required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	rows, err := h.service.History(r.Context(), claims.UserID, limit)
	if err != nil {
		reqLogger := logging.FromContext(r.Context())
		reqLogger.Error().Err(err).Str("user_id", claims.UserID.String()).Msg("failed to fetch match history")
		h.respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch history")
		return
	}

	out := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		out[i] = map[string]interface{}{
			"match_id":     row.MatchCode,
			"mode":         row.Mode,
			"word_length":  row.WordLength,
			"secret":       row.Secret,
			"guesses":      row.Guesses,
			"solved":       row.Solved,
			"won":          row.Won,
			"score":        row.Score,
			"coins_earned": row.CoinsEarned,
			"played_at":    row.PlayedAt.Format(time.RFC3339),
		}
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"matches": out})
}

// validateCreateMatchRequest validates the CreateMatchRequest payload.
func (h *HTTPHandlers) validateCreateMatchRequest(req *CreateMatchRequest) error {
	if req.Mode == "" {
		return &ValidationError{Field: "mode", Message: "mode is required"}
	}
	if _, ok := game.ModeConfigs[req.Mode]; !ok {
		return &ValidationError{Field: "mode", Message: "unknown match mode"}
	}
	if req.WordLength < 4 || req.WordLength > 7 {
		return &ValidationError{Field: "word_length", Message: "word_length must be between 4 and 7"}
	}
	return nil
}

// matchToResponse converts a match snapshot to HTTP response format. The
// secret word is only included once the match has finished.
func (h *HTTPHandlers) matchToResponse(m *game.Match) map[string]interface{} {
	players := make([]map[string]interface{}, len(m.Players))
	for i, p := range m.Players {
		players[i] = map[string]interface{}{
			"player_id":    p.ID.String(),
			"display_name": p.DisplayName,
			"is_host":      p.IsHost,
			"is_bot":       p.IsBot,
			"solved":       p.Solved,
			"score":        p.Score,
			"guesses":      len(p.Guesses),
		}
	}

	resp := map[string]interface{}{
		"match_id":        m.ID,
		"mode":            m.Mode,
		"status":          m.Status,
		"word_length":     m.WordLength,
		"players":         players,
		"slots_remaining": m.MaxPlayers - len(m.Players),
		"created_at":      m.CreatedAt.Format(time.RFC3339),
	}
	if m.Status == game.StatusFinished {
		resp["secret"] = m.SecretWord
		if m.WinnerID != nil {
			resp["winner_id"] = m.WinnerID.String()
		}
	}
	return resp
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *HTTPHandlers) respondError(w http.ResponseWriter, status int, code, message string) {
	h.respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}
