package match

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/SamaChan/MLTNBTLGAME/internal/auth"
	httperrors "github.com/SamaChan/MLTNBTLGAME/pkg/http/errors"
	ws "github.com/SamaChan/MLTNBTLGAME/pkg/http/ws"
)

// Handler manages WebSocket connections and routes match-related messages.
type Handler struct {
	service *Service
	hub     *ws.Hub
	authSvc *auth.Service
	logger  zerolog.Logger
}

// NewHandler creates a match WebSocket handler.
func NewHandler(service *Service, hub *ws.Hub, authSvc *auth.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		authSvc: authSvc,
		logger:  logger,
	}
}

// HandleConnection processes a new WebSocket connection.
// Token should be validated before calling this (extract userID from JWT claims).
func (h *Handler) HandleConnection(conn *websocket.Conn, userID uuid.UUID, username string, isGuest bool) {
	wsConn := ws.NewConnection(conn, h.logger)
	h.hub.RegisterConnection(userID, wsConn)

	// Start write pump
	go wsConn.WritePump()

	// Handle incoming messages
	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(context.Background(), userID, username, isGuest, msg)
	})

	// Cleanup on disconnect
	h.hub.UnregisterConnection(userID)
}

// handleMessage routes incoming WebSocket messages.
func (h *Handler) handleMessage(ctx context.Context, userID uuid.UUID, username string, isGuest bool, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeCreateMatch:
		return h.handleCreateMatch(ctx, userID, username, isGuest, msg.Payload)
	case ws.TypeJoinMatch:
		return h.handleJoinMatch(ctx, userID, username, isGuest, msg.Payload)
	case ws.TypeAddBot:
		return h.handleAddBot(ctx, userID, msg.Payload)
	case ws.TypeRemoveBot:
		return h.handleRemoveBot(ctx, userID, msg.Payload)
	case ws.TypeStartMatch:
		return h.handleStartMatch(ctx, userID, msg.Payload)
	case ws.TypeSubmitGuess:
		return h.handleSubmitGuess(ctx, userID, msg.Payload)
	case ws.TypeUsePowerUp:
		return h.handleUsePowerUp(ctx, userID, msg.Payload)
	case ws.TypeCancelPowerUp:
		return h.handleCancelPowerUp(userID, msg.Payload)
	case ws.TypeSendEmote:
		return h.handleSendEmote(userID, msg.Payload)
	case ws.TypeLeaveMatch:
		return h.handleLeaveMatch(ctx, userID, msg.Payload)
	case ws.TypeRequestState:
		return h.handleRequestState(ctx, userID, msg.Payload)
	case ws.TypePing:
		return h.hub.SendToUser(userID, ws.Message{Type: ws.TypePong})
	default:
		return h.sendError(userID, httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (h *Handler) handleCreateMatch(ctx context.Context, userID uuid.UUID, username string, isGuest bool, payload json.RawMessage) error {
	var req ws.CreateMatchPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(userID, httperrors.ErrCodeInvalidPayload, "Invalid create_match payload")
	}

	code, _, err := h.service.CreateMatch(ctx, req.Mode, req.WordLength, Participant{
		UserID:      userID,
		DisplayName: username,
		IsGuest:     isGuest,
	})
	if err != nil {
		return h.sendError(userID, httperrors.ErrCodeMatchCreationFailed, err.Error())
	}

	h.logger.Info().
		Str("match_id", code).
		Str("user_id", userID.String()).
		Str("mode", req.Mode).
		Msg("match created")
	return nil
}

func (h *Handler) handleJoinMatch(ctx context.Context, userID uuid.UUID, username string, isGuest bool, payload json.RawMessage) error {
	var req ws.JoinMatchPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(userID, httperrors.ErrCodeInvalidPayload, "Invalid join_match payload")
	}
	if req.MatchID == "" {
		return h.sendError(userID, httperrors.ErrCodeInvalidMatchCode, "Match code is required")
	}

	if _, err := h.service.JoinMatch(ctx, req.MatchID, Participant{
		UserID:      userID,
		DisplayName: username,
		IsGuest:     isGuest,
	}); err != nil {
		return h.sendError(userID, httperrors.ErrCodeJoinFailed, err.Error())
	}
	return nil
}

func (h *Handler) handleAddBot(ctx context.Context, userID uuid.UUID, payload json.RawMessage) error {
	var req ws.AddBotPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(userID, httperrors.ErrCodeInvalidPayload, "Invalid add_bot payload")
	}
	if _, err := h.service.AddBot(ctx, req.MatchID, userID); err != nil {
		return h.sendError(userID, httperrors.ErrCodeBotFailed, err.Error())
	}
	return nil
}

func (h *Handler) handleRemoveBot(ctx context.Context, userID uuid.UUID, payload json.RawMessage) error {
	var req ws.RemoveBotPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(userID, httperrors.ErrCodeInvalidPayload, "Invalid remove_bot payload")
	}
	botID, err := uuid.Parse(req.BotID)
	if err != nil {
		return h.sendError(userID, httperrors.ErrCodeInvalidPayload, "Invalid bot ID")
	}
	if err := h.service.RemoveBot(ctx, req.MatchID, userID, botID); err != nil {
		return h.sendError(userID, httperrors.ErrCodeBotFailed, err.Error())
	}
	return nil
}

func (h *Handler) handleStartMatch(ctx context.Context, userID uuid.UUID, payload json.RawMessage) error {
	var req ws.StartMatchPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(userID, httperrors.ErrCodeInvalidPayload, "Invalid start_match payload")
	}
	if err := h.service.StartMatch(ctx, req.MatchID, userID); err != nil {
		return h.sendError(userID, httperrors.ErrCodeMatchStartFailed, err.Error())
	}
	return nil
}

func (h *Handler) handleSubmitGuess(ctx context.Context, userID uuid.UUID, payload json.RawMessage) error {
	var req ws.SubmitGuessPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(userID, httperrors.ErrCodeInvalidPayload, "Invalid submit_guess payload")
	}

	accepted, _, err := h.service.SubmitGuess(ctx, req.MatchID, userID, req.Guess)
	if err != nil {
		return h.sendError(userID, httperrors.ErrCodeMatchNotFound, err.Error())
	}
	if !accepted {
		// Accepted guesses are acked via broadcast; a rejection is private.
		ack := ws.GuessAckPayload{MatchID: req.MatchID, PlayerID: userID.String(), Accepted: false}
		msg := ws.Message{Type: ws.TypeGuessAck}
		msg.Payload, _ = json.Marshal(ack)
		return h.hub.SendToUser(userID, msg)
	}
	return nil
}

func (h *Handler) handleUsePowerUp(ctx context.Context, userID uuid.UUID, payload json.RawMessage) error {
	var req ws.UsePowerUpPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(userID, httperrors.ErrCodeInvalidPayload, "Invalid use_powerup payload")
	}

	committed, err := h.service.UsePowerUp(ctx, req.MatchID, userID, req.PowerUp, req.TargetID, req.Letter)
	if err != nil {
		return h.sendError(userID, httperrors.ErrCodePowerUpFailed, err.Error())
	}
	if !committed {
		// Selection is pending a target or letter; nothing to broadcast yet.
		h.logger.Debug().
			Str("match_id", req.MatchID).
			Str("user_id", userID.String()).
			Str("powerup", req.PowerUp).
			Msg("powerup selection pending")
	}
	return nil
}

func (h *Handler) handleCancelPowerUp(userID uuid.UUID, payload json.RawMessage) error {
	var req ws.CancelPowerUpPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(userID, httperrors.ErrCodeInvalidPayload, "Invalid cancel_powerup payload")
	}
	h.service.CancelPowerUp(req.MatchID, userID)
	return nil
}

func (h *Handler) handleSendEmote(userID uuid.UUID, payload json.RawMessage) error {
	var req ws.SendEmotePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(userID, httperrors.ErrCodeInvalidPayload, "Invalid send_emote payload")
	}
	if err := h.service.SendEmote(req.MatchID, userID, req.Emote); err != nil {
		return h.sendError(userID, httperrors.ErrCodeInvalidEmote, err.Error())
	}
	return nil
}

func (h *Handler) handleLeaveMatch(ctx context.Context, userID uuid.UUID, payload json.RawMessage) error {
	var req ws.LeaveMatchPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(userID, httperrors.ErrCodeInvalidPayload, "Invalid leave_match payload")
	}
	h.service.Leave(ctx, req.MatchID, userID)
	return nil
}

func (h *Handler) handleRequestState(ctx context.Context, userID uuid.UUID, payload json.RawMessage) error {
	var req ws.RequestStatePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(userID, httperrors.ErrCodeInvalidPayload, "Invalid request_state payload")
	}

	snap, err := h.service.Snapshot(ctx, req.MatchID)
	if err != nil || snap == nil {
		return h.sendError(userID, httperrors.ErrCodeMatchNotFound, "Match not found")
	}

	state, err := json.Marshal(snap)
	if err != nil {
		return h.sendError(userID, httperrors.ErrCodeInternalError, "Failed to encode match state")
	}
	msg := ws.Message{Type: ws.TypeMatchState}
	msg.Payload, _ = json.Marshal(ws.MatchStatePayload{MatchID: req.MatchID, State: state})
	return h.hub.SendToUser(userID, msg)
}

func (h *Handler) sendError(userID uuid.UUID, code, message string) error {
	payload := ws.ErrorPayload{Code: code, Message: message}
	msg := ws.Message{Type: ws.TypeError}
	msg.Payload, _ = json.Marshal(payload)
	if err := h.hub.SendToUser(userID, msg); err != nil {
		h.logger.Debug().Err(err).Str("user_id", userID.String()).Msg("failed to deliver error message")
	}
	return nil
}
