package ws

import "encoding/json"

// MessageType constants for WebSocket protocol.
const (
	// Client -> Server
	TypeCreateMatch   = "create_match"
	TypeJoinMatch     = "join_match"
	TypeAddBot        = "add_bot"
	TypeRemoveBot     = "remove_bot"
	TypeStartMatch    = "start_match"
	TypeSubmitGuess   = "submit_guess"
	TypeUsePowerUp    = "use_powerup"
	TypeCancelPowerUp = "cancel_powerup"
	TypeSendEmote     = "send_emote"
	TypeLeaveMatch    = "leave_match"
	TypeRequestState  = "request_state"

	// Server -> Client
	TypeLobbyUpdate       = "lobby_update"
	TypeMatchStarted      = "match_started"
	TypeCountdownTick     = "countdown_tick"
	TypeGuessAck          = "guess_ack"
	TypeGuessFeed         = "guess_feed"
	TypePowerUpApplied    = "powerup_applied"
	TypeEffectExpired     = "effect_expired"
	TypeHintRevealed      = "hint_revealed"
	TypeMatchState        = "match_state"
	TypeMatchComplete     = "match_complete"
	TypeMatchCancelled    = "match_cancelled"
	TypeEmote             = "emote"
	TypeLeaderboardUpdate = "leaderboard_update"
	TypeError             = "error"
	TypePing              = "ping"
	TypePong              = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	RequestID string          `json:"request_id,omitempty"`
}

// Client Messages (incoming)

type CreateMatchPayload struct {
	Mode       string `json:"mode"`
	WordLength int    `json:"word_length"`
}

type JoinMatchPayload struct {
	MatchID string `json:"match_id"`
}

type AddBotPayload struct {
	MatchID string `json:"match_id"`
}

type RemoveBotPayload struct {
	MatchID string `json:"match_id"`
	BotID   string `json:"bot_id"`
}

type StartMatchPayload struct {
	MatchID string `json:"match_id"`
}

type SubmitGuessPayload struct {
	MatchID string `json:"match_id"`
	Guess   string `json:"guess"`
}

type UsePowerUpPayload struct {
	MatchID  string `json:"match_id"`
	PowerUp  string `json:"powerup"`
	TargetID string `json:"target_id,omitempty"`
	Letter   string `json:"letter,omitempty"`
}

type CancelPowerUpPayload struct {
	MatchID string `json:"match_id"`
}

type SendEmotePayload struct {
	MatchID string `json:"match_id"`
	Emote   string `json:"emote"`
}

type LeaveMatchPayload struct {
	MatchID string `json:"match_id"`
	Reason  string `json:"reason"`
}

type RequestStatePayload struct {
	MatchID string `json:"match_id"`
}

// Server Messages (outgoing)

type LobbyPlayer struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsHost      bool   `json:"is_host"`
	IsBot       bool   `json:"is_bot"`
}

type LobbyUpdatePayload struct {
	MatchID        string        `json:"match_id"`
	Mode           string        `json:"mode"`
	WordLength     int           `json:"word_length"`
	Players        []LobbyPlayer `json:"players"`
	SlotsRemaining int           `json:"slots_remaining"`
}

type MatchStartedPayload struct {
	MatchID         string `json:"match_id"`
	Mode            string `json:"mode"`
	WordLength      int    `json:"word_length"`
	DurationSeconds int    `json:"duration_seconds"`
	MaxGuesses      int    `json:"max_guesses"`
}

type CountdownTickPayload struct {
	MatchID          string `json:"match_id"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

type LetterCell struct {
	Letter string `json:"letter"`
	Status string `json:"status"`
}

type GuessAckPayload struct {
	MatchID  string       `json:"match_id"`
	PlayerID string       `json:"player_id"`
	Accepted bool         `json:"accepted"`
	GuessNo  int          `json:"guess_no,omitempty"`
	Row      []LetterCell `json:"row,omitempty"`
	Solved   bool         `json:"solved"`
}

type GuessFeedPayload struct {
	MatchID string      `json:"match_id"`
	Entries []FeedEntry `json:"entries"`
}

type FeedEntry struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Guess       string `json:"guess"`
	At          string `json:"at"`
}

type PowerUpAppliedPayload struct {
	MatchID  string `json:"match_id"`
	PowerUp  string `json:"powerup"`
	ActorID  string `json:"actor_id"`
	TargetID string `json:"target_id,omitempty"`
	Letter   string `json:"letter,omitempty"`
	UsesLeft int    `json:"uses_left"`
}

type EffectExpiredPayload struct {
	MatchID  string `json:"match_id"`
	PowerUp  string `json:"powerup"`
	PlayerID string `json:"player_id"`
	Letter   string `json:"letter,omitempty"`
}

type HintRevealedPayload struct {
	MatchID  string `json:"match_id"`
	PlayerID string `json:"player_id"`
	Position int    `json:"position"`
	Letter   string `json:"letter"`
}

type MatchStatePayload struct {
	MatchID string          `json:"match_id"`
	State   json.RawMessage `json:"state"`
}

type MatchCompletePayload struct {
	MatchID  string        `json:"match_id"`
	WinnerID string        `json:"winner_id,omitempty"`
	Secret   string        `json:"secret"`
	Results  []MatchResult `json:"results"`
}

type MatchResult struct {
	PlayerID    string `json:"player_id"`
	UserID      string `json:"user_id,omitempty"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
	Guesses     int    `json:"guesses"`
	Solved      bool   `json:"solved"`
	IsWinner    bool   `json:"is_winner"`
	CoinsEarned int    `json:"coins_earned"`
}

type MatchCancelledPayload struct {
	MatchID string `json:"match_id"`
	Reason  string `json:"reason"`
}

type EmotePayload struct {
	MatchID     string `json:"match_id"`
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Emote       string `json:"emote"`
}

type LeaderboardUpdatePayload struct {
	Window string             `json:"window"`
	Top    []LeaderboardEntry `json:"top"`
}

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Wins        int    `json:"wins"`
	Games       int    `json:"games"`
	Coins       int    `json:"coins"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
