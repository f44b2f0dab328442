package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized      = "unauthorized"
	ErrCodeForbidden         = "forbidden"
	ErrCodeInvalidToken      = "invalid_token"
	ErrCodeTokenExpired      = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest    = "invalid_request"
	ErrCodeValidationFailed  = "validation_failed"
	ErrCodeMissingField      = "missing_field"

	// Resource errors
	ErrCodeNotFound          = "not_found"
	ErrCodeAlreadyExists     = "already_exists"
	ErrCodeConflict          = "conflict"

	// Account errors
	ErrCodeRegistrationFailed = "registration_failed"
	ErrCodeLoginFailed        = "login_failed"
	ErrCodeGuestCreationFailed = "guest_creation_failed"
	ErrCodePromotionFailed    = "promotion_failed"
	ErrCodeRefreshFailed      = "refresh_failed"
	ErrCodeUsernameTaken      = "username_taken"

	// Match errors
	ErrCodeMatchCreationFailed = "match_creation_failed"
	ErrCodeMatchNotFound       = "match_not_found"
	ErrCodeInvalidMatchCode    = "invalid_match_code"
	ErrCodeJoinFailed          = "join_failed"
	ErrCodeMatchStartFailed    = "match_start_failed"
	ErrCodeNotHost             = "not_host"
	ErrCodeGuessRejected       = "guess_rejected"
	ErrCodeBotFailed           = "bot_failed"

	// Power-up errors
	ErrCodePowerUpFailed    = "powerup_failed"
	ErrCodePowerUpExhausted = "powerup_exhausted"
	ErrCodeInvalidTarget    = "invalid_target"
	ErrCodeInvalidEmote     = "invalid_emote"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType  = "unknown_message_type"
	ErrCodeConnectionError     = "connection_error"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"

	// Leaderboard errors
	ErrCodeLeaderboardFetchFailed = "leaderboard_fetch_failed"
	ErrCodeUnknownWindow          = "unknown_leaderboard_window"
)
