package auth

import (
	"github.com/google/uuid"
)

// User represents an authenticated user (registered or guest).
type User struct {
	ID        uuid.UUID
	Username  string
	Email     *string
	AvatarURL string
	Rating    int
	Coins     int
	Wins      int
	Losses    int
	Streak    int
	IsGuest   bool
}

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// RegisterRequest for username/password registration.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// LoginRequest for username/password authentication.
type LoginRequest struct {
	Username string
	Password string
}

// GuestRequest for creating ephemeral guest accounts.
type GuestRequest struct {
	Username  string
	AvatarURL string
}

// PromoteGuestRequest upgrades a guest to a registered account.
type PromoteGuestRequest struct {
	GuestID  uuid.UUID
	Username string
	Email    string
	Password string
}
