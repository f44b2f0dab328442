package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SamaChan/MLTNBTLGAME/internal/auth/jwt"
	"github.com/SamaChan/MLTNBTLGAME/internal/db/repository"
)

// Service handles authentication and user management.
type Service struct {
	userRepo *repository.UserRepository
	tokenMgr *jwt.Manager
	logger   zerolog.Logger
}

// ServiceOptions configures the auth service.
type ServiceOptions struct {
	TokenConfig jwt.TokenConfig
}

// NewService creates an authentication service.
func NewService(userRepo *repository.UserRepository, opts ServiceOptions, logger zerolog.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		tokenMgr: jwt.NewManager(opts.TokenConfig),
		logger:   logger,
	}
}

// Register creates a new registered user account.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, *TokenPair, error) {
	if req.Username == "" {
		return nil, nil, fmt.Errorf("username required")
	}
	if req.Email == "" {
		return nil, nil, fmt.Errorf("email required")
	}

	if _, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil {
		return nil, nil, fmt.Errorf("username already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, fmt.Errorf("check username: %w", err)
	}
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, nil, fmt.Errorf("email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, fmt.Errorf("check email: %w", err)
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	dbUser, err := s.userRepo.CreateRegistered(ctx, req.Username, req.Email, passwordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	user := toAuthUser(dbUser)
	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Str("username", req.Username).Msg("user registered")
	return &user, tokens, nil
}

// Login authenticates a user with username/password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*User, *TokenPair, error) {
	dbUser, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid credentials")
	}

	if dbUser.PasswordHash == nil {
		return nil, nil, fmt.Errorf("invalid credentials")
	}
	if err := VerifyPassword(*dbUser.PasswordHash, req.Password); err != nil {
		return nil, nil, fmt.Errorf("invalid credentials")
	}

	_ = s.userRepo.UpdateLogin(ctx, dbUser.ID)

	user := toAuthUser(dbUser)
	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return &user, tokens, nil
}

// CreateGuest creates an ephemeral guest account. Guests play matches but
// stay off persistent leaderboards until promoted.
func (s *Service) CreateGuest(ctx context.Context, req GuestRequest) (*User, *TokenPair, error) {
	username := req.Username
	if username == "" {
		username = randomGuestName()
	}

	dbUser, err := s.userRepo.CreateGuest(ctx, username, req.AvatarURL)
	if err != nil {
		return nil, nil, fmt.Errorf("create guest: %w", err)
	}

	user := toAuthUser(dbUser)
	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("guest created")
	return &user, tokens, nil
}

// PromoteGuest upgrades a guest account to registered, keeping its rating
// and coin balance.
func (s *Service) PromoteGuest(ctx context.Context, req PromoteGuestRequest) (*User, *TokenPair, error) {
	existing, err := s.userRepo.GetByID(ctx, req.GuestID)
	if err != nil {
		return nil, nil, fmt.Errorf("guest not found")
	}
	if !existing.IsGuest {
		return nil, nil, fmt.Errorf("account already registered")
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	username := req.Username
	if username == "" {
		username = existing.Username
	}

	dbUser, err := s.userRepo.PromoteGuest(ctx, req.GuestID, username, req.Email, passwordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("promote guest: %w", err)
	}

	user := toAuthUser(dbUser)
	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("guest promoted to registered")
	return &user, tokens, nil
}

// RefreshToken generates a new token pair from a refresh token.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokenMgr.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	dbUser, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}

	return s.generateTokenPair(toAuthUser(dbUser))
}

// ValidateToken validates an access token and returns user claims.
func (s *Service) ValidateToken(tokenString string) (*jwt.Claims, error) {
	return s.tokenMgr.ValidateAccessToken(tokenString)
}

// Profile returns the current account including rating rank.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*User, string, error) {
	dbUser, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	user := toAuthUser(dbUser)
	return &user, RankForRating(user.Rating), nil
}

// RankForRating maps a rating to a display rank tier.
func RankForRating(rating int) string {
	switch {
	case rating >= 7500:
		return "wordlord"
	case rating >= 5000:
		return "diamond"
	case rating >= 3500:
		return "platinum"
	case rating >= 2000:
		return "gold"
	case rating >= 1000:
		return "silver"
	default:
		return "bronze"
	}
}

func (s *Service) generateTokenPair(user User) (*TokenPair, error) {
	jwtUser := jwt.User{
		ID:       user.ID,
		Username: user.Username,
		IsGuest:  user.IsGuest,
	}

	accessToken, err := s.tokenMgr.GenerateAccessToken(jwtUser)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokenMgr.GenerateRefreshToken(jwtUser)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(1 * 3600), // 1 hour in seconds
	}, nil
}

func toAuthUser(u repository.User) User {
	user := User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Rating:    u.Rating,
		Coins:     u.Coins,
		Wins:      u.Wins,
		Losses:    u.Losses,
		Streak:    u.Streak,
		IsGuest:   u.IsGuest,
	}
	return user
}

func randomGuestName() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "Guest-" + uuid.NewString()[:4]
	}
	return fmt.Sprintf("Guest-%04d", n.Int64())
}
