package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamaChan/MLTNBTLGAME/internal/auth/jwt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("testpassword123")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.True(t, len(hash) > 20) // bcrypt hashes are long
}

func TestVerifyPassword(t *testing.T) {
	hash, _ := HashPassword("testpassword123")

	err := VerifyPassword(hash, "testpassword123")
	assert.NoError(t, err)

	err = VerifyPassword(hash, "wrongpassword")
	assert.Error(t, err)
}

func TestPasswordTooShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err)
	assert.Equal(t, ErrPasswordTooShort, err)
}

func TestTokenRoundTrip(t *testing.T) {
	mgr := jwt.NewManager(jwt.TokenConfig{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	})

	user := jwt.User{ID: uuid.New(), Username: "wordsmith", IsGuest: false}

	token, err := mgr.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := mgr.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "wordsmith", claims.Username)
	assert.False(t, claims.IsGuest)
}

func TestAccessTokenRejectedAsRefresh(t *testing.T) {
	mgr := jwt.NewManager(jwt.TokenConfig{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	})

	token, err := mgr.GenerateAccessToken(jwt.User{ID: uuid.New(), Username: "x"})
	require.NoError(t, err)

	_, err = mgr.ValidateRefreshToken(token)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	mgr := jwt.NewManager(jwt.TokenConfig{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     -time.Minute,
	})

	token, err := mgr.GenerateAccessToken(jwt.User{ID: uuid.New(), Username: "x"})
	require.NoError(t, err)

	_, err = mgr.ValidateAccessToken(token)
	assert.ErrorIs(t, err, jwt.ErrExpiredToken)
}

func TestRankForRating(t *testing.T) {
	assert.Equal(t, "bronze", RankForRating(0))
	assert.Equal(t, "bronze", RankForRating(999))
	assert.Equal(t, "silver", RankForRating(1000))
	assert.Equal(t, "gold", RankForRating(2000))
	assert.Equal(t, "platinum", RankForRating(3500))
	assert.Equal(t, "diamond", RankForRating(5000))
	assert.Equal(t, "wordlord", RankForRating(7500))
}
