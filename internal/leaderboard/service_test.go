package leaderboard

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewServiceDefaults(t *testing.T) {
	svc := NewService(nil, zerolog.Nop(), ServiceOptions{})

	assert.Equal(t, 50, svc.topN)
	assert.Equal(t, "lb:updates", svc.pubsubChannel)
	assert.Equal(t, []string{WindowWeekly, WindowAllTime}, svc.windows)
	assert.Equal(t, "lb", svc.prefix)
}

func TestKeys(t *testing.T) {
	svc := NewService(nil, zerolog.Nop(), ServiceOptions{RedisKeyPrefix: "wb"})
	userID := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	assert.Equal(t, "wb:weekly", svc.leaderboardKey(WindowWeekly))
	assert.Equal(t, "wb:all_time:meta:11111111-2222-3333-4444-555555555555", svc.metaKey(WindowAllTime, userID))
}

func TestToWSEntriesAssignsRanks(t *testing.T) {
	entries := []Entry{
		{UserID: uuid.New(), DisplayName: "First", Wins: 9, Games: 12, Coins: 800},
		{UserID: uuid.New(), DisplayName: "Second", Wins: 7, Games: 11, Coins: 650},
	}

	out := toWSEntries(entries)
	assert.Len(t, out, 2)
	assert.Equal(t, 1, out[0].Rank)
	assert.Equal(t, "First", out[0].DisplayName)
	assert.Equal(t, 2, out[1].Rank)
	assert.Equal(t, 650, out[1].Coins)
}

func TestIneligibleResultIsSkipped(t *testing.T) {
	svc := NewService(nil, zerolog.Nop(), ServiceOptions{})

	// Guests never touch Redis; a nil client would panic otherwise.
	err := svc.RecordResult(context.Background(), RecordRequest{
		UserID:      uuid.New(),
		DisplayName: "Guest-0042",
		Score:       120,
		Eligible:    false,
	})
	assert.NoError(t, err)
}

func TestIsValidWindow(t *testing.T) {
	assert.True(t, isValidWindow(WindowWeekly))
	assert.True(t, isValidWindow(WindowAllTime))
	assert.False(t, isValidWindow("daily"))
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 0, parseInt(""))
	assert.Equal(t, 0, parseInt("junk"))
	assert.Equal(t, 42, parseInt("42"))
}
