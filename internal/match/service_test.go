package match

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamaChan/MLTNBTLGAME/internal/game"
	ws "github.com/SamaChan/MLTNBTLGAME/pkg/http/ws"
)

// fixedDict always deals the same secret and accepts a fixed word set.
type fixedDict struct {
	secret string
	valid  map[string]bool
}

func (d *fixedDict) RandomWord(length int) (string, error) { return d.secret, nil }
func (d *fixedDict) IsValid(word string, length int) bool {
	return len(word) == length && d.valid[word]
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	dict := &fixedDict{
		secret: "CRANE",
		valid:  map[string]bool{"CRANE": true, "SLATE": true, "TRAIN": true},
	}
	// Redis is unreachable in tests; snapshot mirroring logs and moves on.
	stateMgr := NewStateManager(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), zerolog.Nop())
	return NewService(dict, stateMgr, nil, nil, nil, ws.NewHub(zerolog.Nop()), ServiceOptions{}, zerolog.Nop())
}

func TestCoinsFor(t *testing.T) {
	assert.Equal(t, CoinsParticipation, coinsFor(false, false))
	assert.Equal(t, CoinsParticipation+CoinsPerSolve, coinsFor(true, false))
	assert.Equal(t, CoinsParticipation+CoinsPerSolve+CoinsPerWin, coinsFor(true, true))
}

func TestAllowedEmotes(t *testing.T) {
	assert.True(t, AllowedEmotes["fire"])
	assert.True(t, AllowedEmotes["mind_blown"])
	assert.False(t, AllowedEmotes["obscene_gesture"])
}

func TestCreateAndJoin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	hostUser := uuid.New()
	code, host, err := svc.CreateMatch(ctx, game.ModeDuel, 5, Participant{UserID: hostUser, DisplayName: "Host"})
	require.NoError(t, err)
	require.Len(t, code, 6)
	assert.True(t, host.IsHost)

	guest := uuid.New()
	player, err := svc.JoinMatch(ctx, code, Participant{UserID: guest, DisplayName: "Guest"})
	require.NoError(t, err)
	assert.False(t, player.IsHost)

	snap, err := svc.Snapshot(ctx, code)
	require.NoError(t, err)
	assert.Len(t, snap.Players, 2)
}

func TestJoinUnknownMatch(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.JoinMatch(context.Background(), "ZZZZZZ", Participant{UserID: uuid.New(), DisplayName: "X"})
	assert.Error(t, err)
}

func TestHostOnlyOperations(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	hostUser := uuid.New()
	code, _, err := svc.CreateMatch(ctx, game.ModeArena, 5, Participant{UserID: hostUser, DisplayName: "Host"})
	require.NoError(t, err)

	guest := uuid.New()
	_, err = svc.JoinMatch(ctx, code, Participant{UserID: guest, DisplayName: "Guest"})
	require.NoError(t, err)

	_, err = svc.AddBot(ctx, code, guest)
	assert.Error(t, err, "non-host cannot add bots")

	bot, err := svc.AddBot(ctx, code, hostUser)
	require.NoError(t, err)
	assert.True(t, bot.IsBot)

	assert.Error(t, svc.RemoveBot(ctx, code, guest, bot.ID))
	assert.NoError(t, svc.RemoveBot(ctx, code, hostUser, bot.ID))

	assert.Error(t, svc.StartMatch(ctx, code, guest))
	assert.NoError(t, svc.StartMatch(ctx, code, hostUser))
}

func TestGuessBeforeStartRejected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	hostUser := uuid.New()
	code, _, err := svc.CreateMatch(ctx, game.ModeDuel, 5, Participant{UserID: hostUser, DisplayName: "Host"})
	require.NoError(t, err)

	accepted, _, err := svc.SubmitGuess(ctx, code, hostUser, "SLATE")
	require.NoError(t, err)
	assert.False(t, accepted)
}

func TestGuessFlow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	hostUser := uuid.New()
	code, _, err := svc.CreateMatch(ctx, game.ModeDuel, 5, Participant{UserID: hostUser, DisplayName: "Host"})
	require.NoError(t, err)
	guest := uuid.New()
	_, err = svc.JoinMatch(ctx, code, Participant{UserID: guest, DisplayName: "Guest"})
	require.NoError(t, err)
	require.NoError(t, svc.StartMatch(ctx, code, hostUser))

	accepted, result, err := svc.SubmitGuess(ctx, code, hostUser, "SLATE")
	require.NoError(t, err)
	assert.True(t, accepted)
	require.Len(t, result, 5)

	accepted, _, err = svc.SubmitGuess(ctx, code, hostUser, "XXXXX")
	require.NoError(t, err)
	assert.False(t, accepted, "word not in dictionary")

	_, _, err = svc.SubmitGuess(ctx, code, uuid.New(), "SLATE")
	assert.Error(t, err, "strangers cannot guess")
}

func TestPowerUpTwoPhaseFlow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	hostUser := uuid.New()
	code, _, err := svc.CreateMatch(ctx, game.ModeDuel, 5, Participant{UserID: hostUser, DisplayName: "Host"})
	require.NoError(t, err)
	guest := uuid.New()
	target, err := svc.JoinMatch(ctx, code, Participant{UserID: guest, DisplayName: "Guest"})
	require.NoError(t, err)
	require.NoError(t, svc.StartMatch(ctx, code, hostUser))

	// Freeze without a target stays pending.
	committed, err := svc.UsePowerUp(ctx, code, hostUser, "freeze", "", "")
	require.NoError(t, err)
	assert.False(t, committed)

	// Supplying the target commits it.
	committed, err = svc.UsePowerUp(ctx, code, hostUser, "freeze", target.ID.String(), "")
	require.NoError(t, err)
	assert.True(t, committed)

	// Frozen players cannot guess.
	accepted, _, err := svc.SubmitGuess(ctx, code, guest, "SLATE")
	require.NoError(t, err)
	assert.False(t, accepted)

	// Untargeted power-ups commit immediately.
	committed, err = svc.UsePowerUp(ctx, code, hostUser, "shield", "", "")
	require.NoError(t, err)
	assert.True(t, committed)

	// Unknown power-up is rejected.
	_, err = svc.UsePowerUp(ctx, code, hostUser, "nuke", "", "")
	assert.Error(t, err)
}

func TestCancelPowerUp(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	hostUser := uuid.New()
	code, _, err := svc.CreateMatch(ctx, game.ModeDuel, 5, Participant{UserID: hostUser, DisplayName: "Host"})
	require.NoError(t, err)
	guest := uuid.New()
	target, err := svc.JoinMatch(ctx, code, Participant{UserID: guest, DisplayName: "Guest"})
	require.NoError(t, err)
	require.NoError(t, svc.StartMatch(ctx, code, hostUser))

	committed, err := svc.UsePowerUp(ctx, code, hostUser, "letter_ban", "", "")
	require.NoError(t, err)
	require.False(t, committed)

	svc.CancelPowerUp(code, hostUser)

	// After cancel, supplying just a target starts a fresh selection and
	// still waits for the letter.
	committed, err = svc.UsePowerUp(ctx, code, hostUser, "letter_ban", target.ID.String(), "")
	require.NoError(t, err)
	assert.False(t, committed)

	committed, err = svc.UsePowerUp(ctx, code, hostUser, "letter_ban", target.ID.String(), "E")
	require.NoError(t, err)
	assert.True(t, committed)
}

func TestSendEmoteValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	hostUser := uuid.New()
	code, _, err := svc.CreateMatch(ctx, game.ModeDuel, 5, Participant{UserID: hostUser, DisplayName: "Host"})
	require.NoError(t, err)

	assert.Error(t, svc.SendEmote(code, hostUser, "not_an_emote"))
	assert.Error(t, svc.SendEmote(code, uuid.New(), "fire"), "non-participant")
}
