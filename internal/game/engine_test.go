package game

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDict struct {
	draws []string
	i     int
	valid map[string]bool
}

func (d *stubDict) RandomWord(length int) (string, error) {
	w := d.draws[d.i%len(d.draws)]
	d.i++
	return w, nil
}

func (d *stubDict) IsValid(w string, length int) bool { return d.valid[w] }

type testRig struct {
	eng   *Engine
	sched *ManualScheduler
	dict  *stubDict
	now   *time.Time
	evs   *[]Event
}

// newTestRig builds an engine around a fixed secret with a manual scheduler
// and a controllable clock.
func newTestRig(t *testing.T, secret string, valid ...string) *testRig {
	t.Helper()

	dict := &stubDict{draws: []string{secret}, valid: map[string]bool{secret: true}}
	for _, w := range valid {
		dict.valid[w] = true
	}
	sched := NewManualScheduler()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	evs := []Event{}

	eng := NewEngine(dict, Options{
		Clock:     func() time.Time { return now },
		Scheduler: sched,
		Rand:      rand.New(rand.NewSource(7)),
		Sink:      func(ev Event) { evs = append(evs, ev) },
		Logger:    zerolog.Nop(),
	})
	return &testRig{eng: eng, sched: sched, dict: dict, now: &now, evs: &evs}
}

func (r *testRig) advance(d time.Duration) { *r.now = r.now.Add(d) }

func (r *testRig) startedDuel(t *testing.T) (host, guest *Player) {
	t.Helper()
	host, err := r.eng.CreateMatch(ModeDuel, 5, "", PlayerInfo{UserID: uuid.New(), DisplayName: "alice"})
	require.NoError(t, err)
	guest, err = r.eng.Join(PlayerInfo{UserID: uuid.New(), DisplayName: "bob"})
	require.NoError(t, err)
	require.NoError(t, r.eng.Start())
	return host, guest
}

func TestMatchLifecycle(t *testing.T) {
	rig := newTestRig(t, "CRANE")

	host, err := rig.eng.CreateMatch(ModeDuel, 5, "", PlayerInfo{UserID: uuid.New(), DisplayName: "alice"})
	require.NoError(t, err)
	assert.True(t, host.IsHost)
	assert.Equal(t, StatusWaiting, rig.eng.Status())
	assert.Len(t, rig.eng.MatchID(), 6)

	guest, err := rig.eng.Join(PlayerInfo{UserID: uuid.New(), DisplayName: "bob"})
	require.NoError(t, err)
	assert.False(t, guest.IsHost)

	// Duel caps at two players.
	_, err = rig.eng.Join(PlayerInfo{UserID: uuid.New(), DisplayName: "carol"})
	assert.Error(t, err)

	require.NoError(t, rig.eng.Start())
	assert.Equal(t, StatusPlaying, rig.eng.Status())
	assert.Error(t, rig.eng.Start())

	// No joins once underway.
	_, err = rig.eng.Join(PlayerInfo{UserID: uuid.New(), DisplayName: "dave"})
	assert.Error(t, err)

	snap := rig.eng.Snapshot()
	require.NotNil(t, snap)
	assert.Len(t, snap.Players, 2)
	assert.Equal(t, MatchDuration, rig.eng.TimeLeft())
}

func TestCreateMatchUnknownMode(t *testing.T) {
	rig := newTestRig(t, "CRANE")
	_, err := rig.eng.CreateMatch("royale", 5, "", PlayerInfo{UserID: uuid.New(), DisplayName: "alice"})
	assert.Error(t, err)
}

func TestJoinSameUserTwice(t *testing.T) {
	rig := newTestRig(t, "CRANE")
	info := PlayerInfo{UserID: uuid.New(), DisplayName: "alice"}
	_, err := rig.eng.CreateMatch(ModeArena, 5, "", info)
	require.NoError(t, err)
	_, err = rig.eng.Join(info)
	assert.Error(t, err)
}

func TestSubmitGuessValidation(t *testing.T) {
	rig := newTestRig(t, "CRANE", "SLATE")
	host, _ := rig.startedDuel(t)

	// Not a dictionary word.
	ok, _ := rig.eng.SubmitGuess(host.ID, "ZZZZZ")
	assert.False(t, ok)

	// Wrong length.
	ok, _ = rig.eng.SubmitGuess(host.ID, "SLAT")
	assert.False(t, ok)

	// Unknown player.
	ok, _ = rig.eng.SubmitGuess(uuid.New(), "SLATE")
	assert.False(t, ok)

	// Lowercase input is normalized before lookup.
	ok, result := rig.eng.SubmitGuess(host.ID, "slate")
	assert.True(t, ok)
	assert.Len(t, result, 5)

	snap := rig.eng.Snapshot()
	assert.Equal(t, []string{"SLATE"}, snap.PlayerByID(host.ID).Guesses)
	assert.Len(t, rig.eng.Feed(), 1)
}

func TestSolveFinishesMatch(t *testing.T) {
	rig := newTestRig(t, "CRANE")
	host, guest := rig.startedDuel(t)

	ok, result := rig.eng.SubmitGuess(host.ID, "CRANE")
	require.True(t, ok)
	assert.True(t, result.Solved())

	assert.Equal(t, StatusFinished, rig.eng.Status())
	winner := rig.eng.Winner()
	require.NotNil(t, winner)
	assert.Equal(t, host.ID, winner.ID)

	// Full time bonus plus capped efficiency bonus on a first-guess solve.
	assert.Equal(t, 200, winner.Score)

	// Post-finish guesses are rejected.
	ok, _ = rig.eng.SubmitGuess(guest.ID, "CRANE")
	assert.False(t, ok)
}

func TestAllExhaustedFinishesWithoutWinner(t *testing.T) {
	rig := newTestRig(t, "CRANE", "SLATE")
	host, guest := rig.startedDuel(t)

	for i := 0; i < MaxGuesses; i++ {
		ok, _ := rig.eng.SubmitGuess(host.ID, "SLATE")
		require.True(t, ok)
	}
	assert.Equal(t, StatusPlaying, rig.eng.Status())

	// An exhausted player gets no further guesses.
	ok, _ := rig.eng.SubmitGuess(host.ID, "SLATE")
	assert.False(t, ok)

	for i := 0; i < MaxGuesses; i++ {
		ok, _ := rig.eng.SubmitGuess(guest.ID, "SLATE")
		require.True(t, ok)
	}
	assert.Equal(t, StatusFinished, rig.eng.Status())
	assert.Nil(t, rig.eng.Winner())
}

func TestCountdownForceFinish(t *testing.T) {
	rig := newTestRig(t, "CRANE")
	rig.startedDuel(t)

	rig.advance(MatchDuration + time.Second)
	assert.Equal(t, time.Duration(0), rig.eng.TimeLeft())

	rig.eng.ForceFinish()
	assert.Equal(t, StatusFinished, rig.eng.Status())
	assert.Nil(t, rig.eng.Winner())
}

func TestForceFinishEmitsSingleStateChange(t *testing.T) {
	rig := newTestRig(t, "CRANE")
	rig.startedDuel(t)

	rig.advance(MatchDuration + time.Second)
	rig.eng.ForceFinish()

	// Exactly one finished transition; a duplicate would make every
	// listener settle the match twice.
	finished := 0
	for _, ev := range *rig.evs {
		if ev.Type == EventMatchStateChanged && ev.Status == StatusFinished {
			finished++
		}
	}
	assert.Equal(t, 1, finished)

	// A second call is a no-op.
	before := len(*rig.evs)
	rig.eng.ForceFinish()
	assert.Len(t, *rig.evs, before)
}

func TestFreezeBlocksGuessesUntilExpiry(t *testing.T) {
	rig := newTestRig(t, "CRANE", "SLATE")
	host, guest := rig.startedDuel(t)

	require.True(t, rig.eng.SelectPowerUp(host.ID, PowerUpFreeze))
	require.True(t, rig.eng.SelectTarget(host.ID, guest.ID))

	snap := rig.eng.Snapshot()
	assert.True(t, snap.PlayerByID(guest.ID).Frozen)
	assert.Equal(t, 1, snap.PlayerByID(host.ID).PowerUpUses[PowerUpFreeze])

	ok, _ := rig.eng.SubmitGuess(guest.ID, "SLATE")
	assert.False(t, ok)

	rig.advance(PowerUps[PowerUpFreeze].Duration + time.Second)
	rig.sched.Fire()
	snap = rig.eng.Snapshot()
	assert.False(t, snap.PlayerByID(guest.ID).Frozen)

	ok, _ = rig.eng.SubmitGuess(guest.ID, "SLATE")
	assert.True(t, ok)
}

func TestRefreezeExtendsExpiry(t *testing.T) {
	rig := newTestRig(t, "CRANE", "SLATE")
	host, guest := rig.startedDuel(t)

	require.True(t, rig.eng.SelectPowerUp(host.ID, PowerUpFreeze))
	require.True(t, rig.eng.SelectTarget(host.ID, guest.ID))

	// A second freeze on the same target pushes the expiry out.
	rig.advance(10 * time.Second)
	require.True(t, rig.eng.SelectPowerUp(host.ID, PowerUpFreeze))
	require.True(t, rig.eng.SelectTarget(host.ID, guest.ID))

	// The first activation's timer fires at its original deadline; the
	// extended freeze must survive it.
	rig.advance(5 * time.Second)
	rig.sched.FireNext()
	assert.True(t, rig.eng.Snapshot().PlayerByID(guest.ID).Frozen)
	ok, _ := rig.eng.SubmitGuess(guest.ID, "SLATE")
	assert.False(t, ok)

	// The second timer lifts the freeze at the extended deadline.
	rig.advance(10 * time.Second)
	rig.sched.FireNext()
	assert.False(t, rig.eng.Snapshot().PlayerByID(guest.ID).Frozen)
	ok, _ = rig.eng.SubmitGuess(guest.ID, "SLATE")
	assert.True(t, ok)
}

func TestShieldBlocksIncomingEffects(t *testing.T) {
	rig := newTestRig(t, "CRANE", "SLATE")
	host, guest := rig.startedDuel(t)

	// Shield needs no target and commits immediately.
	require.True(t, rig.eng.SelectPowerUp(guest.ID, PowerUpShield))

	require.True(t, rig.eng.SelectPowerUp(host.ID, PowerUpFreeze))
	assert.False(t, rig.eng.SelectTarget(host.ID, guest.ID))

	snap := rig.eng.Snapshot()
	assert.False(t, snap.PlayerByID(guest.ID).Frozen)
	// A blocked attempt does not consume a use.
	assert.Equal(t, 2, snap.PlayerByID(host.ID).PowerUpUses[PowerUpFreeze])

	// After the shield expires the same attack lands.
	rig.advance(PowerUps[PowerUpShield].Duration + time.Second)
	rig.sched.Fire()
	require.True(t, rig.eng.SelectPowerUp(host.ID, PowerUpFreeze))
	require.True(t, rig.eng.SelectTarget(host.ID, guest.ID))
	assert.True(t, rig.eng.Snapshot().PlayerByID(guest.ID).Frozen)
}

func TestReshieldExtendsExpiry(t *testing.T) {
	rig := newTestRig(t, "CRANE")
	host, guest := rig.startedDuel(t)

	require.True(t, rig.eng.SelectPowerUp(guest.ID, PowerUpShield))
	rig.advance(10 * time.Second)
	require.True(t, rig.eng.SelectPowerUp(guest.ID, PowerUpShield))

	// The first shield's timer fires at its original deadline but the
	// holder re-shielded, so attacks stay blocked.
	rig.advance(20 * time.Second)
	rig.sched.FireNext()
	assert.True(t, rig.eng.Snapshot().PlayerByID(guest.ID).ShieldActive)
	require.True(t, rig.eng.SelectPowerUp(host.ID, PowerUpFreeze))
	assert.False(t, rig.eng.SelectTarget(host.ID, guest.ID))

	rig.advance(10 * time.Second)
	rig.sched.FireNext()
	assert.False(t, rig.eng.Snapshot().PlayerByID(guest.ID).ShieldActive)
}

func TestLetterBanLiftsAfterTwoAcceptedGuesses(t *testing.T) {
	rig := newTestRig(t, "CRANE", "SPEED", "GHOST")
	host, guest := rig.startedDuel(t)

	require.True(t, rig.eng.SelectPowerUp(host.ID, PowerUpLetterBan))
	require.True(t, rig.eng.SelectTarget(host.ID, guest.ID))
	require.True(t, rig.eng.SelectLetter(host.ID, "A"))

	// Guesses containing the banned letter are rejected.
	ok, _ := rig.eng.SubmitGuess(guest.ID, "CRANE")
	assert.False(t, ok)

	ok, _ = rig.eng.SubmitGuess(guest.ID, "SPEED")
	require.True(t, ok)
	ok, _ = rig.eng.SubmitGuess(guest.ID, "GHOST")
	require.True(t, ok)

	// Two accepted guesses lift the ban before its timer expires.
	ok, result := rig.eng.SubmitGuess(guest.ID, "CRANE")
	assert.True(t, ok)
	assert.True(t, result.Solved())
}

func TestLetterBanExpiresOnTimer(t *testing.T) {
	rig := newTestRig(t, "CRANE")
	host, guest := rig.startedDuel(t)

	require.True(t, rig.eng.SelectPowerUp(host.ID, PowerUpLetterBan))
	require.True(t, rig.eng.SelectTarget(host.ID, guest.ID))
	require.True(t, rig.eng.SelectLetter(host.ID, "A"))

	ok, _ := rig.eng.SubmitGuess(guest.ID, "CRANE")
	assert.False(t, ok)

	rig.advance(PowerUps[PowerUpLetterBan].Duration + time.Second)
	rig.sched.Fire()

	assert.Empty(t, rig.eng.Snapshot().PlayerByID(guest.ID).BannedLetters)
	ok, _ = rig.eng.SubmitGuess(guest.ID, "CRANE")
	assert.True(t, ok)
}

func TestDoubleGuessExtendsAllowance(t *testing.T) {
	rig := newTestRig(t, "CRANE", "SLATE")
	host, _ := rig.startedDuel(t)

	require.True(t, rig.eng.SelectPowerUp(host.ID, PowerUpDoubleGuess))
	assert.Equal(t, MaxGuesses+1, rig.eng.Snapshot().PlayerByID(host.ID).GuessAllowance)

	for i := 0; i < MaxGuesses+1; i++ {
		ok, _ := rig.eng.SubmitGuess(host.ID, "SLATE")
		require.True(t, ok, "guess %d", i+1)
	}
	ok, _ := rig.eng.SubmitGuess(host.ID, "SLATE")
	assert.False(t, ok)
}

func TestBombShufflesNextRowStatuses(t *testing.T) {
	rig := newTestRig(t, "CRANE", "CRATE")
	host, guest := rig.startedDuel(t)

	require.True(t, rig.eng.SelectPowerUp(host.ID, PowerUpBomb))
	require.True(t, rig.eng.SelectTarget(host.ID, guest.ID))
	assert.True(t, rig.eng.Snapshot().PlayerByID(guest.ID).BombPending)

	ok, result := rig.eng.SubmitGuess(guest.ID, "CRATE")
	require.True(t, ok)

	// Letters stay in place; the status multiset is preserved.
	truth := Evaluate("CRATE", "CRANE")
	for i := range result {
		assert.Equal(t, truth[i].Letter, result[i].Letter)
	}
	assert.ElementsMatch(t, sortedStatuses(truth), sortedStatuses(result))
	assert.False(t, rig.eng.Snapshot().PlayerByID(guest.ID).BombPending)
}

func TestBombDoesNotAffectSolvingGuess(t *testing.T) {
	rig := newTestRig(t, "CRANE")
	host, guest := rig.startedDuel(t)

	require.True(t, rig.eng.SelectPowerUp(host.ID, PowerUpBomb))
	require.True(t, rig.eng.SelectTarget(host.ID, guest.ID))

	ok, result := rig.eng.SubmitGuess(guest.ID, "CRANE")
	require.True(t, ok)
	assert.True(t, result.Solved())
	assert.Equal(t, guest.ID, rig.eng.Winner().ID)
}

func TestHintStealRevealsSecretPosition(t *testing.T) {
	rig := newTestRig(t, "CRANE")
	host, guest := rig.startedDuel(t)

	require.True(t, rig.eng.SelectPowerUp(host.ID, PowerUpHintSteal))
	require.True(t, rig.eng.SelectTarget(host.ID, guest.ID))

	hints := rig.eng.Hints(host.ID)
	require.Len(t, hints, 1)
	assert.Equal(t, string("CRANE"[hints[0].Position]), hints[0].Letter)
	assert.Equal(t, 2, rig.eng.Snapshot().PlayerByID(host.ID).PowerUpUses[PowerUpHintSteal])

	var revealed bool
	for _, ev := range *rig.evs {
		if ev.Type == EventHintRevealed {
			revealed = true
		}
	}
	assert.True(t, revealed)
}

func TestApplyRemoteDoesNotDecrementUses(t *testing.T) {
	rig := newTestRig(t, "CRANE")
	host, guest := rig.startedDuel(t)

	gid := guest.ID
	applied := rig.eng.ApplyRemote(Event{
		Type:     EventPowerUpActivated,
		PlayerID: host.ID,
		TargetID: &gid,
		PowerUp:  PowerUpFreeze,
	})
	require.True(t, applied)

	snap := rig.eng.Snapshot()
	assert.True(t, snap.PlayerByID(guest.ID).Frozen)
	assert.Equal(t, 2, snap.PlayerByID(host.ID).PowerUpUses[PowerUpFreeze])
}

func TestCancelPendingSelection(t *testing.T) {
	rig := newTestRig(t, "CRANE")
	host, guest := rig.startedDuel(t)

	require.True(t, rig.eng.SelectPowerUp(host.ID, PowerUpFreeze))
	rig.eng.CancelPending(host.ID)

	assert.False(t, rig.eng.SelectTarget(host.ID, guest.ID))
	assert.Equal(t, 2, rig.eng.Snapshot().PlayerByID(host.ID).PowerUpUses[PowerUpFreeze])
}

func TestPowerUpExhaustion(t *testing.T) {
	rig := newTestRig(t, "CRANE")
	host, guest := rig.startedDuel(t)

	for i := 0; i < PowerUps[PowerUpFreeze].UsesPerMatch; i++ {
		require.True(t, rig.eng.SelectPowerUp(host.ID, PowerUpFreeze))
		require.True(t, rig.eng.SelectTarget(host.ID, guest.ID))
		rig.sched.Fire()
	}
	assert.False(t, rig.eng.SelectPowerUp(host.ID, PowerUpFreeze))
}

func TestResetCancelsTimersAndClearsState(t *testing.T) {
	rig := newTestRig(t, "CRANE")
	host, guest := rig.startedDuel(t)

	require.True(t, rig.eng.SelectPowerUp(host.ID, PowerUpFreeze))
	require.True(t, rig.eng.SelectTarget(host.ID, guest.ID))

	rig.eng.Reset()
	rig.sched.Fire()

	assert.Nil(t, rig.eng.Snapshot())
	assert.Nil(t, rig.eng.Winner())
	assert.Empty(t, rig.eng.Feed())
}

func TestAddAndRemoveBots(t *testing.T) {
	rig := newTestRig(t, "CRANE")
	_, err := rig.eng.CreateMatch(ModeArena, 5, "", PlayerInfo{UserID: uuid.New(), DisplayName: "alice"})
	require.NoError(t, err)

	b1, err := rig.eng.AddBot("")
	require.NoError(t, err)
	assert.Equal(t, "BotAlice", b1.DisplayName)
	assert.True(t, b1.IsBot)

	b2, err := rig.eng.AddBot("")
	require.NoError(t, err)
	assert.Equal(t, "BotBob", b2.DisplayName)

	require.NoError(t, rig.eng.RemoveBot(b2.ID))
	assert.Len(t, rig.eng.Snapshot().Players, 2)

	require.NoError(t, rig.eng.Start())
	_, err = rig.eng.AddBot("")
	assert.Error(t, err)
	assert.Error(t, rig.eng.RemoveBot(b1.ID))
}

func TestMatchStateEvents(t *testing.T) {
	rig := newTestRig(t, "CRANE")
	host, _ := rig.startedDuel(t)

	ok, _ := rig.eng.SubmitGuess(host.ID, "CRANE")
	require.True(t, ok)

	var types []EventType
	for _, ev := range *rig.evs {
		types = append(types, ev.Type)
	}
	assert.Contains(t, types, EventMatchStateChanged)
	assert.Contains(t, types, EventGuessSubmitted)

	last := (*rig.evs)[len(*rig.evs)-1]
	assert.Equal(t, EventGuessSubmitted, last.Type)
}

func sortedStatuses(r GuessResult) []LetterStatus {
	out := statuses(r)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
