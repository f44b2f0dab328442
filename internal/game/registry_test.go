package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	dict := &stubDict{draws: []string{"CRANE"}, valid: map[string]bool{"CRANE": true}}
	return NewRegistry(dict, Options{
		Clock:     func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
		Scheduler: NewManualScheduler(),
		Rand:      rand.New(rand.NewSource(42)),
		Logger:    zerolog.Nop(),
	})
}

func TestRegistryCreateAndGet(t *testing.T) {
	reg := newTestRegistry()

	eng, host, err := reg.Create(ModeDuel, 5, PlayerInfo{UserID: uuid.New(), DisplayName: "alice"})
	require.NoError(t, err)
	require.NotNil(t, host)

	code := eng.MatchID()
	assert.Len(t, code, 6)

	got, ok := reg.Get(code)
	require.True(t, ok)
	assert.Same(t, eng, got)

	_, ok = reg.Get("NOPE42")
	assert.False(t, ok)
}

func TestRegistryCodesAreUnique(t *testing.T) {
	reg := newTestRegistry()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		eng, _, err := reg.Create(ModeDuel, 5, PlayerInfo{UserID: uuid.New(), DisplayName: "p"})
		require.NoError(t, err)
		code := eng.MatchID()
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
	assert.Equal(t, 50, reg.Len())
}

func TestRegistryRemoveResetsEngine(t *testing.T) {
	reg := newTestRegistry()

	eng, _, err := reg.Create(ModeDuel, 5, PlayerInfo{UserID: uuid.New(), DisplayName: "alice"})
	require.NoError(t, err)
	code := eng.MatchID()

	reg.Remove(code)
	_, ok := reg.Get(code)
	assert.False(t, ok)
	assert.Nil(t, eng.Snapshot())

	// Removing twice is harmless.
	reg.Remove(code)
}
