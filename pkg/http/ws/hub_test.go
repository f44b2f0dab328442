package ws

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastToMatchDeliversToMembers(t *testing.T) {
	h := NewHub(zerolog.Nop())
	a, b := uuid.New(), uuid.New()
	connA := NewConnection(nil, zerolog.Nop())
	connB := NewConnection(nil, zerolog.Nop())
	h.RegisterConnection(a, connA)
	h.RegisterConnection(b, connB)
	h.JoinMatch("ABC123", a)
	h.JoinMatch("ABC123", b)

	require.NoError(t, h.BroadcastToMatch("ABC123", Message{Type: TypePing}))
	assert.Len(t, connA.sendCh, 1)
	assert.Len(t, connB.sendCh, 1)

	h.LeaveMatch("ABC123", b)
	require.NoError(t, h.BroadcastToMatch("ABC123", Message{Type: TypePing}))
	assert.Len(t, connA.sendCh, 2)
	assert.Len(t, connB.sendCh, 1)
}

// Broadcasts iterate a snapshot of the roster, so concurrent leaves and
// rejoins must not perturb an in-flight send loop.
func TestBroadcastToMatchDuringRosterChanges(t *testing.T) {
	h := NewHub(zerolog.Nop())
	ids := make([]uuid.UUID, 8)
	for i := range ids {
		ids[i] = uuid.New()
		h.RegisterConnection(ids[i], NewConnection(nil, zerolog.Nop()))
		h.JoinMatch("ABC123", ids[i])
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			h.BroadcastToMatch("ABC123", Message{Type: TypePing})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			for _, id := range ids[1:] {
				h.LeaveMatch("ABC123", id)
				h.JoinMatch("ABC123", id)
			}
		}
	}()
	wg.Wait()
}

func TestJoinMatchIsIdempotent(t *testing.T) {
	h := NewHub(zerolog.Nop())
	id := uuid.New()
	h.RegisterConnection(id, NewConnection(nil, zerolog.Nop()))
	h.JoinMatch("ABC123", id)
	h.JoinMatch("ABC123", id)

	conn, ok := h.GetConnection(id)
	require.True(t, ok)
	require.NoError(t, h.BroadcastToMatch("ABC123", Message{Type: TypePing}))
	assert.Len(t, conn.sendCh, 1)
}
