package match

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/SamaChan/MLTNBTLGAME/internal/game"
)

// snapshotTTL keeps finished-match snapshots around long enough for
// post-match review before Redis reaps them.
const snapshotTTL = 2 * time.Hour

// StateManager mirrors live match snapshots into Redis so reconnecting
// clients and ops tooling can read match state without touching an engine.
// The engine stays the single writer; these snapshots are read-only copies.
type StateManager struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewStateManager creates a state manager backed by Redis.
func NewStateManager(redis *redis.Client, logger zerolog.Logger) *StateManager {
	return &StateManager{
		redis:  redis,
		logger: logger,
	}
}

func snapshotKey(code string) string { return fmt.Sprintf("match:snapshot:%s", code) }

// StoreSnapshot writes the current match snapshot.
func (s *StateManager) StoreSnapshot(ctx context.Context, snap *game.Match) error {
	if snap == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.redis.Set(ctx, snapshotKey(snap.ID), data, snapshotTTL).Err()
}

// GetSnapshot reads a match snapshot; nil when absent.
func (s *StateManager) GetSnapshot(ctx context.Context, code string) (*game.Match, error) {
	data, err := s.redis.Get(ctx, snapshotKey(code)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap game.Match
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// DeleteSnapshot drops a match snapshot once the lobby is torn down.
func (s *StateManager) DeleteSnapshot(ctx context.Context, code string) error {
	return s.redis.Del(ctx, snapshotKey(code)).Err()
}
