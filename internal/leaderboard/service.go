package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	ws "github.com/SamaChan/MLTNBTLGAME/pkg/http/ws"
)

// Supported leaderboard windows.
const (
	WindowWeekly  = "weekly"
	WindowAllTime = "all_time"
)

var defaultWindows = []string{WindowWeekly, WindowAllTime}

// Entry represents a leaderboard record sent to clients.
type Entry struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Score       int       `json:"score"`
	Wins        int       `json:"wins"`
	Games       int       `json:"games"`
	Solves      int       `json:"solves"`
	Coins       int       `json:"coins"`
}

// RecordRequest captures the data required to update leaderboard aggregates.
type RecordRequest struct {
	UserID      uuid.UUID
	DisplayName string
	Score       int
	Solved      bool
	Won         bool
	CoinsEarned int
	MatchCode   string
	Windows     []string
	Eligible    bool
}

// ServiceOptions configures leaderboard service behavior.
type ServiceOptions struct {
	TopN           int
	PubSubChannel  string
	Windows        []string
	EntryTTL       time.Duration
	RedisKeyPrefix string
}

// Service manages leaderboard state in Redis and emits updates over Pub/Sub.
type Service struct {
	redis         *redis.Client
	logger        zerolog.Logger
	topN          int
	pubsubChannel string
	windows       []string
	entryTTL      time.Duration
	prefix        string
}

// NewService constructs a leaderboard service instance.
func NewService(redis *redis.Client, logger zerolog.Logger, opts ServiceOptions) *Service {
	topN := opts.TopN
	if topN <= 0 {
		topN = 50
	}
	channel := opts.PubSubChannel
	if channel == "" {
		channel = "lb:updates"
	}
	windows := opts.Windows
	if len(windows) == 0 {
		windows = defaultWindows
	}
	prefix := opts.RedisKeyPrefix
	if prefix == "" {
		prefix = "lb"
	}
	entryTTL := opts.EntryTTL
	if entryTTL == 0 {
		entryTTL = 8 * 24 * time.Hour
	}

	return &Service{
		redis:         redis,
		logger:        logger.With().Str("component", "leaderboard").Logger(),
		topN:          topN,
		pubsubChannel: channel,
		windows:       windows,
		entryTTL:      entryTTL,
		prefix:        prefix,
	}
}

// RecordResult updates leaderboard metrics for applicable windows. Guests and
// bots are filtered upstream; only eligible requests mutate state.
func (s *Service) RecordResult(ctx context.Context, req RecordRequest) error {
	if !req.Eligible {
		return nil
	}

	windows := req.Windows
	if len(windows) == 0 {
		windows = s.windows
	}

	entry := Entry{
		UserID:      req.UserID,
		DisplayName: req.DisplayName,
		Score:       req.Score,
		Wins:        boolToInt(req.Won),
		Games:       1,
		Solves:      boolToInt(req.Solved),
		Coins:       req.CoinsEarned,
	}

	for _, window := range windows {
		if err := s.updateWindow(ctx, window, entry); err != nil {
			return err
		}
	}

	// Publish aggregate update for WebSocket consumers.
	go s.publishUpdate(context.Background(), windows)
	return nil
}

// Top retrieves the top N entries for a given window, ranked by total score.
func (s *Service) Top(ctx context.Context, window string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > s.topN {
		limit = s.topN
	}

	zKey := s.leaderboardKey(window)
	results, err := s.redis.ZRevRangeWithScores(ctx, zKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(results))
	for _, z := range results {
		meta, err := s.readMeta(ctx, window, z.Member.(string))
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to read leaderboard metadata")
			continue
		}
		meta.Score = int(z.Score)
		entries = append(entries, *meta)
	}
	return entries, nil
}

func (s *Service) updateWindow(ctx context.Context, window string, entry Entry) error {
	zKey := s.leaderboardKey(window)
	metaKey := s.metaKey(window, entry.UserID)

	pipe := s.redis.TxPipeline()
	pipe.ZIncrBy(ctx, zKey, float64(entry.Score), entry.UserID.String())
	pipe.HIncrBy(ctx, metaKey, "wins", int64(entry.Wins))
	pipe.HIncrBy(ctx, metaKey, "games", int64(entry.Games))
	pipe.HIncrBy(ctx, metaKey, "solves", int64(entry.Solves))
	pipe.HIncrBy(ctx, metaKey, "coins", int64(entry.Coins))
	pipe.HSet(ctx, metaKey, map[string]interface{}{
		"display_name": entry.DisplayName,
	})
	if window != WindowAllTime {
		pipe.Expire(ctx, zKey, s.entryTTL)
		pipe.Expire(ctx, metaKey, s.entryTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("update leaderboard window %s: %w", window, err)
	}
	return nil
}

func (s *Service) publishUpdate(ctx context.Context, windows []string) {
	for _, window := range windows {
		entries, err := s.Top(ctx, window, 10)
		if err != nil {
			s.logger.Warn().Err(err).Str("window", window).Msg("failed to collect leaderboard update")
			continue
		}
		if len(entries) == 0 {
			continue
		}

		payload := ws.LeaderboardUpdatePayload{
			Window: window,
			Top:    toWSEntries(entries),
		}
		data, err := json.Marshal(payload)
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to marshal leaderboard update")
			continue
		}
		if err := s.redis.Publish(ctx, s.pubsubChannel, data).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish leaderboard update")
		}
	}
}

func (s *Service) readMeta(ctx context.Context, window string, userIDStr string) (*Entry, error) {
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("parse member %q: %w", userIDStr, err)
	}
	data, err := s.redis.HGetAll(ctx, s.metaKey(window, userID)).Result()
	if err != nil {
		return nil, err
	}

	entry := &Entry{UserID: userID}
	if len(data) == 0 {
		return entry, nil
	}
	entry.DisplayName = data["display_name"]
	entry.Wins = parseInt(data["wins"])
	entry.Games = parseInt(data["games"])
	entry.Solves = parseInt(data["solves"])
	entry.Coins = parseInt(data["coins"])
	return entry, nil
}

func (s *Service) leaderboardKey(window string) string {
	return fmt.Sprintf("%s:%s", s.prefix, window)
}

func (s *Service) metaKey(window string, userID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:meta:%s", s.prefix, window, userID.String())
}

func toWSEntries(entries []Entry) []ws.LeaderboardEntry {
	out := make([]ws.LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = ws.LeaderboardEntry{
			Rank:        i + 1,
			UserID:      e.UserID.String(),
			DisplayName: e.DisplayName,
			Wins:        e.Wins,
			Games:       e.Games,
			Coins:       e.Coins,
		}
	}
	return out
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func parseInt(val string) int {
	if val == "" {
		return 0
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return i
}
