package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MatchHistoryRow is one finished match result for one player.
type MatchHistoryRow struct {
	ID          uuid.UUID
	MatchCode   string
	UserID      uuid.UUID
	DisplayName string
	Mode        string
	WordLength  int
	Secret      string
	Guesses     int
	Solved      bool
	Won         bool
	Score       int
	CoinsEarned int
	PlayedAt    time.Time
}

// HistoryRepository persists per-player match results.
type HistoryRepository struct {
	db DB
}

// NewHistoryRepository creates a history repository over a pgx pool.
func NewHistoryRepository(db DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Insert writes one settlement row. Bots are not persisted; callers filter
// them out before insertion.
func (r *HistoryRepository) Insert(ctx context.Context, row MatchHistoryRow) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO match_history
			(id, match_code, user_id, display_name, mode, word_length, secret,
			 guesses, solved, won, score, coins_earned, played_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		uuid.New(), row.MatchCode, row.UserID, row.DisplayName, row.Mode,
		row.WordLength, row.Secret, row.Guesses, row.Solved, row.Won,
		row.Score, row.CoinsEarned, row.PlayedAt)
	return err
}

// ListByUser returns a player's most recent results, newest first.
func (r *HistoryRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]MatchHistoryRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, match_code, user_id, display_name, mode, word_length, secret,
		       guesses, solved, won, score, coins_earned, played_at
		FROM match_history
		WHERE user_id = $1
		ORDER BY played_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchHistoryRow
	for rows.Next() {
		var h MatchHistoryRow
		if err := rows.Scan(&h.ID, &h.MatchCode, &h.UserID, &h.DisplayName, &h.Mode,
			&h.WordLength, &h.Secret, &h.Guesses, &h.Solved, &h.Won,
			&h.Score, &h.CoinsEarned, &h.PlayedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Stats aggregates a player's lifetime wins, games, and solves.
func (r *HistoryRepository) Stats(ctx context.Context, userID uuid.UUID) (wins, games, solves int, err error) {
	row := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE won), COUNT(*), COUNT(*) FILTER (WHERE solved)
		FROM match_history
		WHERE user_id = $1`, userID)
	err = row.Scan(&wins, &games, &solves)
	return wins, games, solves, err
}
