package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// DB is the subset of pgxpool.Pool the repositories use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// User is one account row. Guests have no email or password hash.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        *string
	PasswordHash *string
	IsGuest      bool
	AvatarURL    string
	Rating       int
	Coins        int
	Wins         int
	Losses       int
	Streak       int
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// UserRepository exposes typed DB operations required by auth and settlement.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a user repository over a pgx pool.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, is_guest, avatar_url, rating, coins, wins, losses, streak, created_at, last_login_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsGuest,
		&u.AvatarURL, &u.Rating, &u.Coins, &u.Wins, &u.Losses, &u.Streak,
		&u.CreatedAt, &u.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// CreateGuest inserts a guest account with a generated display name.
func (r *UserRepository) CreateGuest(ctx context.Context, username, avatarURL string) (User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, username, is_guest, avatar_url)
		VALUES ($1, $2, TRUE, $3)
		RETURNING `+userColumns,
		uuid.New(), username, avatarURL)
	return scanUser(row)
}

// CreateRegistered inserts a fully registered account.
func (r *UserRepository) CreateRegistered(ctx context.Context, username, email, passwordHash string) (User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash, is_guest)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING `+userColumns,
		uuid.New(), username, email, passwordHash)
	return scanUser(row)
}

// GetByID fetches a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByUsername fetches a user by display name.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

// GetByEmail fetches a registered user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// PromoteGuest upgrades a guest to registered in one statement.
func (r *UserRepository) PromoteGuest(ctx context.Context, id uuid.UUID, username, email, passwordHash string) (User, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE users
		SET username = $2, email = $3, password_hash = $4, is_guest = FALSE
		WHERE id = $1 AND is_guest = TRUE
		RETURNING `+userColumns,
		id, username, email, passwordHash)
	return scanUser(row)
}

// UpdateLogin records the last login timestamp.
func (r *UserRepository) UpdateLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	return err
}

// AddCoins credits a settlement reward. Negative deltas are rejected by the
// coins_non_negative check constraint.
func (r *UserRepository) AddCoins(ctx context.Context, id uuid.UUID, delta int) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET coins = coins + $2 WHERE id = $1`, id, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("add coins: %w", ErrNotFound)
	}
	return nil
}

// RecordOutcome bumps the win/loss counters. A win extends the streak, a
// loss resets it.
func (r *UserRepository) RecordOutcome(ctx context.Context, id uuid.UUID, won bool) error {
	sql := `UPDATE users SET losses = losses + 1, streak = 0 WHERE id = $1`
	if won {
		sql = `UPDATE users SET wins = wins + 1, streak = streak + 1 WHERE id = $1`
	}
	_, err := r.db.Exec(ctx, sql, id)
	return err
}

// AdjustRating applies a post-match rating delta, floored at zero.
func (r *UserRepository) AdjustRating(ctx context.Context, id uuid.UUID, delta int) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET rating = GREATEST(rating + $2, 0) WHERE id = $1`, id, delta)
	return err
}
