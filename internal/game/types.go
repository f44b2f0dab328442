package game

import (
	"time"

	"github.com/google/uuid"
)

// MatchStatus lifecycle states. Status only advances forward.
const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

// Match modes.
const (
	ModeDuel         = "duel"
	ModeArena        = "arena"
	ModeChaos        = "chaos"
	ModeTeam         = "team"
	ModeBattleRoyale = "battle_royale"
	ModeStealth      = "stealth"
)

// ModeConfig bounds the player count for a mode.
type ModeConfig struct {
	MinPlayers int
	MaxPlayers int
}

// ModeConfigs maps each mode to its player-count bounds.
var ModeConfigs = map[string]ModeConfig{
	ModeDuel:         {MinPlayers: 2, MaxPlayers: 2},
	ModeArena:        {MinPlayers: 2, MaxPlayers: 4},
	ModeChaos:        {MinPlayers: 5, MaxPlayers: 8},
	ModeTeam:         {MinPlayers: 4, MaxPlayers: 6},
	ModeBattleRoyale: {MinPlayers: 4, MaxPlayers: 8},
	ModeStealth:      {MinPlayers: 2, MaxPlayers: 6},
}

// MaxGuesses is the per-player guess allowance (before double_guess).
const MaxGuesses = 6

// MatchDuration is the shared countdown clock for a match.
const MatchDuration = 180 * time.Second

// Letter statuses produced by the evaluator.
type LetterStatus string

const (
	StatusCorrect LetterStatus = "correct"
	StatusPresent LetterStatus = "present"
	StatusAbsent  LetterStatus = "absent"
)

// LetterResult is one (letter, status) cell of a guess row.
type LetterResult struct {
	Letter string       `json:"letter"`
	Status LetterStatus `json:"status"`
}

// GuessResult is the per-position scoring of one guess. Immutable once computed.
type GuessResult []LetterResult

// Solved reports whether every position is correct.
func (r GuessResult) Solved() bool {
	for _, cell := range r {
		if cell.Status != StatusCorrect {
			return false
		}
	}
	return len(r) > 0
}

// PowerUpType identifies a power-up catalog entry.
type PowerUpType string

const (
	PowerUpHintSteal   PowerUpType = "hint_steal"
	PowerUpFreeze      PowerUpType = "freeze"
	PowerUpBomb        PowerUpType = "bomb"
	PowerUpDoubleGuess PowerUpType = "double_guess"
	PowerUpShield      PowerUpType = "shield"
	PowerUpLetterBan   PowerUpType = "letter_ban"
)

// PowerUp is a static catalog entry; never mutated at runtime.
type PowerUp struct {
	Type        PowerUpType
	Name        string
	UsesPerMatch int
	Duration    time.Duration
	NeedsTarget bool
	NeedsLetter bool
}

// PowerUps is the fixed catalog.
var PowerUps = map[PowerUpType]PowerUp{
	PowerUpHintSteal:   {Type: PowerUpHintSteal, Name: "Hint Steal", UsesPerMatch: 3, Duration: 30 * time.Second, NeedsTarget: true},
	PowerUpFreeze:      {Type: PowerUpFreeze, Name: "Freeze", UsesPerMatch: 2, Duration: 15 * time.Second, NeedsTarget: true},
	PowerUpBomb:        {Type: PowerUpBomb, Name: "Bomb", UsesPerMatch: 2, Duration: 30 * time.Second, NeedsTarget: true},
	PowerUpDoubleGuess: {Type: PowerUpDoubleGuess, Name: "Double Guess", UsesPerMatch: 3, Duration: 30 * time.Second},
	PowerUpShield:      {Type: PowerUpShield, Name: "Shield", UsesPerMatch: 3, Duration: 30 * time.Second},
	PowerUpLetterBan:   {Type: PowerUpLetterBan, Name: "Letter Ban", UsesPerMatch: 2, Duration: 25 * time.Second, NeedsTarget: true, NeedsLetter: true},
}

// InitialPowerUpUses returns a fresh allowance map for one player.
func InitialPowerUpUses() map[PowerUpType]int {
	uses := make(map[PowerUpType]int, len(PowerUps))
	for t, p := range PowerUps {
		uses[t] = p.UsesPerMatch
	}
	return uses
}

// BannedLetter is a (letter, expiry) tuple scoped to one player. A ban also
// lifts after the target has two guesses accepted, whichever comes first.
type BannedLetter struct {
	Letter      string    `json:"letter"`
	ExpiresAt   time.Time `json:"expires_at"`
	GuessesLeft int       `json:"guesses_left"`
}

// Player is one participant in a match.
type Player struct {
	ID           uuid.UUID           `json:"id"`
	UserID       uuid.UUID           `json:"user_id"`
	DisplayName  string              `json:"display_name"`
	AvatarURL    string              `json:"avatar_url,omitempty"`
	Guesses      []string            `json:"guesses"`
	Rows         []GuessResult       `json:"rows"`
	CurrentGuess string              `json:"current_guess"`
	Solved       bool                `json:"solved"`
	SolvedAt     *time.Time          `json:"solved_at,omitempty"`
	Score        int                 `json:"score"`
	IsHost       bool                `json:"is_host"`
	IsBot        bool                `json:"is_bot"`
	IsWinner     bool                `json:"is_winner"`
	Frozen       bool                `json:"frozen"`
	ShieldActive bool                `json:"shield_active"`
	BannedLetters []BannedLetter     `json:"banned_letters,omitempty"`
	PowerUpUses  map[PowerUpType]int `json:"powerup_uses"`

	// GuessAllowance starts at MaxGuesses and grows by one per double_guess.
	GuessAllowance int `json:"guess_allowance"`
	// BombPending perturbs the player's next accepted guess row.
	BombPending bool `json:"bomb_pending"`
}

// Exhausted reports whether the player has used their full allowance.
func (p *Player) Exhausted() bool {
	return len(p.Guesses) >= p.GuessAllowance
}

// Match is one game session among a set of players sharing a secret word.
type Match struct {
	ID         string     `json:"id"`
	Mode       string     `json:"mode"`
	Status     string     `json:"status"`
	WordLength int        `json:"word_length"`
	SecretWord string     `json:"-"`
	Players    []*Player  `json:"players"`
	MaxPlayers int        `json:"max_players"`
	WinnerID   *uuid.UUID `json:"winner_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// PlayerByID returns the player with the given id, or nil.
func (m *Match) PlayerByID(id uuid.UUID) *Player {
	for _, p := range m.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ActiveEffect is a live, time-bounded power-up consequence. Owned by the
// engine's effect registry; players only mirror it through status flags.
type ActiveEffect struct {
	Type      PowerUpType `json:"type"`
	ActorID   uuid.UUID   `json:"actor_id"`
	TargetID  *uuid.UUID  `json:"target_id,omitempty"`
	Letter    string      `json:"letter,omitempty"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// FeedEntry is one line of the match guess feed.
type FeedEntry struct {
	ID          uuid.UUID `json:"id"`
	PlayerID    uuid.UUID `json:"player_id"`
	DisplayName string    `json:"display_name"`
	Guess       string    `json:"guess"`
	At          time.Time `json:"at"`
}

// feedLimit caps the retained guess feed length.
const feedLimit = 50

// PendingSelection models the two-phase power-up flow: choose the power-up,
// then a target, then (letter_ban only) a letter. Cancellable before commit.
type PendingSelection struct {
	PlayerID uuid.UUID
	Type     PowerUpType
	TargetID *uuid.UUID
}

// Hint is one revealed secret-letter position, produced by hint_steal.
type Hint struct {
	Position int    `json:"position"`
	Letter   string `json:"letter"`
}
