package game

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SamaChan/MLTNBTLGAME/internal/game/scoring"
)

// Dictionary is the external word-list collaborator: random secrets and
// validity checks. Implementations must be consistent within a match.
type Dictionary interface {
	RandomWord(length int) (string, error)
	IsValid(word string, length int) bool
}

// EventType labels outbound engine events.
type EventType string

const (
	EventGuessSubmitted    EventType = "guess_submitted"
	EventPowerUpActivated  EventType = "powerup_activated"
	EventMatchStateChanged EventType = "match_state_changed"
	EventHintRevealed      EventType = "hint_revealed"
	EventEffectExpired     EventType = "effect_expired"
)

// Event is one outbound fact for the transport layer to relay. OriginID tags
// the engine/participant that originated the action so receivers can apply
// the effect without re-decrementing the actor's use counters.
type Event struct {
	Type     EventType   `json:"type"`
	MatchID  string      `json:"match_id"`
	OriginID uuid.UUID   `json:"origin_id"`
	PlayerID uuid.UUID   `json:"player_id,omitempty"`
	UserID   uuid.UUID   `json:"user_id,omitempty"`
	TargetID *uuid.UUID  `json:"target_id,omitempty"`
	PowerUp  PowerUpType `json:"powerup,omitempty"`
	Letter   string      `json:"letter,omitempty"`
	Guess    string      `json:"guess,omitempty"`
	Result   GuessResult `json:"result,omitempty"`
	UsesLeft int         `json:"uses_left,omitempty"`
	Status   string      `json:"status,omitempty"`
	WinnerID *uuid.UUID  `json:"winner_id,omitempty"`
	Hint     *Hint       `json:"hint,omitempty"`
}

// EventSink receives engine events. Sinks run with the engine lock held and
// must not call back into the engine.
type EventSink func(Event)

// Options configures an Engine. Zero values fall back to production defaults.
type Options struct {
	Clock     func() time.Time
	Scheduler Scheduler
	Rand      *rand.Rand
	Sink      EventSink
	Logger    zerolog.Logger
	Scoring   scoring.Config
}

// Engine is the authoritative rules engine for one match. All state it owns
// (match, players, effects, feed) is mutated only behind its mutex; the
// presentation/transport layer reads snapshots and issues commands.
type Engine struct {
	mu      sync.Mutex
	dict    Dictionary
	clock   func() time.Time
	rng     *rand.Rand
	sink    EventSink
	logger  zerolog.Logger
	effects *effectRegistry
	scorer  *scoring.Engine

	match    *Match
	winner   *Player
	deadline time.Time
	feed     []FeedEntry
	pending  map[uuid.UUID]*PendingSelection
	active   []ActiveEffect
	hints    map[uuid.UUID][]Hint
}

// botNames is the fixed pool for bot display names.
var botNames = []string{"BotAlice", "BotBob", "BotCharlie", "BotDave", "BotEve", "BotFrank", "BotGrace", "BotHenry"}

// NewEngine creates an engine bound to a dictionary.
func NewEngine(dict Dictionary, opts Options) *Engine {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(clock().UnixNano()))
	}
	sink := opts.Sink
	if sink == nil {
		sink = func(Event) {}
	}
	cfg := opts.Scoring
	if cfg.BaseScore == 0 {
		cfg = scoring.DefaultConfig()
	}

	return &Engine{
		dict:    dict,
		clock:   clock,
		rng:     rng,
		sink:    sink,
		logger:  opts.Logger,
		effects: newEffectRegistry(opts.Scheduler),
		scorer:  scoring.NewEngine(cfg),
		pending: make(map[uuid.UUID]*PendingSelection),
		hints:   make(map[uuid.UUID][]Hint),
	}
}

// PlayerInfo carries the identity fields a joining user supplies.
type PlayerInfo struct {
	UserID      uuid.UUID
	DisplayName string
	AvatarURL   string
}

// CreateMatch allocates a waiting match with one host player and draws the
// secret word. code may be empty; a shareable lobby code is generated then.
func (e *Engine) CreateMatch(mode string, wordLength int, code string, host PlayerInfo) (*Player, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.match != nil {
		return nil, fmt.Errorf("engine already owns match %s", e.match.ID)
	}
	cfg, ok := ModeConfigs[mode]
	if !ok {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	secret, err := e.dict.RandomWord(wordLength)
	if err != nil {
		return nil, fmt.Errorf("draw secret: %w", err)
	}
	if code == "" {
		code = e.generateCode()
	}

	hostPlayer := e.newPlayer(host, true, false, "")
	e.match = &Match{
		ID:         code,
		Mode:       mode,
		Status:     StatusWaiting,
		WordLength: wordLength,
		SecretWord: strings.ToUpper(secret),
		Players:    []*Player{hostPlayer},
		MaxPlayers: cfg.MaxPlayers,
		CreatedAt:  e.clock(),
	}

	e.logger.Info().
		Str("match_id", code).
		Str("mode", mode).
		Int("word_length", wordLength).
		Msg("match created")
	return hostPlayer, nil
}

// Join appends a player to the waiting match. Full and non-waiting matches
// reject the join.
func (e *Engine) Join(info PlayerInfo) (*Player, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.match == nil {
		return nil, fmt.Errorf("match not found")
	}
	if e.match.Status != StatusWaiting {
		return nil, fmt.Errorf("match not accepting players")
	}
	if len(e.match.Players) >= e.match.MaxPlayers {
		return nil, fmt.Errorf("match full")
	}
	for _, p := range e.match.Players {
		if !p.IsBot && p.UserID == info.UserID {
			return nil, fmt.Errorf("user already in match")
		}
	}

	player := e.newPlayer(info, false, false, "")
	e.match.Players = append(e.match.Players, player)

	e.logger.Info().
		Str("match_id", e.match.ID).
		Str("player_id", player.ID.String()).
		Int("player_count", len(e.match.Players)).
		Msg("player joined")
	return player, nil
}

// AddBot adds a bot player while waiting. Names come from the fixed pool,
// deduplicated against existing bots, with a random suffix fallback.
func (e *Engine) AddBot(name string) (*Player, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.match == nil {
		return nil, fmt.Errorf("match not found")
	}
	if e.match.Status != StatusWaiting {
		return nil, fmt.Errorf("match not accepting players")
	}
	if len(e.match.Players) >= e.match.MaxPlayers {
		return nil, fmt.Errorf("match full")
	}

	if name == "" {
		name = e.pickBotName()
	}
	bot := e.newPlayer(PlayerInfo{DisplayName: name}, false, true, name)
	e.match.Players = append(e.match.Players, bot)

	e.logger.Info().Str("match_id", e.match.ID).Str("bot", name).Msg("bot added")
	return bot, nil
}

// RemoveBot removes a bot pre-match. Human players are never removed.
func (e *Engine) RemoveBot(id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.match == nil || e.match.Status != StatusWaiting {
		return fmt.Errorf("match not in lobby")
	}
	for i, p := range e.match.Players {
		if p.ID == id && p.IsBot {
			e.match.Players = append(e.match.Players[:i], e.match.Players[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("bot not found")
}

// Start moves the match from waiting to playing and arms the countdown clock.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.match == nil {
		return fmt.Errorf("match not found")
	}
	if e.match.Status != StatusWaiting {
		return fmt.Errorf("match cannot be started")
	}
	if cfg := ModeConfigs[e.match.Mode]; len(e.match.Players) < cfg.MinPlayers {
		return fmt.Errorf("mode %s needs at least %d players", e.match.Mode, cfg.MinPlayers)
	}

	now := e.clock()
	e.match.Status = StatusPlaying
	e.match.StartedAt = &now
	e.deadline = now.Add(MatchDuration)

	e.emit(Event{Type: EventMatchStateChanged, MatchID: e.match.ID, Status: StatusPlaying})
	e.logger.Info().Str("match_id", e.match.ID).Int("players", len(e.match.Players)).Msg("match started")
	return nil
}

// SubmitGuess applies one guess for a player. Returns false with no state
// change when any precondition fails; invalid input is never a fault.
func (e *Engine) SubmitGuess(playerID uuid.UUID, raw string) (bool, GuessResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.submitGuessLocked(playerID, raw)
}

func (e *Engine) submitGuessLocked(playerID uuid.UUID, raw string) (bool, GuessResult) {
	if e.match == nil || e.match.Status != StatusPlaying {
		return false, nil
	}
	player := e.match.PlayerByID(playerID)
	if player == nil || player.Frozen || player.Solved || player.Exhausted() {
		return false, nil
	}

	guess := strings.ToUpper(strings.TrimSpace(raw))
	if len(guess) != e.match.WordLength || !isUpperAlpha(guess) {
		return false, nil
	}
	if !e.dict.IsValid(guess, e.match.WordLength) {
		return false, nil
	}
	now := e.clock()
	for _, ban := range player.BannedLetters {
		if ban.ExpiresAt.After(now) && strings.Contains(guess, ban.Letter) {
			return false, nil
		}
	}

	result := Evaluate(guess, e.match.SecretWord)
	solved := guess == e.match.SecretWord

	if player.BombPending && !solved {
		result = e.shuffleStatuses(result)
		player.BombPending = false
	}

	player.Guesses = append(player.Guesses, guess)
	player.Rows = append(player.Rows, result)
	player.CurrentGuess = ""
	e.consumeBanGuesses(player)
	delete(e.pending, player.ID)

	e.feed = append(e.feed, FeedEntry{
		ID:          uuid.New(),
		PlayerID:    player.ID,
		DisplayName: player.DisplayName,
		Guess:       guess,
		At:          now,
	})
	if len(e.feed) > feedLimit {
		e.feed = e.feed[len(e.feed)-feedLimit:]
	}

	if solved {
		player.Solved = true
		player.SolvedAt = &now
		player.IsWinner = true
		player.Score += e.scorer.SolveScore(e.deadline.Sub(now), MatchDuration, len(player.Guesses), player.GuessAllowance)
		e.finishLocked(player)
	} else if e.allExhaustedLocked() {
		e.finishLocked(nil)
	}

	e.emit(Event{
		Type:     EventGuessSubmitted,
		MatchID:  e.match.ID,
		OriginID: playerID,
		PlayerID: playerID,
		UserID:   player.UserID,
		Guess:    guess,
		Result:   result,
	})

	e.logger.Debug().
		Str("match_id", e.match.ID).
		Str("player_id", playerID.String()).
		Bool("solved", solved).
		Int("guess_no", len(player.Guesses)).
		Msg("guess accepted")
	return true, result
}

// SelectPowerUp begins the two-phase power-up flow. Untargeted power-ups
// (shield, double_guess) commit immediately; targeted ones stay pending until
// SelectTarget (and SelectLetter for letter_ban).
func (e *Engine) SelectPowerUp(playerID uuid.UUID, t PowerUpType) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	catalog, ok := PowerUps[t]
	if !ok || e.match == nil || e.match.Status != StatusPlaying {
		return false
	}
	player := e.match.PlayerByID(playerID)
	if player == nil || player.PowerUpUses[t] <= 0 {
		return false
	}

	if !catalog.NeedsTarget {
		return e.activateLocked(t, playerID, nil, "", true)
	}
	e.pending[playerID] = &PendingSelection{PlayerID: playerID, Type: t}
	return true
}

// SelectTarget supplies the target for a pending power-up. letter_ban stays
// pending awaiting a letter; everything else commits.
func (e *Engine) SelectTarget(playerID, targetID uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	sel, ok := e.pending[playerID]
	if !ok || e.match == nil || e.match.PlayerByID(targetID) == nil || targetID == playerID {
		return false
	}
	if sel.Type == PowerUpLetterBan {
		sel.TargetID = &targetID
		return true
	}
	applied := e.activateLocked(sel.Type, playerID, &targetID, "", true)
	delete(e.pending, playerID)
	return applied
}

// SelectLetter commits a pending letter_ban.
func (e *Engine) SelectLetter(playerID uuid.UUID, letter string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	sel, ok := e.pending[playerID]
	if !ok || sel.Type != PowerUpLetterBan || sel.TargetID == nil {
		return false
	}
	letter = strings.ToUpper(letter)
	if len(letter) != 1 || !isUpperAlpha(letter) {
		return false
	}
	applied := e.activateLocked(PowerUpLetterBan, playerID, sel.TargetID, letter, true)
	delete(e.pending, playerID)
	return applied
}

// CancelPending drops a not-yet-committed selection with no side effects.
func (e *Engine) CancelPending(playerID uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pending, playerID)
}

// Activate applies a power-up in one call, bypassing the two-phase flow.
// Used for remote mirroring and tests.
func (e *Engine) Activate(t PowerUpType, actorID uuid.UUID, targetID *uuid.UUID, letter string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activateLocked(t, actorID, targetID, letter, true)
}

// ApplyRemote applies a peer-originated event as if locally originated,
// except the actor's use counters are untouched; only the origin engine
// decrements those.
func (e *Engine) ApplyRemote(ev Event) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch ev.Type {
	case EventGuessSubmitted:
		accepted, _ := e.submitGuessLocked(ev.PlayerID, ev.Guess)
		return accepted
	case EventPowerUpActivated:
		return e.activateLocked(ev.PowerUp, ev.PlayerID, ev.TargetID, ev.Letter, false)
	default:
		return false
	}
}

// activateLocked is the single commit path for power-ups. origin controls
// whether the actor's use count is decremented.
func (e *Engine) activateLocked(t PowerUpType, actorID uuid.UUID, targetID *uuid.UUID, letter string, origin bool) bool {
	catalog, ok := PowerUps[t]
	if !ok || e.match == nil || e.match.Status != StatusPlaying {
		return false
	}
	actor := e.match.PlayerByID(actorID)
	if actor == nil {
		return false
	}
	if origin && actor.PowerUpUses[t] <= 0 {
		return false
	}
	if catalog.NeedsTarget && targetID == nil {
		return false
	}

	var target *Player
	if targetID != nil {
		target = e.match.PlayerByID(*targetID)
		if target == nil {
			return false
		}
		// Shield blocks incoming non-shield power-ups for its holder.
		if target.ShieldActive && t != PowerUpShield {
			return false
		}
	}
	if catalog.NeedsLetter && letter == "" {
		return false
	}

	if origin {
		actor.PowerUpUses[t]--
	}

	now := e.clock()
	expiresAt := now.Add(catalog.Duration)
	e.upsertEffectLocked(ActiveEffect{
		Type:      t,
		ActorID:   actorID,
		TargetID:  targetID,
		Letter:    letter,
		ExpiresAt: expiresAt,
	})

	switch t {
	case PowerUpFreeze:
		target.Frozen = true
		tid := target.ID
		e.effects.schedule(catalog.Duration, func() { e.expireFreeze(tid) })

	case PowerUpLetterBan:
		letter = strings.ToUpper(letter)
		e.upsertBanLocked(target, letter, expiresAt)
		tid := target.ID
		banLetter := letter
		e.effects.schedule(catalog.Duration, func() { e.expireBan(tid, banLetter) })

	case PowerUpShield:
		actor.ShieldActive = true
		aid := actor.ID
		e.effects.schedule(catalog.Duration, func() { e.expireShield(aid) })

	case PowerUpBomb:
		target.BombPending = true

	case PowerUpDoubleGuess:
		actor.GuessAllowance++

	case PowerUpHintSteal:
		if hint := e.stealHintLocked(actor); hint != nil {
			e.emit(Event{
				Type:     EventHintRevealed,
				MatchID:  e.match.ID,
				OriginID: actorID,
				PlayerID: actorID,
				UserID:   actor.UserID,
				Hint:     hint,
			})
		}
	}

	e.emit(Event{
		Type:     EventPowerUpActivated,
		MatchID:  e.match.ID,
		OriginID: actorID,
		PlayerID: actorID,
		UserID:   actor.UserID,
		TargetID: targetID,
		PowerUp:  t,
		Letter:   letter,
		UsesLeft: actor.PowerUpUses[t],
	})

	e.logger.Info().
		Str("match_id", e.match.ID).
		Str("actor_id", actorID.String()).
		Str("powerup", string(t)).
		Bool("origin", origin).
		Msg("powerup activated")
	return true
}

// ForceFinish ends the match from outside the guess path, e.g. when the
// countdown owner hits zero. finishLocked emits the state change.
func (e *Engine) ForceFinish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.match == nil || e.match.Status != StatusPlaying {
		return
	}
	e.finishLocked(nil)
}

// Reset cancels all in-flight timers and returns the engine to defaults.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.effects.reset()
	e.match = nil
	e.winner = nil
	e.deadline = time.Time{}
	e.feed = nil
	e.active = nil
	e.pending = make(map[uuid.UUID]*PendingSelection)
	e.hints = make(map[uuid.UUID][]Hint)
}

// Deadline returns the countdown deadline; zero before Start.
func (e *Engine) Deadline() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deadline
}

// TimeLeft reports the remaining match time, floored at zero.
func (e *Engine) TimeLeft() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deadline.IsZero() {
		return MatchDuration
	}
	left := e.deadline.Sub(e.clock())
	if left < 0 {
		return 0
	}
	return left
}

// Winner returns the winning player, or nil.
func (e *Engine) Winner() *Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.winner
}

// Feed returns a copy of the guess feed (most recent last, capped at 50).
func (e *Engine) Feed() []FeedEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]FeedEntry, len(e.feed))
	copy(out, e.feed)
	return out
}

// Hints returns the secret positions revealed to a player via hint_steal.
func (e *Engine) Hints(playerID uuid.UUID) []Hint {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Hint, len(e.hints[playerID]))
	copy(out, e.hints[playerID])
	return out
}

// ActiveEffects returns a copy of the live effects.
func (e *Engine) ActiveEffects() []ActiveEffect {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ActiveEffect, len(e.active))
	copy(out, e.active)
	return out
}

// Snapshot returns a deep copy of the match for the presentation layer.
func (e *Engine) Snapshot() *Match {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.match == nil {
		return nil
	}
	return e.copyMatchLocked()
}

// Match status helpers used by the service layer.

// Status returns the current match status, or empty when no match exists.
func (e *Engine) Status() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.match == nil {
		return ""
	}
	return e.match.Status
}

// PlayerIDForUser maps an authenticated user to their player id.
func (e *Engine) PlayerIDForUser(userID uuid.UUID) (uuid.UUID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.match == nil {
		return uuid.Nil, false
	}
	for _, p := range e.match.Players {
		if !p.IsBot && p.UserID == userID {
			return p.ID, true
		}
	}
	return uuid.Nil, false
}

// MatchID returns the match code, or empty when no match exists.
func (e *Engine) MatchID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.match == nil {
		return ""
	}
	return e.match.ID
}

// --- internals (caller holds e.mu) ---

func (e *Engine) newPlayer(info PlayerInfo, isHost, isBot bool, botName string) *Player {
	name := info.DisplayName
	if isBot {
		name = botName
	}
	return &Player{
		ID:             uuid.New(),
		UserID:         info.UserID,
		DisplayName:    name,
		AvatarURL:      info.AvatarURL,
		Guesses:        []string{},
		Rows:           []GuessResult{},
		IsHost:         isHost,
		IsBot:          isBot,
		PowerUpUses:    InitialPowerUpUses(),
		GuessAllowance: MaxGuesses,
	}
}

func (e *Engine) pickBotName() string {
	taken := make(map[string]bool)
	for _, p := range e.match.Players {
		if p.IsBot {
			taken[p.DisplayName] = true
		}
	}
	for _, name := range botNames {
		if !taken[name] {
			return name
		}
	}
	return fmt.Sprintf("Bot%d", e.rng.Intn(100))
}

func (e *Engine) generateCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	b := make([]byte, 6)
	for i := range b {
		b[i] = alphabet[e.rng.Intn(len(alphabet))]
	}
	return string(b)
}

func (e *Engine) finishLocked(winner *Player) {
	now := e.clock()
	e.match.Status = StatusFinished
	e.match.EndedAt = &now
	if winner != nil {
		e.winner = winner
		id := winner.ID
		e.match.WinnerID = &id
	}
	e.effects.reset()
	for _, p := range e.match.Players {
		p.Frozen = false
		p.ShieldActive = false
		p.BannedLetters = nil
		p.BombPending = false
	}
	e.pending = make(map[uuid.UUID]*PendingSelection)
	e.active = nil

	ev := Event{Type: EventMatchStateChanged, MatchID: e.match.ID, Status: StatusFinished}
	if winner != nil {
		id := winner.ID
		ev.WinnerID = &id
	}
	e.emit(ev)
	e.logger.Info().Str("match_id", e.match.ID).Bool("solved", winner != nil).Msg("match finished")
}

func (e *Engine) allExhaustedLocked() bool {
	for _, p := range e.match.Players {
		if !p.Solved && !p.Exhausted() {
			return false
		}
	}
	return true
}

// effectSubject is the player an effect rides on: the target when present,
// otherwise the actor (shield, double_guess).
func effectSubject(eff ActiveEffect) uuid.UUID {
	if eff.TargetID != nil {
		return *eff.TargetID
	}
	return eff.ActorID
}

// upsertEffectLocked records an effect; a same-type effect on the same
// subject overwrites the previous expiry rather than stacking.
func (e *Engine) upsertEffectLocked(eff ActiveEffect) {
	for i, cur := range e.active {
		if cur.Type == eff.Type && cur.Letter == eff.Letter && effectSubject(cur) == effectSubject(eff) {
			e.active[i] = eff
			return
		}
	}
	e.active = append(e.active, eff)
}

// effectStillActiveLocked reports whether the registered effect's expiry is
// still in the future. A re-application overwrites the expiry but the earlier
// activation's timer still fires; that stale timer must not cut the extended
// effect short. The later timer handles the reversal.
func (e *Engine) effectStillActiveLocked(t PowerUpType, subjectID uuid.UUID, letter string) bool {
	now := e.clock()
	for _, eff := range e.active {
		if eff.Type == t && eff.Letter == letter && effectSubject(eff) == subjectID && eff.ExpiresAt.After(now) {
			return true
		}
	}
	return false
}

func (e *Engine) upsertBanLocked(target *Player, letter string, expiresAt time.Time) {
	for i, ban := range target.BannedLetters {
		if ban.Letter == letter {
			target.BannedLetters[i].ExpiresAt = expiresAt
			target.BannedLetters[i].GuessesLeft = 2
			return
		}
	}
	target.BannedLetters = append(target.BannedLetters, BannedLetter{
		Letter:      letter,
		ExpiresAt:   expiresAt,
		GuessesLeft: 2,
	})
}

// consumeBanGuesses decrements each ban's guess counter on an accepted guess;
// a ban also lifts after two accepted guesses.
func (e *Engine) consumeBanGuesses(p *Player) {
	kept := p.BannedLetters[:0]
	for _, ban := range p.BannedLetters {
		ban.GuessesLeft--
		if ban.GuessesLeft > 0 {
			kept = append(kept, ban)
		}
	}
	p.BannedLetters = kept
}

// shuffleStatuses perturbs a bomb victim's result row: statuses are permuted
// across positions, letters stay put.
func (e *Engine) shuffleStatuses(result GuessResult) GuessResult {
	statuses := make([]LetterStatus, len(result))
	for i, cell := range result {
		statuses[i] = cell.Status
	}
	e.rng.Shuffle(len(statuses), func(i, j int) {
		statuses[i], statuses[j] = statuses[j], statuses[i]
	})
	out := make(GuessResult, len(result))
	for i, cell := range result {
		out[i] = LetterResult{Letter: cell.Letter, Status: statuses[i]}
	}
	return out
}

// stealHintLocked reveals one secret position the actor has not already
// guessed correct and has not already been shown.
func (e *Engine) stealHintLocked(actor *Player) *Hint {
	known := make(map[int]bool)
	for _, row := range actor.Rows {
		for i, cell := range row {
			if cell.Status == StatusCorrect {
				known[i] = true
			}
		}
	}
	for _, h := range e.hints[actor.ID] {
		known[h.Position] = true
	}

	var candidates []int
	for i := 0; i < e.match.WordLength; i++ {
		if !known[i] {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	pos := candidates[e.rng.Intn(len(candidates))]
	hint := Hint{Position: pos, Letter: string(e.match.SecretWord[pos])}
	e.hints[actor.ID] = append(e.hints[actor.ID], hint)
	return &hint
}

// Timer expiry paths. Each runs at most once per activation and re-checks
// state, so firing after the flag already changed is a no-op.

func (e *Engine) expireFreeze(playerID uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.match == nil {
		return
	}
	if e.effectStillActiveLocked(PowerUpFreeze, playerID, "") {
		return
	}
	if p := e.match.PlayerByID(playerID); p != nil && p.Frozen {
		p.Frozen = false
		e.removeEffectLocked(PowerUpFreeze, playerID, "")
		e.emit(Event{Type: EventEffectExpired, MatchID: e.match.ID, PlayerID: playerID, PowerUp: PowerUpFreeze})
	}
}

func (e *Engine) expireBan(playerID uuid.UUID, letter string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.match == nil {
		return
	}
	p := e.match.PlayerByID(playerID)
	if p == nil {
		return
	}
	now := e.clock()
	kept := p.BannedLetters[:0]
	removed := false
	for _, ban := range p.BannedLetters {
		if ban.Letter == letter && !ban.ExpiresAt.After(now) {
			removed = true
			continue
		}
		kept = append(kept, ban)
	}
	p.BannedLetters = kept
	if removed {
		e.removeEffectLocked(PowerUpLetterBan, playerID, letter)
		e.emit(Event{Type: EventEffectExpired, MatchID: e.match.ID, PlayerID: playerID, PowerUp: PowerUpLetterBan, Letter: letter})
	}
}

func (e *Engine) expireShield(playerID uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.match == nil {
		return
	}
	if e.effectStillActiveLocked(PowerUpShield, playerID, "") {
		return
	}
	if p := e.match.PlayerByID(playerID); p != nil && p.ShieldActive {
		p.ShieldActive = false
		e.removeEffectLocked(PowerUpShield, playerID, "")
		e.emit(Event{Type: EventEffectExpired, MatchID: e.match.ID, PlayerID: playerID, PowerUp: PowerUpShield})
	}
}

func (e *Engine) removeEffectLocked(t PowerUpType, subjectID uuid.UUID, letter string) {
	kept := e.active[:0]
	for _, eff := range e.active {
		if eff.Type == t && eff.Letter == letter && effectSubject(eff) == subjectID {
			continue
		}
		kept = append(kept, eff)
	}
	e.active = kept
}

func (e *Engine) copyMatchLocked() *Match {
	out := *e.match
	out.Players = make([]*Player, len(e.match.Players))
	for i, p := range e.match.Players {
		cp := *p
		cp.Guesses = append([]string(nil), p.Guesses...)
		cp.Rows = append([]GuessResult(nil), p.Rows...)
		cp.BannedLetters = append([]BannedLetter(nil), p.BannedLetters...)
		cp.PowerUpUses = make(map[PowerUpType]int, len(p.PowerUpUses))
		for t, n := range p.PowerUpUses {
			cp.PowerUpUses[t] = n
		}
		out.Players[i] = &cp
	}
	return &out
}

func (e *Engine) emit(ev Event) {
	e.sink(ev)
}
