package match

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SamaChan/MLTNBTLGAME/internal/db/repository"
	"github.com/SamaChan/MLTNBTLGAME/internal/game"
	"github.com/SamaChan/MLTNBTLGAME/internal/game/scoring"
	"github.com/SamaChan/MLTNBTLGAME/internal/leaderboard"
	ws "github.com/SamaChan/MLTNBTLGAME/pkg/http/ws"
)

// tick cadences for the per-match runner loop.
const (
	countdownTickEvery = 1 * time.Second
	botGuessEvery      = 12 * time.Second
)

// winRatingDelta / lossRatingDelta adjust a registered player's rating at
// settlement.
const (
	winRatingDelta  = 20
	lossRatingDelta = -10
)

// Service orchestrates match lifecycle: engines, countdown clocks, bot turns,
// snapshot mirroring, and post-match settlement.
type Service struct {
	registry    *game.Registry
	stateMgr    *StateManager
	userRepo    *repository.UserRepository
	historyRepo *repository.HistoryRepository
	leaderboard *leaderboard.Service
	hub         *ws.Hub
	logger      zerolog.Logger

	botEvery time.Duration

	mu      sync.Mutex
	runners map[string]chan struct{} // match code -> runner stop signal
}

// ServiceOptions configures the match service.
type ServiceOptions struct {
	ScoringConfig scoring.Config
	BotInterval   time.Duration
}

// NewService creates a match service that owns the engine registry.
func NewService(
	dict game.Dictionary,
	stateMgr *StateManager,
	userRepo *repository.UserRepository,
	historyRepo *repository.HistoryRepository,
	leaderboardSvc *leaderboard.Service,
	hub *ws.Hub,
	opts ServiceOptions,
	logger zerolog.Logger,
) *Service {
	botEvery := opts.BotInterval
	if botEvery <= 0 {
		botEvery = botGuessEvery
	}
	s := &Service{
		stateMgr:    stateMgr,
		userRepo:    userRepo,
		historyRepo: historyRepo,
		leaderboard: leaderboardSvc,
		hub:         hub,
		logger:      logger.With().Str("component", "match").Logger(),
		botEvery:    botEvery,
		runners:     make(map[string]chan struct{}),
	}
	s.registry = game.NewRegistry(dict, game.Options{
		Sink:    s.onEngineEvent,
		Logger:  logger,
		Scoring: opts.ScoringConfig,
	})
	return s
}

// Participant identifies an authenticated user joining matches.
type Participant struct {
	UserID      uuid.UUID
	DisplayName string
	AvatarURL   string
	IsGuest     bool
}

// CreateMatch allocates a lobby and returns its code and the host player.
func (s *Service) CreateMatch(ctx context.Context, mode string, wordLength int, host Participant) (string, *game.Player, error) {
	eng, player, err := s.registry.Create(mode, wordLength, game.PlayerInfo{
		UserID:      host.UserID,
		DisplayName: host.DisplayName,
		AvatarURL:   host.AvatarURL,
	})
	if err != nil {
		return "", nil, err
	}

	code := eng.MatchID()
	s.hub.JoinMatch(code, host.UserID)
	s.mirrorSnapshot(ctx, eng)
	s.broadcastLobby(eng)
	return code, player, nil
}

// JoinMatch adds a participant to a waiting lobby.
func (s *Service) JoinMatch(ctx context.Context, code string, p Participant) (*game.Player, error) {
	eng, ok := s.registry.Get(code)
	if !ok {
		return nil, fmt.Errorf("match %s not found", code)
	}
	player, err := eng.Join(game.PlayerInfo{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
	})
	if err != nil {
		return nil, err
	}

	s.hub.JoinMatch(code, p.UserID)
	s.mirrorSnapshot(ctx, eng)
	s.broadcastLobby(eng)
	return player, nil
}

// AddBot adds a bot to the lobby. Host only.
func (s *Service) AddBot(ctx context.Context, code string, requester uuid.UUID) (*game.Player, error) {
	eng, err := s.hostEngine(code, requester)
	if err != nil {
		return nil, err
	}
	bot, err := eng.AddBot("")
	if err != nil {
		return nil, err
	}
	s.mirrorSnapshot(ctx, eng)
	s.broadcastLobby(eng)
	return bot, nil
}

// RemoveBot removes a bot from the lobby. Host only.
func (s *Service) RemoveBot(ctx context.Context, code string, requester, botID uuid.UUID) error {
	eng, err := s.hostEngine(code, requester)
	if err != nil {
		return err
	}
	if err := eng.RemoveBot(botID); err != nil {
		return err
	}
	s.mirrorSnapshot(ctx, eng)
	s.broadcastLobby(eng)
	return nil
}

// StartMatch begins play and launches the countdown/bot runner. Host only.
func (s *Service) StartMatch(ctx context.Context, code string, requester uuid.UUID) error {
	eng, err := s.hostEngine(code, requester)
	if err != nil {
		return err
	}
	if err := eng.Start(); err != nil {
		return err
	}
	s.mirrorSnapshot(ctx, eng)

	if snap := eng.Snapshot(); snap != nil {
		s.broadcast(code, ws.TypeMatchStarted, ws.MatchStartedPayload{
			MatchID:         code,
			Mode:            snap.Mode,
			WordLength:      snap.WordLength,
			DurationSeconds: int(game.MatchDuration.Seconds()),
			MaxGuesses:      game.MaxGuesses,
		})
	}
	s.startRunner(code, eng)
	return nil
}

// SubmitGuess applies one guess on behalf of a user.
func (s *Service) SubmitGuess(ctx context.Context, code string, userID uuid.UUID, guess string) (bool, game.GuessResult, error) {
	eng, ok := s.registry.Get(code)
	if !ok {
		return false, nil, fmt.Errorf("match %s not found", code)
	}
	playerID, ok := eng.PlayerIDForUser(userID)
	if !ok {
		return false, nil, fmt.Errorf("not a participant")
	}
	accepted, result := eng.SubmitGuess(playerID, guess)
	if accepted {
		s.mirrorSnapshot(ctx, eng)
		s.broadcastFeed(eng)
	}
	return accepted, result, nil
}

// UsePowerUp drives the selection flow from one WS payload. A targeted
// power-up without a target stays pending until a follow-up supplies one.
func (s *Service) UsePowerUp(ctx context.Context, code string, userID uuid.UUID, powerUp, target, letter string) (bool, error) {
	eng, ok := s.registry.Get(code)
	if !ok {
		return false, fmt.Errorf("match %s not found", code)
	}
	playerID, ok := eng.PlayerIDForUser(userID)
	if !ok {
		return false, fmt.Errorf("not a participant")
	}

	t := game.PowerUpType(powerUp)
	catalog, ok := game.PowerUps[t]
	if !ok {
		return false, fmt.Errorf("unknown powerup %q", powerUp)
	}

	if !eng.SelectPowerUp(playerID, t) {
		return false, fmt.Errorf("powerup unavailable")
	}
	if !catalog.NeedsTarget {
		s.mirrorSnapshot(ctx, eng)
		return true, nil
	}
	if target == "" {
		// Await a follow-up message carrying the target.
		return false, nil
	}

	targetID, err := uuid.Parse(target)
	if err != nil {
		eng.CancelPending(playerID)
		return false, fmt.Errorf("invalid target id")
	}
	if !eng.SelectTarget(playerID, targetID) {
		eng.CancelPending(playerID)
		return false, fmt.Errorf("powerup blocked or target invalid")
	}
	if catalog.NeedsLetter {
		if letter == "" {
			return false, nil
		}
		if !eng.SelectLetter(playerID, letter) {
			eng.CancelPending(playerID)
			return false, fmt.Errorf("invalid letter")
		}
	}
	s.mirrorSnapshot(ctx, eng)
	return true, nil
}

// CancelPowerUp drops a user's pending power-up selection.
func (s *Service) CancelPowerUp(code string, userID uuid.UUID) {
	if eng, ok := s.registry.Get(code); ok {
		if playerID, ok := eng.PlayerIDForUser(userID); ok {
			eng.CancelPending(playerID)
		}
	}
}

// SendEmote relays an emote to everyone in the match.
func (s *Service) SendEmote(code string, userID uuid.UUID, emote string) error {
	if !AllowedEmotes[emote] {
		return fmt.Errorf("unknown emote %q", emote)
	}
	eng, ok := s.registry.Get(code)
	if !ok {
		return fmt.Errorf("match %s not found", code)
	}
	snap := eng.Snapshot()
	if snap == nil {
		return fmt.Errorf("match %s not found", code)
	}
	var from *game.Player
	for _, p := range snap.Players {
		if !p.IsBot && p.UserID == userID {
			from = p
			break
		}
	}
	if from == nil {
		return fmt.Errorf("not a participant")
	}

	payload := ws.EmotePayload{
		MatchID:     code,
		PlayerID:    from.ID.String(),
		DisplayName: from.DisplayName,
		Emote:       emote,
	}
	msg := ws.Message{Type: ws.TypeEmote}
	msg.Payload, _ = json.Marshal(payload)
	return s.hub.BroadcastToMatch(code, msg)
}

// Snapshot returns live state for a match, falling back to the Redis mirror
// for recently finished matches.
func (s *Service) Snapshot(ctx context.Context, code string) (*game.Match, error) {
	if eng, ok := s.registry.Get(code); ok {
		if snap := eng.Snapshot(); snap != nil {
			return snap, nil
		}
	}
	return s.stateMgr.GetSnapshot(ctx, code)
}

// Leave detaches a user's connection from match broadcasts. A host who leaves
// a lobby that never started disbands it.
func (s *Service) Leave(ctx context.Context, code string, userID uuid.UUID) {
	s.hub.LeaveMatch(code, userID)

	eng, ok := s.registry.Get(code)
	if !ok || eng.Status() != game.StatusWaiting {
		return
	}
	snap := eng.Snapshot()
	if snap == nil {
		return
	}
	for _, p := range snap.Players {
		if p.IsHost && !p.IsBot && p.UserID == userID {
			s.disband(ctx, code)
			return
		}
	}
}

// disband tears down a lobby that will never start.
func (s *Service) disband(ctx context.Context, code string) {
	s.broadcast(code, ws.TypeMatchCancelled, ws.MatchCancelledPayload{
		MatchID: code,
		Reason:  "host_left",
	})
	s.registry.Remove(code)
	if err := s.stateMgr.DeleteSnapshot(ctx, code); err != nil {
		s.logger.Warn().Err(err).Str("match_id", code).Msg("failed to drop snapshot")
	}
	s.logger.Info().Str("match_id", code).Msg("lobby disbanded")
}

// History returns a player's recent settled matches.
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit int) ([]repository.MatchHistoryRow, error) {
	return s.historyRepo.ListByUser(ctx, userID, limit)
}

// --- engine event fan-out ---

// onEngineEvent runs inside the engine lock; it must only touch the hub and
// spawn goroutines, never call back into an engine.
func (s *Service) onEngineEvent(ev game.Event) {
	switch ev.Type {
	case game.EventGuessSubmitted:
		payload := ws.GuessAckPayload{
			MatchID:  ev.MatchID,
			PlayerID: ev.PlayerID.String(),
			Accepted: true,
			Row:      toWSRow(ev.Result),
			Solved:   ev.Result.Solved(),
		}
		s.broadcast(ev.MatchID, ws.TypeGuessAck, payload)

	case game.EventPowerUpActivated:
		payload := ws.PowerUpAppliedPayload{
			MatchID:  ev.MatchID,
			PowerUp:  string(ev.PowerUp),
			ActorID:  ev.PlayerID.String(),
			UsesLeft: ev.UsesLeft,
			Letter:   ev.Letter,
		}
		if ev.TargetID != nil {
			payload.TargetID = ev.TargetID.String()
		}
		s.broadcast(ev.MatchID, ws.TypePowerUpApplied, payload)

	case game.EventEffectExpired:
		payload := ws.EffectExpiredPayload{
			MatchID:  ev.MatchID,
			PowerUp:  string(ev.PowerUp),
			PlayerID: ev.PlayerID.String(),
			Letter:   ev.Letter,
		}
		s.broadcast(ev.MatchID, ws.TypeEffectExpired, payload)

	case game.EventHintRevealed:
		// Hints are private to the stealing player.
		payload := ws.HintRevealedPayload{
			MatchID:  ev.MatchID,
			PlayerID: ev.PlayerID.String(),
			Position: ev.Hint.Position,
			Letter:   ev.Hint.Letter,
		}
		msg := ws.Message{Type: ws.TypeHintRevealed}
		msg.Payload, _ = json.Marshal(payload)
		if err := s.hub.SendToUser(ev.UserID, msg); err != nil {
			s.logger.Debug().Err(err).Str("match_id", ev.MatchID).Msg("hint delivery failed")
		}

	case game.EventMatchStateChanged:
		// match_started is broadcast from StartMatch with the full snapshot.
		if ev.Status == game.StatusFinished {
			// Settlement reads the engine, so it must leave the lock first.
			go s.settle(context.Background(), ev.MatchID)
		}
	}
}

func (s *Service) broadcast(code, msgType string, payload any) {
	msg := ws.Message{Type: msgType}
	msg.Payload, _ = json.Marshal(payload)
	if err := s.hub.BroadcastToMatch(code, msg); err != nil {
		s.logger.Debug().Err(err).Str("match_id", code).Str("type", msgType).Msg("broadcast failed")
	}
}

func (s *Service) broadcastLobby(eng *game.Engine) {
	snap := eng.Snapshot()
	if snap == nil {
		return
	}
	players := make([]ws.LobbyPlayer, len(snap.Players))
	for i, p := range snap.Players {
		players[i] = ws.LobbyPlayer{
			PlayerID:    p.ID.String(),
			DisplayName: p.DisplayName,
			AvatarURL:   p.AvatarURL,
			IsHost:      p.IsHost,
			IsBot:       p.IsBot,
		}
	}
	s.broadcast(snap.ID, ws.TypeLobbyUpdate, ws.LobbyUpdatePayload{
		MatchID:        snap.ID,
		Mode:           snap.Mode,
		WordLength:     snap.WordLength,
		Players:        players,
		SlotsRemaining: snap.MaxPlayers - len(snap.Players),
	})
}

// broadcastFeed publishes the rolling guess feed so spectating players see
// everyone's recent guesses.
func (s *Service) broadcastFeed(eng *game.Engine) {
	feed := eng.Feed()
	entries := make([]ws.FeedEntry, len(feed))
	for i, f := range feed {
		entries[i] = ws.FeedEntry{
			PlayerID:    f.PlayerID.String(),
			DisplayName: f.DisplayName,
			Guess:       f.Guess,
			At:          f.At.Format(time.RFC3339),
		}
	}
	s.broadcast(eng.MatchID(), ws.TypeGuessFeed, ws.GuessFeedPayload{
		MatchID: eng.MatchID(),
		Entries: entries,
	})
}

// --- runner: countdown + bot turns ---

func (s *Service) startRunner(code string, eng *game.Engine) {
	stop := make(chan struct{})
	s.mu.Lock()
	if _, exists := s.runners[code]; exists {
		s.mu.Unlock()
		close(stop)
		return
	}
	s.runners[code] = stop
	s.mu.Unlock()

	go s.run(code, eng, stop)
}

func (s *Service) stopRunner(code string) {
	s.mu.Lock()
	if stop, ok := s.runners[code]; ok {
		delete(s.runners, code)
		close(stop)
	}
	s.mu.Unlock()
}

// run owns the match countdown and drives bot turns until the match ends.
func (s *Service) run(code string, eng *game.Engine, stop chan struct{}) {
	ticker := time.NewTicker(countdownTickEvery)
	defer ticker.Stop()
	botTicker := time.NewTicker(s.botEvery)
	defer botTicker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if eng.Status() != game.StatusPlaying {
				return
			}
			left := eng.TimeLeft()
			s.broadcast(code, ws.TypeCountdownTick, ws.CountdownTickPayload{
				MatchID:          code,
				RemainingSeconds: int(left.Seconds()),
			})
			if left <= 0 {
				eng.ForceFinish()
				return
			}
		case <-botTicker.C:
			if eng.Status() != game.StatusPlaying {
				return
			}
			s.playBotTurns(eng)
		}
	}
}

func (s *Service) playBotTurns(eng *game.Engine) {
	snap := eng.Snapshot()
	if snap == nil {
		return
	}
	played := false
	for _, p := range snap.Players {
		if p.IsBot && !p.Solved {
			if _, ok := eng.PlayBotTurn(p.ID); ok {
				played = true
			}
		}
	}
	if played {
		s.broadcastFeed(eng)
	}
}

// --- settlement ---

// settle finalizes a finished match: coins, rating, history rows,
// leaderboard aggregates, and the match_complete broadcast.
func (s *Service) settle(ctx context.Context, code string) {
	s.stopRunner(code)

	eng, ok := s.registry.Get(code)
	if !ok {
		return
	}
	snap := eng.Snapshot()
	if snap == nil || snap.Status != game.StatusFinished {
		return
	}

	now := time.Now()
	results := make([]ws.MatchResult, 0, len(snap.Players))
	for _, p := range snap.Players {
		coins := coinsFor(p.Solved, p.IsWinner)

		results = append(results, ws.MatchResult{
			PlayerID:    p.ID.String(),
			UserID:      userIDString(p),
			DisplayName: p.DisplayName,
			Score:       p.Score,
			Guesses:     len(p.Guesses),
			Solved:      p.Solved,
			IsWinner:    p.IsWinner,
			CoinsEarned: coins,
		})

		if p.IsBot {
			continue
		}

		if err := s.historyRepo.Insert(ctx, repository.MatchHistoryRow{
			MatchCode:   code,
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Mode:        snap.Mode,
			WordLength:  snap.WordLength,
			Secret:      snap.SecretWord,
			Guesses:     len(p.Guesses),
			Solved:      p.Solved,
			Won:         p.IsWinner,
			Score:       p.Score,
			CoinsEarned: coins,
			PlayedAt:    now,
		}); err != nil {
			s.logger.Warn().Err(err).Str("user_id", p.UserID.String()).Msg("failed to persist match history")
		}

		if err := s.userRepo.AddCoins(ctx, p.UserID, coins); err != nil {
			s.logger.Warn().Err(err).Str("user_id", p.UserID.String()).Msg("failed to credit coins")
		}

		delta := lossRatingDelta
		if p.IsWinner {
			delta = winRatingDelta
		}
		if err := s.userRepo.AdjustRating(ctx, p.UserID, delta); err != nil {
			s.logger.Warn().Err(err).Str("user_id", p.UserID.String()).Msg("failed to adjust rating")
		}

		if err := s.userRepo.RecordOutcome(ctx, p.UserID, p.IsWinner); err != nil {
			s.logger.Warn().Err(err).Str("user_id", p.UserID.String()).Msg("failed to record outcome")
		}

		user, err := s.userRepo.GetByID(ctx, p.UserID)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", p.UserID.String()).Msg("failed to load user for leaderboard")
			continue
		}
		if err := s.leaderboard.RecordResult(ctx, leaderboard.RecordRequest{
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Score:       p.Score,
			Solved:      p.Solved,
			Won:         p.IsWinner,
			CoinsEarned: coins,
			MatchCode:   code,
			Eligible:    !user.IsGuest,
		}); err != nil {
			s.logger.Warn().Err(err).Str("user_id", p.UserID.String()).Msg("failed to record leaderboard result")
		}
	}

	payload := ws.MatchCompletePayload{
		MatchID: code,
		Secret:  snap.SecretWord,
		Results: results,
	}
	if snap.WinnerID != nil {
		payload.WinnerID = snap.WinnerID.String()
	}
	s.broadcast(code, ws.TypeMatchComplete, payload)

	// Mirror the final snapshot for post-match review, then retire the engine.
	s.mirrorSnapshot(ctx, eng)
	s.registry.Remove(code)

	s.logger.Info().
		Str("match_id", code).
		Int("players", len(results)).
		Msg("match settled")
}

// --- helpers ---

// coinsFor computes the settlement reward for one participant.
func coinsFor(solved, won bool) int {
	coins := CoinsParticipation
	if solved {
		coins += CoinsPerSolve
	}
	if won {
		coins += CoinsPerWin
	}
	return coins
}

func (s *Service) hostEngine(code string, requester uuid.UUID) (*game.Engine, error) {
	eng, ok := s.registry.Get(code)
	if !ok {
		return nil, fmt.Errorf("match %s not found", code)
	}
	snap := eng.Snapshot()
	if snap == nil {
		return nil, fmt.Errorf("match %s not found", code)
	}
	for _, p := range snap.Players {
		if p.IsHost && !p.IsBot && p.UserID == requester {
			return eng, nil
		}
	}
	return nil, fmt.Errorf("host only")
}

func (s *Service) mirrorSnapshot(ctx context.Context, eng *game.Engine) {
	if err := s.stateMgr.StoreSnapshot(ctx, eng.Snapshot()); err != nil {
		s.logger.Warn().Err(err).Str("match_id", eng.MatchID()).Msg("failed to mirror snapshot")
	}
}

func toWSRow(result game.GuessResult) []ws.LetterCell {
	row := make([]ws.LetterCell, len(result))
	for i, cell := range result {
		row[i] = ws.LetterCell{Letter: cell.Letter, Status: string(cell.Status)}
	}
	return row
}

func userIDString(p *game.Player) string {
	if p.IsBot {
		return ""
	}
	return p.UserID.String()
}
