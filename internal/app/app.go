package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/SamaChan/MLTNBTLGAME/internal/auth"
	"github.com/SamaChan/MLTNBTLGAME/internal/auth/jwt"
	"github.com/SamaChan/MLTNBTLGAME/internal/config"
	"github.com/SamaChan/MLTNBTLGAME/internal/db/repository"
	"github.com/SamaChan/MLTNBTLGAME/internal/game/scoring"
	"github.com/SamaChan/MLTNBTLGAME/internal/leaderboard"
	"github.com/SamaChan/MLTNBTLGAME/internal/logging"
	"github.com/SamaChan/MLTNBTLGAME/internal/match"
	"github.com/SamaChan/MLTNBTLGAME/internal/server"
	"github.com/SamaChan/MLTNBTLGAME/internal/words"
	ws "github.com/SamaChan/MLTNBTLGAME/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	lbBroadcaster *leaderboard.Broadcaster
	bgCancels     []context.CancelFunc
}

// New bootstraps configs, logger, Postgres, Redis and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	userRepo := repository.NewUserRepository(pool)
	historyRepo := repository.NewHistoryRepository(pool)

	if cfg.Security.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be configured")
	}

	refreshSecret := cfg.Security.JWTRefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Security.JWTSecret + "_refresh"
	}
	tokenCfg := jwt.TokenConfig{
		AccessSecret:  []byte(cfg.Security.JWTSecret),
		RefreshSecret: []byte(refreshSecret),
		Issuer:        cfg.Name,
	}

	authSvc := auth.NewService(userRepo, auth.ServiceOptions{TokenConfig: tokenCfg}, logger)
	authHandlers := auth.NewHTTPHandlers(authSvc, logger)

	dict, err := words.Load()
	if err != nil {
		return nil, fmt.Errorf("load word lists: %w", err)
	}

	stateMgr := match.NewStateManager(redisClient, logger)
	leaderboardSvc := leaderboard.NewService(redisClient, logger, leaderboard.ServiceOptions{
		TopN:          cfg.Leaderboard.TopN,
		PubSubChannel: cfg.Leaderboard.PubSubChannel,
		EntryTTL:      cfg.Leaderboard.WeeklyTTL,
	})
	wsHub := ws.NewHub(logger)

	matchSvc := match.NewService(
		dict,
		stateMgr,
		userRepo,
		historyRepo,
		leaderboardSvc,
		wsHub,
		match.ServiceOptions{
			ScoringConfig: scoring.DefaultConfig(),
			BotInterval:   cfg.Game.BotGuessEvery,
		},
		logger,
	)

	matchWSHandler := match.NewHandler(matchSvc, wsHub, authSvc, logger)
	matchHTTPHandlers := match.NewHTTPHandlers(matchSvc, logger)
	lbBroadcaster := leaderboard.NewBroadcaster(redisClient, wsHub, cfg.Leaderboard.PubSubChannel, logger)
	lbHTTPHandler := leaderboard.NewHTTPHandler(leaderboardSvc, logger)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, authSvc, authHandlers, server.MatchHandlers{
		Create:    matchHTTPHandlers.CreateMatch,
		Get:       matchHTTPHandlers.GetMatch,
		History:   matchHTTPHandlers.GetHistory,
		WebSocket: matchWSHandler.HandleWebSocket,
	}, lbHTTPHandler.HandleGet)

	return &Application{
		cfg:           cfg,
		logger:        logger,
		pool:          pool,
		redis:         redisClient,
		http:          apiServer,
		lbBroadcaster: lbBroadcaster,
		bgCancels:     make([]context.CancelFunc, 0, 1),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.lbBroadcaster != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.lbBroadcaster.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("leaderboard broadcaster stopped")
			}
		}()
	}
}
