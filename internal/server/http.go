package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/SamaChan/MLTNBTLGAME/internal/auth"
	"github.com/SamaChan/MLTNBTLGAME/internal/config"
	"github.com/SamaChan/MLTNBTLGAME/internal/logging"
)

// WSUpgrader handles WebSocket upgrades (configure CORS/security as needed).
var WSUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: implement proper origin checking for production
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// MatchHandlers groups the REST endpoints the match service exposes.
type MatchHandlers struct {
	Create    http.HandlerFunc
	Get       http.HandlerFunc
	History   http.HandlerFunc
	WebSocket http.HandlerFunc
}

// NewHTTPServer wires base routes (health, metrics) plus auth, match and
// leaderboard endpoints for the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redis *redis.Client, authSvc *auth.Service, authHandlers *auth.HTTPHandlers, matchHandlers MatchHandlers, leaderboardHandler http.HandlerFunc) *http.Server {
	mux := http.NewServeMux()
	authMW := auth.AuthMiddleware(authSvc, logger)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), pool, redis); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	// Auth endpoints
	if authHandlers != nil {
		mux.HandleFunc("/v1/auth/register", authHandlers.Register)
		mux.HandleFunc("/v1/auth/login", authHandlers.Login)
		mux.HandleFunc("/v1/auth/guest", authHandlers.CreateGuest)
		mux.HandleFunc("/v1/auth/refresh", authHandlers.RefreshToken)
		mux.Handle("/v1/auth/promote", authMW(auth.RequireAuth(http.HandlerFunc(authHandlers.PromoteGuest))))
		mux.Handle("/v1/users/me", authMW(auth.RequireAuth(http.HandlerFunc(authHandlers.GetMe))))
	}

	// Match endpoints. /v1/matches dispatches by method; history before the
	// code-parameterized route so the mux matches it first.
	if matchHandlers.Create != nil {
		mux.Handle("/v1/matches", authMW(auth.RequireAuth(matchHandlers.Create)))
		mux.Handle("/v1/matches/history", authMW(auth.RequireAuth(matchHandlers.History)))
		mux.Handle("/v1/matches/", authMW(matchHandlers.Get))
	}

	// WebSocket endpoint (token validated from query param inside the handler)
	if matchHandlers.WebSocket != nil {
		mux.HandleFunc("/ws/matches", matchHandlers.WebSocket)
	}

	if leaderboardHandler != nil {
		mux.HandleFunc("/v1/leaderboards/", leaderboardHandler)
	}

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: requestLogger(logger)(mux),
	}
}

// requestLogger attaches a request-scoped logger to the context and records
// completed requests.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logger.With().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()
			next.ServeHTTP(w, r.WithContext(logging.IntoContext(r.Context(), reqLogger)))
			reqLogger.Debug().Dur("elapsed", time.Since(start)).Msg("request handled")
		})
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redis *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := redis.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}
