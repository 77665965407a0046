package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/matchapp-io/match-service/internal/config"
	chatgw "github.com/matchapp-io/match-service/internal/gateway/chat"
	usersgw "github.com/matchapp-io/match-service/internal/gateway/users"
	"github.com/matchapp-io/match-service/internal/infra/httpclient"
	"github.com/matchapp-io/match-service/internal/jobs/chatreconcile"
	pgrepo "github.com/matchapp-io/match-service/internal/repo/postgres"
	redrepo "github.com/matchapp-io/match-service/internal/repo/redis"
	authsvc "github.com/matchapp-io/match-service/internal/services/auth"
	matchessvc "github.com/matchapp-io/match-service/internal/services/matches"
	usermatchessvc "github.com/matchapp-io/match-service/internal/services/usermatches"
)

type App struct {
	cfg          config.Config
	logger       *zap.Logger
	server       *http.Server
	postgres     *pgxpool.Pool
	redis        *goredis.Client
	reconcileJob *chatreconcile.Job
	httpRouter   http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rankCacheRepo := redrepo.NewRankCacheRepo(redisClient)
	chatQueueRepo := redrepo.NewChatQueueRepo(redisClient)
	matchRepo := pgrepo.NewMatchRepo(pool)
	userMatchRepo := pgrepo.NewUserMatchRepo(pool)

	gatewayClient := httpclient.New(cfg.Gateways.Timeout)
	chatGateway := chatgw.NewClient(cfg.Gateways.ChatBaseURL, gatewayClient)
	usersGateway := usersgw.NewClient(cfg.Gateways.UsersBaseURL, gatewayClient)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	matchesService := matchessvc.NewService(matchessvc.Dependencies{
		Store:          matchRepo,
		ChatGateway:    chatGateway,
		ProfileGateway: usersGateway,
		RankCache:      rankCacheRepo,
		ChatQueue:      chatQueueRepo,
		Logger:         log,
	}, matchessvc.Config{
		RankLimit:    cfg.Rank.Limit,
		RankCacheTTL: cfg.Rank.CacheTTL,
	})
	userMatchesService := usermatchessvc.NewService(usermatchessvc.Dependencies{
		AckStore:       userMatchRepo,
		MatchStore:     matchRepo,
		ProfileGateway: usersGateway,
		Logger:         log,
	})
	reconcileJob := chatreconcile.New(chatQueueRepo, chatGateway, cfg.Reconcile.BatchSize, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		JWTManager:         jwtManager,
		MatchesService:     matchesService,
		UserMatchesService: userMatchesService,
		Logger:             log,
		Config:             cfg,
	})

	return &App{
		cfg:          cfg,
		logger:       log,
		server:       server,
		postgres:     pool,
		redis:        redisClient,
		reconcileJob: reconcileJob,
		httpRouter:   r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// StartReconciler drains the pending chat queue on the configured
// interval until ctx is cancelled. Intended to run in its own
// goroutine alongside the server.
func (a *App) StartReconciler(ctx context.Context) {
	a.reconcileJob.Start(ctx, a.cfg.Reconcile.Interval)
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
