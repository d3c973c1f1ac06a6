package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/EgorLis/community/internal/auth/blacklist"
	"github.com/EgorLis/community/internal/auth/password"
	"github.com/EgorLis/community/internal/auth/session"
	"github.com/EgorLis/community/internal/auth/token"
	"github.com/EgorLis/community/internal/config"
	"github.com/EgorLis/community/internal/domain"
	"github.com/EgorLis/community/internal/engagement"
	redisx "github.com/EgorLis/community/internal/infra/cache/redis"
	"github.com/EgorLis/community/internal/infra/database/postgres"
	"github.com/EgorLis/community/internal/transport/web"
	"github.com/EgorLis/community/internal/transport/web/mw"
)

type App struct {
	config *config.Config
	server *web.Server
	log    *log.Logger
	cache  domain.Cache
	repo   domain.UsersRepo
}

func Build(ctx context.Context) (*App, error) {
	base := log.New(os.Stdout, "[app] ", log.LstdFlags)

	serverLog := log.New(base.Writer(), base.Prefix()+"[server] ", base.Flags())
	pgLog := log.New(base.Writer(), base.Prefix()+"[postgres] ", base.Flags())
	redisLog := log.New(base.Writer(), base.Prefix()+"[redis] ", base.Flags())
	authLog := log.New(base.Writer(), base.Prefix()+"[auth] ", base.Flags())
	likesLog := log.New(base.Writer(), base.Prefix()+"[likes] ", base.Flags())

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}
	base.Printf("\n  configuration: %s-------------------", cfg)

	base.Println("init PostgreSQL")
	pgRepo, err := postgres.NewPGRepo(ctx, pgLog, postgres.Config{
		DSN:         cfg.GetDSN(),
		Schema:      cfg.DBScheme,
		LockTimeout: cfg.DBLockTimeout,
		MaxConns:    cfg.DBMaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed init postgres: %w", err)
	}
	base.Println("PostgreSQL is initialized")

	base.Println("init Redis")
	rc := redisx.New(redisx.Config{
		Addr:         cfg.RedisAddr,
		DB:           cfg.RedisDB,
		Password:     cfg.RedisPassword,
		DialTimeout:  cfg.RedisTimeout,
		ReadTimeout:  cfg.RedisTimeout,
		WriteTimeout: cfg.RedisTimeout,
	}, redisLog)
	if err := rc.Ping(ctx); err != nil {
		pgRepo.Close()
		return nil, fmt.Errorf("failed init redis: %w", err)
	}
	base.Println("Redis is initialized")

	// Auth primitives
	hasher := password.NewDefault()
	tm, err := token.New(cfg.AuthJWTSecret, cfg.AuthIssuer)
	if err != nil {
		pgRepo.Close()
		rc.Close()
		return nil, fmt.Errorf("failed init token manager: %w", err)
	}
	revoked := blacklist.NewStore(rc)
	sessions, err := session.New(authLog, pgRepo, hasher, tm, revoked, cfg.AuthTokenTTL)
	if err != nil {
		pgRepo.Close()
		rc.Close()
		return nil, fmt.Errorf("failed init sessions: %w", err)
	}
	gate := mw.NewGate(authLog, tm, revoked, mw.GateConfig{
		PublicPaths: cfg.AuthPublicPaths,
		FailOpen:    cfg.AuthRevocationFailOpen,
	})
	if cfg.AuthRevocationFailOpen {
		base.Println("WARNING: revocation check is fail-open, revoked tokens pass while Redis is down")
	}

	counter := engagement.New(likesLog, pgRepo)

	base.Println("init Server")
	server := web.New(serverLog, cfg,
		web.Repos{Posts: pgRepo, DB: pgRepo, Cache: rc},
		web.AuthDeps{Sessions: sessions, Gate: gate},
		web.EngagementDeps{Likes: counter},
	)
	base.Println("Server is initialized")

	base.Println("build ended")
	return &App{
		config: cfg,
		server: server,
		log:    base,
		repo:   pgRepo,
		cache:  rc}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Println("start application...")
	go a.server.Run()
	<-ctx.Done()
	a.log.Println("stop application...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.server.Close(stopCtx)
	a.repo.Close()
	a.cache.Close()

	return nil
}
