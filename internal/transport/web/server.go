package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/EgorLis/community/internal/config"
	"github.com/EgorLis/community/internal/transport/web/v1/auth"
	"github.com/EgorLis/community/internal/transport/web/v1/health"
	"github.com/EgorLis/community/internal/transport/web/v1/post"
)

type Server struct {
	log    *log.Logger
	server *http.Server
	cfg    *config.Config
}

func New(logger *log.Logger, cfg *config.Config, repos Repos, authDeps AuthDeps, eng EngagementDeps) *Server {
	return &Server{
		server: &http.Server{
			Addr:              cfg.AppPort,
			Handler:           newHandler(logger, repos, authDeps, eng),
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			MaxHeaderBytes:    1 << 20,
			ReadHeaderTimeout: 2 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		cfg: cfg,
		log: logger,
	}
}

func newHandler(logger *log.Logger, repos Repos, authDeps AuthDeps, eng EngagementDeps) http.Handler {
	sub := func(name string) *log.Logger {
		return log.New(logger.Writer(), logger.Prefix()+"["+name+"] ", logger.Flags())
	}
	authLog := sub("auth")

	h := handlers{
		health:   &health.Handler{Log: sub("health"), DB: repos.DB, Cache: repos.Cache},
		register: &auth.HandlerRegister{Log: authLog, Sessions: authDeps.Sessions},
		login:    &auth.HandlerLogin{Log: authLog, Sessions: authDeps.Sessions},
		logout:   &auth.HandlerLogout{Log: authLog, Sessions: authDeps.Sessions},
		me:       &auth.HandlerMe{Log: authLog},
		posts:    &post.Handler{Log: sub("posts"), Posts: repos.Posts, Likes: eng.Likes},
	}
	return newRouter(h, authDeps.Gate, logger)
}

func (ws *Server) Run() {
	ws.log.Printf("started on %s", ws.server.Addr)
	if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		ws.log.Fatalf("error: %v", err)
	}
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Printf("forced to shutdown: %v", err)
	}
	ws.log.Println("exited gracefully")
}
