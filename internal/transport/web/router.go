package web

import (
	"log"
	"net/http"

	_ "github.com/EgorLis/community/internal/docs"
	"github.com/EgorLis/community/internal/transport/web/mw"
	"github.com/EgorLis/community/internal/transport/web/v1/auth"
	"github.com/EgorLis/community/internal/transport/web/v1/health"
	"github.com/EgorLis/community/internal/transport/web/v1/post"
	httpSwagger "github.com/swaggo/http-swagger"
)

type handlers struct {
	health   *health.Handler
	register *auth.HandlerRegister
	login    *auth.HandlerLogin
	logout   *auth.HandlerLogout
	me       *auth.HandlerMe
	posts    *post.Handler
}

func newRouter(h handlers, gate *mw.Gate, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /healthz", h.health.Liveness)
	mux.HandleFunc("GET /readyz", h.health.Readiness)

	// auth (публичные)
	mux.HandleFunc("POST /api/v1/auth/register", limitBody(64<<10, h.register.Register))
	mux.HandleFunc("POST /api/v1/auth/login", limitBody(64<<10, h.login.Login))

	// users (bearer)
	mux.HandleFunc("POST /api/v1/users/logout", h.logout.Logout)
	mux.HandleFunc("GET /api/v1/users/me", h.me.Me)

	// posts (bearer)
	mux.HandleFunc("POST /api/v1/posts", limitBody(1<<20, h.posts.Create))
	mux.HandleFunc("GET /api/v1/posts/{postId}", h.posts.Get)
	mux.HandleFunc("POST /api/v1/posts/{postId}/like", h.posts.Like)
	mux.HandleFunc("DELETE /api/v1/posts/{postId}/like", h.posts.Unlike)

	// swagger
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// 🔗 middleware: request id → лог → auth gate → mux
	return mw.WithRequestID(mw.Logging(logger)(gate.Middleware(mux)))
}

func limitBody(n int64, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		h(w, r)
	}
}
