package auth

import (
	"log"
	"net/http"
	"time"

	"github.com/EgorLis/community/internal/transport/web/logx"
	"github.com/EgorLis/community/internal/transport/web/mw"
	v1 "github.com/EgorLis/community/internal/transport/web/v1"
)

// HandlerRegister обрабатывает POST /api/v1/auth/register
type HandlerRegister struct {
	Log      *log.Logger
	Sessions Sessions
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Register godoc
// @Summary     Register new user
// @Description Регистрация: имя пользователя и пароль не короче 4 символов, имя уникально.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body registerRequest true "username, password"
// @Success     201 {object} domain.APIEnvelope{response=registerResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     409 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/auth/register [post]
func (h *HandlerRegister) Register(w http.ResponseWriter, r *http.Request) {
	const op = "auth.register"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req registerRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		logx.Error(h.Log, reqID, op, "bad request", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	u, err := h.Sessions.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		logx.Error(h.Log, reqID, op, "register failed", err, "username", req.Username)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", u.ID, "username", u.Username)
	v1.WriteCreated(w, r, registerResponse{ID: u.ID.String(), Username: u.Username, CreatedAt: u.CreatedAt})
}
