package auth

import (
	"log"
	"net/http"
	"time"

	"github.com/EgorLis/community/internal/transport/web/logx"
	"github.com/EgorLis/community/internal/transport/web/mw"
	v1 "github.com/EgorLis/community/internal/transport/web/v1"
)

type HandlerLogin struct {
	Log      *log.Logger
	Sessions Sessions
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login godoc
// @Summary     Authenticate user
// @Description Возвращает JWT при валидных имени пользователя и пароле.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body loginRequest true "username, password"
// @Success     200 {object} domain.APIEnvelope{response=loginResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/auth/login [post]
func (h *HandlerLogin) Login(w http.ResponseWriter, r *http.Request) {
	const op = "auth.login"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req loginRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		logx.Error(h.Log, reqID, op, "bad request", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	token, claims, err := h.Sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		logx.Error(h.Log, reqID, op, "login failed", err, "username", req.Username)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", claims.UserID, "jti", claims.JTI)
	v1.WriteOKResponse(w, r, loginResponse{Token: string(token), ExpiresAt: claims.ExpiresAt})
}

