package auth

import (
	"log"
	"net/http"
	"time"

	"github.com/EgorLis/community/internal/domain"
	"github.com/EgorLis/community/internal/transport/web/logx"
	"github.com/EgorLis/community/internal/transport/web/mw"
	v1 "github.com/EgorLis/community/internal/transport/web/v1"
)

type HandlerMe struct {
	Log *log.Logger
}

type meResponse struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Me godoc
// @Summary     Current user
// @Description Identity из токена; в БД не ходит.
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} domain.APIEnvelope{response=meResponse}
// @Failure     401 {object} domain.APIEnvelope
// @Router      /api/v1/users/me [get]
func (h *HandlerMe) Me(w http.ResponseWriter, r *http.Request) {
	const op = "auth.me"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, ok := mw.IdentityFromCtx(r)
	if !ok {
		logx.Error(h.Log, reqID, op, "no identity in context", domain.ErrUnauth)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", id.UserID)
	v1.WriteOKResponse(w, r, meResponse{UserID: id.UserID.String(), Username: id.Username, ExpiresAt: id.ExpiresAt})
}
