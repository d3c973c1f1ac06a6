package auth

import (
	"log"
	"net/http"

	"github.com/EgorLis/community/internal/domain"
	"github.com/EgorLis/community/internal/transport/web/logx"
	"github.com/EgorLis/community/internal/transport/web/mw"
	v1 "github.com/EgorLis/community/internal/transport/web/v1"
)

type HandlerLogout struct {
	Log      *log.Logger
	Sessions Sessions
}

type logoutResponse struct {
	Revoked string `json:"revoked"` // jti
}

// Logout godoc
// @Summary     Logout (revoke token)
// @Description Завершает сессию: токен из заголовка помечается отозванным до истечения exp.
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} domain.APIEnvelope{response=logoutResponse}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/users/logout [post]
func (h *HandlerLogout) Logout(w http.ResponseWriter, r *http.Request) {
	const op = "auth.logout"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	id, ok := mw.IdentityFromCtx(r)
	if !ok {
		logx.Error(h.Log, reqID, op, "no identity in context", domain.ErrUnauth)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	if err := h.Sessions.Logout(r.Context(), id, mw.BearerToken(r)); err != nil {
		logx.Error(h.Log, reqID, op, "logout failed", err, "jti", id.JTI)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "jti", id.JTI)
	v1.WriteOKResponse(w, r, logoutResponse{Revoked: id.JTI})
}
