package post

import (
	"net/http"

	"github.com/EgorLis/community/internal/domain"
	"github.com/EgorLis/community/internal/transport/web/logx"
	"github.com/EgorLis/community/internal/transport/web/mw"
	v1 "github.com/EgorLis/community/internal/transport/web/v1"
)

// Create godoc
// @Summary     Create post
// @Tags        posts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body createRequest true "title, content"
// @Success     201 {object} domain.APIEnvelope{response=postResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/posts [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "post.create"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	id, ok := mw.IdentityFromCtx(r)
	if !ok {
		logx.Error(h.Log, reqID, op, "no identity in context", domain.ErrUnauth)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	var req createRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		logx.Error(h.Log, reqID, op, "bad request", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	p, err := h.Posts.CreatePost(r.Context(), id.UserID, req.Title, req.Content)
	if err != nil {
		logx.Error(h.Log, reqID, op, "create failed", err, "user_id", id.UserID)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "post_id", p.ID, "user_id", id.UserID)
	v1.WriteCreated(w, r, toResponse(p))
}
