package post

import (
	"net/http"

	"github.com/EgorLis/community/internal/domain"
	"github.com/EgorLis/community/internal/transport/web/logx"
	"github.com/EgorLis/community/internal/transport/web/mw"
	v1 "github.com/EgorLis/community/internal/transport/web/v1"
)

// Get godoc
// @Summary     Get post
// @Tags        posts
// @Produce     json
// @Security    BearerAuth
// @Param       postId path int true "post id"
// @Success     200 {object} domain.APIEnvelope{response=postResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/v1/posts/{postId} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "post.get"
	reqID := mw.RequestIDFromCtx(r.Context())

	postID, ok := parsePostID(r.PathValue("postId"))
	if !ok {
		logx.Error(h.Log, reqID, op, "bad post id", domain.ErrBadParams, "raw", r.PathValue("postId"))
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	p, err := h.Posts.PostByID(r.Context(), postID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "lookup failed", err, "post_id", postID)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "post_id", postID, "like_count", p.LikeCount)
	v1.WriteOKResponse(w, r, toResponse(p))
}
