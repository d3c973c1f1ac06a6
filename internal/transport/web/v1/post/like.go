package post

import (
	"net/http"

	"github.com/EgorLis/community/internal/domain"
	"github.com/EgorLis/community/internal/transport/web/logx"
	"github.com/EgorLis/community/internal/transport/web/mw"
	v1 "github.com/EgorLis/community/internal/transport/web/v1"
)

// Like godoc
// @Summary     Like post
// @Description Идемпотентно: повторный лайк счётчик не меняет.
// @Tags        posts
// @Produce     json
// @Security    BearerAuth
// @Param       postId path int true "post id"
// @Success     200 {object} domain.APIEnvelope{response=likeResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Failure     503 {object} domain.APIEnvelope "строка поста занята, повторить позже"
// @Router      /api/v1/posts/{postId}/like [post]
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "post.like", true)
}

// Unlike godoc
// @Summary     Unlike post
// @Description Без существующего лайка счётчик не меняется.
// @Tags        posts
// @Produce     json
// @Security    BearerAuth
// @Param       postId path int true "post id"
// @Success     200 {object} domain.APIEnvelope{response=likeResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Failure     503 {object} domain.APIEnvelope "строка поста занята, повторить позже"
// @Router      /api/v1/posts/{postId}/like [delete]
func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "post.unlike", false)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, op string, like bool) {
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	id, ok := mw.IdentityFromCtx(r)
	if !ok {
		logx.Error(h.Log, reqID, op, "no identity in context", domain.ErrUnauth)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	postID, ok := parsePostID(r.PathValue("postId"))
	if !ok {
		logx.Error(h.Log, reqID, op, "bad post id", domain.ErrBadParams, "raw", r.PathValue("postId"))
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	var (
		count int64
		err   error
	)
	if like {
		count, err = h.Likes.Like(r.Context(), postID, id.UserID)
	} else {
		count, err = h.Likes.Unlike(r.Context(), postID, id.UserID)
	}
	if err != nil {
		logx.Error(h.Log, reqID, op, "failed", err, "post_id", postID, "user_id", id.UserID)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "post_id", postID, "user_id", id.UserID, "like_count", count)
	v1.WriteOKResponse(w, r, likeResponse{PostID: postID, Liked: like, LikeCount: count})
}
