package post

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/EgorLis/community/internal/domain"
)

type Likes interface {
	Like(ctx context.Context, postID domain.PostID, userID domain.UserID) (int64, error)
	Unlike(ctx context.Context, postID domain.PostID, userID domain.UserID) (int64, error)
}

type Handler struct {
	Log   *log.Logger
	Posts domain.PostsRepo
	Likes Likes
}

type createRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

type postResponse struct {
	ID        int64     `json:"id"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	LikeCount int64     `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type likeResponse struct {
	PostID    int64 `json:"post_id"`
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

func toResponse(p domain.Post) postResponse {
	return postResponse{
		ID:        p.ID,
		AuthorID:  p.AuthorID.String(),
		Title:     p.Title,
		Content:   p.Content,
		LikeCount: p.LikeCount,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func parsePostID(s string) (domain.PostID, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
