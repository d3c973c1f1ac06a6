package web

import (
	"github.com/EgorLis/community/internal/domain"
	"github.com/EgorLis/community/internal/transport/web/mw"
	"github.com/EgorLis/community/internal/transport/web/v1/auth"
	"github.com/EgorLis/community/internal/transport/web/v1/health"
	"github.com/EgorLis/community/internal/transport/web/v1/post"
)

type Repos struct {
	Posts domain.PostsRepo
	DB    health.Pinger
	Cache health.Pinger
}

type AuthDeps struct {
	Sessions auth.Sessions
	Gate     *mw.Gate
}

type EngagementDeps struct {
	Likes post.Likes
}
