package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/EgorLis/community/internal/domain"
)

var postColumns = []string{"id", "user_id", "title", "content", "like_count", "created_at", "updated_at"}

func scanPost(row interface{ Scan(...any) error }) (domain.Post, error) {
	var p domain.Post
	err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Content, &p.LikeCount, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PGRepo) CreatePost(ctx context.Context, author domain.UserID, title, content string) (domain.Post, error) {
	q := r.qb().Insert(r.table("posts")).
		Columns("user_id", "title", "content").
		Values(author, title, content).
		Suffix("RETURNING id, user_id, title, content, like_count, created_at, updated_at")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreatePost", sqlStr, args)

	start := time.Now()
	p, err := scanPost(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		r.logger.Printf("CreatePost scan error after %s: %v", time.Since(start), err)
		return domain.Post{}, mapPgErr(err)
	}
	r.logger.Printf("CreatePost ok in %s id=%d", time.Since(start), p.ID)
	return p, nil
}

func (r *PGRepo) PostByID(ctx context.Context, id domain.PostID) (domain.Post, error) {
	q := r.qb().Select(postColumns...).
		From(r.table("posts")).
		Where(sq.Eq{"id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("PostByID", sqlStr, args)

	start := time.Now()
	p, err := scanPost(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		r.logger.Printf("PostByID scan error after %s: %v", time.Since(start), err)
		return domain.Post{}, mapPgErr(err)
	}
	r.logger.Printf("PostByID ok in %s id=%d like_count=%d", time.Since(start), p.ID, p.LikeCount)
	return p, nil
}
