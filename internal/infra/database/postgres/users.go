package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/EgorLis/community/internal/domain"
)

func (r *PGRepo) CreateUser(ctx context.Context, username, passHash string) (domain.User, error) {
	q := r.qb().Insert(r.table("users")).
		Columns("username", "pass_hash").
		Values(username, passHash).
		Suffix("RETURNING id, username, pass_hash, created_at")

	sqlStr, args, _ := q.ToSql()
	// хэш пароля в лог не пишем
	r.logSQL("CreateUser", sqlStr, []any{username, "***"})

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.PassHash, &u.CreatedAt); err != nil {
		r.logger.Printf("CreateUser scan error after %s: %v", time.Since(start), err)
		return domain.User{}, mapPgErr(err)
	}
	r.logger.Printf("CreateUser ok in %s id=%s username=%s", time.Since(start), u.ID, u.Username)
	return u, nil
}

func (r *PGRepo) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	q := r.qb().Select("id", "username", "pass_hash", "created_at").
		From(r.table("users")).
		Where(sq.Eq{"username": username})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UserByUsername", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.PassHash, &u.CreatedAt); err != nil {
		r.logger.Printf("UserByUsername scan error after %s: %v", time.Since(start), err)
		return domain.User{}, mapPgErr(err)
	}
	r.logger.Printf("UserByUsername ok in %s id=%s", time.Since(start), u.ID)
	return u, nil
}
