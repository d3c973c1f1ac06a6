package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/EgorLis/community/internal/domain"
)

var _ domain.LikeTxRunner = (*PGRepo)(nil)

// InTx открывает транзакцию с ограничением ожидания блокировок и выполняет fn.
// Rollback безусловный на любом выходе без commit (ошибка, паника, отмена запроса).
func (r *PGRepo) InTx(ctx context.Context, fn func(tx domain.LikeTx) error) error {
	start := time.Now()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", mapPgErr(err))
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// контекст запроса может быть уже отменён, rollback должен уйти всё равно
		rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := tx.Rollback(rbCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			r.logger.Printf("rollback failed: %v", err)
			return
		}
		r.logger.Printf("tx rolled back after %s", time.Since(start))
	}()

	if r.lockTimeout > 0 {
		// SET не принимает параметры, значение: целое число миллисекунд
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", r.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("set lock_timeout: %w", mapPgErr(err))
		}
	}

	if err := fn(&likeTx{r: r, tx: tx}); err != nil {
		return mapPgErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", mapPgErr(err))
	}
	committed = true
	r.logger.Printf("tx committed in %s", time.Since(start))
	return nil
}

type likeTx struct {
	r  *PGRepo
	tx pgx.Tx
}

func (t *likeTx) LockPost(ctx context.Context, id domain.PostID) (domain.LockedPost, error) {
	q := t.r.qb().Select("id", "like_count").
		From(t.r.table("posts")).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE")

	sqlStr, args, _ := q.ToSql()
	t.r.logSQL("LockPost", sqlStr, args)

	var p domain.LockedPost
	if err := t.tx.QueryRow(ctx, sqlStr, args...).Scan(&p.ID, &p.LikeCount); err != nil {
		return domain.LockedPost{}, mapPgErr(err)
	}
	return p, nil
}

func (t *likeTx) LikeExists(ctx context.Context, user domain.UserID, post domain.PostID) (bool, error) {
	q := t.r.qb().Select("1").
		Prefix("SELECT EXISTS (").
		From(t.r.table("post_likes")).
		Where(sq.Eq{"user_id": user}).
		Where(sq.Eq{"post_id": post}).
		Suffix(")")

	sqlStr, args, _ := q.ToSql()
	t.r.logSQL("LikeExists", sqlStr, args)

	var ok bool
	if err := t.tx.QueryRow(ctx, sqlStr, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// InsertLike не падает на уникальном ключе: 23505 прервал бы всю транзакцию,
// а повторный лайк должен остаться no-op.
func (t *likeTx) InsertLike(ctx context.Context, user domain.UserID, post domain.PostID) (bool, error) {
	q := t.r.qb().Insert(t.r.table("post_likes")).
		Columns("user_id", "post_id").
		Values(user, post).
		Suffix("ON CONFLICT (user_id, post_id) DO NOTHING")

	sqlStr, args, _ := q.ToSql()
	t.r.logSQL("InsertLike", sqlStr, args)

	tag, err := t.tx.Exec(ctx, sqlStr, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (t *likeTx) DeleteLike(ctx context.Context, user domain.UserID, post domain.PostID) (int64, error) {
	q := t.r.qb().Delete(t.r.table("post_likes")).
		Where(sq.Eq{"user_id": user}).
		Where(sq.Eq{"post_id": post})

	sqlStr, args, _ := q.ToSql()
	t.r.logSQL("DeleteLike", sqlStr, args)

	tag, err := t.tx.Exec(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *likeTx) SaveLikeCount(ctx context.Context, p domain.LockedPost) error {
	q := t.r.qb().Update(t.r.table("posts")).
		Set("like_count", p.LikeCount).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": p.ID})

	sqlStr, args, _ := q.ToSql()
	t.r.logSQL("SaveLikeCount", sqlStr, args)

	_, err := t.tx.Exec(ctx, sqlStr, args...)
	return err
}
