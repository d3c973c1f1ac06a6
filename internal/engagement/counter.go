package engagement

import (
	"context"
	"fmt"
	"log"

	"github.com/EgorLis/community/internal/domain"
)

// Counter поддерживает связь лайка и денормализованный posts.like_count.
// Обе операции идут под эксклюзивной блокировкой строки поста, поэтому
// проверка связи и изменение счётчика атомарны относительно друг друга.
// Разные посты блокируются независимо.
type Counter struct {
	log *log.Logger
	tx  domain.LikeTxRunner
}

func New(logger *log.Logger, tx domain.LikeTxRunner) *Counter {
	return &Counter{log: logger, tx: tx}
}

// Like идемпотентен: повторный лайк ничего не меняет. Возвращает итоговый like_count.
func (c *Counter) Like(ctx context.Context, postID domain.PostID, userID domain.UserID) (int64, error) {
	var count int64
	err := c.tx.InTx(ctx, func(tx domain.LikeTx) error {
		post, err := tx.LockPost(ctx, postID)
		if err != nil {
			return err
		}
		count = post.LikeCount

		exists, err := tx.LikeExists(ctx, userID, postID)
		if err != nil {
			return fmt.Errorf("check like: %w", err)
		}
		if exists {
			return nil
		}

		inserted, err := tx.InsertLike(ctx, userID, postID)
		if err != nil {
			return fmt.Errorf("insert like: %w", err)
		}
		if !inserted {
			return nil
		}
		post.LikeCount++
		if err := tx.SaveLikeCount(ctx, post); err != nil {
			return fmt.Errorf("save post: %w", err)
		}
		count = post.LikeCount
		return nil
	})
	if err != nil {
		c.log.Printf("like post_id=%d user_id=%s failed: %v", postID, userID, err)
		return 0, err
	}
	return count, nil
}

// Unlike без существующего лайка ничего не меняет и не считается ошибкой.
func (c *Counter) Unlike(ctx context.Context, postID domain.PostID, userID domain.UserID) (int64, error) {
	var count int64
	err := c.tx.InTx(ctx, func(tx domain.LikeTx) error {
		post, err := tx.LockPost(ctx, postID)
		if err != nil {
			return err
		}

		deleted, err := tx.DeleteLike(ctx, userID, postID)
		if err != nil {
			return fmt.Errorf("delete like: %w", err)
		}
		if deleted == 1 {
			post.LikeCount--
		}
		if err := tx.SaveLikeCount(ctx, post); err != nil {
			return fmt.Errorf("save post: %w", err)
		}
		count = post.LikeCount
		return nil
	})
	if err != nil {
		c.log.Printf("unlike post_id=%d user_id=%s failed: %v", postID, userID, err)
		return 0, err
	}
	return count, nil
}
