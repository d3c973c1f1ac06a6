package domain

import "context"

type UsersRepo interface {
	Close()
	Ping(context.Context) error
	CreateUser(ctx context.Context, username, passHash string) (User, error)
	UserByUsername(ctx context.Context, username string) (User, error)
}

type PostsRepo interface {
	CreatePost(ctx context.Context, author UserID, title, content string) (Post, error)
	PostByID(ctx context.Context, id PostID) (Post, error)
}

// LikeTx — операции внутри одной транзакции над строкой поста.
type LikeTx interface {
	// LockPost берёт эксклюзивную блокировку строки (FOR UPDATE); ErrNotFound если поста нет.
	LockPost(ctx context.Context, id PostID) (LockedPost, error)
	LikeExists(ctx context.Context, user UserID, post PostID) (bool, error)
	// InsertLike возвращает false, если связь уже есть (ON CONFLICT DO NOTHING).
	InsertLike(ctx context.Context, user UserID, post PostID) (bool, error)
	// DeleteLike возвращает число удалённых строк (0 или 1).
	DeleteLike(ctx context.Context, user UserID, post PostID) (int64, error)
	SaveLikeCount(ctx context.Context, p LockedPost) error
}

// LikeTxRunner выполняет fn в транзакции: commit при nil, иначе rollback.
// Rollback выполняется на всех путях выхода, включая панику и отмену контекста.
type LikeTxRunner interface {
	InTx(ctx context.Context, fn func(tx LikeTx) error) error
}
