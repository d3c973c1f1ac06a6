package postgres

import (
	"context"
	"errors"
	"io"
	"log"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/EgorLis/community/internal/domain"
	"github.com/EgorLis/community/internal/engagement"
)

const (
	sqlSetLockTimeout = "SET LOCAL lock_timeout = 3000"
	sqlLockPost       = "SELECT id, like_count FROM public.posts WHERE id = $1 FOR UPDATE"
	sqlLikeExists     = "SELECT EXISTS ( SELECT 1 FROM public.post_likes WHERE user_id = $1 AND post_id = $2 )"
	sqlInsertLike     = "INSERT INTO public.post_likes (user_id,post_id) VALUES ($1,$2) ON CONFLICT (user_id, post_id) DO NOTHING"
	sqlDeleteLike     = "DELETE FROM public.post_likes WHERE user_id = $1 AND post_id = $2"
	sqlSaveLikeCount  = "UPDATE public.posts SET like_count = $1, updated_at = now() WHERE id = $2"
)

func q(s string) string { return regexp.QuoteMeta(s) }

func newMockRepo(t *testing.T) (*PGRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return newWithPool(mock, log.New(io.Discard, "", 0), "public", 3*time.Second), mock
}

func expectLockedPost(mock pgxmock.PgxPoolIface, id, count int64) {
	mock.ExpectBegin()
	mock.ExpectExec(q(sqlSetLockTimeout)).WillReturnResult(pgxmock.NewResult("SET", 0))
	mock.ExpectQuery(q(sqlLockPost)).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "like_count"}).AddRow(id, count))
}

func TestLikeInsertsAndIncrementsInOneTx(t *testing.T) {
	repo, mock := newMockRepo(t)
	counter := engagement.New(log.New(io.Discard, "", 0), repo)
	uid := uuid.New()

	expectLockedPost(mock, 5, 2)
	mock.ExpectQuery(q(sqlLikeExists)).
		WithArgs(pgxmock.AnyArg(), int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(q(sqlInsertLike)).
		WithArgs(pgxmock.AnyArg(), int64(5)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(q(sqlSaveLikeCount)).
		WithArgs(int64(3), int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	n, err := counter.Like(context.Background(), 5, uid)
	if err != nil || n != 3 {
		t.Fatalf("like n=%d err=%v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestLikeAlreadyLikedCommitsWithoutWrites(t *testing.T) {
	repo, mock := newMockRepo(t)
	counter := engagement.New(log.New(io.Discard, "", 0), repo)

	expectLockedPost(mock, 5, 4)
	mock.ExpectQuery(q(sqlLikeExists)).
		WithArgs(pgxmock.AnyArg(), int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectCommit()

	n, err := counter.Like(context.Background(), 5, uuid.New())
	if err != nil || n != 4 {
		t.Fatalf("like n=%d err=%v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

// Связь появилась между EXISTS и INSERT: ON CONFLICT не вставляет строку,
// счётчик не трогаем, транзакция коммитится без ошибки.
func TestLikeInsertConflictIsNoop(t *testing.T) {
	repo, mock := newMockRepo(t)
	counter := engagement.New(log.New(io.Discard, "", 0), repo)

	expectLockedPost(mock, 5, 7)
	mock.ExpectQuery(q(sqlLikeExists)).
		WithArgs(pgxmock.AnyArg(), int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(q(sqlInsertLike)).
		WithArgs(pgxmock.AnyArg(), int64(5)).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectCommit()

	n, err := counter.Like(context.Background(), 5, uuid.New())
	if err != nil || n != 7 {
		t.Fatalf("like n=%d err=%v", n, err)
	}
	if errors.Is(err, domain.ErrConflict) {
		t.Fatal("duplicate like must not surface as conflict")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUnlikeWithoutRelationKeepsCounter(t *testing.T) {
	repo, mock := newMockRepo(t)
	counter := engagement.New(log.New(io.Discard, "", 0), repo)

	expectLockedPost(mock, 9, 1)
	mock.ExpectExec(q(sqlDeleteLike)).
		WithArgs(pgxmock.AnyArg(), int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(q(sqlSaveLikeCount)).
		WithArgs(int64(1), int64(9)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	n, err := counter.Unlike(context.Background(), 9, uuid.New())
	if err != nil || n != 1 {
		t.Fatalf("unlike n=%d err=%v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUnlikeDecrementsWhenRelationDeleted(t *testing.T) {
	repo, mock := newMockRepo(t)
	counter := engagement.New(log.New(io.Discard, "", 0), repo)

	expectLockedPost(mock, 9, 1)
	mock.ExpectExec(q(sqlDeleteLike)).
		WithArgs(pgxmock.AnyArg(), int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(q(sqlSaveLikeCount)).
		WithArgs(int64(0), int64(9)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	n, err := counter.Unlike(context.Background(), 9, uuid.New())
	if err != nil || n != 0 {
		t.Fatalf("unlike n=%d err=%v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestLikeMissingPostRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)
	counter := engagement.New(log.New(io.Discard, "", 0), repo)

	mock.ExpectBegin()
	mock.ExpectExec(q(sqlSetLockTimeout)).WillReturnResult(pgxmock.NewResult("SET", 0))
	mock.ExpectQuery(q(sqlLockPost)).WithArgs(int64(404)).WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := counter.Like(context.Background(), 404, uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestLockWaitTimeoutIsRetryable(t *testing.T) {
	repo, mock := newMockRepo(t)
	counter := engagement.New(log.New(io.Discard, "", 0), repo)

	mock.ExpectBegin()
	mock.ExpectExec(q(sqlSetLockTimeout)).WillReturnResult(pgxmock.NewResult("SET", 0))
	mock.ExpectQuery(q(sqlLockPost)).
		WithArgs(int64(5)).
		WillReturnError(&pgconn.PgError{Code: "55P03", Message: "canceling statement due to lock timeout"})
	mock.ExpectRollback()

	_, err := counter.Like(context.Background(), 5, uuid.New())
	if !errors.Is(err, domain.ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
	if errors.Is(err, domain.ErrNotFound) {
		t.Fatal("lock timeout must not look like not found")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFailedIncrementRollsBackInsert(t *testing.T) {
	repo, mock := newMockRepo(t)
	counter := engagement.New(log.New(io.Discard, "", 0), repo)

	expectLockedPost(mock, 5, 0)
	mock.ExpectQuery(q(sqlLikeExists)).
		WithArgs(pgxmock.AnyArg(), int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(q(sqlInsertLike)).
		WithArgs(pgxmock.AnyArg(), int64(5)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(q(sqlSaveLikeCount)).
		WithArgs(int64(1), int64(5)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	if _, err := counter.Like(context.Background(), 5, uuid.New()); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMapPgErr(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{"55P03", domain.ErrLockTimeout},
		{"40P01", domain.ErrLockTimeout},
		{"40001", domain.ErrLockTimeout},
		{"23505", domain.ErrConflict},
	}
	for _, c := range cases {
		if err := mapPgErr(&pgconn.PgError{Code: c.code}); !errors.Is(err, c.want) {
			t.Fatalf("code %s: got %v, want %v", c.code, err, c.want)
		}
	}
	if err := mapPgErr(pgx.ErrNoRows); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("no rows: %v", err)
	}
	plain := errors.New("boom")
	if err := mapPgErr(plain); err != plain {
		t.Fatalf("unknown errors pass through, got %v", err)
	}
}
