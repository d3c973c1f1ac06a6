package domain

import (
	"time"

	"github.com/google/uuid"
)

// Базовые идентификаторы
type UserID = uuid.UUID
type PostID = int64

// Пользователь
type User struct {
	ID        UserID    `json:"id"`
	Username  string    `json:"username"`
	PassHash  string    `json:"-"` // никогда не отдаём наружу
	CreatedAt time.Time `json:"created_at"`
}

// Пост. LikeCount денормализован: всегда равен числу строк post_likes для поста.
type Post struct {
	ID        PostID    `json:"id"`
	AuthorID  UserID    `json:"author_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	LikeCount int64     `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Строка поста, захваченная под FOR UPDATE: только то, что меняет счётчик.
type LockedPost struct {
	ID        PostID
	LikeCount int64
}
