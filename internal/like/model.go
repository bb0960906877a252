package like

import (
	"time"
)

const Table = "likes"

// Like rows are created and deleted by toggle, never mutated. The composite
// unique index is the correctness mechanism under concurrent toggles: at most
// one row per (post, user), enforced by the database, not by callers.
type Like struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"uniqueIndex:idx_likes_post_user"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_likes_post_user"`
	CreatedAt time.Time `json:"created_at"`
}

func (Like) TableName() string {
	return Table
}

// WithUser is a like enriched with the liker's display name.
type WithUser struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	CreatedAt time.Time `json:"created_at"`
}
