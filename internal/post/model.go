package post

import (
	"time"

	"github.com/xieumar/HNG-Framez/internal/media"
)

const Table = "posts"

// Post carries three denormalized counters kept in step with the like and
// comment rows inside the same transaction that mutates those rows. Version
// increases on every write to the row, which is what lets clients tell a
// fresh server value from a stale one when reconciling optimistic state.
type Post struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"user_id" gorm:"index"`
	Content       string    `json:"content"`
	Image         media.Ref `json:"image" gorm:"embedded;embeddedPrefix:image_"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time `json:"updated_at"`
	LikesCount    int64     `json:"likes_count" gorm:"not null;default:0"`
	CommentsCount int64     `json:"comments_count" gorm:"not null;default:0"`
	SharesCount   int64     `json:"shares_count" gorm:"not null;default:0"`
	Version       int64     `json:"version" gorm:"not null;default:0"`
}

func (Post) TableName() string {
	return Table
}

// Author is the slice of the owning user embedded in feed entries.
type Author struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

// View is a feed entry: the post with its image reference resolved to a URL
// and, for the global feed, the author attached. Author stays nil when the
// owning user row no longer exists; the post is still returned.
type View struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Content       string    `json:"content"`
	ImageURL      *string   `json:"image_url"`
	CreatedAt     time.Time `json:"created_at"`
	LikesCount    int64     `json:"likes_count"`
	CommentsCount int64     `json:"comments_count"`
	SharesCount   int64     `json:"shares_count"`
	Version       int64     `json:"version"`
	Author        *Author   `json:"author,omitempty"`
}
