package comment

import (
	"time"
)

const Table = "comments"

type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"index"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"text" gorm:"column:content"`
	CreatedAt time.Time `json:"created_at"`
}

func (Comment) TableName() string {
	return Table
}

// WithAuthor is a comment enriched with the commenter's name and resolved
// avatar. Author is nil when the user row no longer exists.
type WithAuthor struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	Content   string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Author    *Author   `json:"author"`
}

type Author struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}
