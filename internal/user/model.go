package user

import (
	"time"

	"github.com/xieumar/HNG-Framez/internal/media"
)

const Table = "users"

// User is provisioned on first sign-in from identity-provider claims and
// resynced on every later sign-in. ExternalID is the provider's stable
// subject; the unique index is what makes Upsert converge to one row.
type User struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	ExternalID string    `json:"external_id" gorm:"uniqueIndex;not null"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Avatar     media.Ref `json:"avatar" gorm:"embedded;embeddedPrefix:avatar_"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return Table
}

// Profile is the resolved view handed to clients: the avatar union collapsed
// to a fetchable URL (or null).
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}
