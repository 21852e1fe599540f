package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered customer. Orders may reference a user but never
// require one.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"size:150;unique;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Profile holds the optional extras attached to a user account. It is created
// explicitly by the registration workflow in the same transaction as the User
// row, never by an implicit hook.
type Profile struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;unique;not null" json:"user_id"`
	Email     string     `gorm:"size:254" json:"email,omitempty"`
	AvatarURL string     `gorm:"size:500" json:"avatar_url,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
}

// Migrate runs auto migration for every durable model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Category{}, &Product{}, &Order{}, &OrderItem{}, &User{}, &Profile{})
}
