package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"          json:"email"`
	PasswordHash string    `gorm:"not null"                      json:"-"`
	Name         string    `gorm:"not null"                      json:"name"`
	Role         Role      `gorm:"type:varchar(32);not null"     json:"role"`
	CreatedAt    time.Time `                                     json:"created_at"`
	UpdatedAt    time.Time `                                     json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// UserPatch carries the fields of a partial update; nil means unchanged.
// PasswordHash must already be hashed.
type UserPatch struct {
	Email        *string
	PasswordHash *string
	Name         *string
}

func (p UserPatch) Empty() bool {
	return p.Email == nil && p.PasswordHash == nil && p.Name == nil
}

// RevokedToken is a blacklist row. Only the SHA-256 of the token is stored.
// ExpiresAt is the token's own expiry in unix seconds.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey"                    json:"id"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null"  json:"token_hash"`
	Kind      string    `gorm:"size:16;not null"              json:"kind"`
	ExpiresAt int64     `gorm:"index;not null"                json:"expires_at"`
	CreatedAt time.Time `                                     json:"created_at"`
}
