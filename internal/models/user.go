package models

import "time"

// User is an account that owns fitness entries.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"` // never serialised
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RevokedToken records a signed-out session so its JWT is refused until it expires.
type RevokedToken struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"` // JWT "jti"
	UserID    string    `json:"user_id" gorm:"index;type:varchar(36)"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}
