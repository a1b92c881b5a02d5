package model

import (
	"time"
)

type User struct {
	ID           string    `gorm:"primarykey;type:uuid" json:"id"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Level        string    `json:"level" gorm:"default:'beginner'"` // "beginner", "intermediate", "advanced"
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
