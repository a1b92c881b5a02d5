package model

import (
	"time"
)

// ProcessedAttempt records an applied attempt ID. The primary key on the
// client-supplied UUID is what makes redelivered attempts detectable, so
// at-least-once delivery still applies each attempt exactly once.
type ProcessedAttempt struct {
	ID        string    `gorm:"primarykey;type:uuid" json:"id"`
	UserID    string    `json:"user_id" gorm:"not null;index"`
	Verb      string    `json:"verb" gorm:"not null"`
	Correct   bool      `json:"correct" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}
