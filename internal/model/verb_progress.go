package model

import (
	"time"

	"verbmaster/internal/progress"
)

// VerbProgress is the stored form of a per-(user, verb) mastery tracker.
type VerbProgress struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	UserID        string     `json:"user_id" gorm:"not null;uniqueIndex:idx_user_verb"`
	Verb          string     `json:"verb" gorm:"not null;uniqueIndex:idx_user_verb"`
	Attempts      int        `json:"attempts" gorm:"not null;default:0"`
	Correct       int        `json:"correct" gorm:"not null;default:0"`
	MasteryTier   int        `json:"mastery_tier" gorm:"not null;default:0"`
	LastPracticed *time.Time `json:"last_practiced"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (v *VerbProgress) Tracker() progress.Tracker {
	return progress.Tracker{
		Verb:          v.Verb,
		Attempts:      v.Attempts,
		Correct:       v.Correct,
		MasteryTier:   v.MasteryTier,
		LastPracticed: v.LastPracticed,
	}
}

func (v *VerbProgress) SetTracker(t progress.Tracker) {
	v.Verb = t.Verb
	v.Attempts = t.Attempts
	v.Correct = t.Correct
	v.MasteryTier = t.MasteryTier
	v.LastPracticed = t.LastPracticed
}
