package model

import (
	"time"

	"verbmaster/internal/progress"
)

// UserProgress is the stored form of a per-user progress aggregate.
type UserProgress struct {
	ID               uint       `gorm:"primarykey" json:"id"`
	UserID           string     `json:"user_id" gorm:"not null;uniqueIndex"`
	TotalAttempts    int        `json:"total_attempts" gorm:"not null;default:0"`
	CorrectAttempts  int        `json:"correct_attempts" gorm:"not null;default:0"`
	StreakDays       int        `json:"streak_days" gorm:"not null;default:0"`
	LastActive       *time.Time `json:"last_active"`
	LastPracticeDate *time.Time `json:"last_practice_date"`
	DailyDate        string     `json:"daily_date"`
	DailyAttempts    int        `json:"daily_attempts" gorm:"not null;default:0"`
	DailyCorrect     int        `json:"daily_correct" gorm:"not null;default:0"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (u *UserProgress) Aggregate() progress.Aggregate {
	return progress.Aggregate{
		TotalAttempts:    u.TotalAttempts,
		CorrectAttempts:  u.CorrectAttempts,
		StreakDays:       u.StreakDays,
		LastActive:       u.LastActive,
		LastPracticeDate: u.LastPracticeDate,
		Daily: progress.DailyStats{
			Date:     u.DailyDate,
			Attempts: u.DailyAttempts,
			Correct:  u.DailyCorrect,
		},
	}
}

func (u *UserProgress) SetAggregate(a progress.Aggregate) {
	u.TotalAttempts = a.TotalAttempts
	u.CorrectAttempts = a.CorrectAttempts
	u.StreakDays = a.StreakDays
	u.LastActive = a.LastActive
	u.LastPracticeDate = a.LastPracticeDate
	u.DailyDate = a.Daily.Date
	u.DailyAttempts = a.Daily.Attempts
	u.DailyCorrect = a.Daily.Correct
}
