package dto

import "time"

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type DailyStatsDTO struct {
	Date     string `json:"date"`
	Attempts int    `json:"attempts"`
	Correct  int    `json:"correct"`
}

type UserProgressDTO struct {
	TotalAttempts    int           `json:"total_attempts"`
	CorrectAttempts  int           `json:"correct_attempts"`
	SuccessRate      float64       `json:"success_rate"`
	StreakDays       int           `json:"streak_days"`
	LastActive       *time.Time    `json:"last_active"`
	LastPracticeDate *time.Time    `json:"last_practice_date"`
	Daily            DailyStatsDTO `json:"daily"`
}

type VerbProgressDTO struct {
	Verb          string     `json:"verb"`
	Attempts      int        `json:"attempts"`
	Correct       int        `json:"correct"`
	SuccessRate   float64    `json:"success_rate"`
	MasteryTier   int        `json:"mastery_tier"`
	LastPracticed *time.Time `json:"last_practiced"`
}

type RecordAttemptResponse struct {
	UserProgress *UserProgressDTO `json:"userProgress"`
	VerbProgress *VerbProgressDTO `json:"verbProgress"`
	// Duplicate is true when the attempt ID had already been applied and
	// the counters were left untouched.
	Duplicate bool `json:"duplicate,omitempty"`
}

type SyncAttemptResultDTO struct {
	AttemptID string `json:"attemptId"`
	Verb      string `json:"verb"`
	Processed bool   `json:"processed"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Error     string `json:"error,omitempty"`
}

type SyncResponse struct {
	Total           int                    `json:"total"`
	Processed       int                    `json:"processed"`
	Items           []SyncAttemptResultDTO `json:"items"`
	CurrentProgress *UserProgressDTO       `json:"currentProgress"`
}

type AuthResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Level string `json:"level"`
}

type LeaderboardEntryDTO struct {
	UserID        string  `json:"user_id"`
	Name          string  `json:"name"`
	Level         string  `json:"level"`
	CorrectCount  int     `json:"correctCount"`
	TotalAttempts int     `json:"totalAttempts"`
	SuccessRate   float64 `json:"successRate"`
}
