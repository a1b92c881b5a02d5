package dto

import "time"

// RecordAttemptRequest is the POST /progress body. IsCorrect is a pointer
// so a missing field is distinguishable from an explicit false.
type RecordAttemptRequest struct {
	Verb      string `json:"verb" binding:"required"`
	IsCorrect *bool  `json:"isCorrect" binding:"required"`
	AttemptID string `json:"attemptId"`
}

type SyncAttemptDTO struct {
	AttemptID string    `json:"attemptId"`
	Verb      string    `json:"verb"`
	IsCorrect *bool     `json:"isCorrect"`
	Timestamp time.Time `json:"timestamp"`
}

type SyncUserInfoDTO struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// SyncRequest carries a batch of locally buffered attempts plus optional
// profile changes, so an offline client can catch up in one call.
type SyncRequest struct {
	UserInfo *SyncUserInfoDTO `json:"userInfo"`
	Attempts []SyncAttemptDTO `json:"attempts"`
	Version  string           `json:"version"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateNameRequest struct {
	Name string `json:"name" binding:"required"`
}
