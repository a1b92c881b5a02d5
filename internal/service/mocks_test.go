package service

import (
	"time"

	"gorm.io/gorm"

	"verbmaster/internal/dto"
	"verbmaster/internal/model"
	"verbmaster/internal/progress"
	"verbmaster/internal/repository"
)

type mockUserRepo struct {
	createFunc        func(user *model.User) error
	findByEmailFunc   func(email string) (*model.User, error)
	findByIDFunc      func(id string) (*model.User, error)
	updateProfileFunc func(id, name, level string) (*model.User, error)
}

func (m *mockUserRepo) Create(user *model.User) error { return m.createFunc(user) }
func (m *mockUserRepo) FindByEmail(email string) (*model.User, error) {
	return m.findByEmailFunc(email)
}
func (m *mockUserRepo) FindByID(id string) (*model.User, error) { return m.findByIDFunc(id) }
func (m *mockUserRepo) UpdateProfile(id, name, level string) (*model.User, error) {
	return m.updateProfileFunc(id, name, level)
}

type mockVerbProgressRepo struct {
	getForUpdateFunc func(userID, verb string) (*model.VerbProgress, error)
	getFunc          func(userID, verb string) (*model.VerbProgress, error)
	saveFunc         func(vp *model.VerbProgress) error
	listByUserFunc   func(userID string) ([]model.VerbProgress, error)
}

func (m *mockVerbProgressRepo) WithTx(tx *gorm.DB) repository.VerbProgressRepository { return m }
func (m *mockVerbProgressRepo) GetForUpdate(userID, verb string) (*model.VerbProgress, error) {
	return m.getForUpdateFunc(userID, verb)
}
func (m *mockVerbProgressRepo) Get(userID, verb string) (*model.VerbProgress, error) {
	return m.getFunc(userID, verb)
}
func (m *mockVerbProgressRepo) Save(vp *model.VerbProgress) error { return m.saveFunc(vp) }
func (m *mockVerbProgressRepo) ListByUser(userID string) ([]model.VerbProgress, error) {
	return m.listByUserFunc(userID)
}

type mockUserProgressRepo struct {
	getOrCreateFunc func(userID string) (*model.UserProgress, error)
	getFunc         func(userID string) (*model.UserProgress, error)
	saveFunc        func(up *model.UserProgress) error
	leaderboardFunc func(limit int) ([]repository.LeaderboardRow, error)
	resetDailyFunc  func(today string) (int64, error)
}

func (m *mockUserProgressRepo) WithTx(tx *gorm.DB) repository.UserProgressRepository { return m }
func (m *mockUserProgressRepo) GetOrCreateForUpdate(userID string) (*model.UserProgress, error) {
	return m.getOrCreateFunc(userID)
}
func (m *mockUserProgressRepo) Get(userID string) (*model.UserProgress, error) {
	return m.getFunc(userID)
}
func (m *mockUserProgressRepo) Save(up *model.UserProgress) error { return m.saveFunc(up) }
func (m *mockUserProgressRepo) Leaderboard(limit int) ([]repository.LeaderboardRow, error) {
	return m.leaderboardFunc(limit)
}
func (m *mockUserProgressRepo) ResetDailyBefore(today string) (int64, error) {
	return m.resetDailyFunc(today)
}

type mockProgressService struct {
	recordAttemptFunc func(userID string, rec progress.AttemptRecord) (*dto.RecordAttemptResponse, error)
	getProgressFunc   func(userID string) (*dto.UserProgressDTO, error)
}

func (m *mockProgressService) RecordAttempt(userID string, rec progress.AttemptRecord) (*dto.RecordAttemptResponse, error) {
	return m.recordAttemptFunc(userID, rec)
}
func (m *mockProgressService) GetProgress(userID string) (*dto.UserProgressDTO, error) {
	return m.getProgressFunc(userID)
}
func (m *mockProgressService) GetStats(userID string) ([]dto.VerbProgressDTO, error) {
	return nil, nil
}
func (m *mockProgressService) GetDifficultVerbs(userID string, limit int) ([]progress.RankedVerb, error) {
	return nil, nil
}
func (m *mockProgressService) RolloverDailyStats(now time.Time) error { return nil }
