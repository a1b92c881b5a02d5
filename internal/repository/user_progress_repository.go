package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"verbmaster/internal/model"
)

// LeaderboardRow is one leaderboard entry joined from users and their
// progress aggregates.
type LeaderboardRow struct {
	UserID          string `json:"user_id"`
	Name            string `json:"name"`
	Level           string `json:"level"`
	CorrectAttempts int    `json:"correct_attempts"`
	TotalAttempts   int    `json:"total_attempts"`
}

type UserProgressRepository interface {
	WithTx(tx *gorm.DB) UserProgressRepository
	// GetOrCreateForUpdate loads the aggregate row under a row lock,
	// creating it lazily on a user's first attempt.
	GetOrCreateForUpdate(userID string) (*model.UserProgress, error)
	Get(userID string) (*model.UserProgress, error)
	Save(up *model.UserProgress) error
	Leaderboard(limit int) ([]LeaderboardRow, error)
	// ResetDailyBefore zeroes daily stats rows left over from a calendar
	// day earlier than today. Returns the number of rows rolled over.
	ResetDailyBefore(today string) (int64, error)
}

type userProgressRepository struct {
	db *gorm.DB
}

func NewUserProgressRepository(db *gorm.DB) UserProgressRepository {
	return &userProgressRepository{db: db}
}

func (r *userProgressRepository) WithTx(tx *gorm.DB) UserProgressRepository {
	return &userProgressRepository{db: tx}
}

func (r *userProgressRepository) GetOrCreateForUpdate(userID string) (*model.UserProgress, error) {
	var up model.UserProgress
	err := r.db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&up).Error
	if err == nil {
		return &up, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	up = model.UserProgress{UserID: userID}
	if err := r.db.Create(&up).Error; err != nil {
		// Lost a create race with a concurrent first attempt; the row
		// exists now, lock it.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = r.db.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("user_id = ?", userID).
				First(&up).Error
			if err != nil {
				return nil, err
			}
			return &up, nil
		}
		return nil, err
	}
	return &up, nil
}

func (r *userProgressRepository) Get(userID string) (*model.UserProgress, error) {
	var up model.UserProgress
	if err := r.db.Where("user_id = ?", userID).First(&up).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &up, nil
}

func (r *userProgressRepository) Save(up *model.UserProgress) error {
	return r.db.Save(up).Error
}

func (r *userProgressRepository) Leaderboard(limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		return nil, nil
	}
	var rows []LeaderboardRow
	err := r.db.
		Table("user_progresses up").
		Select(`up.user_id, u.name, u.level, up.correct_attempts, up.total_attempts`).
		Joins("JOIN users u ON u.id = up.user_id").
		Where("up.total_attempts > 0").
		Order("(up.correct_attempts::numeric / NULLIF(up.total_attempts, 0)) DESC, up.total_attempts DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *userProgressRepository) ResetDailyBefore(today string) (int64, error) {
	res := r.db.
		Model(&model.UserProgress{}).
		Where("daily_date <> ? AND daily_attempts > 0", today).
		Updates(map[string]any{
			"daily_date":     today,
			"daily_attempts": 0,
			"daily_correct":  0,
		})
	return res.RowsAffected, res.Error
}
