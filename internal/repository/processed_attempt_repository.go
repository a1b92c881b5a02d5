package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"verbmaster/internal/model"
)

type ProcessedAttemptRepository interface {
	WithTx(tx *gorm.DB) ProcessedAttemptRepository
	// MarkProcessed inserts the attempt's idempotency key. It reports
	// false when the key was already present, meaning the attempt has
	// been applied before and must not be counted again.
	MarkProcessed(pa *model.ProcessedAttempt) (bool, error)
}

type processedAttemptRepository struct {
	db *gorm.DB
}

func NewProcessedAttemptRepository(db *gorm.DB) ProcessedAttemptRepository {
	return &processedAttemptRepository{db: db}
}

func (r *processedAttemptRepository) WithTx(tx *gorm.DB) ProcessedAttemptRepository {
	return &processedAttemptRepository{db: tx}
}

func (r *processedAttemptRepository) MarkProcessed(pa *model.ProcessedAttempt) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(pa)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
