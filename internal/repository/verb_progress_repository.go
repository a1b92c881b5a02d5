package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"verbmaster/internal/model"
)

type VerbProgressRepository interface {
	// WithTx returns a repository bound to the given transaction.
	WithTx(tx *gorm.DB) VerbProgressRepository
	// GetForUpdate loads the tracker row under a row lock so concurrent
	// attempts for the same (user, verb) serialize. Returns ErrNotFound
	// when no row exists yet.
	GetForUpdate(userID, verb string) (*model.VerbProgress, error)
	Get(userID, verb string) (*model.VerbProgress, error)
	Save(vp *model.VerbProgress) error
	ListByUser(userID string) ([]model.VerbProgress, error)
}

type verbProgressRepository struct {
	db *gorm.DB
}

func NewVerbProgressRepository(db *gorm.DB) VerbProgressRepository {
	return &verbProgressRepository{db: db}
}

func (r *verbProgressRepository) WithTx(tx *gorm.DB) VerbProgressRepository {
	return &verbProgressRepository{db: tx}
}

func (r *verbProgressRepository) GetForUpdate(userID, verb string) (*model.VerbProgress, error) {
	var vp model.VerbProgress
	err := r.db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND verb = ?", userID, verb).
		First(&vp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vp, nil
}

func (r *verbProgressRepository) Get(userID, verb string) (*model.VerbProgress, error) {
	var vp model.VerbProgress
	err := r.db.Where("user_id = ? AND verb = ?", userID, verb).First(&vp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vp, nil
}

func (r *verbProgressRepository) Save(vp *model.VerbProgress) error {
	return r.db.Save(vp).Error
}

func (r *verbProgressRepository) ListByUser(userID string) ([]model.VerbProgress, error) {
	var list []model.VerbProgress
	err := r.db.
		Where("user_id = ?", userID).
		Order("last_practiced DESC NULLS LAST").
		Find(&list).Error
	return list, err
}
