package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"verbmaster/internal/dto"
	"verbmaster/internal/model"
	"verbmaster/internal/progress"
	"verbmaster/internal/repository"
	"verbmaster/internal/verbs"
)

type ProgressService interface {
	// RecordAttempt applies one attempt to the user's aggregate and the
	// verb's mastery tracker inside a single transaction. Redelivered
	// attempts (same attempt ID) are acknowledged without re-counting.
	RecordAttempt(userID string, rec progress.AttemptRecord) (*dto.RecordAttemptResponse, error)
	GetProgress(userID string) (*dto.UserProgressDTO, error)
	GetStats(userID string) ([]dto.VerbProgressDTO, error)
	GetDifficultVerbs(userID string, limit int) ([]progress.RankedVerb, error)
	// RolloverDailyStats resets daily stats left over from previous
	// calendar days. Invoked by the midnight scheduler.
	RolloverDailyStats(now time.Time) error
}

type progressService struct {
	db            *gorm.DB
	verbRepo      repository.VerbProgressRepository
	userProgRepo  repository.UserProgressRepository
	processedRepo repository.ProcessedAttemptRepository
	dict          *verbs.Dictionary
	loc           *time.Location
}

func NewProgressService(
	db *gorm.DB,
	verbRepo repository.VerbProgressRepository,
	userProgRepo repository.UserProgressRepository,
	processedRepo repository.ProcessedAttemptRepository,
	dict *verbs.Dictionary,
	loc *time.Location,
) ProgressService {
	return &progressService{
		db:            db,
		verbRepo:      verbRepo,
		userProgRepo:  userProgRepo,
		processedRepo: processedRepo,
		dict:          dict,
		loc:           loc,
	}
}

func (s *progressService) RecordAttempt(userID string, rec progress.AttemptRecord) (*dto.RecordAttemptResponse, error) {
	verb := progress.NormalizeVerb(rec.Verb)
	if verb == "" {
		return nil, fmt.Errorf("%w: verb is required", ErrValidation)
	}
	if !s.dict.Contains(verb) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVerb, verb)
	}
	if rec.ID == "" {
		// Legacy clients do not send idempotency keys; mint one so the
		// processed-attempts table stays consistent.
		rec.ID = uuid.NewString()
	}
	now := rec.Timestamp
	if now.IsZero() {
		now = time.Now()
	}

	var resp dto.RecordAttemptResponse
	err := s.db.Transaction(func(tx *gorm.DB) error {
		applied, err := s.processedRepo.WithTx(tx).MarkProcessed(&model.ProcessedAttempt{
			ID:      rec.ID,
			UserID:  userID,
			Verb:    verb,
			Correct: rec.Correct,
		})
		if err != nil {
			return fmt.Errorf("mark attempt processed: %w", err)
		}
		if !applied {
			log.Info().Str("userID", userID).Str("attemptID", rec.ID).Msg("Duplicate attempt delivery, skipping re-application")
			return s.loadCurrent(tx, userID, verb, &resp)
		}

		// Aggregate first, tracker second; every writer takes the locks
		// in this order.
		up, err := s.userProgRepo.WithTx(tx).GetOrCreateForUpdate(userID)
		if err != nil {
			return fmt.Errorf("load user progress: %w", err)
		}
		agg := up.Aggregate()
		if err := agg.Validate(); err != nil {
			return err
		}
		agg = progress.ApplyToAggregate(agg, rec.Correct, now, s.loc)
		up.SetAggregate(agg)
		if err := s.userProgRepo.WithTx(tx).Save(up); err != nil {
			return fmt.Errorf("save user progress: %w", err)
		}

		vp, err := s.verbRepo.WithTx(tx).GetForUpdate(userID, verb)
		var tracker *progress.Tracker
		switch {
		case err == nil:
			t := vp.Tracker()
			if err := t.Validate(); err != nil {
				return err
			}
			tracker = &t
		case errors.Is(err, repository.ErrNotFound):
			vp = &model.VerbProgress{UserID: userID, Verb: verb}
		default:
			return fmt.Errorf("load verb progress: %w", err)
		}
		next := progress.ApplyToTracker(tracker, verb, rec.Correct, now)
		vp.SetTracker(next)
		if err := s.verbRepo.WithTx(tx).Save(vp); err != nil {
			return fmt.Errorf("save verb progress: %w", err)
		}

		resp.UserProgress = aggregateDTO(agg)
		resp.VerbProgress = trackerDTO(vp)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// loadCurrent fills the response with the already-applied state for a
// duplicate delivery.
func (s *progressService) loadCurrent(tx *gorm.DB, userID, verb string, resp *dto.RecordAttemptResponse) error {
	resp.Duplicate = true

	up, err := s.userProgRepo.WithTx(tx).Get(userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if up != nil {
		agg := progress.RolloverDaily(up.Aggregate(), time.Now(), s.loc)
		resp.UserProgress = aggregateDTO(agg)
	}

	vp, err := s.verbRepo.WithTx(tx).Get(userID, verb)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if vp != nil {
		resp.VerbProgress = trackerDTO(vp)
	}
	return nil
}

func (s *progressService) GetProgress(userID string) (*dto.UserProgressDTO, error) {
	up, err := s.userProgRepo.Get(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lazily created on first attempt; a fresh user just sees
			// zeroes.
			return aggregateDTO(progress.Aggregate{}), nil
		}
		return nil, fmt.Errorf("get user progress: %w", err)
	}
	agg := progress.RolloverDaily(up.Aggregate(), time.Now(), s.loc)
	return aggregateDTO(agg), nil
}

func (s *progressService) GetStats(userID string) ([]dto.VerbProgressDTO, error) {
	list, err := s.verbRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list verb progress: %w", err)
	}
	dtos := make([]dto.VerbProgressDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, *trackerDTO(&list[i]))
	}
	return dtos, nil
}

func (s *progressService) GetDifficultVerbs(userID string, limit int) ([]progress.RankedVerb, error) {
	if limit <= 0 {
		return nil, nil
	}
	list, err := s.verbRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list verb progress: %w", err)
	}
	trackers := make([]progress.Tracker, 0, len(list))
	for i := range list {
		trackers = append(trackers, list[i].Tracker())
	}
	return progress.Rank(trackers, limit), nil
}

func (s *progressService) RolloverDailyStats(now time.Time) error {
	today := progress.CivilDate(now, s.loc)
	n, err := s.userProgRepo.ResetDailyBefore(today)
	if err != nil {
		return fmt.Errorf("reset daily stats: %w", err)
	}
	if n > 0 {
		log.Info().Int64("rows", n).Str("date", today).Msg("Rolled over daily stats")
	}
	return nil
}

func aggregateDTO(a progress.Aggregate) *dto.UserProgressDTO {
	return &dto.UserProgressDTO{
		TotalAttempts:    a.TotalAttempts,
		CorrectAttempts:  a.CorrectAttempts,
		SuccessRate:      progress.SuccessRate(a.CorrectAttempts, a.TotalAttempts),
		StreakDays:       a.StreakDays,
		LastActive:       a.LastActive,
		LastPracticeDate: a.LastPracticeDate,
		Daily: dto.DailyStatsDTO{
			Date:     a.Daily.Date,
			Attempts: a.Daily.Attempts,
			Correct:  a.Daily.Correct,
		},
	}
}

func trackerDTO(vp *model.VerbProgress) *dto.VerbProgressDTO {
	var out dto.VerbProgressDTO
	if err := copier.Copy(&out, vp); err != nil {
		log.Error().Err(err).Msg("Failed to copy VerbProgress to DTO")
	}
	out.SuccessRate = progress.SuccessRate(vp.Correct, vp.Attempts)
	return &out
}
