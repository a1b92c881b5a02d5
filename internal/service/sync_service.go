package service

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"verbmaster/internal/dto"
	"verbmaster/internal/progress"
	"verbmaster/internal/repository"
)

var supportedSyncVersions = []string{"1.0", "1.1"}

type SyncService interface {
	// Sync applies a batch of buffered attempts. Each attempt is an
	// independent unit of work: a failing entry never blocks the rest of
	// the batch.
	Sync(userID string, req dto.SyncRequest) (*dto.SyncResponse, error)
}

type syncService struct {
	progressService ProgressService
	userRepo        repository.UserRepository
}

func NewSyncService(progressService ProgressService, userRepo repository.UserRepository) SyncService {
	return &syncService{progressService: progressService, userRepo: userRepo}
}

func (s *syncService) Sync(userID string, req dto.SyncRequest) (*dto.SyncResponse, error) {
	if req.Version != "" && !lo.Contains(supportedSyncVersions, req.Version) {
		log.Warn().Str("version", req.Version).Str("userID", userID).Msg("Unsupported sync client version")
	}

	if req.UserInfo != nil && strings.TrimSpace(req.UserInfo.Name) != "" {
		_, err := s.userRepo.UpdateProfile(userID, strings.TrimSpace(req.UserInfo.Name), req.UserInfo.Level)
		if err != nil {
			log.Error().Err(err).Str("userID", userID).Msg("Failed to update user info during sync")
		}
	}

	resp := &dto.SyncResponse{Total: len(req.Attempts)}
	for _, a := range req.Attempts {
		item := dto.SyncAttemptResultDTO{AttemptID: a.AttemptID, Verb: a.Verb}

		if progress.NormalizeVerb(a.Verb) == "" || a.IsCorrect == nil {
			item.Error = "invalid attempt"
			resp.Items = append(resp.Items, item)
			continue
		}

		rec := progress.AttemptRecord{
			ID:        a.AttemptID,
			Verb:      a.Verb,
			Correct:   *a.IsCorrect,
			Timestamp: a.Timestamp,
		}
		applied, err := s.progressService.RecordAttempt(userID, rec)
		if err != nil {
			log.Error().Err(err).Str("userID", userID).Str("verb", a.Verb).Msg("Failed to process synced attempt")
			item.Error = "failed to process attempt"
			resp.Items = append(resp.Items, item)
			continue
		}
		item.Processed = true
		item.Duplicate = applied.Duplicate
		resp.Processed++
		resp.Items = append(resp.Items, item)
	}

	current, err := s.progressService.GetProgress(userID)
	if err != nil {
		return nil, err
	}
	resp.CurrentProgress = current
	return resp, nil
}
