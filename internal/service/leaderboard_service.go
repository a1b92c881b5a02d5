package service

import (
	"fmt"
	"strings"

	"verbmaster/internal/dto"
	"verbmaster/internal/progress"
	"verbmaster/internal/repository"
)

type LeaderboardService interface {
	Top(limit int) ([]dto.LeaderboardEntryDTO, error)
	SetDisplayName(userID, name string) (*dto.AuthResponse, error)
}

type leaderboardService struct {
	userProgRepo repository.UserProgressRepository
	userRepo     repository.UserRepository
}

func NewLeaderboardService(userProgRepo repository.UserProgressRepository, userRepo repository.UserRepository) LeaderboardService {
	return &leaderboardService{userProgRepo: userProgRepo, userRepo: userRepo}
}

func (s *leaderboardService) Top(limit int) ([]dto.LeaderboardEntryDTO, error) {
	rows, err := s.userProgRepo.Leaderboard(limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	entries := make([]dto.LeaderboardEntryDTO, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, dto.LeaderboardEntryDTO{
			UserID:        r.UserID,
			Name:          r.Name,
			Level:         r.Level,
			CorrectCount:  r.CorrectAttempts,
			TotalAttempts: r.TotalAttempts,
			SuccessRate:   progress.SuccessRate(r.CorrectAttempts, r.TotalAttempts),
		})
	}
	return entries, nil
}

func (s *leaderboardService) SetDisplayName(userID, name string) (*dto.AuthResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	user, err := s.userRepo.UpdateProfile(userID, name, "")
	if err != nil {
		return nil, fmt.Errorf("update display name: %w", err)
	}
	return authResponse(user), nil
}
