package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"verbmaster/internal/dto"
	"verbmaster/internal/progress"
	"verbmaster/internal/service"
)

type ProgressController struct {
	progressService service.ProgressService
}

func NewProgressController(progressService service.ProgressService) *ProgressController {
	return &ProgressController{progressService: progressService}
}

// RecordAttempt godoc
// @Summary Record one practice attempt
// @Description Applies a single attempt to the caller's progress. Safe to retry with the same attemptId.
// @Tags Progress
// @Accept json
// @Produce json
// @Param attempt body dto.RecordAttemptRequest true "Attempt outcome"
// @Success 200 {object} dto.RecordAttemptResponse
// @Failure 400 {object} dto.ErrorResponse "Malformed body or unknown verb"
// @Failure 401 {object} dto.ErrorResponse "Not authenticated"
// @Failure 500 {object} dto.ErrorResponse "Store failure"
// @Router /progress [post]
func (c *ProgressController) RecordAttempt(ctx *gin.Context) {
	var req dto.RecordAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	rec := progress.AttemptRecord{
		ID:        req.AttemptID,
		Verb:      req.Verb,
		Correct:   *req.IsCorrect,
		Timestamp: time.Now(),
	}
	resp, err := c.progressService.RecordAttempt(CurrentUserID(ctx), rec)
	if err != nil {
		if errors.Is(err, service.ErrValidation) || errors.Is(err, service.ErrUnknownVerb) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Str("verb", req.Verb).Msg("RecordAttempt failed")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to update progress"})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetProgress godoc
// @Summary Read progress
// @Description Returns the caller's aggregate by default; ?type=stats returns per-verb trackers and ?type=difficult&limit=N returns the difficulty ranking.
// @Tags Progress
// @Produce json
// @Param type query string false "stats or difficult"
// @Param limit query int false "Ranking size (difficult only, default 10)"
// @Success 200 {object} dto.UserProgressDTO
// @Failure 401 {object} dto.ErrorResponse "Not authenticated"
// @Failure 500 {object} dto.ErrorResponse "Store failure"
// @Router /progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	userID := CurrentUserID(ctx)

	switch ctx.Query("type") {
	case "difficult":
		limit := 10
		if raw := ctx.Query("limit"); raw != "" {
			val, err := strconv.Atoi(raw)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid limit"})
				return
			}
			limit = val
		}
		verbsRanked, err := c.progressService.GetDifficultVerbs(userID, limit)
		if err != nil {
			log.Error().Err(err).Msg("GetDifficultVerbs failed")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to fetch difficult verbs"})
			return
		}
		if verbsRanked == nil {
			verbsRanked = []progress.RankedVerb{}
		}
		ctx.JSON(http.StatusOK, verbsRanked)

	case "stats":
		stats, err := c.progressService.GetStats(userID)
		if err != nil {
			log.Error().Err(err).Msg("GetStats failed")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to fetch verb stats"})
			return
		}
		ctx.JSON(http.StatusOK, stats)

	default:
		prog, err := c.progressService.GetProgress(userID)
		if err != nil {
			log.Error().Err(err).Msg("GetProgress failed")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to fetch progress"})
			return
		}
		ctx.JSON(http.StatusOK, prog)
	}
}
