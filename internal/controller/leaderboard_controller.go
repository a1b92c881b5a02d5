package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"verbmaster/internal/dto"
	"verbmaster/internal/service"
)

type LeaderboardController struct {
	leaderboardService service.LeaderboardService
}

func NewLeaderboardController(leaderboardService service.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{leaderboardService: leaderboardService}
}

// Top godoc
// @Summary List top users by success rate
// @Tags Leaderboard
// @Produce json
// @Param limit query int false "Number of entries (default 10)"
// @Success 200 {array} dto.LeaderboardEntryDTO
// @Failure 500 {object} dto.ErrorResponse "Store failure"
// @Router /leaderboard [get]
func (c *LeaderboardController) Top(ctx *gin.Context) {
	limit := 10
	if raw := ctx.Query("limit"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid limit"})
			return
		}
		limit = val
	}

	entries, err := c.leaderboardService.Top(limit)
	if err != nil {
		log.Error().Err(err).Msg("Leaderboard query failed")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to fetch leaderboard"})
		return
	}
	if entries == nil {
		entries = []dto.LeaderboardEntryDTO{}
	}
	ctx.JSON(http.StatusOK, entries)
}

// SetName godoc
// @Summary Update the caller's display name
// @Tags Leaderboard
// @Accept json
// @Produce json
// @Param name body dto.UpdateNameRequest true "New display name"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse "Missing name"
// @Failure 401 {object} dto.ErrorResponse "Not authenticated"
// @Router /leaderboard/name [put]
func (c *LeaderboardController) SetName(ctx *gin.Context) {
	var req dto.UpdateNameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	user, err := c.leaderboardService.SetDisplayName(CurrentUserID(ctx), req.Name)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Msg("SetDisplayName failed")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to update name"})
		return
	}
	ctx.JSON(http.StatusOK, user)
}
