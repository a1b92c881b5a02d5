package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"verbmaster/internal/dto"
	"verbmaster/internal/service"
)

type SyncController struct {
	syncService service.SyncService
}

func NewSyncController(syncService service.SyncService) *SyncController {
	return &SyncController{syncService: syncService}
}

// Sync godoc
// @Summary Apply a batch of buffered attempts
// @Description Processes each attempt independently; a rejected entry never blocks the rest. Returns per-attempt results and the caller's current progress.
// @Tags Sync
// @Accept json
// @Produce json
// @Param batch body dto.SyncRequest true "Buffered attempts and optional profile changes"
// @Success 200 {object} dto.SyncResponse
// @Failure 400 {object} dto.ErrorResponse "Malformed body"
// @Failure 401 {object} dto.ErrorResponse "Not authenticated"
// @Failure 500 {object} dto.ErrorResponse "Store failure"
// @Router /sync [post]
func (c *SyncController) Sync(ctx *gin.Context) {
	var req dto.SyncRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.syncService.Sync(CurrentUserID(ctx), req)
	if err != nil {
		log.Error().Err(err).Msg("Sync failed")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to synchronize"})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
