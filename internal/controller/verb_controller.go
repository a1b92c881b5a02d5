package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"verbmaster/internal/dto"
	"verbmaster/internal/progress"
	"verbmaster/internal/verbs"
)

type VerbController struct {
	dict *verbs.Dictionary
}

func NewVerbController(dict *verbs.Dictionary) *VerbController {
	return &VerbController{dict: dict}
}

// List godoc
// @Summary List the verb dictionary
// @Description Returns the immutable reference verb set, optionally filtered by level.
// @Tags Verbs
// @Produce json
// @Param level query string false "beginner, intermediate or advanced"
// @Success 200 {array} verbs.Verb
// @Router /verbs [get]
func (c *VerbController) List(ctx *gin.Context) {
	level := ctx.Query("level")
	if level == "" {
		ctx.JSON(http.StatusOK, c.dict.All())
		return
	}

	filtered := make([]verbs.Verb, 0)
	for _, v := range c.dict.All() {
		if v.Level == level {
			filtered = append(filtered, v)
		}
	}
	ctx.JSON(http.StatusOK, filtered)
}

// Get godoc
// @Summary Look up one verb
// @Tags Verbs
// @Produce json
// @Param verb path string true "Base form"
// @Success 200 {object} verbs.Verb
// @Failure 404 {object} dto.ErrorResponse "Verb not in dictionary"
// @Router /verbs/{verb} [get]
func (c *VerbController) Get(ctx *gin.Context) {
	v, ok := c.dict.Get(progress.NormalizeVerb(ctx.Param("verb")))
	if !ok {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Verb not found"})
		return
	}
	ctx.JSON(http.StatusOK, v)
}
