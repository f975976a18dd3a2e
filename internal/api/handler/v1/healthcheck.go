package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthcheckHandler struct{}

func NewHealthcheckHandler() *HealthcheckHandler {
	return &HealthcheckHandler{}
}

// HandleHealthcheck godoc
//
//	@Summary     Checks if the service is up
//	@Tags        healthcheck
//	@Produce     json
//	@Success     200 {object} map[string]string
//	@Router      /healthcheck [get]
func (h *HealthcheckHandler) HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
