package handlers

import (
	"net/http"

	"filesmanager/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type AppHandler struct {
	app *services.AppService
}

func NewAppHandler(app *services.AppService) *AppHandler {
	return &AppHandler{app: app}
}

// GetStatus reports whether Redis and the metadata store answer.
func (h *AppHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.Status(c.Request.Context()))
}

// GetStats reports the number of users and file records.
func (h *AppHandler) GetStats(c *gin.Context) {
	stats, err := h.app.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
