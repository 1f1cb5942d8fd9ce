package handlers

import (
	"net/http"
	"strconv"

	"filesmanager/backend/internal/middleware"
	"filesmanager/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	files *services.FileService
}

func NewFileHandler(files *services.FileService) *FileHandler {
	return &FileHandler{files: files}
}

func (h *FileHandler) Upload(c *gin.Context) {
	var payload services.UploadInput
	if err := bindJSON(c, &payload); err != nil {
		respondError(c, err)
		return
	}

	file, err := h.files.Upload(c.Request.Context(), middleware.ForContext(c.Request.Context()), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

func (h *FileHandler) GetFile(c *gin.Context) {
	file, err := h.files.Get(c.Request.Context(), middleware.ForContext(c.Request.Context()), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

// ListFiles returns one page of the caller's records under ?parentId (root by
// default). Pages are zero based and hold at most 20 records.
func (h *FileHandler) ListFiles(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		page = 0
	}
	files, err := h.files.List(c.Request.Context(), middleware.ForContext(c.Request.Context()),
		c.DefaultQuery("parentId", "0"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

func (h *FileHandler) Publish(c *gin.Context)   { h.setPublic(c, true) }
func (h *FileHandler) Unpublish(c *gin.Context) { h.setPublic(c, false) }

func (h *FileHandler) setPublic(c *gin.Context, public bool) {
	file, err := h.files.SetPublic(c.Request.Context(), middleware.ForContext(c.Request.Context()), c.Param("id"), public)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

// GetData streams a record's bytes, or a derivative's with ?size.
func (h *FileHandler) GetData(c *gin.Context) {
	content, err := h.files.Content(c.Request.Context(), middleware.ForContext(c.Request.Context()),
		c.Param("id"), c.Query("size"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer content.Body.Close()
	c.DataFromReader(http.StatusOK, content.Size, content.ContentType, content.Body, nil)
}
