package handlers

import (
	"fmt"
	"net/http"

	"cargomarket_backend/internal/middleware"
	"cargomarket_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	*BaseHandler
	fileService services.FileService
}

func NewFileHandler(base *BaseHandler, fileService services.FileService) *FileHandler {
	return &FileHandler{
		BaseHandler: base,
		fileService: fileService,
	}
}

func (h *FileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	// Публичные бакеты отдаются всем, приватные проверяются в сервисе
	rg.GET("/files/*path", middleware.OptionalAuthMiddleware(), h.ServeFile)
}

// ServeFile стримит объект из хранилища
func (h *FileHandler) ServeFile(c *gin.Context) {
	obj, err := h.fileService.Open(
		c.Request.Context(),
		h.GetDB(c),
		h.OptionalUserID(c),
		middleware.IsAdmin(c),
		c.Param("path"),
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer obj.Reader.Close()

	size := obj.Size
	if size <= 0 {
		size = -1
	}

	c.Header("Cache-Control", "private, max-age=3600")
	c.DataFromReader(http.StatusOK, size, obj.ContentType, obj.Reader, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", obj.Name),
	})
}
