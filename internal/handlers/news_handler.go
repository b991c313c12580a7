package handlers

import (
	"net/http"
	"strings"

	"cargomarket_backend/internal/middleware"
	"cargomarket_backend/internal/services"
	"cargomarket_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type NewsHandler struct {
	*BaseHandler
	newsService services.NewsService
}

func NewNewsHandler(base *BaseHandler, newsService services.NewsService) *NewsHandler {
	return &NewsHandler{
		BaseHandler: base,
		newsService: newsService,
	}
}

func (h *NewsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	news := rg.Group("/news")
	{
		news.GET("", h.ListNews)
		news.GET("/external", h.ListExternalNews)
		news.GET("/:idOrSlug", middleware.OptionalAuthMiddleware(), h.GetNews)
	}

	admin := rg.Group("/admin/news")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("", h.CreateNews)
		admin.PUT("/:id", h.UpdateNews)
		admin.DELETE("/:id", h.DeleteNews)
		admin.POST("/sync", h.SyncExternal)
	}
}

func (h *NewsHandler) ListNews(c *gin.Context) {
	var req dto.NewsListRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	resp, err := h.newsService.ListNews(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetNews - по id или slug, каждый запрос увеличивает счетчик просмотров
func (h *NewsHandler) GetNews(c *gin.Context) {
	resp, err := h.newsService.GetNews(c.Request.Context(), h.GetDB(c), c.Param("idOrSlug"), middleware.IsAdmin(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NewsHandler) ListExternalNews(c *gin.Context) {
	resp, err := h.newsService.ListExternalNews(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NewsHandler) CreateNews(c *gin.Context) {
	var req dto.CreateNewsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.newsService.CreateNews(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *NewsHandler) UpdateNews(c *gin.Context) {
	var req dto.UpdateNewsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.newsService.UpdateNews(c.Request.Context(), h.GetDB(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NewsHandler) DeleteNews(c *gin.Context) {
	if err := h.newsService.DeleteNews(c.Request.Context(), h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SyncExternal - ручной импорт внешней ленты; ?categories=market,logistics
func (h *NewsHandler) SyncExternal(c *gin.Context) {
	var categories []string
	if raw := c.Query("categories"); raw != "" {
		for _, cat := range strings.Split(raw, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				categories = append(categories, cat)
			}
		}
	}

	resp, err := h.newsService.SyncExternal(c.Request.Context(), h.GetDB(c), categories)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
