package handlers

import (
	"net/http"

	"cargomarket_backend/internal/middleware"
	"cargomarket_backend/internal/services"
	"cargomarket_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AdHandler struct {
	*BaseHandler
	adService services.AdService
}

func NewAdHandler(base *BaseHandler, adService services.AdService) *AdHandler {
	return &AdHandler{
		BaseHandler: base,
		adService:   adService,
	}
}

func (h *AdHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ads := rg.Group("/ads")
	ads.Use(middleware.AuthMiddleware())
	{
		ads.POST("", h.CreateAd)
		ads.GET("", h.ListMyAds)
		ads.GET("/:id", h.GetAd)
		ads.PUT("/:id", h.UpdateAd)
		ads.DELETE("/:id", h.DeleteAd)
		ads.POST("/:id/pause", h.PauseAd)
		ads.POST("/:id/activate", h.ActivateAd)
	}
}

func (h *AdHandler) CreateAd(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateAdRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.adService.CreateAd(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AdHandler) ListMyAds(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	resp, err := h.adService.ListMyAds(c.Request.Context(), h.GetDB(c), userID, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdHandler) GetAd(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.adService.GetAd(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdHandler) UpdateAd(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateAdRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.adService.UpdateAd(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdHandler) PauseAd(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.adService.PauseAd(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdHandler) ActivateAd(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.adService.ActivateAd(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdHandler) DeleteAd(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.adService.DeleteAd(c.Request.Context(), h.GetDB(c), userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
