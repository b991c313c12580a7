package handlers

import (
	"context"
	"net/http"

	"cargomarket_backend/internal/middleware"
	"cargomarket_backend/internal/services"
	"cargomarket_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type OfferHandler struct {
	*BaseHandler
	offerService services.OfferService
}

func NewOfferHandler(base *BaseHandler, offerService services.OfferService) *OfferHandler {
	return &OfferHandler{
		BaseHandler:  base,
		offerService: offerService,
	}
}

func (h *OfferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	offers := rg.Group("/offers")
	offers.Use(middleware.AuthMiddleware())
	{
		offers.POST("", h.CreateOffer)
		offers.GET("/mine", h.MyOffers)
		offers.GET("/:id", h.GetOffer)
		offers.PUT("/:id", h.UpdateOffer)
		offers.GET("/:id/history", h.GetOfferHistory)

		// Переходы статуса
		offers.POST("/:id/accept", h.action(h.offerService.AcceptOffer))
		offers.POST("/:id/reject", h.action(h.offerService.RejectOffer))
		offers.POST("/:id/counter", h.CounterOffer)
		offers.POST("/:id/accept-counter", h.action(h.offerService.AcceptCounter))
		offers.POST("/:id/withdraw", h.action(h.offerService.WithdrawOffer))
	}
}

func (h *OfferHandler) CreateOffer(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateOfferRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.offerService.CreateOffer(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *OfferHandler) GetOffer(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.offerService.GetOffer(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OfferHandler) MyOffers(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.OfferListRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	resp, err := h.offerService.MyOffers(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OfferHandler) UpdateOffer(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateOfferRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.offerService.UpdateOffer(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OfferHandler) GetOfferHistory(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.offerService.GetOfferHistory(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": resp})
}

func (h *OfferHandler) CounterOffer(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CounterOfferRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.offerService.CounterOffer(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type offerActionFunc func(ctx context.Context, db *gorm.DB, userID, offerID string, req *dto.OfferActionRequest) (*dto.OfferResponse, error)

// action - общий хендлер для переходов с необязательным комментарием
func (h *OfferHandler) action(fn offerActionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := h.GetAndAuthorizeUserID(c)
		if !ok {
			return
		}

		var req dto.OfferActionRequest
		if !h.BindOptional_JSON(c, &req) {
			return
		}

		resp, err := fn(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), &req)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
