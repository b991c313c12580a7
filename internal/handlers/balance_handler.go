package handlers

import (
	"net/http"

	"cargomarket_backend/internal/middleware"
	"cargomarket_backend/internal/services"
	"cargomarket_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type BalanceHandler struct {
	*BaseHandler
	balanceService services.BalanceService
}

func NewBalanceHandler(base *BaseHandler, balanceService services.BalanceService) *BalanceHandler {
	return &BalanceHandler{
		BaseHandler:    base,
		balanceService: balanceService,
	}
}

func (h *BalanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	balance := rg.Group("/balance")
	balance.Use(middleware.AuthMiddleware())
	{
		balance.GET("", h.GetBalance)
		balance.POST("/top-up", h.TopUp)
		balance.GET("/transactions", h.ListTransactions)
	}
}

func (h *BalanceHandler) GetBalance(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.balanceService.GetBalance(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BalanceHandler) TopUp(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.TopUpRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.balanceService.TopUp(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BalanceHandler) ListTransactions(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	resp, err := h.balanceService.ListTransactions(c.Request.Context(), h.GetDB(c), userID, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
