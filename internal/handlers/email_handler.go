package handlers

import (
	"net/http"

	"cargomarket_backend/internal/middleware"
	"cargomarket_backend/internal/services"
	"cargomarket_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// EmailHandler - функция отправки писем (/functions/send-email)
type EmailHandler struct {
	*BaseHandler
	emailService *services.EmailService
}

func NewEmailHandler(base *BaseHandler, emailService *services.EmailService) *EmailHandler {
	return &EmailHandler{
		BaseHandler:  base,
		emailService: emailService,
	}
}

func (h *EmailHandler) RegisterRoutes(rg *gin.RouterGroup) {
	functions := rg.Group("/functions")
	functions.Use(middleware.AuthMiddleware())
	{
		functions.POST("/send-email", h.SendEmail)
	}
}

func (h *EmailHandler) SendEmail(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SendEmailRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.emailService.Send(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
