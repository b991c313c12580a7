package handlers

import (
	"net/http"

	"cargomarket_backend/internal/middleware"
	"cargomarket_backend/internal/services"
	"cargomarket_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	*BaseHandler
	listingService services.ListingService
	offerService   services.OfferService
}

func NewListingHandler(base *BaseHandler, listingService services.ListingService, offerService services.OfferService) *ListingHandler {
	return &ListingHandler{
		BaseHandler:    base,
		listingService: listingService,
		offerService:   offerService,
	}
}

func (h *ListingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	listings := rg.Group("/listings")
	{
		listings.GET("", h.SearchListings)
		listings.GET("/:id", middleware.OptionalAuthMiddleware(), h.GetListing)

		protected := listings.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("", h.CreateListing)
			protected.GET("/mine", h.MyListings)
			protected.PUT("/:id", h.UpdateListing)
			protected.PATCH("/:id/status", h.ChangeListingStatus)
			protected.DELETE("/:id", h.DeleteListing)
			protected.GET("/:id/offers", h.ListListingOffers)
		}
	}
}

func (h *ListingHandler) CreateListing(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateListingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.listingService.CreateListing(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ListingHandler) GetListing(c *gin.Context) {
	resp, err := h.listingService.GetListing(c.Request.Context(), h.GetDB(c), h.OptionalUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) SearchListings(c *gin.Context) {
	var req dto.ListingSearchRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	resp, err := h.listingService.SearchListings(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) MyListings(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	resp, err := h.listingService.MyListings(c.Request.Context(), h.GetDB(c), userID, c.Query("status"), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) UpdateListing(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateListingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.listingService.UpdateListing(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) ChangeListingStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ChangeListingStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.listingService.ChangeListingStatus(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) DeleteListing(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.listingService.DeleteListing(c.Request.Context(), h.GetDB(c), userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ListingHandler) ListListingOffers(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.OfferListRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	resp, err := h.offerService.ListListingOffers(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
