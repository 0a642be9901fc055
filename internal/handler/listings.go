package handler

import (
	"net/http"
	"strconv"

	"shopkeep/internal/apierror"
	"shopkeep/internal/dto"
	"shopkeep/internal/service"

	"github.com/gin-gonic/gin"
)

type ListingsHandler struct{ svc service.InventoryService }

func NewListingsHandler(svc service.InventoryService) *ListingsHandler {
	return &ListingsHandler{svc: svc}
}

// List godoc
// @Summary      List listings
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Param        store_id query string false "Filter by store"
// @Param        active   query string false "false | all (default active only)"
// @Param        page     query int    false "Page (default 1)"
// @Param        limit    query int    false "Per page (default 50)"
// @Success      200 {object} dto.ListingListResponse
// @Router       /v1/listings [get]
func (h *ListingsHandler) List(c *gin.Context) {
	var filter dto.ListingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list listings"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a listing
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Listing UUID"
// @Success      200 {object} dto.ListingResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/listings/{id} [get]
func (h *ListingsHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetListing(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Upsert godoc
// @Summary      Create or update a store listing
// @Description  Pairs a product template with a store, setting stock, cost and the sell-price band.
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.UpsertListingRequest true "Listing details"
// @Success      200  {object} dto.ListingResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/listings [put]
func (h *ListingsHandler) Upsert(c *gin.Context) {
	var req dto.UpsertListingRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpsertListing(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AdjustStock godoc
// @Summary      Manual stock correction
// @Description  Applies a signed delta with a mandatory reason. Stock never goes below zero.
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true "Listing UUID"
// @Param        body body dto.AdjustStockRequest true "Delta and reason"
// @Success      200  {object} dto.ListingResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/listings/{id}/adjust [post]
func (h *ListingsHandler) AdjustStock(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movements godoc
// @Summary      Stock movement history for a listing
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string true  "Listing UUID"
// @Param        limit query int    false "Max entries (default 50)"
// @Success      200 {array} dto.MovementResponse
// @Router       /v1/listings/{id}/movements [get]
func (h *ListingsHandler) Movements(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list movements"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
