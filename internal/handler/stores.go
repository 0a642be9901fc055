package handler

import (
	"net/http"

	"shopkeep/internal/apierror"
	"shopkeep/internal/dto"
	"shopkeep/internal/service"

	"github.com/gin-gonic/gin"
)

type StoresHandler struct{ svc service.StoreService }

func NewStoresHandler(svc service.StoreService) *StoresHandler { return &StoresHandler{svc: svc} }

// Create godoc
// @Summary      Open a new store
// @Tags         stores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateStoreRequest true "Store details"
// @Success      201  {object} dto.StoreResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/stores [post]
func (h *StoresHandler) Create(c *gin.Context) {
	var req dto.CreateStoreRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateStore(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List active stores
// @Tags         stores
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.StoreResponse
// @Router       /v1/stores [get]
func (h *StoresHandler) List(c *gin.Context) {
	resp, err := h.svc.ListStores(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list stores"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a store
// @Tags         stores
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Store UUID"
// @Success      200 {object} dto.StoreResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/stores/{id} [get]
func (h *StoresHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetStore(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Update a store
// @Tags         stores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true "Store UUID"
// @Param        body body dto.UpdateStoreRequest true "Fields to change"
// @Success      200  {object} dto.StoreResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/stores/{id} [put]
func (h *StoresHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req dto.UpdateStoreRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateStore(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deactivate godoc
// @Summary      Close a store
// @Description  Deactivates the store and every listing it carries. History stays intact.
// @Tags         stores
// @Security     BearerAuth
// @Param        id path string true "Store UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/stores/{id} [delete]
func (h *StoresHandler) Deactivate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeactivateStore(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
