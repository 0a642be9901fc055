package handler

import (
	"net/http"

	"shopkeep/internal/apierror"
	"shopkeep/internal/dto"
	"shopkeep/internal/middleware"
	"shopkeep/internal/service"

	"github.com/gin-gonic/gin"
)

type DebtsHandler struct{ svc service.DebtService }

func NewDebtsHandler(svc service.DebtService) *DebtsHandler { return &DebtsHandler{svc: svc} }

// Create godoc
// @Summary      Record a customer debt
// @Tags         debts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateDebtRequest true "Debt details"
// @Success      201  {object} dto.DebtResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/debts [post]
func (h *DebtsHandler) Create(c *gin.Context) {
	var req dto.CreateDebtRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	if claims.Role == "worker" && claims.StoreID != nil {
		req.StoreID = *claims.StoreID
	}
	resp, err := h.svc.CreateDebt(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List debts
// @Description  Runs the overdue sweep first, so classifications are always current. Workers only see their own store.
// @Tags         debts
// @Produce      json
// @Security     BearerAuth
// @Param        store_id query string false "Store UUID (admins only)"
// @Param        status   query string false "upcoming | overdue | paid | all"
// @Param        page     query int    false "Page (default 1)"
// @Param        limit    query int    false "Per page (default 50)"
// @Success      200 {object} dto.DebtListResponse
// @Router       /v1/debts [get]
func (h *DebtsHandler) List(c *gin.Context) {
	var filter dto.DebtFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	claims := middleware.GetClaims(c)
	if claims.Role == "worker" && claims.StoreID != nil {
		filter.StoreID = *claims.StoreID
	}
	resp, err := h.svc.ListDebts(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list debts"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a debt
// @Tags         debts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Debt UUID"
// @Success      200 {object} dto.DebtResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/debts/{id} [get]
func (h *DebtsHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetDebt(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordPayment godoc
// @Summary      Record a payment against a debt
// @Description  Adds to the paid amount atomically; the debt flips to paid once the total is covered.
// @Tags         debts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "Debt UUID"
// @Param        body body dto.RecordPaymentRequest true "Payment amount"
// @Success      200  {object} dto.DebtResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/debts/{id}/payments [post]
func (h *DebtsHandler) RecordPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req dto.RecordPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordPayment(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete a debt
// @Description  Hard delete, admin only. Used for entry mistakes, not for settling.
// @Tags         debts
// @Security     BearerAuth
// @Param        id path string true "Debt UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/debts/{id} [delete]
func (h *DebtsHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteDebt(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
