package handler

import (
	"net/http"

	"shopkeep/internal/apierror"
	"shopkeep/internal/dto"
	"shopkeep/internal/middleware"
	"shopkeep/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// Submit godoc
// @Summary      Submit a sale
// @Description  Commits a multi-line sale atomically: stock decremented, prices validated against each listing's band, cost snapshots frozen. All lines succeed or none do.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.SubmitSaleRequest true "Sale lines"
// @Success      201  {object} dto.SaleResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/sales [post]
func (h *SalesHandler) Submit(c *gin.Context) {
	var req dto.SubmitSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	workerID, _ := uuid.Parse(claims.UserID)

	// Workers always sell against their pinned store; admins pick one.
	var storeID uuid.UUID
	if claims.Role == "worker" {
		if claims.StoreID == nil {
			c.JSON(http.StatusForbidden, apierror.New("Account has no store assignment"))
			return
		}
		storeID, _ = uuid.Parse(*claims.StoreID)
	} else {
		if req.StoreID == "" {
			c.JSON(http.StatusBadRequest, apierror.New("store_id is required for admin sales"))
			return
		}
		var err error
		storeID, err = uuid.Parse(req.StoreID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid store_id"))
			return
		}
	}

	resp, err := h.svc.SubmitSale(c.Request.Context(), storeID, workerID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Undo godoc
// @Summary      Undo a sale
// @Description  Restores the stock of every line and flips the sale to undone. The sale record and its snapshots survive for auditing. Admin only.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string              true "Sale UUID"
// @Param        body body dto.UndoSaleRequest true "Reason"
// @Success      204
// @Failure      409  {object} apierror.APIError
// @Router       /v1/sales/{id} [delete]
func (h *SalesHandler) Undo(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req dto.UndoSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	adminID, _ := uuid.Parse(claims.UserID)

	if err := h.svc.UndoSale(c.Request.Context(), id, adminID, req.Reason); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List godoc
// @Summary      List sales
// @Description  Paginated sales filtered by date (default today) and status. Workers only see their own store.
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        store_id query string false "Store UUID (admins only)"
// @Param        date     query string false "YYYY-MM-DD (default today)"
// @Param        status   query string false "active | undone | all"
// @Param        page     query int    false "Page (default 1)"
// @Param        limit    query int    false "Per page (default 50)"
// @Success      200 {object} dto.SaleListResponse
// @Router       /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	claims := middleware.GetClaims(c)
	if claims.Role == "worker" && claims.StoreID != nil {
		filter.StoreID = *claims.StoreID
	}
	resp, err := h.svc.ListSales(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list sales"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id} [get]
func (h *SalesHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetSale(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Receipt godoc
// @Summary      Sale receipt PDF
// @Tags         sales
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {file} binary
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id}/receipt [get]
func (h *SalesHandler) Receipt(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	pdf, err := h.svc.ReceiptPDF(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", "inline; filename=receipt_"+id.String()[:8]+".pdf")
	c.Data(http.StatusOK, "application/pdf", pdf)
}
