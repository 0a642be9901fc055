package handler

import (
	"errors"
	"net/http"
	"reflect"

	"shopkeep/internal/apierror"
	"shopkeep/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondServiceError maps business-rule sentinels to HTTP statuses. Wrapped
// errors (per-line sale failures) still match via errors.Is and keep their
// line-number prefix in the response body. Anything unrecognized is treated
// as an infrastructure failure and surfaces as an opaque 500.
func respondServiceError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrListingNotFound),
		errors.Is(err, service.ErrSaleNotFound),
		errors.Is(err, service.ErrDebtNotFound),
		errors.Is(err, service.ErrStoreNotFound),
		errors.Is(err, service.ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrSaleAlreadyUndone),
		errors.Is(err, service.ErrBarcodeTaken):
		status = http.StatusConflict
	case errors.Is(err, service.ErrListingInactive),
		errors.Is(err, service.ErrListingWrongStore),
		errors.Is(err, service.ErrPriceOutOfRange),
		errors.Is(err, service.ErrInvalidPriceBand),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidDueDate),
		errors.Is(err, service.ErrWorkerNeedsStore):
		status = http.StatusBadRequest
	default:
		c.JSON(http.StatusInternalServerError, apierror.New("Internal server error"))
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return uuid.Nil, false
	}
	return id, true
}
