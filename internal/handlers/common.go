// internal/handlers/common.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tiermart/tiermart-backend/internal/services"
	"github.com/tiermart/tiermart-backend/internal/utils"
)

// respondServiceError translates service sentinel errors into HTTP statuses.
// Anything unrecognized is a 500; the message is still passed through because
// the API is consumed by trusted storefront clients, not the public internet.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInsufficientFunds),
		errors.Is(err, services.ErrInsufficientBalance):
		utils.PaymentRequiredResponse(c, err.Error())

	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, "Product")
	case errors.Is(err, services.ErrOrderNotFound):
		utils.NotFoundResponse(c, "Order")
	case errors.Is(err, services.ErrRequestNotFound):
		utils.NotFoundResponse(c, "Request")
	case errors.Is(err, services.ErrCustomerNotFound):
		utils.NotFoundResponse(c, "Customer")

	case errors.Is(err, services.ErrNotAuthorized):
		utils.ForbiddenResponse(c, "")

	case errors.Is(err, services.ErrInvalidSignature):
		utils.UnauthorizedResponse(c, "Invalid webhook signature")

	case errors.Is(err, services.ErrRequestAlreadyProcessed),
		errors.Is(err, services.ErrInvalidStateForCancellation),
		errors.Is(err, services.ErrProductUnavailable),
		errors.Is(err, services.ErrConfigInUse):
		utils.ConflictResponse(c, err.Error())

	case errors.Is(err, services.ErrConfigurationMissing):
		utils.ErrorResponse(c, http.StatusServiceUnavailable,
			"COMMISSION_CONFIG_MISSING", err.Error(), nil)

	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrProductNotPriced),
		errors.Is(err, services.ErrMissingBuyerReference):
		utils.BadRequestResponse(c, err.Error(), nil)

	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}
