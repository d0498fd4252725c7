// internal/handlers/commission.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tiermart/tiermart-backend/internal/services"
	"github.com/tiermart/tiermart-backend/internal/utils"
)

type CommissionHandler struct {
	commissionService *services.CommissionService
}

func NewCommissionHandler(commissionService *services.CommissionService) *CommissionHandler {
	return &CommissionHandler{
		commissionService: commissionService,
	}
}

// GET /admin/commission-configs
func (h *CommissionHandler) List(c *gin.Context) {
	configs, err := h.commissionService.List()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, configs)
}

// GET /admin/commission-configs/active
func (h *CommissionHandler) GetActive(c *gin.Context) {
	cfg, err := h.commissionService.ActiveConfig()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, cfg)
}

// POST /admin/commission-configs
func (h *CommissionHandler) Create(c *gin.Context) {
	var req services.CreateCommissionConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	cfg, err := h.commissionService.Create(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, cfg)
}

// POST /admin/commission-configs/:id/activate
func (h *CommissionHandler) Activate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid config ID", nil)
		return
	}

	cfg, err := h.commissionService.Activate(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, cfg)
}

// DELETE /admin/commission-configs/:id
func (h *CommissionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid config ID", nil)
		return
	}

	if err := h.commissionService.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"status": "deleted"})
}
