// internal/handlers/upload.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tiermart/tiermart-backend/internal/services"
	"github.com/tiermart/tiermart-backend/internal/utils"
)

type UploadHandler struct {
	storageService *services.StorageService
}

func NewUploadHandler(storageService *services.StorageService) *UploadHandler {
	return &UploadHandler{
		storageService: storageService,
	}
}

// POST /admin/products/images
func (h *UploadHandler) UploadProductImage(c *gin.Context) {
	h.upload(c, "products")
}

// POST /wallet/deposits/proof
//
// Deposit proofs are private; admins review them through presigned URLs.
func (h *UploadHandler) UploadDepositProof(c *gin.Context) {
	h.upload(c, "deposit_proofs")
}

func (h *UploadHandler) upload(c *gin.Context, category string) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "File is required", nil)
		return
	}
	defer file.Close()

	options := h.storageService.GetDefaultUploadOptions(category)
	result, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, result)
}

// GET /admin/deposits/proof-url?key=...
func (h *UploadHandler) GetDepositProofURL(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		utils.BadRequestResponse(c, "key is required", nil)
		return
	}

	url, err := h.storageService.GeneratePresignedURL(key, 15*time.Minute)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"url": url})
}
