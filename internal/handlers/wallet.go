// internal/handlers/wallet.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tiermart/tiermart-backend/internal/services"
	"github.com/tiermart/tiermart-backend/internal/utils"
)

type WalletHandler struct {
	walletService *services.WalletService
	topUpService  *services.TopUpService
	authService   *services.AuthService
}

func NewWalletHandler(walletService *services.WalletService, topUpService *services.TopUpService, authService *services.AuthService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		topUpService:  topUpService,
		authService:   authService,
	}
}

// GET /wallet
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	snapshot, err := h.walletService.Snapshot(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, snapshot)
}

// POST /wallet/topup
func (h *WalletHandler) CreateTopUp(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateTopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	intent, err := h.topUpService.CreateIntent(userID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, intent)
}

// POST /wallet/withdrawals
func (h *WalletHandler) RequestWithdrawal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var input services.WithdrawalRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	request, err := h.walletService.RequestWithdrawal(userID, &input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, request)
}

// GET /wallet/withdrawals
func (h *WalletHandler) ListWithdrawals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	acting, err := h.authService.GetUserByID(userID)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	requests, err := h.walletService.ListWithdrawals(acting)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, requests)
}

// POST /admin/withdrawals/:id/approve
func (h *WalletHandler) ApproveWithdrawal(c *gin.Context) {
	h.processRequest(c, h.walletService.ApproveWithdrawal)
}

// POST /admin/withdrawals/:id/reject
func (h *WalletHandler) RejectWithdrawal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID", nil)
		return
	}

	var req struct {
		Note string `json:"note,omitempty"`
	}
	c.ShouldBindJSON(&req)

	if err := h.walletService.RejectWithdrawal(requestID, userID, req.Note); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"status": "rejected"})
}

// POST /wallet/deposits
func (h *WalletHandler) RequestDeposit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var input services.DepositRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	request, err := h.walletService.RequestDeposit(userID, &input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, request)
}

// GET /admin/deposits
func (h *WalletHandler) ListPendingDeposits(c *gin.Context) {
	requests, err := h.walletService.ListPendingDeposits()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, requests)
}

// POST /admin/deposits/:id/approve
func (h *WalletHandler) ApproveDeposit(c *gin.Context) {
	h.processRequest(c, h.walletService.ApproveDeposit)
}

// POST /admin/deposits/:id/reject
func (h *WalletHandler) RejectDeposit(c *gin.Context) {
	h.processRequest(c, h.walletService.RejectDeposit)
}

func (h *WalletHandler) processRequest(c *gin.Context, action func(requestID, approverID uuid.UUID) error) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID", nil)
		return
	}

	if err := action(requestID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"status": "processed"})
}
