// internal/services/wallet_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tiermart/tiermart-backend/internal/config"
	"github.com/tiermart/tiermart-backend/internal/models"
	"github.com/tiermart/tiermart-backend/internal/utils"
)

type WalletService struct {
	db     *gorm.DB
	config *config.Config
}

type WalletSnapshot struct {
	Balance       int64                `json:"balance"`
	Currency      string               `json:"currency"`
	LoyaltyPoints int64                `json:"loyalty_points"`
	Transactions  []models.LedgerEntry `json:"transactions"`
}

type WithdrawalRequestInput struct {
	Amount      int64  `json:"amount" validate:"required,min=1"`
	BankDetails string `json:"bank_details" validate:"required"`
}

type DepositRequestInput struct {
	Amount        int64      `json:"amount" validate:"required,min=1"`
	ExternalTxnID string     `json:"external_txn_id" validate:"required"`
	ProofURL      string     `json:"proof_url,omitempty"`
	UserID        *uuid.UUID `json:"user_id,omitempty"` // branch requesting on a customer's behalf
}

func NewWalletService(db *gorm.DB, cfg *config.Config) *WalletService {
	return &WalletService{db: db, config: cfg}
}

// Snapshot returns the wallet balance, loyalty points, and the 50 most
// recent ledger entries. The wallet is created lazily if the principal has
// never held one.
func (s *WalletService) Snapshot(userID uuid.UUID) (*WalletSnapshot, error) {
	var snapshot WalletSnapshot

	err := s.db.Transaction(func(tx *gorm.DB) error {
		wallet, err := getOrCreateWallet(tx, userID, s.config.Ledger.Currency)
		if err != nil {
			return err
		}

		var entries []models.LedgerEntry
		if err := tx.Where("user_id = ?", userID).
			Order("created_at DESC").
			Limit(50).
			Find(&entries).Error; err != nil {
			return fmt.Errorf("failed to fetch transactions: %w", err)
		}

		snapshot = WalletSnapshot{
			Balance:       wallet.Balance,
			Currency:      wallet.Currency,
			LoyaltyPoints: wallet.LoyaltyPoints,
			Transactions:  entries,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &snapshot, nil
}

// RequestWithdrawal files a pending withdrawal. The balance is checked here
// as a courtesy; the authoritative check happens again at approval time.
func (s *WalletService) RequestWithdrawal(userID uuid.UUID, input *WithdrawalRequestInput) (*models.WithdrawalRequest, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var wallet models.Wallet
	if err := s.db.Where("user_id = ?", userID).First(&wallet).Error; err != nil || wallet.Balance < input.Amount {
		return nil, ErrInsufficientBalance
	}

	request := &models.WithdrawalRequest{
		UserID:      userID,
		Amount:      input.Amount,
		BankDetails: input.BankDetails,
	}
	if err := s.db.Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to create withdrawal request: %w", err)
	}
	return request, nil
}

// ApproveWithdrawal moves a pending request to approved and debits the
// wallet, atomically. The pending->approved flip is a guarded update: a
// request that was already processed, in this call or a concurrent one,
// fails with ErrRequestAlreadyProcessed and performs no ledger mutation.
func (s *WalletService) ApproveWithdrawal(requestID, approverID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var request models.WithdrawalRequest
		if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("failed to load withdrawal request: %w", err)
		}

		now := time.Now()
		res := tx.Model(&models.WithdrawalRequest{}).
			Where("id = ? AND status = ?", requestID, models.RequestStatusPending).
			Updates(map[string]interface{}{
				"status":          models.RequestStatusApproved,
				"processed_by_id": approverID,
				"processed_at":    now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update withdrawal request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrRequestAlreadyProcessed
		}

		var wallet models.Wallet
		if err := tx.Where("user_id = ?", request.UserID).First(&wallet).Error; err != nil {
			return ErrInsufficientBalance
		}

		// Balance may have dropped since the request was filed.
		if _, err := debitWallet(tx, &wallet, request.Amount, models.EntryCategoryWithdrawal,
			"Withdrawal approved", request.ID.String(), nil, ErrInsufficientBalance); err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    request.UserID,
			"amount":     request.Amount,
		}).Info("Withdrawal approved")
		return nil
	})
}

// RejectWithdrawal moves a pending request to rejected. No ledger mutation.
func (s *WalletService) RejectWithdrawal(requestID, approverID uuid.UUID, note string) error {
	now := time.Now()
	res := s.db.Model(&models.WithdrawalRequest{}).
		Where("id = ? AND status = ?", requestID, models.RequestStatusPending).
		Updates(map[string]interface{}{
			"status":          models.RequestStatusRejected,
			"processed_by_id": approverID,
			"processed_at":    now,
			"admin_note":      note,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to reject withdrawal request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return s.requestMissingOrProcessed(&models.WithdrawalRequest{}, requestID)
	}
	return nil
}

// RequestDeposit files a pending top-up against an external payment. A
// branch may file on a customer's behalf by passing the customer's id.
func (s *WalletService) RequestDeposit(requesterID uuid.UUID, input *DepositRequestInput) (*models.DepositRequest, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	targetID := requesterID
	if input.UserID != nil {
		targetID = *input.UserID
	}

	requestedBy := requesterID
	request := &models.DepositRequest{
		UserID:        targetID,
		Amount:        input.Amount,
		ExternalTxnID: input.ExternalTxnID,
		ProofURL:      input.ProofURL,
		RequestedByID: &requestedBy,
	}
	if err := s.db.Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to create deposit request: %w", err)
	}
	return request, nil
}

// ApproveDeposit credits the requesting user's wallet and marks the request
// approved, atomically, with the same double-processing guard as
// withdrawals.
func (s *WalletService) ApproveDeposit(requestID, approverID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var request models.DepositRequest
		if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("failed to load deposit request: %w", err)
		}

		now := time.Now()
		res := tx.Model(&models.DepositRequest{}).
			Where("id = ? AND status = ?", requestID, models.RequestStatusPending).
			Updates(map[string]interface{}{
				"status":          models.RequestStatusApproved,
				"processed_by_id": approverID,
				"processed_at":    now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update deposit request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrRequestAlreadyProcessed
		}

		wallet, err := getOrCreateWallet(tx, request.UserID, s.config.Ledger.Currency)
		if err != nil {
			return err
		}

		if _, err := creditWallet(tx, wallet, request.Amount, models.EntryCategoryDeposit,
			"Deposit approved", request.ID.String(),
			models.JSONB{"external_txn_id": request.ExternalTxnID}); err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    request.UserID,
			"amount":     request.Amount,
		}).Info("Deposit approved")
		return nil
	})
}

// RejectDeposit moves a pending request to rejected. No ledger mutation.
func (s *WalletService) RejectDeposit(requestID, approverID uuid.UUID) error {
	now := time.Now()
	res := s.db.Model(&models.DepositRequest{}).
		Where("id = ? AND status = ?", requestID, models.RequestStatusPending).
		Updates(map[string]interface{}{
			"status":          models.RequestStatusRejected,
			"processed_by_id": approverID,
			"processed_at":    now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to reject deposit request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return s.requestMissingOrProcessed(&models.DepositRequest{}, requestID)
	}
	return nil
}

// requestMissingOrProcessed distinguishes a missing request from one that
// already left the pending state.
func (s *WalletService) requestMissingOrProcessed(model interface{}, requestID uuid.UUID) error {
	var count int64
	s.db.Model(model).Where("id = ?", requestID).Count(&count)
	if count == 0 {
		return ErrRequestNotFound
	}
	return ErrRequestAlreadyProcessed
}

// ListWithdrawals returns the acting user's requests, or all requests for
// admins.
func (s *WalletService) ListWithdrawals(acting *models.User) ([]models.WithdrawalRequest, error) {
	query := s.db.Preload("User").Order("created_at DESC")
	if acting.Role != models.UserRoleAdmin {
		query = query.Where("user_id = ?", acting.ID)
	}

	var requests []models.WithdrawalRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list withdrawal requests: %w", err)
	}
	return requests, nil
}

// ListPendingDeposits returns the admin approval queue.
func (s *WalletService) ListPendingDeposits() ([]models.DepositRequest, error) {
	var requests []models.DepositRequest
	if err := s.db.Where("status = ?", models.RequestStatusPending).
		Preload("User").Preload("RequestedBy").
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list deposit requests: %w", err)
	}
	return requests, nil
}
