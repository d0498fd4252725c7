// internal/services/ledger.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiermart/tiermart-backend/internal/models"
)

// Ledger primitives shared by the purchase orchestrator, the webhook
// reconciler, and the approval workflow. Every balance mutation goes through
// a guarded single-statement update and appends a LedgerEntry carrying the
// balance snapshot, inside whatever transaction the caller opened.

// getOrCreateWallet loads the principal's wallet, creating it with a zero
// balance on first need. Wallets are never deleted.
func getOrCreateWallet(tx *gorm.DB, userID uuid.UUID, currency string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := tx.Where("user_id = ?", userID).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}

	wallet = models.Wallet{
		UserID:   userID,
		Balance:  0,
		Currency: currency,
	}
	if err := tx.Create(&wallet).Error; err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	return &wallet, nil
}

// debitWallet subtracts amount from the wallet and appends the debit entry.
// The update is guarded on the current balance, so two concurrent debits
// against the same wallet cannot both pass a stale sufficient-funds check:
// the second one finds the guard false and fails with insufficientErr.
func debitWallet(tx *gorm.DB, wallet *models.Wallet, amount int64, category models.EntryCategory,
	description, referenceID string, meta models.JSONB, insufficientErr error) (*models.LedgerEntry, error) {

	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	res := tx.Model(&models.Wallet{}).
		Where("id = ? AND balance >= ?", wallet.ID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to debit wallet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, insufficientErr
	}

	if err := tx.First(wallet, "id = ?", wallet.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload wallet: %w", err)
	}

	entry := &models.LedgerEntry{
		WalletID:      wallet.ID,
		UserID:        wallet.UserID,
		Amount:        amount,
		Type:          models.EntryTypeDebit,
		Category:      category,
		Description:   description,
		ReferenceID:   referenceID,
		BalanceBefore: wallet.Balance + amount,
		BalanceAfter:  wallet.Balance,
		Meta:          meta,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to record debit entry: %w", err)
	}
	return entry, nil
}

// creditWallet adds amount to the wallet and appends the credit entry.
func creditWallet(tx *gorm.DB, wallet *models.Wallet, amount int64, category models.EntryCategory,
	description, referenceID string, meta models.JSONB) (*models.LedgerEntry, error) {

	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	res := tx.Model(&models.Wallet{}).
		Where("id = ?", wallet.ID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to credit wallet: %w", res.Error)
	}

	if err := tx.First(wallet, "id = ?", wallet.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload wallet: %w", err)
	}

	entry := &models.LedgerEntry{
		WalletID:      wallet.ID,
		UserID:        wallet.UserID,
		Amount:        amount,
		Type:          models.EntryTypeCredit,
		Category:      category,
		Description:   description,
		ReferenceID:   referenceID,
		BalanceBefore: wallet.Balance - amount,
		BalanceAfter:  wallet.Balance,
		Meta:          meta,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to record credit entry: %w", err)
	}
	return entry, nil
}
