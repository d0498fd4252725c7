// internal/models/wallet.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Wallet is the stored-value balance per principal and the only payment
// instrument for purchases. Balances are integer minor currency units
// (paise); the check constraint backs the engine's guarded debits so a
// committed transaction can never leave the balance negative.
type Wallet struct {
	BaseModel
	UserID        uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	Balance       int64     `json:"balance" gorm:"not null;default:0;check:balance >= 0"`
	LoyaltyPoints int64     `json:"loyalty_points" gorm:"not null;default:0"`
	Currency      string    `json:"currency" gorm:"size:3;default:'INR'"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// LedgerEntry is the immutable record of a single signed balance movement.
// Entries are only written by the purchase orchestrator, the webhook
// reconciler, and the approval workflow; they are never updated or deleted.
// Replaying a wallet's entries in order reproduces its stored balance.
type LedgerEntry struct {
	BaseModel
	WalletID      uuid.UUID     `json:"wallet_id" gorm:"type:uuid;not null;index"`
	UserID        uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	Amount        int64         `json:"amount" gorm:"not null"`
	Type          EntryType     `json:"type" gorm:"type:varchar(10);not null"`
	Category      EntryCategory `json:"category" gorm:"type:varchar(20);not null;index"`
	Description   string        `json:"description" gorm:"size:255;not null"`
	ReferenceID   string        `json:"reference_id" gorm:"size:255;index"`
	BalanceBefore int64         `json:"balance_before"`
	BalanceAfter  int64         `json:"balance_after"`
	Meta          JSONB         `json:"meta" gorm:"type:jsonb"`

	// Relationships
	Wallet Wallet `json:"wallet,omitempty" gorm:"foreignKey:WalletID"`
	User   User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// CommissionLedger records one beneficiary's payout for one sale, next to the
// wallet credit it accompanies. Append-only.
type CommissionLedger struct {
	BaseModel
	UserID        uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	LedgerEntryID uuid.UUID  `json:"ledger_entry_id" gorm:"type:uuid;not null;index"`
	OrderID       *uuid.UUID `json:"order_id" gorm:"type:uuid;index"`
	Amount        int64      `json:"amount" gorm:"not null"`
	Percentage    float64    `json:"percentage" gorm:"not null"`
	EarnedAt      time.Time  `json:"earned_at"`

	// Relationships
	User        User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	LedgerEntry LedgerEntry `json:"ledger_entry,omitempty" gorm:"foreignKey:LedgerEntryID"`
}
