// internal/models/request.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// DepositRequest is a pending external-rail top-up awaiting admin approval.
// pending -> approved | rejected, both terminal. Approval performs exactly
// one wallet credit and one ledger entry; rejection touches no balances.
type DepositRequest struct {
	BaseModel
	UserID        uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	Amount        int64         `json:"amount" gorm:"not null"`
	ExternalTxnID string        `json:"external_txn_id" gorm:"size:255;not null"`
	ProofURL      string        `json:"proof_url" gorm:"size:1024"`
	Status        RequestStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	RequestedByID *uuid.UUID    `json:"requested_by_id" gorm:"type:uuid"` // branch requesting on a customer's behalf
	ProcessedByID *uuid.UUID    `json:"processed_by_id" gorm:"type:uuid"`
	ProcessedAt   *time.Time    `json:"processed_at"`

	// Relationships
	User        User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	RequestedBy *User `json:"requested_by,omitempty" gorm:"foreignKey:RequestedByID"`
	ProcessedBy *User `json:"processed_by,omitempty" gorm:"foreignKey:ProcessedByID"`
}

// WithdrawalRequest mirrors DepositRequest for the outbound direction. The
// balance is re-checked at approval time, not just at request time.
type WithdrawalRequest struct {
	BaseModel
	UserID        uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	Amount        int64         `json:"amount" gorm:"not null"`
	BankDetails   string        `json:"bank_details" gorm:"type:text;not null"`
	Status        RequestStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	AdminNote     string        `json:"admin_note,omitempty" gorm:"type:text"`
	ProcessedByID *uuid.UUID    `json:"processed_by_id" gorm:"type:uuid"`
	ProcessedAt   *time.Time    `json:"processed_at"`

	// Relationships
	User        User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ProcessedBy *User `json:"processed_by,omitempty" gorm:"foreignKey:ProcessedByID"`
}
