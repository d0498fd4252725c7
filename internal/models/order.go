// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is one purchase. The price breakdown is derived once at creation
// from the commission config referenced by CommissionConfigID and never
// recomputed: FinalPricePaid = BaseRate + CompanyCommission +
// DistributorCommission + BranchCommission. A nil distributor and branch
// means a direct company sale.
type Order struct {
	BaseModel
	CustomerID            uuid.UUID   `json:"customer_id" gorm:"type:uuid;not null;index"`
	ProductID             uuid.UUID   `json:"product_id" gorm:"type:uuid;not null;index"`
	DistributorID         *uuid.UUID  `json:"distributor_id" gorm:"type:uuid;index"`
	BranchID              *uuid.UUID  `json:"branch_id" gorm:"type:uuid;index"`
	BaseRate              int64       `json:"base_rate" gorm:"not null"`
	CompanyCommission     int64       `json:"company_commission" gorm:"not null;default:0"`
	DistributorCommission int64       `json:"distributor_commission" gorm:"not null;default:0"`
	BranchCommission      int64       `json:"branch_commission" gorm:"not null;default:0"`
	FinalPricePaid        int64       `json:"final_price_paid" gorm:"not null"`
	Currency              string      `json:"currency" gorm:"size:3;default:'INR'"`
	Status                OrderStatus `json:"status" gorm:"type:varchar(20);default:'paid';index"`
	LoyaltyPointsEarned   int64       `json:"loyalty_points_earned" gorm:"default:0"`
	CommissionConfigID    uuid.UUID   `json:"commission_config_id" gorm:"type:uuid;not null"`
	PaymentMeta           JSONB       `json:"payment_meta" gorm:"type:jsonb"`
	TrackingNumber        string      `json:"tracking_number" gorm:"size:100"`
	ShippingAddress       JSONB       `json:"shipping_address" gorm:"type:jsonb"`
	EstimatedDelivery     *time.Time  `json:"estimated_delivery"`
	CancelReason          string      `json:"cancel_reason,omitempty" gorm:"type:text"`
	CancelledAt           *time.Time  `json:"cancelled_at"`
	DeliveredAt           *time.Time  `json:"delivered_at"`

	// Relationships
	Customer    User     `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Product     Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Distributor *User    `json:"distributor,omitempty" gorm:"foreignKey:DistributorID"`
	Branch      *User    `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
}
