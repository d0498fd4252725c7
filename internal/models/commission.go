// internal/models/commission.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// CommissionTier is an optional volume bonus rung. Tiers are stored with the
// policy for audit purposes; the pricing engine itself applies the flat
// shares only.
type CommissionTier struct {
	MinCustomers int     `json:"min_customers"`
	MinSales     int64   `json:"min_sales"`
	BonusRate    float64 `json:"bonus_rate"`
}

type CommissionTiers []CommissionTier

func (t CommissionTiers) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *CommissionTiers) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, t)
}

// CommissionConfig is a versioned commission policy. At most one config is
// active at a time; a partial unique index on active=true enforces the
// invariant at the store, and activation flips the previous config off in
// the same transaction. Orders keep the id of the config that priced them,
// so a superseded config is deactivated rather than edited or deleted.
type CommissionConfig struct {
	BaseModel
	CompanyShare      float64         `json:"company_share" gorm:"not null;default:0.05"`
	DistributorShare  float64         `json:"distributor_share" gorm:"not null;default:0.03"`
	BranchShare       float64         `json:"branch_share" gorm:"not null;default:0.02"`
	CustomerPointRate float64         `json:"customer_point_rate" gorm:"not null;default:0.01"`
	Tiers             CommissionTiers `json:"tiers" gorm:"type:jsonb"`
	Active            bool            `json:"active" gorm:"default:false;index"`
	EffectiveFrom     time.Time       `json:"effective_from"`
	Note              string          `json:"note" gorm:"type:text"`
}
