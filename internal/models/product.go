// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product carries a base price in minor currency units. The pricing engine
// refuses to sell a product whose base price is unset.
type Product struct {
	BaseModel
	Name              string         `json:"name" gorm:"size:255;not null;index"`
	Description       string         `json:"description" gorm:"type:text"`
	SKU               string         `json:"sku" gorm:"size:100;index"`
	BasePrice         int64          `json:"base_price" gorm:"not null;default:0"`
	Stock             int            `json:"stock" gorm:"default:0"`
	LowStockThreshold int            `json:"low_stock_threshold" gorm:"default:10"`
	Active            bool           `json:"active" gorm:"default:true;index"`
	Category          string         `json:"category" gorm:"size:100;index"`
	Tags              pq.StringArray `json:"tags" gorm:"type:text[]"`
	Images            pq.StringArray `json:"images" gorm:"type:text[]"`
	Attributes        JSONB          `json:"attributes" gorm:"type:jsonb"`
	CreatedByID       *uuid.UUID     `json:"created_by_id" gorm:"type:uuid;index"`

	// Relationships
	CreatedBy *User `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
}
