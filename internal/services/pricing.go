// internal/services/pricing.go
package services

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiermart/tiermart-backend/internal/models"
)

// PriceBreakdown is the derived price of one sale, all amounts in minor
// currency units. FinalPrice = BaseRate + the commissions that apply to the
// buyer's position in the hierarchy.
type PriceBreakdown struct {
	BaseRate              int64       `json:"base_rate"`
	CompanyCommission     int64       `json:"company_commission"`
	DistributorCommission int64       `json:"distributor_commission"`
	BranchCommission      int64       `json:"branch_commission"`
	FinalPrice            int64       `json:"final_price"`
	CommissionConfigID    uuid.UUID   `json:"commission_config_id"`
	Attribution           Attribution `json:"attribution"`
}

// ComputePrice derives the breakdown from a product's base rate, the buyer's
// resolved attribution, and the active commission policy. Pure computation;
// no side effects. The company share always applies; distributor and branch
// shares apply only when the corresponding tier was resolved. Each component
// is rounded half-to-even independently before summing, so repeated small
// sales cannot accumulate float drift.
func ComputePrice(product *models.Product, attr Attribution, cfg *models.CommissionConfig) (PriceBreakdown, error) {
	if product.BasePrice <= 0 {
		return PriceBreakdown{}, ErrProductNotPriced
	}

	base := decimal.NewFromInt(product.BasePrice)

	company := base.Mul(decimal.NewFromFloat(cfg.CompanyShare)).RoundBank(0).IntPart()

	var distributor, branch int64
	if attr.DistributorID != nil {
		distributor = base.Mul(decimal.NewFromFloat(cfg.DistributorShare)).RoundBank(0).IntPart()
	}
	if attr.BranchID != nil {
		branch = base.Mul(decimal.NewFromFloat(cfg.BranchShare)).RoundBank(0).IntPart()
	}

	return PriceBreakdown{
		BaseRate:              product.BasePrice,
		CompanyCommission:     company,
		DistributorCommission: distributor,
		BranchCommission:      branch,
		FinalPrice:            product.BasePrice + company + distributor + branch,
		CommissionConfigID:    cfg.ID,
		Attribution:           attr,
	}, nil
}

// LoyaltyPoints converts a final price into earned points: whole points per
// major currency unit spent, floored.
func LoyaltyPoints(finalPrice int64, pointRate float64) int64 {
	if pointRate <= 0 || finalPrice <= 0 {
		return 0
	}
	return decimal.NewFromInt(finalPrice).
		Div(decimal.NewFromInt(100)).
		Mul(decimal.NewFromFloat(pointRate)).
		Floor().
		IntPart()
}
