// internal/services/pricing_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/tiermart/tiermart-backend/internal/models"
)

func fullAttribution() Attribution {
	branchID := uuid.New()
	distributorID := uuid.New()
	return Attribution{BranchID: &branchID, DistributorID: &distributorID}
}

func standardConfig() *models.CommissionConfig {
	return &models.CommissionConfig{
		CompanyShare:      0.05,
		DistributorShare:  0.03,
		BranchShare:       0.02,
		CustomerPointRate: 0.01,
	}
}

func TestComputePriceFullChain(t *testing.T) {
	product := &models.Product{BasePrice: 10000}

	price, err := ComputePrice(product, fullAttribution(), standardConfig())
	assert.NoError(t, err)

	assert.Equal(t, int64(10000), price.BaseRate)
	assert.Equal(t, int64(500), price.CompanyCommission)
	assert.Equal(t, int64(300), price.DistributorCommission)
	assert.Equal(t, int64(200), price.BranchCommission)
	assert.Equal(t, int64(11000), price.FinalPrice)
}

func TestComputePriceDirectSale(t *testing.T) {
	product := &models.Product{BasePrice: 10000}
	attr := Attribution{DirectSale: true}

	price, err := ComputePrice(product, attr, standardConfig())
	assert.NoError(t, err)

	// Only the company share applies when no chain resolved.
	assert.Equal(t, int64(500), price.CompanyCommission)
	assert.Zero(t, price.DistributorCommission)
	assert.Zero(t, price.BranchCommission)
	assert.Equal(t, int64(10500), price.FinalPrice)
}

func TestComputePriceBranchOnly(t *testing.T) {
	product := &models.Product{BasePrice: 10000}
	branchID := uuid.New()
	attr := Attribution{BranchID: &branchID}

	price, err := ComputePrice(product, attr, standardConfig())
	assert.NoError(t, err)

	assert.Equal(t, int64(200), price.BranchCommission)
	assert.Zero(t, price.DistributorCommission)
	assert.Equal(t, int64(10700), price.FinalPrice)
}

func TestComputePriceRoundsHalfToEven(t *testing.T) {
	cfg := standardConfig()
	attr := Attribution{DirectSale: true}

	// 250 * 0.05 = 12.5 rounds down to the even 12
	price, err := ComputePrice(&models.Product{BasePrice: 250}, attr, cfg)
	assert.NoError(t, err)
	assert.Equal(t, int64(12), price.CompanyCommission)

	// 350 * 0.05 = 17.5 rounds up to the even 18
	price, err = ComputePrice(&models.Product{BasePrice: 350}, attr, cfg)
	assert.NoError(t, err)
	assert.Equal(t, int64(18), price.CompanyCommission)
}

func TestComputePriceUnpricedProduct(t *testing.T) {
	_, err := ComputePrice(&models.Product{BasePrice: 0}, fullAttribution(), standardConfig())
	assert.ErrorIs(t, err, ErrProductNotPriced)

	_, err = ComputePrice(&models.Product{BasePrice: -100}, fullAttribution(), standardConfig())
	assert.ErrorIs(t, err, ErrProductNotPriced)
}

func TestLoyaltyPoints(t *testing.T) {
	// 11000 paise = 110 rupees, 1% = 1.1 points, floored
	assert.Equal(t, int64(1), LoyaltyPoints(11000, 0.01))

	assert.Equal(t, int64(10), LoyaltyPoints(100000, 0.01))
	assert.Zero(t, LoyaltyPoints(11000, 0))
	assert.Zero(t, LoyaltyPoints(0, 0.01))

	// Sub-point purchases earn nothing
	assert.Zero(t, LoyaltyPoints(9900, 0.01))
}
