// internal/services/helpers_test.go
package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tiermart/tiermart-backend/internal/config"
	"github.com/tiermart/tiermart-backend/internal/models"
	"github.com/tiermart/tiermart-backend/internal/utils"
)

const testTreasuryEmail = "treasury@tiermart.test"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database so the connection pool sees one store,
	// isolated per test.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Wallet{},
		&models.LedgerEntry{},
		&models.CommissionLedger{},
		&models.CommissionConfig{},
		&models.Order{},
		&models.DepositRequest{},
		&models.WithdrawalRequest{},
		&models.AuditLog{},
	))

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Ledger: config.LedgerConfig{
			TreasuryEmail:   testTreasuryEmail,
			Currency:        "INR",
			MinimumWithdraw: 1,
		},
		Payment: config.PaymentConfig{
			MinimumTopUp: 1,
		},
	}
}

func createUser(t *testing.T, db *gorm.DB, username string, role models.UserRole, parentID *uuid.UUID) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@tiermart.test",
		Name:     username,
		Role:     role,
		ParentID: parentID,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTreasury(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	treasury := &models.User{
		Username: "treasury",
		Email:    testTreasuryEmail,
		Name:     "Company Treasury",
		Role:     models.UserRoleAdmin,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, db.Create(treasury).Error)
	fundWallet(t, db, treasury.ID, 0)
	return treasury
}

func createProduct(t *testing.T, db *gorm.DB, basePrice int64, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:      "Test Product",
		BasePrice: basePrice,
		Stock:     stock,
		Active:    true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func activateConfig(t *testing.T, db *gorm.DB) *models.CommissionConfig {
	t.Helper()

	cfg := &models.CommissionConfig{
		CompanyShare:      0.05,
		DistributorShare:  0.03,
		BranchShare:       0.02,
		CustomerPointRate: 0.01,
		Active:            true,
		EffectiveFrom:     time.Now(),
	}
	require.NoError(t, db.Create(cfg).Error)
	return cfg
}

func fundWallet(t *testing.T, db *gorm.DB, userID uuid.UUID, balance int64) *models.Wallet {
	t.Helper()

	wallet := &models.Wallet{
		UserID:   userID,
		Balance:  balance,
		Currency: "INR",
	}
	require.NoError(t, db.Create(wallet).Error)
	return wallet
}

func paginationDefaults() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"}
}

func walletBalance(t *testing.T, db *gorm.DB, userID uuid.UUID) int64 {
	t.Helper()

	// Wallets are created lazily; a principal that was never credited has
	// no row, which reads as a zero balance.
	var wallet models.Wallet
	err := db.Where("user_id = ?", userID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0
	}
	require.NoError(t, err)
	return wallet.Balance
}
