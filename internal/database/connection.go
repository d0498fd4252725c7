// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tiermart/tiermart-backend/internal/config"
	"github.com/tiermart/tiermart-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
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
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_role_status ON users(role, status)",
		"CREATE INDEX IF NOT EXISTS idx_users_parent ON users(parent_id)",

		// Wallet / ledger indexes
		"CREATE INDEX IF NOT EXISTS idx_ledger_entries_user_created ON ledger_entries(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_ledger_entries_category ON ledger_entries(category, created_at DESC)",
		// At-most-once credit per external payment id, even under
		// concurrent webhook deliveries.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_ledger_entries_deposit_ref ON ledger_entries(reference_id) WHERE category = 'deposit' AND reference_id <> ''",

		// Single-active commission policy, enforced by the store.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_commission_configs_single_active ON commission_configs(active) WHERE active",
		"CREATE INDEX IF NOT EXISTS idx_commission_configs_effective ON commission_configs(effective_from DESC)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_customer_created ON orders(customer_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_distributor ON orders(distributor_id)",
		"CREATE INDEX IF NOT EXISTS idx_orders_branch ON orders(branch_id)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",

		// Approval queues
		"CREATE INDEX IF NOT EXISTS idx_deposit_requests_status ON deposit_requests(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_withdrawal_requests_status ON withdrawal_requests(status, created_at DESC)",

		// Audit
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB, cfg *config.Config) error {
	log.Println("Seeding initial data...")

	// Create the treasury admin account referenced by LedgerConfig
	var treasury models.User
	err := db.Where("email = ?", cfg.Ledger.TreasuryEmail).First(&treasury).Error
	if err != nil {
		treasury = models.User{
			Username: "treasury",
			Email:    cfg.Ledger.TreasuryEmail,
			Name:     "Company Treasury",
			Role:     models.UserRoleAdmin,
			Status:   models.UserStatusActive,
		}

		if err := treasury.SetPassword("ChangeMe123!@#"); err != nil {
			return fmt.Errorf("failed to set treasury password: %w", err)
		}

		if err := db.Create(&treasury).Error; err != nil {
			return fmt.Errorf("failed to create treasury account: %w", err)
		}

		log.Println("Treasury account created successfully")
	}

	// Treasury wallet must exist before the first sale credits it
	var walletCount int64
	db.Model(&models.Wallet{}).Where("user_id = ?", treasury.ID).Count(&walletCount)
	if walletCount == 0 {
		wallet := &models.Wallet{
			UserID:   treasury.ID,
			Balance:  0,
			Currency: cfg.Ledger.Currency,
		}
		if err := db.Create(wallet).Error; err != nil {
			return fmt.Errorf("failed to create treasury wallet: %w", err)
		}
	}

	// Bootstrap commission policy. Pricing itself never defaults: if an admin
	// deactivates this without activating a replacement, purchases fail
	// closed.
	var configCount int64
	db.Model(&models.CommissionConfig{}).Count(&configCount)
	if configCount == 0 {
		bootstrap := &models.CommissionConfig{
			CompanyShare:      0.05,
			DistributorShare:  0.03,
			BranchShare:       0.02,
			CustomerPointRate: 0.01,
			Active:            true,
			EffectiveFrom:     time.Now(),
			Note:              "bootstrap policy created at first migration",
		}
		if err := db.Create(bootstrap).Error; err != nil {
			return fmt.Errorf("failed to create bootstrap commission config: %w", err)
		}
		log.Println("Bootstrap commission config created")
	}

	log.Println("Initial data seeding completed")
	return nil
}
