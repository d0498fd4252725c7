// internal/models/common_test.go
package models

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The schema must migrate on sqlite as well as Postgres: the test suites run
// against an in-memory sqlite store, so no model may carry Postgres-only DDL
// in its tags. Primary keys come from the BeforeCreate hook, not a db-side
// default.
func TestSchemaMigratesOnSQLite(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&User{}, &Product{}, &Wallet{}, &LedgerEntry{}, &CommissionLedger{},
		&CommissionConfig{}, &Order{}, &WithdrawalRequest{}, &DepositRequest{},
		&AuditLog{},
	))

	user := &User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "x",
		Name:         "Alice",
		Role:         UserRoleCustomer,
		Status:       UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	require.NotEqual(t, uuid.Nil, user.ID)

	// A caller-chosen id survives the hook.
	fixed := uuid.New()
	other := &User{
		BaseModel: BaseModel{ID: fixed},
		Username:  "bob",
		Email:     "bob@example.com",
		Role:      UserRoleCustomer,
		Status:    UserStatusActive,
	}
	require.NoError(t, db.Create(other).Error)
	require.Equal(t, fixed, other.ID)
}
