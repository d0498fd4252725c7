// internal/services/wallet_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/tiermart/tiermart-backend/internal/models"
)

type WalletServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *WalletService

	admin    *models.User
	customer *models.User
}

func (s *WalletServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.service = NewWalletService(s.db, testConfig())

	s.admin = createUser(s.T(), s.db, "admin", models.UserRoleAdmin, nil)
	s.customer = createUser(s.T(), s.db, "cust", models.UserRoleCustomer, nil)
}

func (s *WalletServiceTestSuite) TestSnapshotCreatesWalletLazily() {
	snapshot, err := s.service.Snapshot(s.customer.ID)
	s.Require().NoError(err)
	s.Zero(snapshot.Balance)
	s.Equal("INR", snapshot.Currency)
	s.Empty(snapshot.Transactions)

	var count int64
	s.db.Model(&models.Wallet{}).Where("user_id = ?", s.customer.ID).Count(&count)
	s.EqualValues(1, count)
}

func (s *WalletServiceTestSuite) TestWithdrawalLifecycle() {
	fundWallet(s.T(), s.db, s.customer.ID, 10000)

	request, err := s.service.RequestWithdrawal(s.customer.ID, &WithdrawalRequestInput{
		Amount:      6000,
		BankDetails: "HDFC ****1234",
	})
	s.Require().NoError(err)
	s.Equal(models.RequestStatusPending, request.Status)

	s.Require().NoError(s.service.ApproveWithdrawal(request.ID, s.admin.ID))

	s.Equal(int64(4000), walletBalance(s.T(), s.db, s.customer.ID))

	var reloaded models.WithdrawalRequest
	s.db.First(&reloaded, "id = ?", request.ID)
	s.Equal(models.RequestStatusApproved, reloaded.Status)
	s.Require().NotNil(reloaded.ProcessedByID)
	s.Equal(s.admin.ID, *reloaded.ProcessedByID)
	s.NotNil(reloaded.ProcessedAt)

	var entry models.LedgerEntry
	s.Require().NoError(s.db.Where("reference_id = ?", request.ID.String()).First(&entry).Error)
	s.Equal(models.EntryTypeDebit, entry.Type)
	s.Equal(int64(10000), entry.BalanceBefore)
	s.Equal(int64(4000), entry.BalanceAfter)
}

func (s *WalletServiceTestSuite) TestApproveWithdrawalTwice() {
	fundWallet(s.T(), s.db, s.customer.ID, 10000)
	request, err := s.service.RequestWithdrawal(s.customer.ID, &WithdrawalRequestInput{
		Amount: 6000, BankDetails: "HDFC ****1234",
	})
	s.Require().NoError(err)

	s.Require().NoError(s.service.ApproveWithdrawal(request.ID, s.admin.ID))
	err = s.service.ApproveWithdrawal(request.ID, s.admin.ID)
	s.ErrorIs(err, ErrRequestAlreadyProcessed)

	// Only one debit happened.
	s.Equal(int64(4000), walletBalance(s.T(), s.db, s.customer.ID))
}

func (s *WalletServiceTestSuite) TestApprovalRechecksBalance() {
	fundWallet(s.T(), s.db, s.customer.ID, 10000)
	request, err := s.service.RequestWithdrawal(s.customer.ID, &WithdrawalRequestInput{
		Amount: 6000, BankDetails: "HDFC ****1234",
	})
	s.Require().NoError(err)

	// Balance dropped between request and approval.
	s.db.Model(&models.Wallet{}).Where("user_id = ?", s.customer.ID).Update("balance", 1000)

	err = s.service.ApproveWithdrawal(request.ID, s.admin.ID)
	s.ErrorIs(err, ErrInsufficientBalance)

	// The status flip rolled back with the debit; the request is still
	// pending and the balance untouched.
	var reloaded models.WithdrawalRequest
	s.db.First(&reloaded, "id = ?", request.ID)
	s.Equal(models.RequestStatusPending, reloaded.Status)
	s.Equal(int64(1000), walletBalance(s.T(), s.db, s.customer.ID))
}

func (s *WalletServiceTestSuite) TestRequestWithdrawalOverBalance() {
	fundWallet(s.T(), s.db, s.customer.ID, 100)

	_, err := s.service.RequestWithdrawal(s.customer.ID, &WithdrawalRequestInput{
		Amount: 6000, BankDetails: "HDFC ****1234",
	})
	s.ErrorIs(err, ErrInsufficientBalance)
}

func (s *WalletServiceTestSuite) TestRejectWithdrawal() {
	fundWallet(s.T(), s.db, s.customer.ID, 10000)
	request, err := s.service.RequestWithdrawal(s.customer.ID, &WithdrawalRequestInput{
		Amount: 6000, BankDetails: "HDFC ****1234",
	})
	s.Require().NoError(err)

	s.NoError(s.service.RejectWithdrawal(request.ID, s.admin.ID, "details mismatch"))
	s.Equal(int64(10000), walletBalance(s.T(), s.db, s.customer.ID))

	err = s.service.RejectWithdrawal(request.ID, s.admin.ID, "")
	s.ErrorIs(err, ErrRequestAlreadyProcessed)

	err = s.service.RejectWithdrawal(uuid.New(), s.admin.ID, "")
	s.ErrorIs(err, ErrRequestNotFound)
}

func (s *WalletServiceTestSuite) TestDepositLifecycle() {
	request, err := s.service.RequestDeposit(s.customer.ID, &DepositRequestInput{
		Amount:        5000,
		ExternalTxnID: "UPI-123",
		ProofURL:      "deposit-proofs/20260831_abc.png",
	})
	s.Require().NoError(err)
	s.Equal(models.RequestStatusPending, request.Status)

	pending, err := s.service.ListPendingDeposits()
	s.NoError(err)
	s.Len(pending, 1)

	s.Require().NoError(s.service.ApproveDeposit(request.ID, s.admin.ID))
	s.Equal(int64(5000), walletBalance(s.T(), s.db, s.customer.ID))

	var entry models.LedgerEntry
	s.Require().NoError(s.db.Where("reference_id = ?", request.ID.String()).First(&entry).Error)
	s.Equal(models.EntryCategoryDeposit, entry.Category)
	s.Equal(models.EntryTypeCredit, entry.Type)

	err = s.service.ApproveDeposit(request.ID, s.admin.ID)
	s.ErrorIs(err, ErrRequestAlreadyProcessed)
	s.Equal(int64(5000), walletBalance(s.T(), s.db, s.customer.ID))
}

func (s *WalletServiceTestSuite) TestBranchFilesDepositForCustomer() {
	branch := createUser(s.T(), s.db, "branch", models.UserRoleBranch, nil)

	request, err := s.service.RequestDeposit(branch.ID, &DepositRequestInput{
		Amount:        3000,
		ExternalTxnID: "CASH-1",
		UserID:        &s.customer.ID,
	})
	s.Require().NoError(err)
	s.Equal(s.customer.ID, request.UserID)
	s.Require().NotNil(request.RequestedByID)
	s.Equal(branch.ID, *request.RequestedByID)

	s.Require().NoError(s.service.ApproveDeposit(request.ID, s.admin.ID))

	// The customer's wallet was credited, not the branch's.
	s.Equal(int64(3000), walletBalance(s.T(), s.db, s.customer.ID))
}

func (s *WalletServiceTestSuite) TestRejectDepositTouchesNoBalance() {
	request, err := s.service.RequestDeposit(s.customer.ID, &DepositRequestInput{
		Amount: 5000, ExternalTxnID: "UPI-999",
	})
	s.Require().NoError(err)

	s.NoError(s.service.RejectDeposit(request.ID, s.admin.ID))

	var wallets int64
	s.db.Model(&models.Wallet{}).Where("user_id = ?", s.customer.ID).Count(&wallets)
	s.Zero(wallets)
}

func TestWalletServiceSuite(t *testing.T) {
	suite.Run(t, new(WalletServiceTestSuite))
}
