// internal/services/webhook_service_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/tiermart/tiermart-backend/internal/config"
	"github.com/tiermart/tiermart-backend/internal/models"
	"github.com/tiermart/tiermart-backend/internal/utils"
)

const webhookTestSecret = "whsec_test"

type WebhookServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	cfg     *config.Config
	service *WebhookService

	customer *models.User
}

func (s *WebhookServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.cfg = testConfig()
	s.cfg.Environment = "production"
	s.cfg.Payment.WebhookSecret = webhookTestSecret
	s.service = NewWebhookService(s.db, s.cfg)

	s.customer = createUser(s.T(), s.db, "cust", models.UserRoleCustomer, nil)
}

func paymentBody(paymentID string, amount int64, userID uuid.UUID) []byte {
	return []byte(fmt.Sprintf(
		`{"event":"payment.captured","payload":{"payment":{"entity":{"id":%q,"amount":%d,"notes":{"userId":%q}}}}}`,
		paymentID, amount, userID,
	))
}

func (s *WebhookServiceTestSuite) sign(body []byte) string {
	return utils.ComputeHMAC(body, webhookTestSecret)
}

func (s *WebhookServiceTestSuite) TestReconcileCreditsWallet() {
	body := paymentBody("pay_001", 50000, s.customer.ID)

	result, err := s.service.Reconcile(body, s.sign(body))
	s.Require().NoError(err)
	s.Equal(ReconcileStatusApplied, result.Status)

	s.Equal(int64(50000), walletBalance(s.T(), s.db, s.customer.ID))

	var entry models.LedgerEntry
	s.Require().NoError(s.db.Where("reference_id = ?", "pay_001").First(&entry).Error)
	s.Equal(models.EntryCategoryDeposit, entry.Category)
	s.Equal(models.EntryTypeCredit, entry.Type)
	s.Equal(int64(0), entry.BalanceBefore)
	s.Equal(int64(50000), entry.BalanceAfter)
}

func (s *WebhookServiceTestSuite) TestRedeliveryIsIdempotent() {
	body := paymentBody("pay_002", 50000, s.customer.ID)

	first, err := s.service.Reconcile(body, s.sign(body))
	s.Require().NoError(err)
	s.Equal(ReconcileStatusApplied, first.Status)

	second, err := s.service.Reconcile(body, s.sign(body))
	s.Require().NoError(err)
	s.Equal(ReconcileStatusAlreadyProcessed, second.Status)

	// Exactly one credit for the payment id.
	s.Equal(int64(50000), walletBalance(s.T(), s.db, s.customer.ID))

	var entries int64
	s.db.Model(&models.LedgerEntry{}).Where("reference_id = ?", "pay_002").Count(&entries)
	s.EqualValues(1, entries)
}

func (s *WebhookServiceTestSuite) TestInvalidSignatureRejected() {
	body := paymentBody("pay_003", 50000, s.customer.ID)

	_, err := s.service.Reconcile(body, "deadbeef")
	s.ErrorIs(err, ErrInvalidSignature)

	_, err = s.service.Reconcile(body, "")
	s.ErrorIs(err, ErrInvalidSignature)

	// Signature over a different body does not transfer.
	other := paymentBody("pay_004", 99999, s.customer.ID)
	_, err = s.service.Reconcile(body, s.sign(other))
	s.ErrorIs(err, ErrInvalidSignature)

	var entries int64
	s.db.Model(&models.LedgerEntry{}).Count(&entries)
	s.Zero(entries)
}

func (s *WebhookServiceTestSuite) TestMissingSecretFailsClosedInProduction() {
	s.cfg.Payment.WebhookSecret = ""

	body := paymentBody("pay_005", 1000, s.customer.ID)
	_, err := s.service.Reconcile(body, s.sign(body))
	s.ErrorIs(err, ErrInvalidSignature)
}

func (s *WebhookServiceTestSuite) TestTestEnvironmentSkipsVerification() {
	s.cfg.Environment = "test"
	s.cfg.Payment.WebhookSecret = ""

	body := paymentBody("pay_006", 1000, s.customer.ID)
	result, err := s.service.Reconcile(body, "")
	s.Require().NoError(err)
	s.Equal(ReconcileStatusApplied, result.Status)
}

func (s *WebhookServiceTestSuite) TestMissingBuyerReference() {
	body := []byte(`{"payload":{"payment":{"entity":{"id":"pay_007","amount":1000,"notes":{}}}}}`)

	_, err := s.service.Reconcile(body, s.sign(body))
	s.ErrorIs(err, ErrMissingBuyerReference)

	body = []byte(`{"payload":{"payment":{"entity":{"id":"pay_008","amount":1000,"notes":{"userId":"not-a-uuid"}}}}}`)
	_, err = s.service.Reconcile(body, s.sign(body))
	s.ErrorIs(err, ErrMissingBuyerReference)
}

func (s *WebhookServiceTestSuite) TestUnknownBuyer() {
	body := paymentBody("pay_009", 1000, uuid.New())

	_, err := s.service.Reconcile(body, s.sign(body))
	s.ErrorIs(err, ErrCustomerNotFound)
}

func (s *WebhookServiceTestSuite) TestTopLevelEntityFallback() {
	body := []byte(fmt.Sprintf(
		`{"id":"pay_010","amount":2500,"notes":{"userId":%q}}`, s.customer.ID,
	))

	result, err := s.service.Reconcile(body, s.sign(body))
	s.Require().NoError(err)
	s.Equal(ReconcileStatusApplied, result.Status)
	s.Equal(int64(2500), walletBalance(s.T(), s.db, s.customer.ID))
}

func (s *WebhookServiceTestSuite) TestFirstDepositActivatesPendingUser() {
	pending := createUser(s.T(), s.db, "newbie", models.UserRoleCustomer, nil)
	s.db.Model(pending).Update("status", models.UserStatusPending)

	body := paymentBody("pay_011", 10000, pending.ID)
	_, err := s.service.Reconcile(body, s.sign(body))
	s.Require().NoError(err)

	var reloaded models.User
	s.db.First(&reloaded, "id = ?", pending.ID)
	s.Equal(models.UserStatusActive, reloaded.Status)
}

func TestWebhookServiceSuite(t *testing.T) {
	suite.Run(t, new(WebhookServiceTestSuite))
}
