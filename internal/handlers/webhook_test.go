// internal/handlers/webhook_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tiermart/tiermart-backend/internal/config"
	"github.com/tiermart/tiermart-backend/internal/models"
	"github.com/tiermart/tiermart-backend/internal/services"
	"github.com/tiermart/tiermart-backend/internal/utils"
)

const webhookHandlerSecret = "whsec_handler"

type WebhookHandlerTestSuite struct {
	suite.Suite
	db       *gorm.DB
	engine   *gin.Engine
	customer *models.User
}

func (s *WebhookHandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *WebhookHandlerTestSuite) SetupTest() {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	s.Require().NoError(db.AutoMigrate(
		&models.User{}, &models.Wallet{}, &models.LedgerEntry{},
	))
	s.db = db

	cfg := &config.Config{
		Environment: "production",
		Ledger:      config.LedgerConfig{Currency: "INR"},
		Payment:     config.PaymentConfig{WebhookSecret: webhookHandlerSecret},
	}

	handler := NewWebhookHandler(services.NewWebhookService(db, cfg))
	s.engine = gin.New()
	s.engine.POST("/api/v1/webhooks/payment", handler.PaymentWebhook)

	s.customer = &models.User{
		Username:     "cust",
		Email:        "cust@example.com",
		PasswordHash: "x",
		Name:         "Customer",
		Role:         models.UserRoleCustomer,
		Status:       models.UserStatusActive,
	}
	s.Require().NoError(db.Create(s.customer).Error)
}

func (s *WebhookHandlerTestSuite) deliver(body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("x-razorpay-signature", signature)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *WebhookHandlerTestSuite) body(paymentID string, amount int64) []byte {
	return []byte(fmt.Sprintf(
		`{"payload":{"payment":{"entity":{"id":%q,"amount":%d,"notes":{"userId":%q}}}}}`,
		paymentID, amount, s.customer.ID,
	))
}

func (s *WebhookHandlerTestSuite) TestSignedDeliveryApplied() {
	body := s.body("pay_h1", 7500)
	w := s.deliver(body, utils.ComputeHMAC(body, webhookHandlerSecret))

	s.Equal(http.StatusOK, w.Code)

	var resp utils.APIResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.True(resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	s.Require().True(ok)
	s.Equal(services.ReconcileStatusApplied, data["status"])

	var wallet models.Wallet
	s.Require().NoError(s.db.Where("user_id = ?", s.customer.ID).First(&wallet).Error)
	s.Equal(int64(7500), wallet.Balance)
}

func (s *WebhookHandlerTestSuite) TestRedeliveryReportsAlreadyProcessed() {
	body := s.body("pay_h2", 7500)
	sig := utils.ComputeHMAC(body, webhookHandlerSecret)

	s.Equal(http.StatusOK, s.deliver(body, sig).Code)

	w := s.deliver(body, sig)
	s.Equal(http.StatusOK, w.Code)

	var resp utils.APIResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp.Data.(map[string]interface{})
	s.Require().True(ok)
	s.Equal(services.ReconcileStatusAlreadyProcessed, data["status"])

	var wallet models.Wallet
	s.Require().NoError(s.db.Where("user_id = ?", s.customer.ID).First(&wallet).Error)
	s.Equal(int64(7500), wallet.Balance)
}

func (s *WebhookHandlerTestSuite) TestBadSignatureIsUnauthorized() {
	w := s.deliver(s.body("pay_h3", 7500), "bogus")
	s.Equal(http.StatusUnauthorized, w.Code)

	var resp utils.APIResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.False(resp.Success)
	s.Require().NotNil(resp.Error)
	s.Equal("UNAUTHORIZED", resp.Error.Code)

	var count int64
	s.db.Model(&models.LedgerEntry{}).Count(&count)
	s.Zero(count)
}

func (s *WebhookHandlerTestSuite) TestMissingSignatureIsUnauthorized() {
	w := s.deliver(s.body("pay_h4", 7500), "")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *WebhookHandlerTestSuite) TestUnknownBuyerIsNotFound() {
	body := []byte(fmt.Sprintf(
		`{"payload":{"payment":{"entity":{"id":"pay_h5","amount":100,"notes":{"userId":%q}}}}}`,
		uuid.New(),
	))
	w := s.deliver(body, utils.ComputeHMAC(body, webhookHandlerSecret))
	s.Equal(http.StatusNotFound, w.Code)
}

func TestWebhookHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}
