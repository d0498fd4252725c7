// internal/services/webhook_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tiermart/tiermart-backend/internal/config"
	"github.com/tiermart/tiermart-backend/internal/models"
	"github.com/tiermart/tiermart-backend/internal/utils"
)

// WebhookService reconciles payment-gateway webhooks into wallet credits.
// The external payment id is the idempotency key: a given payment credits a
// wallet at most once no matter how many times the gateway retries delivery.
type WebhookService struct {
	db     *gorm.DB
	config *config.Config
}

const (
	ReconcileStatusApplied          = "applied"
	ReconcileStatusAlreadyProcessed = "already-processed"
)

type ReconcileResult struct {
	Status string `json:"status"`
}

// Gateway payload: a nested payload.payment.entity object carrying the
// payment id, the amount in minor units, and the buyer id in notes.
type webhookPayload struct {
	Payload struct {
		Payment struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
	// Simulated/manual deliveries put the entity at the top level.
	paymentEntity
}

type paymentEntity struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Notes  struct {
		UserID string `json:"userId"`
	} `json:"notes"`
}

func NewWebhookService(db *gorm.DB, cfg *config.Config) *WebhookService {
	return &WebhookService{db: db, config: cfg}
}

// Reconcile validates the signature over the raw body, then applies the
// payment as a single atomic unit: find-or-create the buyer's wallet, credit
// it, record the ledger entry keyed by the payment id, and activate the
// buyer's account if it was pending. A payment id already present in the
// ledger short-circuits to already-processed without touching any balance.
func (s *WebhookService) Reconcile(rawBody []byte, signature string) (*ReconcileResult, error) {
	if err := s.verifySignature(rawBody, signature); err != nil {
		return nil, err
	}

	var payload webhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}

	entity := payload.Payload.Payment.Entity
	if entity.ID == "" {
		entity = payload.paymentEntity
	}

	if entity.Notes.UserID == "" {
		return nil, ErrMissingBuyerReference
	}
	userID, err := uuid.Parse(entity.Notes.UserID)
	if err != nil {
		return nil, ErrMissingBuyerReference
	}

	var result ReconcileResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Idempotency check against the ledger; the partial unique index on
		// deposit reference ids closes the race between two concurrent
		// deliveries of the same payment.
		var existing models.LedgerEntry
		err := tx.Where("reference_id = ? AND category = ?", entity.ID, models.EntryCategoryDeposit).
			First(&existing).Error
		if err == nil {
			result = ReconcileResult{Status: ReconcileStatusAlreadyProcessed}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check payment reference: %w", err)
		}

		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return fmt.Errorf("failed to load user: %w", err)
		}

		wallet, err := getOrCreateWallet(tx, user.ID, s.config.Ledger.Currency)
		if err != nil {
			return err
		}

		if _, err := creditWallet(tx, wallet, entity.Amount, models.EntryCategoryDeposit,
			"Wallet load via UPI", entity.ID, nil); err != nil {
			return err
		}

		// First successful payment completes onboarding.
		if user.Status == models.UserStatusPending {
			if err := tx.Model(&user).Update("status", models.UserStatusActive).Error; err != nil {
				return fmt.Errorf("failed to activate user: %w", err)
			}
		}

		result = ReconcileResult{Status: ReconcileStatusApplied}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"payment_id": entity.ID,
		"user_id":    userID,
		"status":     result.Status,
	}).Info("Webhook reconciled")

	return &result, nil
}

// verifySignature checks the HMAC-SHA256 of the raw body against the header
// value using a constant-time compare. Unsigned webhooks are rejected
// whenever a secret is configured; running without a secret is permitted
// only in test and development environments, where config validation allows
// it.
func (s *WebhookService) verifySignature(rawBody []byte, signature string) error {
	secret := s.config.Payment.WebhookSecret
	if secret == "" {
		if s.config.Environment == "test" || s.config.Environment == "development" {
			return nil
		}
		return ErrInvalidSignature
	}

	expected := utils.ComputeHMAC(rawBody, secret)
	if !utils.SecureCompare(signature, expected) {
		return ErrInvalidSignature
	}
	return nil
}
