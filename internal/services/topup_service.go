// internal/services/topup_service.go
package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"gorm.io/gorm"

	"github.com/tiermart/tiermart-backend/internal/config"
)

// TopUpService creates card-rail payment intents for wallet loads. The
// funds only land in the wallet when the gateway webhook is reconciled, so
// the intent carries the buyer id in its metadata for the callback to read.
type TopUpService struct {
	db     *gorm.DB
	config *config.Config
}

type CreateTopUpRequest struct {
	Amount   int64  `json:"amount" validate:"required,min=1"`
	Currency string `json:"currency,omitempty"`
}

type TopUpIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
}

func NewTopUpService(db *gorm.DB, cfg *config.Config) *TopUpService {
	// Initialize Stripe
	stripe.Key = cfg.Payment.StripeSecretKey

	return &TopUpService{db: db, config: cfg}
}

// CreateIntent opens a payment intent for the given amount in minor units.
func (s *TopUpService) CreateIntent(userID uuid.UUID, req *CreateTopUpRequest) (*TopUpIntentResponse, error) {
	if req.Amount < s.config.Payment.MinimumTopUp {
		return nil, fmt.Errorf("minimum top-up amount is %d", s.config.Payment.MinimumTopUp)
	}

	currency := req.Currency
	if currency == "" {
		currency = strings.ToLower(s.config.Ledger.Currency)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("user_id", userID.String())
	params.AddMetadata("purpose", "wallet_topup")

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &TopUpIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}
