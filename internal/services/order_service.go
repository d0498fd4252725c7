// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tiermart/tiermart-backend/internal/config"
	"github.com/tiermart/tiermart-backend/internal/models"
	"github.com/tiermart/tiermart-backend/internal/utils"
)

// OrderService is the purchase transaction orchestrator. It is one of the
// two components allowed to commit ledger writes (the other being the
// webhook reconciler); hierarchy resolution, config resolution, and pricing
// are pure and only gate whether the orchestrator proceeds.
type OrderService struct {
	db         *gorm.DB
	config     *config.Config
	hierarchy  *HierarchyService
	commission *CommissionService
}

type PurchaseResult struct {
	OrderID             uuid.UUID `json:"order_id"`
	FinalPrice          int64     `json:"final_price"`
	LoyaltyPointsEarned int64     `json:"loyalty_points_earned"`
}

type UpdateOrderStatusRequest struct {
	Status            models.OrderStatus `json:"status" validate:"required"`
	TrackingNumber    string             `json:"tracking_number,omitempty"`
	EstimatedDelivery *time.Time         `json:"estimated_delivery,omitempty"`
}

func NewOrderService(db *gorm.DB, cfg *config.Config, hierarchy *HierarchyService, commission *CommissionService) *OrderService {
	return &OrderService{
		db:         db,
		config:     cfg,
		hierarchy:  hierarchy,
		commission: commission,
	}
}

// CreatePurchase executes one sale as a single database transaction: price
// the product for the buyer's position in the hierarchy, debit the buyer,
// create the order, credit each beneficiary, award loyalty points. Any
// failure rolls the whole thing back; there is no state where the buyer is
// debited without an order or a beneficiary is credited without a sale.
//
// Purchases are not idempotent: every successful call debits again. Callers
// must not blindly retry after a success.
func (s *OrderService) CreatePurchase(buyerID, productID uuid.UUID) (*PurchaseResult, error) {
	var result PurchaseResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		attr, err := s.hierarchy.ResolveTx(tx, buyerID)
		if err != nil {
			return err
		}

		var product models.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to load product: %w", err)
		}
		if !product.Active {
			return ErrProductUnavailable
		}

		cfg, err := s.commission.ActiveConfigTx(tx)
		if err != nil {
			return err
		}

		price, err := ComputePrice(&product, attr, cfg)
		if err != nil {
			return err
		}

		// Reserve stock. Guarded like the wallet debit so concurrent
		// purchases cannot oversell the last unit.
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock > 0", product.ID).
			UpdateColumn("stock", gorm.Expr("stock - ?", 1))
		if res.Error != nil {
			return fmt.Errorf("failed to reserve stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrProductUnavailable
		}

		wallet, err := getOrCreateWallet(tx, buyerID, s.config.Ledger.Currency)
		if err != nil {
			return err
		}
		if wallet.Balance < price.FinalPrice {
			return ErrInsufficientFunds
		}

		points := LoyaltyPoints(price.FinalPrice, cfg.CustomerPointRate)

		order := &models.Order{
			CustomerID:            buyerID,
			ProductID:             product.ID,
			DistributorID:         attr.DistributorID,
			BranchID:              attr.BranchID,
			BaseRate:              price.BaseRate,
			CompanyCommission:     price.CompanyCommission,
			DistributorCommission: price.DistributorCommission,
			BranchCommission:      price.BranchCommission,
			FinalPricePaid:        price.FinalPrice,
			Currency:              s.config.Ledger.Currency,
			Status:                models.OrderStatusPaid,
			LoyaltyPointsEarned:   points,
			CommissionConfigID:    cfg.ID,
			PaymentMeta:           models.JSONB{"method": "wallet"},
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if _, err := debitWallet(tx, wallet, price.FinalPrice, models.EntryCategoryPurchase,
			fmt.Sprintf("Purchase of %s", product.Name), order.ID.String(),
			models.JSONB{"order_id": order.ID.String()}, ErrInsufficientFunds); err != nil {
			return err
		}

		if err := s.payCommission(tx, order, price); err != nil {
			return err
		}

		if points > 0 {
			if err := tx.Model(&models.Wallet{}).
				Where("id = ?", wallet.ID).
				UpdateColumn("loyalty_points", gorm.Expr("loyalty_points + ?", points)).Error; err != nil {
				return fmt.Errorf("failed to award loyalty points: %w", err)
			}
		}

		result = PurchaseResult{
			OrderID:             order.ID,
			FinalPrice:          price.FinalPrice,
			LoyaltyPointsEarned: points,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":    result.OrderID,
		"buyer_id":    buyerID,
		"final_price": result.FinalPrice,
	}).Info("Purchase committed")

	return &result, nil
}

// payCommission credits each resolved beneficiary and records the payout in
// the commission ledger. The treasury wallet is resolved from configuration;
// if the configured account does not exist the company share is skipped and
// logged for reconciliation rather than failing the sale.
func (s *OrderService) payCommission(tx *gorm.DB, order *models.Order, price PriceBreakdown) error {
	cfgID := price.CommissionConfigID.String()

	if price.CompanyCommission > 0 {
		var treasury models.User
		err := tx.Where("email = ?", s.config.Ledger.TreasuryEmail).First(&treasury).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			logrus.WithField("order_id", order.ID).Warn("Treasury account missing, company commission skipped")
		case err != nil:
			return fmt.Errorf("failed to load treasury account: %w", err)
		default:
			if err := s.creditBeneficiary(tx, order, treasury.ID, price.CompanyCommission,
				percentOf(price.CompanyCommission, price.BaseRate), "Company commission", cfgID); err != nil {
				return err
			}
		}
	}

	if order.DistributorID != nil && price.DistributorCommission > 0 {
		if err := s.creditBeneficiary(tx, order, *order.DistributorID, price.DistributorCommission,
			percentOf(price.DistributorCommission, price.BaseRate), "Distributor commission", cfgID); err != nil {
			return err
		}
	}

	if order.BranchID != nil && price.BranchCommission > 0 {
		if err := s.creditBeneficiary(tx, order, *order.BranchID, price.BranchCommission,
			percentOf(price.BranchCommission, price.BaseRate), "Branch commission", cfgID); err != nil {
			return err
		}
	}

	return nil
}

func (s *OrderService) creditBeneficiary(tx *gorm.DB, order *models.Order, userID uuid.UUID,
	amount int64, percentage float64, description, configID string) error {

	wallet, err := getOrCreateWallet(tx, userID, s.config.Ledger.Currency)
	if err != nil {
		return err
	}

	entry, err := creditWallet(tx, wallet, amount, models.EntryCategoryCommission,
		description, order.ID.String(),
		models.JSONB{"order_id": order.ID.String(), "commission_config_id": configID})
	if err != nil {
		return err
	}

	orderID := order.ID
	ledger := &models.CommissionLedger{
		UserID:        userID,
		LedgerEntryID: entry.ID,
		OrderID:       &orderID,
		Amount:        amount,
		Percentage:    percentage,
		EarnedAt:      time.Now(),
	}
	if err := tx.Create(ledger).Error; err != nil {
		return fmt.Errorf("failed to record commission ledger entry: %w", err)
	}
	return nil
}

func percentOf(amount, base int64) float64 {
	if base == 0 {
		return 0
	}
	return float64(amount) / float64(base) * 100
}

// CancelOrder refunds the buyer and marks the order cancelled, atomically.
// Only the owning customer or an admin may cancel, and only while the order
// is paid or processing. Commission already paid to the company, distributor,
// and branch is deliberately not clawed back; the refund is funded by the
// company side. See DESIGN.md for the policy discussion.
func (s *OrderService) CancelOrder(orderID, actingID uuid.UUID, reason string) (*models.Order, error) {
	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		var acting models.User
		if err := tx.First(&acting, "id = ?", actingID).Error; err != nil {
			return ErrNotAuthorized
		}
		if acting.Role != models.UserRoleAdmin && order.CustomerID != actingID {
			return ErrNotAuthorized
		}

		if order.Status != models.OrderStatusPaid && order.Status != models.OrderStatusProcessing {
			return ErrInvalidStateForCancellation
		}

		wallet, err := getOrCreateWallet(tx, order.CustomerID, s.config.Ledger.Currency)
		if err != nil {
			return err
		}

		if _, err := creditWallet(tx, wallet, order.FinalPricePaid, models.EntryCategoryRefund,
			"Order cancellation refund", order.ID.String(),
			models.JSONB{"order_id": order.ID.String(), "reason": reason}); err != nil {
			return err
		}

		// Return the reserved unit to stock.
		if err := tx.Model(&models.Product{}).
			Where("id = ?", order.ProductID).
			UpdateColumn("stock", gorm.Expr("stock + ?", 1)).Error; err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}

		now := time.Now()
		if reason == "" {
			reason = "Customer cancellation"
		}
		updates := map[string]interface{}{
			"status":        models.OrderStatusCancelled,
			"cancel_reason": reason,
			"cancelled_at":  now,
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// UpdateStatus applies a fulfillment status transition. Admins may update
// any order; a distributor may update orders attributed to them.
func (s *OrderService) UpdateStatus(orderID, actingID uuid.UUID, req *UpdateOrderStatusRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	switch req.Status {
	case models.OrderStatusPaid, models.OrderStatusProcessing, models.OrderStatusShipped,
		models.OrderStatusDelivered, models.OrderStatusCancelled, models.OrderStatusRefunded,
		models.OrderStatusFulfilled:
	default:
		return nil, ErrInvalidStatus
	}

	var order models.Order
	if err := s.db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	var acting models.User
	if err := s.db.First(&acting, "id = ?", actingID).Error; err != nil {
		return nil, ErrNotAuthorized
	}
	if acting.Role != models.UserRoleAdmin &&
		(order.DistributorID == nil || *order.DistributorID != actingID) {
		return nil, ErrNotAuthorized
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.TrackingNumber != "" {
		updates["tracking_number"] = req.TrackingNumber
	}
	if req.EstimatedDelivery != nil {
		updates["estimated_delivery"] = *req.EstimatedDelivery
	}
	if req.Status == models.OrderStatusDelivered {
		updates["delivered_at"] = time.Now()
	}

	if err := s.db.Model(&order).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return &order, nil
}

// ListOrders returns orders visible to the acting user: admins see all,
// distributors and branches see orders attributed to them, customers their
// own.
func (s *OrderService) ListOrders(acting *models.User, status models.OrderStatus, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).
		Preload("Product").Preload("Customer").Preload("Distributor").Preload("Branch")

	switch acting.Role {
	case models.UserRoleAdmin:
		// see all
	case models.UserRoleDistributor:
		query = query.Where("distributor_id = ?", acting.ID)
	case models.UserRoleBranch:
		query = query.Where("branch_id = ?", acting.ID)
	default:
		query = query.Where("customer_id = ?", acting.ID)
	}

	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "final_price_paid", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

// GetOrder returns a single order subject to the same visibility rules as
// ListOrders.
func (s *OrderService) GetOrder(orderID uuid.UUID, acting *models.User) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Product").Preload("Customer").Preload("Distributor").Preload("Branch").
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	switch acting.Role {
	case models.UserRoleAdmin:
	case models.UserRoleDistributor:
		if order.DistributorID == nil || *order.DistributorID != acting.ID {
			return nil, ErrNotAuthorized
		}
	case models.UserRoleBranch:
		if order.BranchID == nil || *order.BranchID != acting.ID {
			return nil, ErrNotAuthorized
		}
	default:
		if order.CustomerID != acting.ID {
			return nil, ErrNotAuthorized
		}
	}

	return &order, nil
}
