// internal/services/hierarchy_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiermart/tiermart-backend/internal/models"
)

// Attribution is the result of walking a customer's parent chain. A broken
// or partial chain is a valid business state (the company sells directly),
// never an error.
type Attribution struct {
	BranchID      *uuid.UUID `json:"branch_id"`
	DistributorID *uuid.UUID `json:"distributor_id"`
	DirectSale    bool       `json:"direct_sale"`
}

type HierarchyService struct {
	db *gorm.DB
}

func NewHierarchyService(db *gorm.DB) *HierarchyService {
	return &HierarchyService{db: db}
}

// Resolve looks up the customer and walks the chain outside any transaction.
func (s *HierarchyService) Resolve(customerID uuid.UUID) (Attribution, error) {
	return s.ResolveTx(s.db, customerID)
}

// ResolveTx walks the fixed two-hop chain customer -> branch -> distributor
// within tx. The business model is pinned at three tiers, so this is a
// bounded pair of lookups rather than a general tree traversal. Any missing
// link or unexpected role truncates the chain: a customer with no parent, or
// a parent that is not a branch, yields a direct sale; a branch with no
// distributor parent yields branch-only attribution.
func (s *HierarchyService) ResolveTx(tx *gorm.DB, customerID uuid.UUID) (Attribution, error) {
	var customer models.User
	if err := tx.First(&customer, "id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Attribution{}, ErrCustomerNotFound
		}
		return Attribution{}, fmt.Errorf("failed to load customer: %w", err)
	}

	attr := Attribution{}

	if customer.ParentID != nil {
		var branch models.User
		err := tx.First(&branch, "id = ?", *customer.ParentID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return Attribution{}, fmt.Errorf("failed to load parent: %w", err)
		}

		if err == nil && branch.Role == models.UserRoleBranch {
			branchID := branch.ID
			attr.BranchID = &branchID

			if branch.ParentID != nil {
				var distributor models.User
				err := tx.First(&distributor, "id = ?", *branch.ParentID).Error
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return Attribution{}, fmt.Errorf("failed to load grandparent: %w", err)
				}

				if err == nil && distributor.Role == models.UserRoleDistributor {
					distributorID := distributor.ID
					attr.DistributorID = &distributorID
				}
			}
		}
	}

	if attr.BranchID == nil && attr.DistributorID == nil {
		attr.DirectSale = true
	}

	return attr, nil
}
