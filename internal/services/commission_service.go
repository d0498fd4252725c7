// internal/services/commission_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiermart/tiermart-backend/internal/models"
	"github.com/tiermart/tiermart-backend/internal/utils"
)

type CommissionService struct {
	db *gorm.DB
}

type CreateCommissionConfigRequest struct {
	CompanyShare      float64                `json:"company_share" validate:"min=0,max=1"`
	DistributorShare  float64                `json:"distributor_share" validate:"min=0,max=1"`
	BranchShare       float64                `json:"branch_share" validate:"min=0,max=1"`
	CustomerPointRate float64                `json:"customer_point_rate" validate:"min=0,max=1"`
	Tiers             models.CommissionTiers `json:"tiers,omitempty"`
	Active            *bool                  `json:"active,omitempty"`
	Note              string                 `json:"note,omitempty"`
}

func NewCommissionService(db *gorm.DB) *CommissionService {
	return &CommissionService{db: db}
}

// ActiveConfig returns the single active policy, most recent effective-from
// first. Missing config is a hard failure: pricing must never fall back to
// guessed percentages.
func (s *CommissionService) ActiveConfig() (*models.CommissionConfig, error) {
	return s.ActiveConfigTx(s.db)
}

func (s *CommissionService) ActiveConfigTx(tx *gorm.DB) (*models.CommissionConfig, error) {
	var config models.CommissionConfig
	err := tx.Where("active = ?", true).Order("effective_from DESC").First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigurationMissing
		}
		return nil, fmt.Errorf("failed to load commission config: %w", err)
	}
	return &config, nil
}

// ActiveConfigAt resolves the policy that was in force at a past instant,
// for historical replay of an order's pricing.
func (s *CommissionService) ActiveConfigAt(at time.Time) (*models.CommissionConfig, error) {
	var config models.CommissionConfig
	err := s.db.Where("effective_from <= ?", at).Order("effective_from DESC").First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigurationMissing
		}
		return nil, fmt.Errorf("failed to load commission config: %w", err)
	}
	return &config, nil
}

// Create stores a new policy version. When the new policy is active, the
// previously active one is deactivated in the same transaction so there is
// no window with zero or multiple active configs; the partial unique index
// on active=true backs this up at the store.
func (s *CommissionService) Create(req *CreateCommissionConfigRequest) (*models.CommissionConfig, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	config := &models.CommissionConfig{
		CompanyShare:      req.CompanyShare,
		DistributorShare:  req.DistributorShare,
		BranchShare:       req.BranchShare,
		CustomerPointRate: req.CustomerPointRate,
		Tiers:             req.Tiers,
		Active:            active,
		EffectiveFrom:     time.Now(),
		Note:              req.Note,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if active {
			if err := tx.Model(&models.CommissionConfig{}).
				Where("active = ?", true).
				Update("active", false).Error; err != nil {
				return fmt.Errorf("failed to deactivate previous configs: %w", err)
			}
		}
		if err := tx.Create(config).Error; err != nil {
			return fmt.Errorf("failed to create commission config: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return config, nil
}

// Activate switches the single active policy to the given config id.
func (s *CommissionService) Activate(id uuid.UUID) (*models.CommissionConfig, error) {
	var config models.CommissionConfig

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&config, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConfigurationMissing
			}
			return fmt.Errorf("failed to load commission config: %w", err)
		}

		if err := tx.Model(&models.CommissionConfig{}).
			Where("active = ? AND id <> ?", true, id).
			Update("active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate previous configs: %w", err)
		}

		if err := tx.Model(&config).
			Updates(map[string]interface{}{"active": true, "effective_from": time.Now()}).Error; err != nil {
			return fmt.Errorf("failed to activate commission config: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func (s *CommissionService) List() ([]models.CommissionConfig, error) {
	var configs []models.CommissionConfig
	if err := s.db.Order("created_at DESC").Find(&configs).Error; err != nil {
		return nil, fmt.Errorf("failed to list commission configs: %w", err)
	}
	return configs, nil
}

// Delete removes an inactive policy. The active one is superseded by
// activating a replacement, never deleted, since live orders reference it.
func (s *CommissionService) Delete(id uuid.UUID) error {
	var config models.CommissionConfig
	if err := s.db.First(&config, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConfigurationMissing
		}
		return fmt.Errorf("failed to load commission config: %w", err)
	}

	if config.Active {
		return ErrConfigInUse
	}

	if err := s.db.Delete(&config).Error; err != nil {
		return fmt.Errorf("failed to delete commission config: %w", err)
	}
	return nil
}
