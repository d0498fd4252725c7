// internal/services/commission_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/tiermart/tiermart-backend/internal/models"
)

type CommissionServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *CommissionService
}

func (s *CommissionServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.service = NewCommissionService(s.db)
}

func (s *CommissionServiceTestSuite) activeCount() int64 {
	var count int64
	s.db.Model(&models.CommissionConfig{}).Where("active = ?", true).Count(&count)
	return count
}

func (s *CommissionServiceTestSuite) TestActiveConfigFailsClosed() {
	_, err := s.service.ActiveConfig()
	s.ErrorIs(err, ErrConfigurationMissing)

	// An inactive config on file is still a missing policy.
	s.db.Create(&models.CommissionConfig{CompanyShare: 0.05, EffectiveFrom: time.Now()})
	_, err = s.service.ActiveConfig()
	s.ErrorIs(err, ErrConfigurationMissing)
}

func (s *CommissionServiceTestSuite) TestCreateDeactivatesPrevious() {
	first, err := s.service.Create(&CreateCommissionConfigRequest{
		CompanyShare: 0.05, DistributorShare: 0.03, BranchShare: 0.02, CustomerPointRate: 0.01,
	})
	s.NoError(err)
	s.True(first.Active)

	second, err := s.service.Create(&CreateCommissionConfigRequest{
		CompanyShare: 0.06, DistributorShare: 0.03, BranchShare: 0.02, CustomerPointRate: 0.01,
	})
	s.NoError(err)

	s.EqualValues(1, s.activeCount())

	active, err := s.service.ActiveConfig()
	s.NoError(err)
	s.Equal(second.ID, active.ID)
	s.Equal(0.06, active.CompanyShare)
}

func (s *CommissionServiceTestSuite) TestCreateInactiveDraft() {
	existing := activateConfig(s.T(), s.db)

	inactive := false
	draft, err := s.service.Create(&CreateCommissionConfigRequest{
		CompanyShare: 0.10, Active: &inactive,
	})
	s.NoError(err)
	s.False(draft.Active)

	// The previously active config stays in force.
	active, err := s.service.ActiveConfig()
	s.NoError(err)
	s.Equal(existing.ID, active.ID)
}

func (s *CommissionServiceTestSuite) TestActivateSwitchesSingleActive() {
	old := activateConfig(s.T(), s.db)
	draft := &models.CommissionConfig{CompanyShare: 0.07, EffectiveFrom: time.Now()}
	s.Require().NoError(s.db.Create(draft).Error)

	_, err := s.service.Activate(draft.ID)
	s.NoError(err)

	s.EqualValues(1, s.activeCount())

	active, err := s.service.ActiveConfig()
	s.NoError(err)
	s.Equal(draft.ID, active.ID)

	var reloaded models.CommissionConfig
	s.db.First(&reloaded, "id = ?", old.ID)
	s.False(reloaded.Active)
}

func (s *CommissionServiceTestSuite) TestActivateUnknownConfig() {
	_, err := s.service.Activate(uuid.New())
	s.ErrorIs(err, ErrConfigurationMissing)
}

func (s *CommissionServiceTestSuite) TestDeleteActiveRefused() {
	cfg := activateConfig(s.T(), s.db)

	err := s.service.Delete(cfg.ID)
	s.ErrorIs(err, ErrConfigInUse)
}

func (s *CommissionServiceTestSuite) TestDeleteInactive() {
	draft := &models.CommissionConfig{CompanyShare: 0.07, EffectiveFrom: time.Now()}
	s.Require().NoError(s.db.Create(draft).Error)

	s.NoError(s.service.Delete(draft.ID))

	var count int64
	s.db.Model(&models.CommissionConfig{}).Where("id = ?", draft.ID).Count(&count)
	s.Zero(count)
}

func (s *CommissionServiceTestSuite) TestActiveConfigAt() {
	older := &models.CommissionConfig{CompanyShare: 0.04, EffectiveFrom: time.Now().Add(-48 * time.Hour)}
	newer := &models.CommissionConfig{CompanyShare: 0.05, Active: true, EffectiveFrom: time.Now()}
	s.Require().NoError(s.db.Create(older).Error)
	s.Require().NoError(s.db.Create(newer).Error)

	historical, err := s.service.ActiveConfigAt(time.Now().Add(-24 * time.Hour))
	s.NoError(err)
	s.Equal(older.ID, historical.ID)
}

func TestCommissionServiceSuite(t *testing.T) {
	suite.Run(t, new(CommissionServiceTestSuite))
}
