// internal/services/hierarchy_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/tiermart/tiermart-backend/internal/models"
)

type HierarchyServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *HierarchyService
}

func (s *HierarchyServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.service = NewHierarchyService(s.db)
}

func (s *HierarchyServiceTestSuite) TestFullChain() {
	distributor := createUser(s.T(), s.db, "dist", models.UserRoleDistributor, nil)
	branch := createUser(s.T(), s.db, "branch", models.UserRoleBranch, &distributor.ID)
	customer := createUser(s.T(), s.db, "cust", models.UserRoleCustomer, &branch.ID)

	attr, err := s.service.Resolve(customer.ID)
	s.NoError(err)
	s.False(attr.DirectSale)
	s.Require().NotNil(attr.BranchID)
	s.Require().NotNil(attr.DistributorID)
	s.Equal(branch.ID, *attr.BranchID)
	s.Equal(distributor.ID, *attr.DistributorID)
}

func (s *HierarchyServiceTestSuite) TestNoParentIsDirectSale() {
	customer := createUser(s.T(), s.db, "orphan", models.UserRoleCustomer, nil)

	attr, err := s.service.Resolve(customer.ID)
	s.NoError(err)
	s.True(attr.DirectSale)
	s.Nil(attr.BranchID)
	s.Nil(attr.DistributorID)
}

func (s *HierarchyServiceTestSuite) TestParentWithWrongRoleTruncates() {
	// Customer hung directly off a distributor; the branch hop does not
	// match, so the whole chain collapses to a direct sale.
	distributor := createUser(s.T(), s.db, "dist", models.UserRoleDistributor, nil)
	customer := createUser(s.T(), s.db, "cust", models.UserRoleCustomer, &distributor.ID)

	attr, err := s.service.Resolve(customer.ID)
	s.NoError(err)
	s.True(attr.DirectSale)
	s.Nil(attr.BranchID)
}

func (s *HierarchyServiceTestSuite) TestBranchWithoutDistributor() {
	branch := createUser(s.T(), s.db, "branch", models.UserRoleBranch, nil)
	customer := createUser(s.T(), s.db, "cust", models.UserRoleCustomer, &branch.ID)

	attr, err := s.service.Resolve(customer.ID)
	s.NoError(err)
	s.False(attr.DirectSale)
	s.Require().NotNil(attr.BranchID)
	s.Equal(branch.ID, *attr.BranchID)
	s.Nil(attr.DistributorID)
}

func (s *HierarchyServiceTestSuite) TestBranchParentWithWrongRole() {
	admin := createUser(s.T(), s.db, "hq", models.UserRoleAdmin, nil)
	branch := createUser(s.T(), s.db, "branch", models.UserRoleBranch, &admin.ID)
	customer := createUser(s.T(), s.db, "cust", models.UserRoleCustomer, &branch.ID)

	attr, err := s.service.Resolve(customer.ID)
	s.NoError(err)
	s.Require().NotNil(attr.BranchID)
	s.Nil(attr.DistributorID)
}

func (s *HierarchyServiceTestSuite) TestDanglingParentReference() {
	ghost := uuid.New()
	customer := createUser(s.T(), s.db, "cust", models.UserRoleCustomer, &ghost)

	attr, err := s.service.Resolve(customer.ID)
	s.NoError(err)
	s.True(attr.DirectSale)
}

func (s *HierarchyServiceTestSuite) TestUnknownCustomer() {
	_, err := s.service.Resolve(uuid.New())
	s.ErrorIs(err, ErrCustomerNotFound)
}

func TestHierarchyServiceSuite(t *testing.T) {
	suite.Run(t, new(HierarchyServiceTestSuite))
}
