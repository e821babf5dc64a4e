package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/tallyfin/tally/internal/apperrors"
	"github.com/tallyfin/tally/internal/core/domain"
	portssvc "github.com/tallyfin/tally/internal/core/ports/services"
	"github.com/tallyfin/tally/internal/core/services"
)

type GuardServiceTestSuite struct {
	suite.Suite
	mockPublisher *MockEventPublisher
	guard         portssvc.GuardSvcFacade
	owner         string
}

func (suite *GuardServiceTestSuite) SetupTest() {
	suite.mockPublisher = new(MockEventPublisher)
	suite.owner = "owner-principal"
	suite.guard = services.NewGuardService(suite.owner, suite.mockPublisher)
}

func (suite *GuardServiceTestSuite) TestAuthorize() {
	suite.True(suite.guard.Authorize(suite.owner))
	suite.False(suite.guard.Authorize("someone-else"))
	suite.False(suite.guard.Authorize(""))
}

func (suite *GuardServiceTestSuite) TestOwner() {
	suite.Equal(suite.owner, suite.guard.Owner())
}

func (suite *GuardServiceTestSuite) TestTransferOwnership_Success() {
	ctx := context.Background()
	suite.mockPublisher.On("Publish", ctx, domain.TopicOwnershipTransferred, mock.AnythingOfType("domain.OwnershipTransferred")).
		Return(nil).Once()

	err := suite.guard.TransferOwnership(ctx, suite.owner, "new-owner")

	suite.Require().NoError(err)
	suite.Equal("new-owner", suite.guard.Owner())

	// Old owner loses authorization, new owner gains it.
	suite.False(suite.guard.Authorize(suite.owner))
	suite.True(suite.guard.Authorize("new-owner"))

	event := suite.mockPublisher.Calls[0].Arguments.Get(2).(domain.OwnershipTransferred)
	suite.Equal(suite.owner, event.PreviousOwner)
	suite.Equal("new-owner", event.NewOwner)
}

func (suite *GuardServiceTestSuite) TestTransferOwnership_NotOwner() {
	ctx := context.Background()

	err := suite.guard.TransferOwnership(ctx, "someone-else", "new-owner")

	suite.Require().ErrorIs(err, apperrors.ErrNotOwner)
	suite.Equal(suite.owner, suite.guard.Owner(), "rejected transfer must not change the owner")
	suite.mockPublisher.AssertNotCalled(suite.T(), "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *GuardServiceTestSuite) TestTransferOwnership_EmptyNewOwner() {
	ctx := context.Background()

	err := suite.guard.TransferOwnership(ctx, suite.owner, "")

	suite.Require().ErrorIs(err, apperrors.ErrInvalidAccount)
	suite.Equal(suite.owner, suite.guard.Owner())
	suite.mockPublisher.AssertNotCalled(suite.T(), "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *GuardServiceTestSuite) TestTransferOwnership_ChainedTransfers() {
	ctx := context.Background()
	suite.mockPublisher.On("Publish", ctx, domain.TopicOwnershipTransferred, mock.AnythingOfType("domain.OwnershipTransferred")).
		Return(nil).Twice()

	suite.Require().NoError(suite.guard.TransferOwnership(ctx, suite.owner, "second"))

	// The previous owner can no longer transfer.
	err := suite.guard.TransferOwnership(ctx, suite.owner, "third")
	suite.Require().ErrorIs(err, apperrors.ErrNotOwner)

	suite.Require().NoError(suite.guard.TransferOwnership(ctx, "second", "third"))
	suite.Equal("third", suite.guard.Owner())
}

func TestGuardServiceTestSuite(t *testing.T) {
	suite.Run(t, new(GuardServiceTestSuite))
}
