package dividend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"landshare/internal/audit"
	"landshare/internal/ledger"
	"landshare/pkg/domain"
	dErrors "landshare/pkg/domain-errors"
	"landshare/pkg/requestcontext"
)

type DividendServiceSuite struct {
	suite.Suite
	store     *MemoryStore
	ledgers   *ledger.Service
	publisher *audit.MemoryPublisher
	service   *Service
}

func TestDividendServiceSuite(t *testing.T) {
	suite.Run(t, new(DividendServiceSuite))
}

func (s *DividendServiceSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.publisher = audit.NewMemoryPublisher()

	var err error
	s.ledgers, err = ledger.NewService(ledger.NewMemoryStore())
	s.Require().NoError(err)
	s.service, err = NewService(s.store, s.ledgers, WithAuditPublisher(s.publisher))
	s.Require().NoError(err)
}

func (s *DividendServiceSuite) callerCtx(addr domain.Address) context.Context {
	return requestcontext.WithCaller(context.Background(), addr)
}

// fractionalize mints a ledger and opens the matching pool.
func (s *DividendServiceSuite) fractionalize(owner domain.Address, supply uint64) domain.PropertyID {
	propertyID := domain.NewPropertyID()
	_, err := s.ledgers.Mint(context.Background(), propertyID, owner, supply)
	s.Require().NoError(err)
	s.Require().NoError(s.service.CreatePool(context.Background(), propertyID, supply))
	return propertyID
}

func (s *DividendServiceSuite) TestCreatePool() {
	propertyID := s.fractionalize(alice, 1000)

	s.Run("second pool for same property rejected", func() {
		err := s.service.CreatePool(context.Background(), propertyID, 1000)
		s.True(dErrors.HasCode(err, dErrors.CodePoolAlreadyExists))
	})
}

func (s *DividendServiceSuite) TestDepositAndClaim() {
	propertyID := s.fractionalize(alice, 1000)
	_, err := s.ledgers.Transfer(s.callerCtx(alice), propertyID, bob, 400)
	s.Require().NoError(err)

	_, err = s.service.Deposit(s.callerCtx(alice), propertyID, 500)
	s.Require().NoError(err)

	s.Run("claim reads balance from the ledger", func() {
		owed, err := s.service.Claim(s.callerCtx(bob), propertyID)
		s.Require().NoError(err)
		s.Equal(uint64(200), owed)
	})

	s.Run("double claim rejected", func() {
		_, err := s.service.Claim(s.callerCtx(bob), propertyID)
		s.True(dErrors.HasCode(err, dErrors.CodeNothingToClaim))
	})

	s.Run("remaining holder claims their share", func() {
		owed, err := s.service.Claim(s.callerCtx(alice), propertyID)
		s.Require().NoError(err)
		s.Equal(uint64(300), owed)
	})

	s.Run("audit events carry amounts", func() {
		deposits := s.publisher.ByAction(audit.ActionDividendDeposited)
		s.Require().Len(deposits, 1)
		claims := s.publisher.ByAction(audit.ActionDividendClaimed)
		s.Require().Len(claims, 2)
	})
}

func (s *DividendServiceSuite) TestClaimEdgeCases() {
	propertyID := s.fractionalize(alice, 1000)

	s.Run("claim with no deposits rejected", func() {
		_, err := s.service.Claim(s.callerCtx(alice), propertyID)
		s.True(dErrors.HasCode(err, dErrors.CodeNothingToClaim))
	})

	s.Run("claim on unknown property rejected", func() {
		_, err := s.service.Claim(s.callerCtx(alice), domain.NewPropertyID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("missing caller rejected", func() {
		_, err := s.service.Claim(context.Background(), propertyID)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("non-holder has nothing to claim", func() {
		_, err := s.service.Deposit(context.Background(), propertyID, 100)
		s.Require().NoError(err)
		_, err = s.service.Claim(s.callerCtx(bob), propertyID)
		s.True(dErrors.HasCode(err, dErrors.CodeNothingToClaim))
	})
}

func (s *DividendServiceSuite) TestEntitlementPreview() {
	propertyID := s.fractionalize(alice, 1000)
	_, err := s.service.Deposit(context.Background(), propertyID, 500)
	s.Require().NoError(err)

	claimable, err := s.service.Entitlement(context.Background(), propertyID, alice)
	s.Require().NoError(err)
	s.Equal(uint64(500), claimable)

	// Preview twice: unchanged.
	claimable, err = s.service.Entitlement(context.Background(), propertyID, alice)
	s.Require().NoError(err)
	s.Equal(uint64(500), claimable)
}

type recordingInvalidator struct {
	addrs []domain.Address
}

func (r *recordingInvalidator) Invalidate(_ context.Context, addr domain.Address) error {
	r.addrs = append(r.addrs, addr)
	return nil
}

func (s *DividendServiceSuite) TestViewInvalidation() {
	views := &recordingInvalidator{}
	service, err := NewService(s.store, s.ledgers, WithViewInvalidator(views))
	s.Require().NoError(err)
	propertyID := s.fractionalize(alice, 1000)
	_, err = s.service.Deposit(context.Background(), propertyID, 500)
	s.Require().NoError(err)

	s.Run("claim drops the holder's view", func() {
		_, err := service.Claim(s.callerCtx(alice), propertyID)
		s.Require().NoError(err)
		s.Equal([]domain.Address{alice}, views.addrs)
	})

	s.Run("failed claim leaves views alone", func() {
		views.addrs = nil
		_, err := service.Claim(s.callerCtx(bob), propertyID)
		s.True(dErrors.HasCode(err, dErrors.CodeNothingToClaim))
		s.Empty(views.addrs)
	})
}
