package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"landshare/internal/audit"
	"landshare/pkg/domain"
	dErrors "landshare/pkg/domain-errors"
	"landshare/pkg/requestcontext"
)

type LedgerServiceSuite struct {
	suite.Suite
	store     *MemoryStore
	publisher *audit.MemoryPublisher
	service   *Service
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.publisher = audit.NewMemoryPublisher()

	var err error
	s.service, err = NewService(s.store, WithAuditPublisher(s.publisher))
	s.Require().NoError(err)
}

func (s *LedgerServiceSuite) callerCtx(addr domain.Address) context.Context {
	return requestcontext.WithCaller(context.Background(), addr)
}

func (s *LedgerServiceSuite) TestNewService() {
	s.Run("nil store returns error", func() {
		_, err := NewService(nil)
		s.Error(err)
		s.Contains(err.Error(), "ledger store is required")
	})
}

func (s *LedgerServiceSuite) TestMint() {
	ctx := context.Background()
	propertyID := domain.NewPropertyID()

	s.Run("creates ledger with whole supply at owner", func() {
		l, err := s.service.Mint(ctx, propertyID, alice, 1000)
		s.Require().NoError(err)
		s.Equal(uint64(1000), l.BalanceOf(alice))
	})

	s.Run("second mint for same property rejected", func() {
		_, err := s.service.Mint(ctx, propertyID, alice, 1000)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyFractionalized))
	})
}

func (s *LedgerServiceSuite) TestTransfer() {
	propertyID := domain.NewPropertyID()
	_, err := s.service.Mint(context.Background(), propertyID, alice, 1000)
	s.Require().NoError(err)

	s.Run("caller transfers own shares", func() {
		l, err := s.service.Transfer(s.callerCtx(alice), propertyID, bob, 250)
		s.Require().NoError(err)
		s.Equal(uint64(750), l.BalanceOf(alice))
		s.Equal(uint64(250), l.BalanceOf(bob))
	})

	s.Run("transfer emits audit event", func() {
		events := s.publisher.ByAction(audit.ActionSharesTransferred)
		s.Require().Len(events, 1)
		s.Equal(alice, events[0].Actor)
	})

	s.Run("missing caller rejected", func() {
		_, err := s.service.Transfer(context.Background(), propertyID, bob, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown property rejected", func() {
		_, err := s.service.Transfer(s.callerCtx(alice), domain.NewPropertyID(), bob, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("failed transfer emits no audit event", func() {
		before := len(s.publisher.Events())
		_, err := s.service.Transfer(s.callerCtx(carol), propertyID, bob, 10)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientBalance))
		s.Len(s.publisher.Events(), before)
	})
}

func (s *LedgerServiceSuite) TestEscrow() {
	ctx := context.Background()
	propertyID := domain.NewPropertyID()
	_, err := s.service.Mint(ctx, propertyID, alice, 1000)
	s.Require().NoError(err)

	s.Run("debit then credit round-trips", func() {
		s.Require().NoError(s.service.EscrowDebit(ctx, propertyID, alice, 300))
		balance, err := s.service.BalanceOf(ctx, propertyID, alice)
		s.Require().NoError(err)
		s.Equal(uint64(700), balance)

		s.Require().NoError(s.service.EscrowCredit(ctx, propertyID, bob, 300))
		balance, err = s.service.BalanceOf(ctx, propertyID, bob)
		s.Require().NoError(err)
		s.Equal(uint64(300), balance)
	})

	s.Run("debit beyond balance rejected", func() {
		err := s.service.EscrowDebit(ctx, propertyID, bob, 301)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientBalance))
	})
}

func (s *LedgerServiceSuite) TestHoldings() {
	ctx := context.Background()
	first := domain.NewPropertyID()
	second := domain.NewPropertyID()
	_, err := s.service.Mint(ctx, first, alice, 100)
	s.Require().NoError(err)
	_, err = s.service.Mint(ctx, second, alice, 200)
	s.Require().NoError(err)
	_, err = s.service.Transfer(s.callerCtx(alice), second, bob, 200)
	s.Require().NoError(err)

	s.Run("lists only ledgers with positive balance", func() {
		holdings, err := s.service.Holdings(ctx, alice)
		s.Require().NoError(err)
		s.Len(holdings, 1)
		s.Equal(first, holdings[0].PropertyID)
	})

	s.Run("empty for unknown holder", func() {
		holdings, err := s.service.Holdings(ctx, carol)
		s.Require().NoError(err)
		s.Empty(holdings)
	})
}

type recordingInvalidator struct {
	addrs []domain.Address
}

func (r *recordingInvalidator) Invalidate(_ context.Context, addr domain.Address) error {
	r.addrs = append(r.addrs, addr)
	return nil
}

func (s *LedgerServiceSuite) TestViewInvalidation() {
	views := &recordingInvalidator{}
	service, err := NewService(NewMemoryStore(), WithViewInvalidator(views))
	s.Require().NoError(err)

	ctx := context.Background()
	propertyID := domain.NewPropertyID()

	s.Run("mint drops the owner's view", func() {
		_, err := service.Mint(ctx, propertyID, alice, 1000)
		s.Require().NoError(err)
		s.Equal([]domain.Address{alice}, views.addrs)
	})

	s.Run("transfer drops both parties' views", func() {
		views.addrs = nil
		_, err := service.Transfer(s.callerCtx(alice), propertyID, bob, 100)
		s.Require().NoError(err)
		s.ElementsMatch([]domain.Address{alice, bob}, views.addrs)
	})

	s.Run("escrow movement drops the holder's view", func() {
		views.addrs = nil
		s.Require().NoError(service.EscrowDebit(ctx, propertyID, alice, 50))
		s.Equal([]domain.Address{alice}, views.addrs)

		views.addrs = nil
		s.Require().NoError(service.EscrowCredit(ctx, propertyID, bob, 50))
		s.Equal([]domain.Address{bob}, views.addrs)
	})

	s.Run("failed transfer leaves views alone", func() {
		views.addrs = nil
		_, err := service.Transfer(s.callerCtx(alice), propertyID, bob, 100_000)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientBalance))
		s.Empty(views.addrs)
	})
}
