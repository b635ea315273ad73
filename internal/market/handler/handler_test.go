package handler

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landshare/internal/ledger"
	"landshare/internal/market"
	"landshare/pkg/domain"
	dErrors "landshare/pkg/domain-errors"
	"landshare/pkg/requestcontext"
	"landshare/pkg/testutil"
)

const (
	seller = "0x00000000000000000000000000000000000000aa"
	buyer  = "0x00000000000000000000000000000000000000bb"
)

type fixture struct {
	router     http.Handler
	ledgers    *ledger.Service
	propertyID domain.PropertyID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ledgers, err := ledger.NewService(ledger.NewMemoryStore())
	require.NoError(t, err)
	marketSvc, err := market.NewService(market.NewMemoryStore(), ledgers)
	require.NoError(t, err)

	propertyID := domain.NewPropertyID()
	mintCtx := requestcontext.WithCaller(context.Background(), domain.Address(seller))
	_, err = ledgers.Mint(mintCtx, propertyID, domain.Address(seller), 1_000)
	require.NoError(t, err)

	r := chi.NewRouter()
	New(marketSvc, slog.New(slog.DiscardHandler)).Register(r)
	return &fixture{router: r, ledgers: ledgers, propertyID: propertyID}
}

func (f *fixture) list(t *testing.T, shares, price uint64) string {
	t.Helper()
	req := testutil.WithCaller(testutil.NewJSONRequest(t, http.MethodPost, "/listings",
		map[string]any{"property_id": f.propertyID.String(), "shares": shares, "price_per_share": price}), seller)
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)

	got := testutil.UnmarshalResponse[market.Listing](t, rr)
	return got.ID.String()
}

func TestCreateListing(t *testing.T) {
	f := newFixture(t)

	t.Run("shares move to escrow", func(t *testing.T) {
		id := f.list(t, 300, 25)

		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/listings/"+id))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "open")

		balance, err := f.ledgers.BalanceOf(context.Background(), f.propertyID, domain.Address(seller))
		require.NoError(t, err)
		assert.Equal(t, uint64(700), balance)
	})

	t.Run("more shares than held rejected", func(t *testing.T) {
		req := testutil.WithCaller(testutil.NewJSONRequest(t, http.MethodPost, "/listings",
			map[string]any{"property_id": f.propertyID.String(), "shares": 10_000, "price_per_share": 25}), seller)
		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, string(dErrors.CodeInsufficientBalance))
	})

	t.Run("zero shares rejected", func(t *testing.T) {
		req := testutil.WithCaller(testutil.NewJSONRequest(t, http.MethodPost, "/listings",
			map[string]any{"property_id": f.propertyID.String(), "shares": 0, "price_per_share": 25}), seller)
		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestBuyListing(t *testing.T) {
	f := newFixture(t)
	id := f.list(t, 300, 25)

	t.Run("seller cannot take own listing", func(t *testing.T) {
		req := testutil.WithCaller(testutil.NewRequest(t, http.MethodPost, "/listings/"+id+"/buy"), seller)
		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})

	t.Run("buyer receives the lot", func(t *testing.T) {
		req := testutil.WithCaller(testutil.NewRequest(t, http.MethodPost, "/listings/"+id+"/buy"), buyer)
		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "filled")

		balance, err := f.ledgers.BalanceOf(context.Background(), f.propertyID, domain.Address(buyer))
		require.NoError(t, err)
		assert.Equal(t, uint64(300), balance)
	})

	t.Run("filled listing cannot be bought again", func(t *testing.T) {
		req := testutil.WithCaller(testutil.NewRequest(t, http.MethodPost, "/listings/"+id+"/buy"), buyer)
		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusConflict, string(dErrors.CodeListingNotOpen))
	})
}

func TestCancelListing(t *testing.T) {
	f := newFixture(t)
	id := f.list(t, 300, 25)

	t.Run("only the seller may cancel", func(t *testing.T) {
		req := testutil.WithCaller(testutil.NewRequest(t, http.MethodPost, "/listings/"+id+"/cancel"), buyer)
		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, string(dErrors.CodeUnauthorized))
	})

	t.Run("cancel returns the escrow", func(t *testing.T) {
		req := testutil.WithCaller(testutil.NewRequest(t, http.MethodPost, "/listings/"+id+"/cancel"), seller)
		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "cancelled")

		balance, err := f.ledgers.BalanceOf(context.Background(), f.propertyID, domain.Address(seller))
		require.NoError(t, err)
		assert.Equal(t, uint64(1_000), balance)
	})
}

func TestOpenListings(t *testing.T) {
	f := newFixture(t)
	f.list(t, 100, 10)
	f.list(t, 200, 20)

	rr := testutil.DoRequest(f.router,
		testutil.NewRequest(t, http.MethodGet, "/properties/"+f.propertyID.String()+"/listings"))
	testutil.AssertStatusOK(t, rr)

	type listResponse struct {
		Listings []*market.Listing `json:"listings"`
	}
	got := testutil.UnmarshalResponse[listResponse](t, rr)
	assert.Len(t, got.Listings, 2)
}
