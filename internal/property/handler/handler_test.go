package handler

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landshare/internal/access"
	"landshare/internal/attestation"
	"landshare/internal/dividend"
	"landshare/internal/ledger"
	"landshare/internal/property"
	"landshare/pkg/domain"
	dErrors "landshare/pkg/domain-errors"
	"landshare/pkg/testutil"
)

const (
	admin    = "0x00000000000000000000000000000000000000a1"
	owner    = "0x00000000000000000000000000000000000000aa"
	verifier = "0x00000000000000000000000000000000000000ee"
	valuer   = "0x00000000000000000000000000000000000000ff"
)

type fixture struct {
	router       http.Handler
	attestations *attestation.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	accessSvc, err := access.NewService(access.NewMemoryStore(), admin)
	require.NoError(t, err)
	attestations, err := attestation.NewService(attestation.NewMemoryStore(), accessSvc)
	require.NoError(t, err)
	ledgers, err := ledger.NewService(ledger.NewMemoryStore())
	require.NoError(t, err)
	dividends, err := dividend.NewService(dividend.NewMemoryStore(), ledgers)
	require.NoError(t, err)
	properties, err := property.NewService(property.NewMemoryStore(), attestations, ledgers, dividends)
	require.NoError(t, err)

	adminCtx := testutil.WithCaller(httptest.NewRequest(http.MethodGet, "/", nil), admin).Context()
	require.NoError(t, accessSvc.GrantVerifier(adminCtx, verifier))
	require.NoError(t, accessSvc.GrantValuer(adminCtx, valuer))

	r := chi.NewRouter()
	New(properties, slog.New(slog.DiscardHandler)).Register(r)
	return &fixture{router: r, attestations: attestations}
}

func (f *fixture) register(t *testing.T) string {
	t.Helper()
	id := domain.NewPropertyID().String()
	req := testutil.WithCaller(testutil.NewJSONRequest(t, http.MethodPost, "/properties",
		map[string]any{"id": id, "metadata": map[string]string{"parcel": "3-b"}}), owner)
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	return id
}

// attach mints matching attestations and attaches them via the API.
func (f *fixture) attach(t *testing.T, id string) {
	t.Helper()
	propertyID, err := domain.ParsePropertyID(id)
	require.NoError(t, err)

	verifierCtx := testutil.WithCaller(httptest.NewRequest(http.MethodGet, "/", nil), verifier).Context()
	verification, err := f.attestations.MintVerification(verifierCtx, propertyID, []byte("deed"))
	require.NoError(t, err)
	valuerCtx := testutil.WithCaller(httptest.NewRequest(http.MethodGet, "/", nil), valuer).Context()
	valuation, err := f.attestations.MintValuation(valuerCtx, propertyID, 250_000, "usd", []byte("appraisal"))
	require.NoError(t, err)

	req := testutil.WithCaller(testutil.NewJSONRequest(t, http.MethodPost, "/properties/"+id+"/attestations",
		map[string]string{
			"verification_id": verification.ID.String(),
			"valuation_id":    valuation.ID.String(),
		}), owner)
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatusOK(t, rr)
}

func TestRegisterProperty(t *testing.T) {
	f := newFixture(t)

	t.Run("created with caller as owner", func(t *testing.T) {
		id := domain.NewPropertyID().String()
		req := testutil.WithCaller(testutil.NewJSONRequest(t, http.MethodPost, "/properties",
			map[string]any{"id": id, "metadata": map[string]string{"parcel": "3-b"}}), owner)
		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		testutil.AssertJSONContains(t, rr, "id", id)
		testutil.AssertJSONContains(t, rr, "owner", owner)
		testutil.AssertJSONContains(t, rr, "fractionalized", false)
	})

	t.Run("duplicate id conflicts", func(t *testing.T) {
		id := f.register(t)
		req := testutil.WithCaller(testutil.NewJSONRequest(t, http.MethodPost, "/properties",
			map[string]any{"id": id, "metadata": map[string]string{"parcel": "3-b"}}), owner)
		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusConflict, string(dErrors.CodeDuplicateProperty))
	})

	t.Run("malformed id rejected", func(t *testing.T) {
		req := testutil.WithCaller(testutil.NewJSONRequest(t, http.MethodPost, "/properties",
			map[string]any{"id": "nope", "metadata": map[string]string{}}), owner)
		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestGetProperty(t *testing.T) {
	f := newFixture(t)
	id := f.register(t)

	t.Run("found", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/properties/"+id))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "id", id)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		rr := testutil.DoRequest(f.router,
			testutil.NewRequest(t, http.MethodGet, "/properties/"+domain.NewPropertyID().String()))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})
}

func TestFractionalizeProperty(t *testing.T) {
	f := newFixture(t)

	t.Run("attested property mints a ledger", func(t *testing.T) {
		id := f.register(t)
		f.attach(t, id)

		req := testutil.WithCaller(testutil.NewJSONRequest(t, http.MethodPost, "/properties/"+id+"/fractionalize",
			map[string]uint64{"total_shares": 1_000}), owner)
		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatusOK(t, rr)
		got := testutil.UnmarshalResponse[fractionalizeResponse](t, rr)
		assert.True(t, got.Property.Fractionalized)
		require.NotNil(t, got.Ledger)
		assert.Equal(t, uint64(1_000), got.Ledger.TotalSupply)
		assert.Equal(t, uint64(1_000), got.Ledger.BalanceOf(domain.Address(owner)))
	})

	t.Run("unattested property rejected", func(t *testing.T) {
		id := f.register(t)
		req := testutil.WithCaller(testutil.NewJSONRequest(t, http.MethodPost, "/properties/"+id+"/fractionalize",
			map[string]uint64{"total_shares": 1_000}), owner)
		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatus(t, rr, http.StatusConflict)
	})
}
