package auth

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landshare/pkg/domain"
	"landshare/pkg/requestcontext"
)

const signingKey = "test-signing-key"

func mintToken(t *testing.T, key, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": subject})
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func TestHS256Verifier(t *testing.T) {
	verifier := NewHS256Verifier(signingKey)
	addr := "0x00000000000000000000000000000000000000aa"

	t.Run("valid token yields the subject address", func(t *testing.T) {
		got, err := verifier.Verify(mintToken(t, signingKey, addr))
		require.NoError(t, err)
		assert.Equal(t, domain.Address(addr), got)
	})

	t.Run("wrong key rejected", func(t *testing.T) {
		_, err := verifier.Verify(mintToken(t, "other-key", addr))
		assert.Error(t, err)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := verifier.Verify("not.a.token")
		assert.Error(t, err)
	})

	t.Run("non-address subject rejected", func(t *testing.T) {
		_, err := verifier.Verify(mintToken(t, signingKey, "alice@example.com"))
		assert.Error(t, err)
	})
}

func TestRequireCaller(t *testing.T) {
	verifier := NewHS256Verifier(signingKey)
	logger := slog.New(slog.DiscardHandler)
	addr := "0x00000000000000000000000000000000000000aa"

	var seen domain.Address
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.Caller(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireCaller(verifier, logger)(next)

	t.Run("missing header rejected", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "missing_token")
	})

	t.Run("invalid token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, "other-key", addr))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid_token")
	})

	t.Run("valid token injects the caller", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, signingKey, addr))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, domain.Address(addr), seen)
	})
}
