package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "landshare/pkg/domain-errors"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		code   dErrors.Code
		status int
	}{
		{dErrors.CodeBadRequest, http.StatusBadRequest},
		{dErrors.CodeInvalidInput, http.StatusBadRequest},
		{dErrors.CodeZeroAmount, http.StatusBadRequest},
		{dErrors.CodeUnauthorized, http.StatusForbidden},
		{dErrors.CodeRoleNotGranted, http.StatusForbidden},
		{dErrors.CodeNotFound, http.StatusNotFound},
		{dErrors.CodeConflict, http.StatusConflict},
		{dErrors.CodeDuplicateProperty, http.StatusConflict},
		{dErrors.CodeAlreadyFractionalized, http.StatusConflict},
		{dErrors.CodeListingNotOpen, http.StatusConflict},
		{dErrors.CodePoolAlreadyExists, http.StatusConflict},
		{dErrors.CodeInsufficientBalance, http.StatusUnprocessableEntity},
		{dErrors.CodeNothingToClaim, http.StatusUnprocessableEntity},
		{dErrors.CodeMismatchedAttestation, http.StatusUnprocessableEntity},
		{dErrors.CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, dErrors.New(tc.code, "detail"))
			assert.Equal(t, tc.status, rr.Code)
		})
	}
}

func TestWriteErrorBody(t *testing.T) {
	t.Run("client errors carry the description", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteError(rr, dErrors.New(dErrors.CodeInsufficientBalance, "balance too low"))

		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, string(dErrors.CodeInsufficientBalance), body["error"])
		assert.Equal(t, "balance too low", body["error_description"])
	})

	t.Run("internal errors omit the description", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteError(rr, errors.New("pg: connection refused"))

		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, string(dErrors.CodeInternal), body["error"])
		assert.Empty(t, body["error_description"])
		assert.NotContains(t, rr.Body.String(), "connection refused")
	})
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Amount uint64 `json:"amount"`
	}

	t.Run("valid body decodes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", jsonBody(`{"amount":5}`))
		rr := httptest.NewRecorder()
		got, ok := DecodeJSON[payload](rr, req, nil)
		require.True(t, ok)
		assert.Equal(t, uint64(5), got.Amount)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", jsonBody(`{"amount":5,"extra":1}`))
		rr := httptest.NewRecorder()
		_, ok := DecodeJSON[payload](rr, req, nil)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", jsonBody(`{`))
		rr := httptest.NewRecorder()
		_, ok := DecodeJSON[payload](rr, req, nil)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}
