// Package handler exposes the property lifecycle over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"landshare/internal/ledger"
	"landshare/internal/property"
	"landshare/pkg/domain"
	"landshare/pkg/platform/httputil"
)

// Service defines the property lifecycle operations.
type Service interface {
	Register(ctx context.Context, id domain.PropertyID, metadata []byte) (*property.Record, error)
	AttachAttestations(ctx context.Context, propertyID domain.PropertyID, verificationID domain.VerificationID, valuationID domain.ValuationID) (*property.Record, error)
	Fractionalize(ctx context.Context, propertyID domain.PropertyID, totalShares uint64) (*property.Record, *ledger.ShareLedger, error)
	Get(ctx context.Context, id domain.PropertyID) (*property.Record, error)
}

type Handler struct {
	logger     *slog.Logger
	properties Service
}

func New(properties Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, properties: properties}
}

// Register mounts the property routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/properties", func(r chi.Router) {
		r.Post("/", h.handleRegister)
		r.Get("/{id}", h.handleGet)
		r.Post("/{id}/attestations", h.handleAttach)
		r.Post("/{id}/fractionalize", h.handleFractionalize)
	})
}

type registerRequest struct {
	ID       string          `json:"id"`
	Metadata json.RawMessage `json:"metadata"`
}

type attachRequest struct {
	VerificationID string `json:"verification_id"`
	ValuationID    string `json:"valuation_id"`
}

type fractionalizeRequest struct {
	TotalShares uint64 `json:"total_shares"`
}

type fractionalizeResponse struct {
	Property *property.Record    `json:"property"`
	Ledger   *ledger.ShareLedger `json:"ledger"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[registerRequest](w, r, h.logger)
	if !ok {
		return
	}
	id, err := domain.ParsePropertyID(req.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	record, err := h.properties.Register(r.Context(), id, req.Metadata)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParsePropertyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	record, err := h.properties.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleAttach(w http.ResponseWriter, r *http.Request) {
	propertyID, err := domain.ParsePropertyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeJSON[attachRequest](w, r, h.logger)
	if !ok {
		return
	}
	verificationID, err := domain.ParseVerificationID(req.VerificationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	valuationID, err := domain.ParseValuationID(req.ValuationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	record, err := h.properties.AttachAttestations(r.Context(), propertyID, verificationID, valuationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleFractionalize(w http.ResponseWriter, r *http.Request) {
	propertyID, err := domain.ParsePropertyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeJSON[fractionalizeRequest](w, r, h.logger)
	if !ok {
		return
	}
	record, shareLedger, err := h.properties.Fractionalize(r.Context(), propertyID, req.TotalShares)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fractionalizeResponse{Property: record, Ledger: shareLedger})
}
