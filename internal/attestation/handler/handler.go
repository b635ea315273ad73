// Package handler exposes attestation minting over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"landshare/internal/attestation"
	"landshare/pkg/domain"
	"landshare/pkg/platform/httputil"
)

// Service defines the attestation operations.
type Service interface {
	MintVerification(ctx context.Context, propertyID domain.PropertyID, docPointer domain.DocumentPointer) (*attestation.VerificationRecord, error)
	MintValuation(ctx context.Context, propertyID domain.PropertyID, amount uint64, currency string, docPointer domain.DocumentPointer) (*attestation.ValuationRecord, error)
	GetVerification(ctx context.Context, id domain.VerificationID) (*attestation.VerificationRecord, error)
	GetValuation(ctx context.Context, id domain.ValuationID) (*attestation.ValuationRecord, error)
}

type Handler struct {
	logger       *slog.Logger
	attestations Service
}

func New(attestations Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, attestations: attestations}
}

// Register mounts the attestation routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/attestations", func(r chi.Router) {
		r.Post("/verifications", h.handleMintVerification)
		r.Get("/verifications/{id}", h.handleGetVerification)
		r.Post("/valuations", h.handleMintValuation)
		r.Get("/valuations/{id}", h.handleGetValuation)
	})
}

type mintVerificationRequest struct {
	PropertyID      string `json:"property_id"`
	DocumentPointer []byte `json:"document_pointer"`
}

type mintValuationRequest struct {
	PropertyID      string `json:"property_id"`
	Amount          uint64 `json:"amount"`
	Currency        string `json:"currency"`
	DocumentPointer []byte `json:"document_pointer"`
}

func (h *Handler) handleMintVerification(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[mintVerificationRequest](w, r, h.logger)
	if !ok {
		return
	}
	propertyID, err := domain.ParsePropertyID(req.PropertyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	record, err := h.attestations.MintVerification(r.Context(), propertyID, req.DocumentPointer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleMintValuation(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[mintValuationRequest](w, r, h.logger)
	if !ok {
		return
	}
	propertyID, err := domain.ParsePropertyID(req.PropertyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	record, err := h.attestations.MintValuation(r.Context(), propertyID, req.Amount, req.Currency, req.DocumentPointer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleGetVerification(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseVerificationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	record, err := h.attestations.GetVerification(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleGetValuation(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseValuationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	record, err := h.attestations.GetValuation(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}
