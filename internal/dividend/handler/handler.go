// Package handler exposes dividend deposits and claims over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"landshare/internal/dividend"
	"landshare/pkg/domain"
	"landshare/pkg/platform/httputil"
	"landshare/pkg/requestcontext"
)

// Service defines the dividend operations.
type Service interface {
	Deposit(ctx context.Context, propertyID domain.PropertyID, amount uint64) (*dividend.Pool, error)
	Claim(ctx context.Context, propertyID domain.PropertyID) (uint64, error)
	GetPool(ctx context.Context, propertyID domain.PropertyID) (*dividend.Pool, error)
	Entitlement(ctx context.Context, propertyID domain.PropertyID, holder domain.Address) (uint64, error)
}

type Handler struct {
	logger    *slog.Logger
	dividends Service
}

func New(dividends Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, dividends: dividends}
}

// Register mounts the dividend routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/dividends/{propertyID}", func(r chi.Router) {
		r.Get("/", h.handleGetPool)
		r.Get("/entitlement", h.handleEntitlement)
		r.Post("/deposits", h.handleDeposit)
		r.Post("/claims", h.handleClaim)
	})
}

type depositRequest struct {
	Amount uint64 `json:"amount"`
}

type claimResponse struct {
	PropertyID domain.PropertyID `json:"property_id"`
	Holder     domain.Address    `json:"holder"`
	Amount     uint64            `json:"amount"`
}

type entitlementResponse struct {
	PropertyID domain.PropertyID `json:"property_id"`
	Holder     domain.Address    `json:"holder"`
	Claimable  uint64            `json:"claimable"`
}

func (h *Handler) handleGetPool(w http.ResponseWriter, r *http.Request) {
	propertyID, err := domain.ParsePropertyID(chi.URLParam(r, "propertyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	pool, err := h.dividends.GetPool(r.Context(), propertyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pool)
}

func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	propertyID, err := domain.ParsePropertyID(chi.URLParam(r, "propertyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeJSON[depositRequest](w, r, h.logger)
	if !ok {
		return
	}
	pool, err := h.dividends.Deposit(r.Context(), propertyID, req.Amount)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pool)
}

func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	propertyID, err := domain.ParsePropertyID(chi.URLParam(r, "propertyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	amount, err := h.dividends.Claim(r.Context(), propertyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claimResponse{
		PropertyID: propertyID,
		Holder:     requestcontext.Caller(r.Context()),
		Amount:     amount,
	})
}

func (h *Handler) handleEntitlement(w http.ResponseWriter, r *http.Request) {
	propertyID, err := domain.ParsePropertyID(chi.URLParam(r, "propertyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	holder := requestcontext.Caller(r.Context())
	claimable, err := h.dividends.Entitlement(r.Context(), propertyID, holder)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entitlementResponse{
		PropertyID: propertyID,
		Holder:     holder,
		Claimable:  claimable,
	})
}
