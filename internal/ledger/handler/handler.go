// Package handler exposes share balances and transfers over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"landshare/internal/ledger"
	"landshare/pkg/domain"
	"landshare/pkg/platform/httputil"
)

// Service defines the ledger operations.
type Service interface {
	Transfer(ctx context.Context, propertyID domain.PropertyID, to domain.Address, amount uint64) (*ledger.ShareLedger, error)
	BalanceOf(ctx context.Context, propertyID domain.PropertyID, holder domain.Address) (uint64, error)
	GetLedger(ctx context.Context, propertyID domain.PropertyID) (*ledger.ShareLedger, error)
}

type Handler struct {
	logger  *slog.Logger
	ledgers Service
}

func New(ledgers Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, ledgers: ledgers}
}

// Register mounts the ledger routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/ledger/{propertyID}", func(r chi.Router) {
		r.Get("/", h.handleGetLedger)
		r.Post("/transfers", h.handleTransfer)
		r.Get("/balances/{addr}", h.handleBalance)
	})
}

type transferRequest struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type balanceResponse struct {
	PropertyID domain.PropertyID `json:"property_id"`
	Holder     domain.Address    `json:"holder"`
	Balance    uint64            `json:"balance"`
}

func (h *Handler) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	propertyID, err := domain.ParsePropertyID(chi.URLParam(r, "propertyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	shareLedger, err := h.ledgers.GetLedger(r.Context(), propertyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, shareLedger)
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	propertyID, err := domain.ParsePropertyID(chi.URLParam(r, "propertyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeJSON[transferRequest](w, r, h.logger)
	if !ok {
		return
	}
	to, err := domain.ParseAddress(req.To)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	shareLedger, err := h.ledgers.Transfer(r.Context(), propertyID, to, req.Amount)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, shareLedger)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	propertyID, err := domain.ParsePropertyID(chi.URLParam(r, "propertyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	holder, err := domain.ParseAddress(chi.URLParam(r, "addr"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	balance, err := h.ledgers.BalanceOf(r.Context(), propertyID, holder)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, balanceResponse{
		PropertyID: propertyID,
		Holder:     holder,
		Balance:    balance,
	})
}
