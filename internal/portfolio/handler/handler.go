// Package handler exposes the portfolio read model over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"landshare/internal/portfolio"
	"landshare/pkg/domain"
	"landshare/pkg/platform/httputil"
	"landshare/pkg/requestcontext"
)

// Service defines the portfolio query.
type Service interface {
	Get(ctx context.Context, addr domain.Address) (*portfolio.View, error)
}

type Handler struct {
	logger     *slog.Logger
	portfolios Service
}

func New(portfolios Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, portfolios: portfolios}
}

// Register mounts the portfolio routes. The bare route serves the caller's
// own portfolio; the parameterized route serves any address.
func (h *Handler) Register(r chi.Router) {
	r.Get("/portfolio", h.handleOwn)
	r.Get("/portfolio/{addr}", h.handleByAddress)
}

func (h *Handler) handleOwn(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, requestcontext.Caller(r.Context()))
}

func (h *Handler) handleByAddress(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(chi.URLParam(r, "addr"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.serve(w, r, addr)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, addr domain.Address) {
	view, err := h.portfolios.Get(r.Context(), addr)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}
