// Package handler exposes role administration over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"landshare/pkg/domain"
	"landshare/pkg/platform/httputil"
)

// Service defines the role administration operations.
type Service interface {
	GrantVerifier(ctx context.Context, addr domain.Address) error
	RevokeVerifier(ctx context.Context, addr domain.Address) error
	GrantValuer(ctx context.Context, addr domain.Address) error
	RevokeValuer(ctx context.Context, addr domain.Address) error
	ListVerifiers(ctx context.Context) ([]domain.Address, error)
	ListValuers(ctx context.Context) ([]domain.Address, error)
}

type Handler struct {
	logger *slog.Logger
	access Service
}

func New(access Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, access: access}
}

// Register mounts the access routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/access", func(r chi.Router) {
		r.Get("/verifiers", h.handleList(Service.ListVerifiers))
		r.Post("/verifiers", h.handleGrant(Service.GrantVerifier))
		r.Delete("/verifiers/{addr}", h.handleRevoke(Service.RevokeVerifier))
		r.Get("/valuers", h.handleList(Service.ListValuers))
		r.Post("/valuers", h.handleGrant(Service.GrantValuer))
		r.Delete("/valuers/{addr}", h.handleRevoke(Service.RevokeValuer))
	})
}

type grantRequest struct {
	Address string `json:"address"`
}

type roleResponse struct {
	Address string `json:"address"`
	Granted bool   `json:"granted"`
}

func (h *Handler) handleGrant(op func(Service, context.Context, domain.Address) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := httputil.DecodeJSON[grantRequest](w, r, h.logger)
		if !ok {
			return
		}
		addr, err := domain.ParseAddress(req.Address)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		if err := op(h.access, r.Context(), addr); err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, roleResponse{Address: addr.String(), Granted: true})
	}
}

func (h *Handler) handleRevoke(op func(Service, context.Context, domain.Address) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addr, err := domain.ParseAddress(chi.URLParam(r, "addr"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		if err := op(h.access, r.Context(), addr); err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, roleResponse{Address: addr.String(), Granted: false})
	}
}

func (h *Handler) handleList(op func(Service, context.Context) ([]domain.Address, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		members, err := op(h.access, r.Context())
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string][]domain.Address{"members": members})
	}
}
