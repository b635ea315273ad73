// Package handler exposes the marketplace over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"landshare/internal/market"
	"landshare/pkg/domain"
	"landshare/pkg/platform/httputil"
)

// Service defines the marketplace operations.
type Service interface {
	CreateListing(ctx context.Context, propertyID domain.PropertyID, shares, pricePerShare uint64) (*market.Listing, error)
	Buy(ctx context.Context, listingID domain.ListingID) (*market.Listing, error)
	Cancel(ctx context.Context, listingID domain.ListingID) (*market.Listing, error)
	Get(ctx context.Context, id domain.ListingID) (*market.Listing, error)
	OpenListings(ctx context.Context, propertyID domain.PropertyID) ([]*market.Listing, error)
}

type Handler struct {
	logger *slog.Logger
	market Service
}

func New(marketSvc Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, market: marketSvc}
}

// Register mounts the marketplace routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/listings", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Post("/{id}/buy", h.handleBuy)
		r.Post("/{id}/cancel", h.handleCancel)
	})
	r.Get("/properties/{id}/listings", h.handleOpenListings)
}

type createListingRequest struct {
	PropertyID    string `json:"property_id"`
	Shares        uint64 `json:"shares"`
	PricePerShare uint64 `json:"price_per_share"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[createListingRequest](w, r, h.logger)
	if !ok {
		return
	}
	propertyID, err := domain.ParsePropertyID(req.PropertyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	listing, err := h.market.CreateListing(r.Context(), propertyID, req.Shares, req.PricePerShare)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, listing)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseListingID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	listing, err := h.market.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listing)
}

func (h *Handler) handleBuy(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseListingID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	listing, err := h.market.Buy(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listing)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseListingID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	listing, err := h.market.Cancel(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listing)
}

func (h *Handler) handleOpenListings(w http.ResponseWriter, r *http.Request) {
	propertyID, err := domain.ParsePropertyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	listings, err := h.market.OpenListings(r.Context(), propertyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]*market.Listing{"listings": listings})
}
