package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/playcv/cartd/internal/checkout"
	"github.com/playcv/cartd/internal/domain"
	"github.com/playcv/cartd/internal/remote"
	"github.com/playcv/cartd/internal/session"
	"github.com/playcv/cartd/internal/store"
)

type Handler struct {
	registry *session.Registry
	timeout  time.Duration
	log      *zap.Logger
}

func NewHandler(registry *session.Registry, timeout time.Duration, log *zap.Logger) *Handler {
	return &Handler{
		registry: registry,
		timeout:  timeout,
		log:      log,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/cart", h.GetCart)
	r.Post("/cart/items", h.AddItem)
	r.Delete("/cart/items/{id}", h.RemoveItem)
	r.Delete("/cart", h.ClearCart)
	r.Post("/cart/sync", h.SyncCart)
	r.Post("/checkout", h.BeginCheckout)
	r.Post("/checkout/callback", h.CheckoutCallback)
	r.Post("/logout", h.Logout)
}

type AddItemRequestDTO struct {
	ProductRef    string          `json:"product_ref"`
	Title         string          `json:"title"`
	ThumbnailURL  string          `json:"thumbnail_url"`
	UploaderLabel string          `json:"uploader_label"`
	Description   string          `json:"description"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

type CheckoutRequestDTO struct {
	SelectedIDs []string `json:"selected_ids"`
	SelectAll   bool     `json:"select_all"`
}

type CallbackRequestDTO struct {
	Reference string `json:"reference"`
}

type CartResponseDTO struct {
	Items   []domain.LineItem `json:"items"`
	Warning string            `json:"warning,omitempty"`
}

type CheckoutResponseDTO struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// GetCart reconciles against the remote cart and returns the result. A
// fetch failure is non-fatal: the last-known-good local items come back
// with a warning instead of an empty cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	sess, ok := h.attach(w, r)
	if !ok {
		return
	}

	resp := CartResponseDTO{}
	if err := sess.Syncer.FetchAndReconcile(ctx); err != nil {
		if errors.Is(err, remote.ErrUnauthorized) {
			respondError(w, http.StatusUnauthorized, "unauthorized", "session expired, sign in again")
			return
		}
		h.log.Warn("cart fetch failed", zap.Error(err))
		resp.Warning = "failed to load cart"
	}
	resp.Items = sess.Store.Items()
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) SyncCart(w http.ResponseWriter, r *http.Request) {
	h.GetCart(w, r)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	sess, ok := h.attach(w, r)
	if !ok {
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	item := domain.LineItem{
		ProductRef:    req.ProductRef,
		Title:         req.Title,
		ThumbnailURL:  req.ThumbnailURL,
		UploaderLabel: req.UploaderLabel,
		Description:   req.Description,
		UnitPrice:     req.UnitPrice,
		Quantity:      1,
	}
	if err := sess.Store.AddItem(ctx, item); err != nil {
		if errors.Is(err, store.ErrEmptyProductRef) {
			respondError(w, http.StatusBadRequest, "invalid_product_ref", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, CartResponseDTO{Items: sess.Store.Items()})
}

// RemoveItem deletes the record remotely, drops it locally, and reconciles
// to pull the authoritative post-mutation state.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	sess, ok := h.attach(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_id", "item id is required")
		return
	}

	if err := sess.Cart.Remove(ctx, id); err != nil {
		if errors.Is(err, remote.ErrUnauthorized) {
			respondError(w, http.StatusUnauthorized, "unauthorized", "session expired, sign in again")
			return
		}
		respondError(w, http.StatusBadGateway, "remove_failed", "could not remove item from cart")
		return
	}
	sess.Store.RemoveItem(ctx, id)

	resp := CartResponseDTO{}
	if err := sess.Syncer.FetchAndReconcile(ctx); err != nil {
		h.log.Warn("post-removal reconcile failed", zap.Error(err))
		resp.Warning = "failed to load cart"
	}
	resp.Items = sess.Store.Items()
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	sess, ok := h.attach(w, r)
	if !ok {
		return
	}

	sess.Store.Clear(ctx)
	respondJSON(w, http.StatusOK, CartResponseDTO{Items: []domain.LineItem{}})
}

func (h *Handler) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	sess, ok := h.attach(w, r)
	if !ok {
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sel := domain.NewSelection(req.SelectedIDs...)
	if req.SelectAll {
		sel.SelectAll(sess.Store.Items())
	}

	auth, err := sess.Checkout.Begin(ctx, userFromContext(r.Context()), sel)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CheckoutResponseDTO{
		Reference:        auth.Reference,
		AuthorizationURL: auth.AuthorizationURL,
	})
}

// CheckoutCallback resolves the in-flight attempt when the user returns
// from the provider. The outcome is verified with the provider by
// reference; an empty body or missing reference counts as the dialog being
// closed without completing.
func (h *Handler) CheckoutCallback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	sess, ok := h.attach(w, r)
	if !ok {
		return
	}

	var req CallbackRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = CallbackRequestDTO{}
	}

	var err error
	if req.Reference == "" {
		err = sess.Checkout.HandleProviderResult(ctx, domain.ProviderResult{
			Status: domain.ProviderAbandoned,
		})
	} else {
		err = sess.Checkout.VerifyAndHandle(ctx, req.Reference)
	}
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{Items: sess.Store.Items()})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	user := userFromContext(r.Context())
	h.registry.Detach(ctx, user.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

// attach resolves the caller's session, creating it on first touch. The
// initial reconcile failing is not fatal here; the first GetCart surfaces
// it as a warning.
func (h *Handler) attach(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	user := userFromContext(r.Context())
	if user.ID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return nil, false
	}

	sess, err := h.registry.Attach(r.Context(), user)
	if err != nil {
		h.log.Warn("session attach reconcile failed", zap.Error(err))
	}
	return sess, true
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrNotAuthenticated):
		respondError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, checkout.ErrEmptySelection):
		respondError(w, http.StatusBadRequest, "empty_selection", err.Error())
	case errors.Is(err, checkout.ErrNotIdle):
		respondError(w, http.StatusConflict, "checkout_in_progress", err.Error())
	case errors.Is(err, checkout.ErrPaymentFailed):
		respondError(w, http.StatusPaymentRequired, "payment_failed", err.Error())
	case errors.Is(err, checkout.ErrPaymentAbandoned):
		respondError(w, http.StatusPaymentRequired, "payment_abandoned", err.Error())
	case errors.Is(err, checkout.ErrPaidNotRecorded):
		// Money likely moved; this must read as "success but needs
		// follow-up", never as a plain failure.
		respondError(w, http.StatusBadGateway, "payment_unrecorded", err.Error())
	case errors.Is(err, checkout.ErrNoAttempt), errors.Is(err, checkout.ErrReferenceMismatch):
		respondError(w, http.StatusConflict, "no_matching_attempt", err.Error())
	case errors.Is(err, remote.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "unauthorized", "session expired, sign in again")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
