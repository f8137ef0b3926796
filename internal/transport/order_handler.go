package transport

import (
	"errors"
	"net/http"

	"reelworks/internal/catalog"
	"reelworks/internal/domain"
	"reelworks/internal/middleware"
	"reelworks/internal/pricing"
	"reelworks/internal/selection"
	"reelworks/internal/service"
	"reelworks/internal/workflow"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SetVideoTypeRequest selects the video type for an order
type SetVideoTypeRequest struct {
	VideoTypeID string `json:"video_type_id" validate:"required"`
}

// SetCategoryRequest selects the sub-category; an empty id clears it
type SetCategoryRequest struct {
	CategoryID string `json:"category_id"`
}

// SetQuantityRequest sets the number of videos. The value is stored
// as provided; range checks happen at submit time.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// ContactRequest carries the customer details for an order
type ContactRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Website  string `json:"website" validate:"required,url"`
	Brief    string `json:"brief"`
}

// CatalogResponse lists the offerings the order form renders
type CatalogResponse struct {
	VideoTypes []domain.VideoType `json:"video_types"`
	AddOns     []domain.AddOn     `json:"add_ons"`
}

// OrderResponse is returned from every selection operation so the
// client always has the current quote next to the selection
type OrderResponse struct {
	Selection *domain.OrderSelection `json:"selection"`
	Quote     pricing.Quote          `json:"quote"`
}

// SubmitResponse is returned after a successful submission
type SubmitResponse struct {
	RedirectURL     string `json:"redirect_url"`
	RedirectDelayMS int64  `json:"redirect_delay_ms"`
	Total           int    `json:"total"`
}

// OrderHandler handles HTTP requests for the order form
type OrderHandler struct {
	catalog      *catalog.Catalog
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(cat *catalog.Catalog, orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		catalog:      cat,
		orderService: orderService,
		logger:       logger,
	}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/catalog", h.GetCatalog)

	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetOrder)
			r.Put("/video-type", h.SetVideoType)
			r.Put("/category", h.SetCategory)
			r.Put("/quantity", h.SetQuantity)
			r.Put("/contact", h.SetContact)
			r.Post("/add-ons/{addOnID}/toggle", h.ToggleAddOn)
			r.Post("/submit", h.Submit)
		})
	})
}

// GetCatalog returns the video types and add-ons
func (h *OrderHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, CatalogResponse{
		VideoTypes: h.catalog.VideoTypes(),
		AddOns:     h.catalog.AddOns(),
	})
}

// CreateOrder starts a new order session with default choices
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	sel, quote, err := h.orderService.Create(r.Context())
	if err != nil {
		h.logger.Error("Failed to create order session", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	h.logger.Info("Order session created", zap.String("session_id", sel.SessionID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, OrderResponse{Selection: sel, Quote: quote})
}

// GetOrder returns the selection and its current quote
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	sel, quote, err := h.orderService.Get(r.Context(), sessionID)
	if err != nil {
		h.respondOrderError(w, err, "failed to get order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderResponse{Selection: sel, Quote: quote})
}

// SetVideoType selects the offering for the order
func (h *OrderHandler) SetVideoType(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req SetVideoTypeRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sel, quote, err := h.orderService.SetVideoType(r.Context(), sessionID, req.VideoTypeID)
	if err != nil {
		h.respondOrderError(w, err, "failed to set video type")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderResponse{Selection: sel, Quote: quote})
}

// SetCategory selects the sub-category under the current offering
func (h *OrderHandler) SetCategory(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req SetCategoryRequest
	if err := middleware.DecodeJSON(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sel, quote, err := h.orderService.SetCategory(r.Context(), sessionID, req.CategoryID)
	if err != nil {
		h.respondOrderError(w, err, "failed to set category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderResponse{Selection: sel, Quote: quote})
}

// SetQuantity sets the number of videos ordered
func (h *OrderHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req SetQuantityRequest
	if err := middleware.DecodeJSON(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sel, quote, err := h.orderService.SetQuantity(r.Context(), sessionID, req.Quantity)
	if err != nil {
		h.respondOrderError(w, err, "failed to set quantity")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderResponse{Selection: sel, Quote: quote})
}

// ToggleAddOn flips an add-on in or out of the order
func (h *OrderHandler) ToggleAddOn(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	addOnID := chi.URLParam(r, "addOnID")
	if addOnID == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing add-on id")
		return
	}

	sel, quote, err := h.orderService.ToggleAddOn(r.Context(), sessionID, addOnID)
	if err != nil {
		h.respondOrderError(w, err, "failed to toggle add-on")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderResponse{Selection: sel, Quote: quote})
}

// SetContact replaces the customer details on the order
func (h *OrderHandler) SetContact(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req ContactRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Contact validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sel, quote, err := h.orderService.SetContact(r.Context(), sessionID, domain.Contact{
		FullName: req.FullName,
		Email:    req.Email,
		Website:  req.Website,
		Brief:    req.Brief,
	})
	if err != nil {
		h.respondOrderError(w, err, "failed to set contact")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderResponse{Selection: sel, Quote: quote})
}

// Submit runs the submit workflow and returns the payment redirect
func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	result, err := h.orderService.Submit(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, selection.ErrSelectionNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, workflow.ErrQuantityOutOfRange), errors.Is(err, workflow.ErrContactInvalid):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, workflow.ErrSubmitInFlight), errors.Is(err, workflow.ErrAlreadySubmitted):
			middleware.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("Order submission failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusBadGateway, "failed to submit order, please try again")
		}
		return
	}

	h.logger.Info("Order submitted",
		zap.String("session_id", sessionID.String()),
		zap.Int("total", result.Total),
	)
	middleware.RespondWithJSON(w, http.StatusOK, SubmitResponse{
		RedirectURL:     result.RedirectURL,
		RedirectDelayMS: result.RedirectDelay.Milliseconds(),
		Total:           result.Total,
	})
}

func (h *OrderHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid session id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *OrderHandler) respondOrderError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, selection.ErrSelectionNotFound) {
		middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		return
	}

	h.logger.Error(message, zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, message)
}
