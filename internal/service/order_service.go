package service

import (
	"context"
	"fmt"
	"time"

	"reelworks/internal/catalog"
	"reelworks/internal/domain"
	"reelworks/internal/pricing"
	"reelworks/internal/selection"
	"reelworks/internal/workflow"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService defines the interface for order session business logic.
// Every mutation returns the updated selection together with a freshly
// computed quote so callers can always display the live total.
type OrderService interface {
	Create(ctx context.Context) (*domain.OrderSelection, pricing.Quote, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*domain.OrderSelection, pricing.Quote, error)
	SetVideoType(ctx context.Context, sessionID uuid.UUID, videoTypeID string) (*domain.OrderSelection, pricing.Quote, error)
	SetCategory(ctx context.Context, sessionID uuid.UUID, categoryID string) (*domain.OrderSelection, pricing.Quote, error)
	SetQuantity(ctx context.Context, sessionID uuid.UUID, quantity int) (*domain.OrderSelection, pricing.Quote, error)
	ToggleAddOn(ctx context.Context, sessionID uuid.UUID, addOnID string) (*domain.OrderSelection, pricing.Quote, error)
	SetContact(ctx context.Context, sessionID uuid.UUID, contact domain.Contact) (*domain.OrderSelection, pricing.Quote, error)
	Submit(ctx context.Context, sessionID uuid.UUID) (*workflow.Result, error)
}

type orderService struct {
	catalog   *catalog.Catalog
	store     selection.Store
	submitter *workflow.Submitter
	logger    *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(cat *catalog.Catalog, store selection.Store, submitter *workflow.Submitter, logger *zap.Logger) OrderService {
	return &orderService{
		catalog:   cat,
		store:     store,
		submitter: submitter,
		logger:    logger,
	}
}

// Create starts a new order session with the default selection: the
// first catalog offering, a quantity of one, and no add-ons.
func (s *orderService) Create(ctx context.Context) (*domain.OrderSelection, pricing.Quote, error) {
	now := time.Now()
	sel := &domain.OrderSelection{
		SessionID:   uuid.New(),
		VideoTypeID: s.catalog.FirstVideoType().ID,
		Quantity:    1,
		AddOnIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Save(ctx, sel); err != nil {
		return nil, pricing.Quote{}, fmt.Errorf("failed to create selection: %w", err)
	}

	return sel, pricing.Calculate(s.catalog, sel), nil
}

// Get retrieves a selection and its current quote
func (s *orderService) Get(ctx context.Context, sessionID uuid.UUID) (*domain.OrderSelection, pricing.Quote, error) {
	sel, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, pricing.Quote{}, err
	}
	return sel, pricing.Calculate(s.catalog, sel), nil
}

// SetVideoType changes the selected offering. Unknown ids leave the
// selection untouched; a change always clears the category choice.
func (s *orderService) SetVideoType(ctx context.Context, sessionID uuid.UUID, videoTypeID string) (*domain.OrderSelection, pricing.Quote, error) {
	return s.mutate(ctx, sessionID, func(sel *domain.OrderSelection) {
		sel.SetVideoType(s.catalog, videoTypeID)
	})
}

// SetCategory changes the sub-category under the current offering. An
// empty id clears it; ids of other offerings are ignored.
func (s *orderService) SetCategory(ctx context.Context, sessionID uuid.UUID, categoryID string) (*domain.OrderSelection, pricing.Quote, error) {
	return s.mutate(ctx, sessionID, func(sel *domain.OrderSelection) {
		sel.SetCategory(s.catalog, categoryID)
	})
}

// SetQuantity stores the quantity as provided, without clamping
func (s *orderService) SetQuantity(ctx context.Context, sessionID uuid.UUID, quantity int) (*domain.OrderSelection, pricing.Quote, error) {
	return s.mutate(ctx, sessionID, func(sel *domain.OrderSelection) {
		sel.SetQuantity(quantity)
	})
}

// ToggleAddOn flips an add-on in or out of the selection
func (s *orderService) ToggleAddOn(ctx context.Context, sessionID uuid.UUID, addOnID string) (*domain.OrderSelection, pricing.Quote, error) {
	return s.mutate(ctx, sessionID, func(sel *domain.OrderSelection) {
		sel.ToggleAddOn(addOnID)
	})
}

// SetContact replaces the contact fields
func (s *orderService) SetContact(ctx context.Context, sessionID uuid.UUID, contact domain.Contact) (*domain.OrderSelection, pricing.Quote, error) {
	return s.mutate(ctx, sessionID, func(sel *domain.OrderSelection) {
		sel.Contact = contact
	})
}

// Submit runs the submit workflow for the session. On success the
// selection is removed from the store: the session is finished and the
// caller navigates to the returned payment URL.
func (s *orderService) Submit(ctx context.Context, sessionID uuid.UUID) (*workflow.Result, error) {
	sel, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result, err := s.submitter.Submit(ctx, sel, pricing.Calculate(s.catalog, sel))
	if err != nil {
		// The selection stays in the store so the user can retry.
		return nil, err
	}

	// The order is already relayed; a cleanup failure must not turn a
	// successful submission into an error for the caller. The stored
	// selection expires with its TTL either way.
	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("Failed to clear submitted selection",
			zap.String("session_id", sessionID.String()),
			zap.Error(err),
		)
		return result, nil
	}
	s.submitter.Forget(sessionID)

	return result, nil
}

func (s *orderService) mutate(ctx context.Context, sessionID uuid.UUID, apply func(*domain.OrderSelection)) (*domain.OrderSelection, pricing.Quote, error) {
	sel, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, pricing.Quote{}, err
	}

	apply(sel)
	sel.UpdatedAt = time.Now()

	if err := s.store.Save(ctx, sel); err != nil {
		return nil, pricing.Quote{}, fmt.Errorf("failed to save selection: %w", err)
	}

	return sel, pricing.Calculate(s.catalog, sel), nil
}
