package query

import (
	"context"

	"github.com/esouk/onboarding/internal/onboarding/domain"
	"github.com/esouk/onboarding/internal/onboarding/session"
	"github.com/esouk/onboarding/internal/onboarding/wizard"
)

// GetStateQuery asks for the onboarding state of a vendor
type GetStateQuery struct {
	VendorID string
}

// StateResult is the state together with its derived values
type StateResult struct {
	State       domain.State        `json:"state"`
	Step        string              `json:"step"`
	Progress    int                 `json:"progress"`
	Complete    bool                `json:"complete"`
	PendingShop *domain.ShopRequest `json:"pendingShop,omitempty"`
}

// GetStateHandler handles state queries
type GetStateHandler struct {
	sessions *session.Registry
}

func NewGetStateHandler(sessions *session.Registry) *GetStateHandler {
	return &GetStateHandler{sessions: sessions}
}

func (h *GetStateHandler) Handle(ctx context.Context, q GetStateQuery) StateResult {
	s := h.sessions.Get(ctx, q.VendorID)
	return Describe(s.State(), s.PendingShop())
}

// Describe derives the reported values from a state snapshot
func Describe(state domain.State, pending *domain.ShopRequest) StateResult {
	return StateResult{
		State:       state,
		Step:        state.CurrentStep.String(),
		Progress:    session.Progress(state),
		Complete:    session.IsComplete(state),
		PendingShop: pending,
	}
}

// GetProgressQuery asks for the progress of a vendor's onboarding
type GetProgressQuery struct {
	VendorID string
}

// ProgressResult reports how far the wizard is
type ProgressResult struct {
	Step       string `json:"step"`
	Percentage int    `json:"percentage"`
	Products   int    `json:"products"`
	Complete   bool   `json:"complete"`
}

// GetProgressHandler handles progress queries
type GetProgressHandler struct {
	sessions *session.Registry
}

func NewGetProgressHandler(sessions *session.Registry) *GetProgressHandler {
	return &GetProgressHandler{sessions: sessions}
}

func (h *GetProgressHandler) Handle(ctx context.Context, q GetProgressQuery) ProgressResult {
	s := h.sessions.Get(ctx, q.VendorID)
	state := s.State()
	return ProgressResult{
		Step:       state.CurrentStep.String(),
		Percentage: s.ProgressPercentage(),
		Products:   len(state.Products),
		Complete:   s.IsOnboardingComplete(),
	}
}

// GetProductQuery asks for the product wizard of a vendor
type GetProductQuery struct {
	VendorID string
}

// GetProductHandler handles product wizard queries
type GetProductHandler struct {
	sessions *session.Registry
}

func NewGetProductHandler(sessions *session.Registry) *GetProductHandler {
	return &GetProductHandler{sessions: sessions}
}

func (h *GetProductHandler) Handle(ctx context.Context, q GetProductQuery) wizard.View {
	return h.sessions.Get(ctx, q.VendorID).ProductView()
}
