package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/esouk/onboarding/internal/onboarding/domain"
	"github.com/esouk/onboarding/internal/onboarding/session"
	"github.com/esouk/onboarding/internal/onboarding/wizard"
)

func TestGetStateHandler_FreshSession(t *testing.T) {
	sessions := session.NewRegistry(session.Dependencies{})
	result := NewGetStateHandler(sessions).Handle(context.Background(), GetStateQuery{VendorID: "v1"})

	assert.Equal(t, domain.NewState(), result.State)
	assert.Equal(t, "CREATE_SHOP", result.Step)
	assert.Zero(t, result.Progress)
	assert.False(t, result.Complete)
	assert.Nil(t, result.PendingShop)
}

func TestDescribe(t *testing.T) {
	state := domain.State{
		CurrentStep: domain.StepAddProducts,
		ShopID:      "shop-1",
		Products:    []domain.ProductSummary{{ID: "p1"}, {ID: "p2"}},
	}
	result := Describe(state, nil)
	assert.Equal(t, "ADD_PRODUCTS", result.Step)
	assert.Equal(t, 70, result.Progress)

	state.CurrentStep = domain.StepCompleted
	result = Describe(state, nil)
	assert.Equal(t, 100, result.Progress)
	assert.True(t, result.Complete)
}

func TestGetProgressAndProductHandlers(t *testing.T) {
	sessions := session.NewRegistry(session.Dependencies{})
	ctx := context.Background()

	progress := NewGetProgressHandler(sessions).Handle(ctx, GetProgressQuery{VendorID: "v1"})
	assert.Equal(t, ProgressResult{Step: "CREATE_SHOP"}, progress)

	view := NewGetProductHandler(sessions).Handle(ctx, GetProductQuery{VendorID: "v1"})
	assert.Equal(t, wizard.PhaseProductInfo, view.Phase)
	assert.False(t, view.CanSubmit)
}
