package wizard

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esouk/onboarding/internal/onboarding/domain"
)

type fakeCreator struct {
	calls    int
	received domain.ProductSubmission
	resp     *domain.ProductCreated
	err      error
}

func (f *fakeCreator) CreateProduct(_ context.Context, s domain.ProductSubmission) (*domain.ProductCreated, error) {
	f.calls++
	f.received = s
	return f.resp, f.err
}

func mugAssembly(t *testing.T) *ProductAssembly {
	t.Helper()

	a := NewProductAssembly()
	require.NoError(t, a.SetProductInfo(domain.ProductInfo{Name: "Mug", Category: "Home", Price: 9.99}))
	a.Builder().Replace([]domain.Attribute{{Name: "size", Values: []string{"S", "M"}}})
	require.NoError(t, a.GoToVariants())
	require.NoError(t, a.AddVariant(map[string]string{"size": "S"}, 5))
	require.NoError(t, a.AddVariant(map[string]string{"size": "M"}, 2))
	return a
}

func TestProductAssembly_PhasesAdvanceForward(t *testing.T) {
	a := NewProductAssembly()
	assert.Equal(t, PhaseProductInfo, a.Phase())

	assert.ErrorIs(t, a.GoToVariants(), ErrWrongPhase)
	assert.ErrorIs(t, a.AddVariant(map[string]string{}, 1), ErrWrongPhase)

	require.NoError(t, a.SetProductInfo(domain.ProductInfo{Name: " Mug ", Category: "Home", Price: 3}))
	assert.Equal(t, PhaseAttributes, a.Phase())
	assert.Equal(t, "Mug", a.Info().Name)
	assert.ErrorIs(t, a.SetProductInfo(domain.ProductInfo{Name: "Cup", Category: "Home", Price: 3}), ErrWrongPhase)

	assert.ErrorIs(t, a.GoToVariants(), ErrInvalidAttributes)
	assert.Equal(t, PhaseAttributes, a.Phase())

	a.Builder().Replace([]domain.Attribute{{Name: "size", Values: []string{"S"}}})
	require.NoError(t, a.GoToVariants())
	assert.Equal(t, PhaseVariants, a.Phase())
}

func TestProductAssembly_InvalidProductInfo(t *testing.T) {
	tests := []struct {
		name string
		info domain.ProductInfo
	}{
		{"missing name", domain.ProductInfo{Category: "Home", Price: 1}},
		{"blank category", domain.ProductInfo{Name: "Mug", Category: "   ", Price: 1}},
		{"zero price", domain.ProductInfo{Name: "Mug", Category: "Home", Price: 0}},
		{"negative price", domain.ProductInfo{Name: "Mug", Category: "Home", Price: -2}},
		{"not a number", domain.ProductInfo{Name: "Mug", Category: "Home", Price: math.NaN()}},
		{"infinite", domain.ProductInfo{Name: "Mug", Category: "Home", Price: math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewProductAssembly()
			assert.ErrorIs(t, a.SetProductInfo(tt.info), ErrInvalidProductInfo)
			assert.Equal(t, PhaseProductInfo, a.Phase())
		})
	}
}

func TestProductAssembly_CanSubmit(t *testing.T) {
	a := NewProductAssembly()
	assert.False(t, a.CanSubmit())

	require.NoError(t, a.SetProductInfo(domain.ProductInfo{Name: "Mug", Category: "Home", Price: 9.99}))
	a.Builder().Replace([]domain.Attribute{{Name: "size", Values: []string{"S"}}})
	require.NoError(t, a.GoToVariants())
	assert.False(t, a.CanSubmit())

	require.NoError(t, a.AddVariant(map[string]string{"size": "S"}, 1))
	assert.True(t, a.CanSubmit())

	require.NoError(t, a.RemoveVariant(0))
	assert.False(t, a.CanSubmit())
}

func TestProductAssembly_SubmitSummarizes(t *testing.T) {
	a := mugAssembly(t)
	creator := &fakeCreator{resp: &domain.ProductCreated{ID: "prod-1"}}

	summary, err := a.Submit(context.Background(), "shop-1", creator)
	require.NoError(t, err)

	assert.Equal(t, domain.ProductSummary{
		ID:           "prod-1",
		Name:         "Mug",
		Category:     "Home",
		VariantCount: 2,
		TotalStock:   7,
		Price:        9.99,
	}, summary)

	assert.Equal(t, "shop-1", creator.received.ShopID)
	assert.Equal(t, []domain.Attribute{{Name: "size", Values: []string{"S", "M"}}}, creator.received.Attributes)
	assert.Equal(t, 7, creator.received.TotalStock())

	assert.Equal(t, PhaseProductInfo, a.Phase())
	assert.Empty(t, a.Variants())
	assert.Equal(t, 1, a.Builder().Len())
}

func TestProductAssembly_SubmitWithoutIDGetsFallback(t *testing.T) {
	a := mugAssembly(t)

	summary, err := a.Submit(context.Background(), "shop-1", &fakeCreator{resp: &domain.ProductCreated{}})
	require.NoError(t, err)
	assert.NotEmpty(t, summary.ID)
}

func TestProductAssembly_SubmitFailsFast(t *testing.T) {
	creator := &fakeCreator{}

	a := NewProductAssembly()
	_, err := a.Submit(context.Background(), "shop-1", creator)
	assert.ErrorIs(t, err, ErrInvalidProductInfo)

	a = mugAssembly(t)
	_, err = a.Submit(context.Background(), " ", creator)
	assert.ErrorIs(t, err, ErrMissingShop)

	a = mugAssembly(t)
	require.NoError(t, a.RemoveVariant(0))
	require.NoError(t, a.RemoveVariant(0))
	_, err = a.Submit(context.Background(), "shop-1", creator)
	assert.ErrorIs(t, err, ErrNoVariants)

	assert.Zero(t, creator.calls)
}

func TestProductAssembly_SubmitFailureKeepsState(t *testing.T) {
	a := mugAssembly(t)
	require.NoError(t, a.AttachImage(domain.ImageRef{Key: "k1", ContentType: "image/png", Size: 10}))
	creator := &fakeCreator{err: errors.New("Internal server error. Please try again later.")}

	_, err := a.Submit(context.Background(), "shop-1", creator)
	require.Error(t, err)

	assert.Equal(t, PhaseVariants, a.Phase())
	assert.Len(t, a.Variants(), 2)
	assert.Len(t, a.Images(), 1)
	assert.Equal(t, "Mug", a.Info().Name)
	assert.Equal(t, "Internal server error. Please try again later.", a.LastError())

	creator.err = nil
	creator.resp = &domain.ProductCreated{ID: "prod-2"}
	summary, err := a.Submit(context.Background(), "shop-1", creator)
	require.NoError(t, err)
	assert.Equal(t, "prod-2", summary.ID)
	assert.Empty(t, a.LastError())
}

func TestProductAssembly_BackToAttributes(t *testing.T) {
	a := NewProductAssembly()
	require.NoError(t, a.SetProductInfo(domain.ProductInfo{Name: "Tee", Category: "Fashion", Price: 15}))
	a.Builder().Replace([]domain.Attribute{{Name: "size", Values: []string{"S", "M", "L"}}})
	require.NoError(t, a.GoToVariants())
	for _, size := range []string{"S", "M", "L"} {
		require.NoError(t, a.AddVariant(map[string]string{"size": size}, 1))
	}
	require.ErrorIs(t, a.AddVariant(map[string]string{"size": "L"}, 1), ErrDuplicateVariant)
	before := a.Attributes()

	require.NoError(t, a.BackToAttributes())

	assert.Equal(t, PhaseAttributes, a.Phase())
	assert.Empty(t, a.Variants())
	assert.False(t, a.Duplicate())
	assert.Equal(t, before, a.Attributes())
	assert.ErrorIs(t, a.BackToAttributes(), ErrWrongPhase)

	require.NoError(t, a.GoToVariants())
	assert.Equal(t, before, a.Attributes())
}

func TestProductAssembly_Images(t *testing.T) {
	a := NewProductAssembly()

	assert.ErrorIs(t, a.AttachImage(domain.ImageRef{Key: "a", ContentType: "application/pdf", Size: 1}), ErrInvalidImage)
	assert.ErrorIs(t, a.AttachImage(domain.ImageRef{Key: "b", ContentType: "image/png", Size: 6 << 20}), ErrInvalidImage)
	require.NoError(t, a.AttachImage(domain.ImageRef{Key: "c", ContentType: "image/webp", Size: 1024}))

	_, err := a.RemoveImage(3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	ref, err := a.RemoveImage(0)
	require.NoError(t, err)
	assert.Equal(t, "c", ref.Key)
	assert.Empty(t, a.Images())
}

func TestProductAssembly_ResetIsIdempotent(t *testing.T) {
	a := mugAssembly(t)

	a.ResetForNewProduct()
	first := a.View()
	a.ResetForNewProduct()
	second := a.View()

	assert.Equal(t, first, second)
	assert.Equal(t, PhaseProductInfo, second.Phase)
	assert.Empty(t, second.Variants)
	assert.Len(t, second.Slots, 1)
	assert.False(t, second.CanSubmit)
}
