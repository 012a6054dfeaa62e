package command

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/esouk/onboarding/internal/onboarding/domain"
	"github.com/esouk/onboarding/internal/onboarding/session"
	"github.com/esouk/onboarding/internal/onboarding/wizard"
	"github.com/esouk/onboarding/pkg/backend"
)

// ShopLogo is an uploaded logo that has not been stored yet
type ShopLogo struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// stageLogo validates the shop form and the logo before any bytes are
// stored, then puts the logo in the image store and references it from the
// returned form.
func stageLogo(ctx context.Context, images domain.ImageStore, shop domain.ShopRequest, logo *ShopLogo) (domain.ShopRequest, error) {
	shop, err := session.ValidateShop(shop)
	if err != nil || logo == nil {
		return shop, err
	}

	candidate := domain.ImageRef{Filename: logo.Filename, ContentType: logo.ContentType, Size: logo.Size}
	if err := wizard.CheckImage(candidate); err != nil {
		return shop, err
	}
	if images == nil {
		return shop, errors.New("failed to store logo: no image store")
	}

	ref, err := images.Put(ctx, logo.Content, candidate)
	if err != nil {
		return shop, fmt.Errorf("failed to store logo: %w", err)
	}
	shop.Logo = &ref
	return shop, nil
}

// CreateShopCommand creates a shop in one go, without the confirmation step
type CreateShopCommand struct {
	VendorID string
	Shop     domain.ShopRequest
	Logo     *ShopLogo
}

// CreateShopHandler handles direct shop creation
type CreateShopHandler struct {
	sessions *session.Registry
	images   domain.ImageStore
}

func NewCreateShopHandler(sessions *session.Registry, images domain.ImageStore) *CreateShopHandler {
	return &CreateShopHandler{sessions: sessions, images: images}
}

func (h *CreateShopHandler) Handle(ctx context.Context, cmd CreateShopCommand) (*domain.ShopCreated, error) {
	shop, err := stageLogo(ctx, h.images, cmd.Shop, cmd.Logo)
	if err != nil {
		return nil, err
	}

	created, err := h.sessions.Get(ctx, cmd.VendorID).CreateShop(ctx, shop)
	if err != nil {
		countBackendFailure("create_shop", err)
		return nil, err
	}
	shopsCreated.Inc()
	return created, nil
}

// PrepareShopCommand holds the shop form until the vendor confirms it
type PrepareShopCommand struct {
	VendorID string
	Shop     domain.ShopRequest
	Logo     *ShopLogo
}

// PrepareShopHandler handles the shop form submission
type PrepareShopHandler struct {
	sessions *session.Registry
	images   domain.ImageStore
}

func NewPrepareShopHandler(sessions *session.Registry, images domain.ImageStore) *PrepareShopHandler {
	return &PrepareShopHandler{sessions: sessions, images: images}
}

func (h *PrepareShopHandler) Handle(ctx context.Context, cmd PrepareShopCommand) error {
	shop, err := stageLogo(ctx, h.images, cmd.Shop, cmd.Logo)
	if err != nil {
		return err
	}
	return h.sessions.Get(ctx, cmd.VendorID).PrepareShop(ctx, shop)
}

// ConfirmShopCommand creates the prepared shop
type ConfirmShopCommand struct {
	VendorID string
}

// ConfirmShopHandler sends the prepared shop to the backend
type ConfirmShopHandler struct {
	sessions *session.Registry
}

func NewConfirmShopHandler(sessions *session.Registry) *ConfirmShopHandler {
	return &ConfirmShopHandler{sessions: sessions}
}

func (h *ConfirmShopHandler) Handle(ctx context.Context, cmd ConfirmShopCommand) (*domain.ShopCreated, error) {
	created, err := h.sessions.Get(ctx, cmd.VendorID).ConfirmShop(ctx)
	if err != nil {
		countBackendFailure("create_shop", err)
		return nil, err
	}
	shopsCreated.Inc()
	return created, nil
}

// CancelShopCommand drops the prepared shop
type CancelShopCommand struct {
	VendorID string
}

// CancelShopHandler discards a prepared shop
type CancelShopHandler struct {
	sessions *session.Registry
}

func NewCancelShopHandler(sessions *session.Registry) *CancelShopHandler {
	return &CancelShopHandler{sessions: sessions}
}

func (h *CancelShopHandler) Handle(ctx context.Context, cmd CancelShopCommand) error {
	return h.sessions.Get(ctx, cmd.VendorID).CancelShop(ctx)
}

// countBackendFailure counts errors reported by the backend client
func countBackendFailure(operation string, err error) {
	if _, ok := backend.AsAPIError(err); ok {
		backendFailures.WithLabelValues(operation).Inc()
	}
}
