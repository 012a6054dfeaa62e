package command

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/esouk/onboarding/internal/onboarding/domain"
	"github.com/esouk/onboarding/internal/onboarding/session"
	"github.com/esouk/onboarding/internal/onboarding/wizard"
	"github.com/esouk/onboarding/pkg/logger"
)

// EditProductCommand is one edit of the product wizard. Exactly one of the
// edit fields is honoured, checked in declaration order.
type EditProductCommand struct {
	VendorID string

	Info          *domain.ProductInfo
	Attributes    []domain.Attribute
	Variant       *VariantInput
	RemoveVariant *int
	Back          bool
}

// VariantInput is one attribute-value selection with its stock
type VariantInput struct {
	Selection map[string]string `json:"attributes"`
	Stock     int               `json:"stock"`
}

// EditProductHandler applies wizard edits that stay local to the service
type EditProductHandler struct {
	sessions *session.Registry
}

func NewEditProductHandler(sessions *session.Registry) *EditProductHandler {
	return &EditProductHandler{sessions: sessions}
}

func (h *EditProductHandler) Handle(ctx context.Context, cmd EditProductCommand) (wizard.View, error) {
	s := h.sessions.Get(ctx, cmd.VendorID)

	view, err := s.EditProduct(func(a *wizard.ProductAssembly) error {
		switch {
		case cmd.Info != nil:
			return a.SetProductInfo(*cmd.Info)
		case cmd.Attributes != nil:
			if a.Phase() != wizard.PhaseAttributes {
				return wizard.ErrWrongPhase
			}
			a.Builder().Replace(cmd.Attributes)
			return a.GoToVariants()
		case cmd.Variant != nil:
			return a.AddVariant(cmd.Variant.Selection, cmd.Variant.Stock)
		case cmd.RemoveVariant != nil:
			return a.RemoveVariant(*cmd.RemoveVariant)
		case cmd.Back:
			return a.BackToAttributes()
		default:
			return fmt.Errorf("%w: empty edit", wizard.ErrWrongPhase)
		}
	})
	if errors.Is(err, wizard.ErrDuplicateVariant) {
		duplicateVariants.Inc()
	}
	return view, err
}

// AttachImageCommand stages one uploaded product image
type AttachImageCommand struct {
	VendorID    string
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// AttachImageHandler stores image bytes and attaches the reference to the wizard
type AttachImageHandler struct {
	sessions *session.Registry
	images   domain.ImageStore
}

func NewAttachImageHandler(sessions *session.Registry, images domain.ImageStore) *AttachImageHandler {
	return &AttachImageHandler{sessions: sessions, images: images}
}

func (h *AttachImageHandler) Handle(ctx context.Context, cmd AttachImageCommand) (wizard.View, error) {
	s := h.sessions.Get(ctx, cmd.VendorID)
	candidate := domain.ImageRef{Filename: cmd.Filename, ContentType: cmd.ContentType, Size: cmd.Size}

	if err := wizard.CheckImage(candidate); err != nil {
		return s.ProductView(), err
	}

	ref, err := h.images.Put(ctx, cmd.Content, candidate)
	if err != nil {
		return s.ProductView(), fmt.Errorf("failed to store image: %w", err)
	}

	view, err := s.EditProduct(func(a *wizard.ProductAssembly) error {
		return a.AttachImage(ref)
	})
	if err != nil {
		releaseImages(ctx, h.images, []domain.ImageRef{ref})
	}
	return view, err
}

// releaseImages deletes staged image bytes that no wizard references anymore
func releaseImages(ctx context.Context, images domain.ImageStore, refs []domain.ImageRef) {
	if images == nil {
		return
	}
	for _, ref := range refs {
		if err := images.Delete(ctx, ref.Key); err != nil {
			logger.Warn(ctx).Err(err).Str("key", ref.Key).Msg("Failed to release staged image")
		}
	}
}

// RemoveImageCommand drops a staged product image
type RemoveImageCommand struct {
	VendorID string
	Index    int
}

// RemoveImageHandler detaches an image and deletes its bytes
type RemoveImageHandler struct {
	sessions *session.Registry
	images   domain.ImageStore
}

func NewRemoveImageHandler(sessions *session.Registry, images domain.ImageStore) *RemoveImageHandler {
	return &RemoveImageHandler{sessions: sessions, images: images}
}

func (h *RemoveImageHandler) Handle(ctx context.Context, cmd RemoveImageCommand) (wizard.View, error) {
	var removed domain.ImageRef
	view, err := h.sessions.Get(ctx, cmd.VendorID).EditProduct(func(a *wizard.ProductAssembly) error {
		ref, err := a.RemoveImage(cmd.Index)
		removed = ref
		return err
	})
	if err != nil {
		return view, err
	}
	releaseImages(ctx, h.images, []domain.ImageRef{removed})
	return view, nil
}

// SubmitProductCommand sends the assembled product to the backend
type SubmitProductCommand struct {
	VendorID string
}

// SubmitProductHandler handles product submission. Images uploaded with an
// accepted product are released from staging.
type SubmitProductHandler struct {
	sessions *session.Registry
	images   domain.ImageStore
}

func NewSubmitProductHandler(sessions *session.Registry, images domain.ImageStore) *SubmitProductHandler {
	return &SubmitProductHandler{sessions: sessions, images: images}
}

func (h *SubmitProductHandler) Handle(ctx context.Context, cmd SubmitProductCommand) (domain.ProductSummary, error) {
	summary, sent, err := h.sessions.Get(ctx, cmd.VendorID).SubmitProduct(ctx)
	if err != nil {
		countBackendFailure("create_product", err)
		return summary, err
	}
	productsAdded.Inc()
	releaseImages(ctx, h.images, sent)
	return summary, nil
}

// ResetProductCommand starts the product wizard over
type ResetProductCommand struct {
	VendorID string
}

// ResetProductHandler clears the product being assembled
type ResetProductHandler struct {
	sessions *session.Registry
	images   domain.ImageStore
}

func NewResetProductHandler(sessions *session.Registry, images domain.ImageStore) *ResetProductHandler {
	return &ResetProductHandler{sessions: sessions, images: images}
}

func (h *ResetProductHandler) Handle(ctx context.Context, cmd ResetProductCommand) (wizard.View, error) {
	var dropped []domain.ImageRef
	view, err := h.sessions.Get(ctx, cmd.VendorID).EditProduct(func(a *wizard.ProductAssembly) error {
		dropped = a.Images()
		a.ResetForNewProduct()
		return nil
	})
	if err == nil {
		releaseImages(ctx, h.images, dropped)
	}
	return view, err
}
