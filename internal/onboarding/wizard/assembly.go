package wizard

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/esouk/onboarding/internal/onboarding/domain"
	"github.com/esouk/onboarding/pkg/validation"
)

// Phase is the product wizard phase
type Phase int

const (
	PhaseProductInfo Phase = 1
	PhaseAttributes  Phase = 2
	PhaseVariants    Phase = 3
)

const maxImageSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/webp": true,
}

// ProductAssembly drives one product through info, attributes and variants
// and turns the result into a submission. It is not safe for concurrent use;
// the owning session serializes access.
type ProductAssembly struct {
	phase      Phase
	info       domain.ProductInfo
	builder    *AttributeSetBuilder
	attributes []domain.Attribute
	variants   *VariantConstructor
	images     []domain.ImageRef
	lastError  string
}

func NewProductAssembly() *ProductAssembly {
	a := &ProductAssembly{}
	a.ResetForNewProduct()
	return a
}

func (a *ProductAssembly) Phase() Phase                  { return a.phase }
func (a *ProductAssembly) Info() domain.ProductInfo      { return a.info }
func (a *ProductAssembly) Builder() *AttributeSetBuilder { return a.builder }
func (a *ProductAssembly) LastError() string             { return a.lastError }

// Attributes returns the frozen attribute set, nil before the first freeze
func (a *ProductAssembly) Attributes() []domain.Attribute {
	out := make([]domain.Attribute, len(a.attributes))
	for i, attr := range a.attributes {
		out[i] = domain.Attribute{Name: attr.Name, Values: append([]string{}, attr.Values...)}
	}
	return out
}

// Variants returns the accumulated variants
func (a *ProductAssembly) Variants() []domain.Variant {
	if a.variants == nil {
		return []domain.Variant{}
	}
	return a.variants.Variants()
}

func (a *ProductAssembly) Duplicate() bool {
	return a.variants != nil && a.variants.Duplicate()
}

func (a *ProductAssembly) Images() []domain.ImageRef {
	return append([]domain.ImageRef{}, a.images...)
}

// SetProductInfo records the base fields and moves on to the attribute phase
func (a *ProductAssembly) SetProductInfo(info domain.ProductInfo) error {
	if a.phase != PhaseProductInfo {
		return ErrWrongPhase
	}

	info = normalizeInfo(info)
	if err := validateInfo(info); err != nil {
		return err
	}

	a.info = info
	a.phase = PhaseAttributes
	return nil
}

// GoToVariants freezes the attribute set and opens the variant phase
func (a *ProductAssembly) GoToVariants() error {
	if a.phase != PhaseAttributes {
		return ErrWrongPhase
	}

	attrs, err := a.builder.Freeze()
	if err != nil {
		return err
	}

	a.attributes = attrs
	a.variants = NewVariantConstructor(attrs)
	a.phase = PhaseVariants
	return nil
}

func (a *ProductAssembly) AddVariant(selection map[string]string, stock int) error {
	if a.phase != PhaseVariants {
		return ErrWrongPhase
	}
	return a.variants.AddVariant(selection, stock)
}

func (a *ProductAssembly) RemoveVariant(index int) error {
	if a.phase != PhaseVariants {
		return ErrWrongPhase
	}
	if !a.variants.RemoveVariant(index) {
		return ErrIndexOutOfRange
	}
	return nil
}

// BackToAttributes discards every accumulated variant and returns to the
// attribute phase. The attribute set itself is kept.
func (a *ProductAssembly) BackToAttributes() error {
	if a.phase != PhaseVariants {
		return ErrWrongPhase
	}
	a.variants = NewVariantConstructor(a.attributes)
	a.lastError = ""
	a.phase = PhaseAttributes
	return nil
}

// CheckImage reports whether an image may be attached to a product
func CheckImage(ref domain.ImageRef) error {
	if !allowedImageTypes[strings.ToLower(ref.ContentType)] || ref.Size > maxImageSize {
		return ErrInvalidImage
	}
	return nil
}

// AttachImage stages an image reference for the submission
func (a *ProductAssembly) AttachImage(ref domain.ImageRef) error {
	if err := CheckImage(ref); err != nil {
		return err
	}
	a.images = append(a.images, ref)
	return nil
}

// RemoveImage drops a staged image and returns it so the caller can release it
func (a *ProductAssembly) RemoveImage(index int) (domain.ImageRef, error) {
	if index < 0 || index >= len(a.images) {
		return domain.ImageRef{}, ErrIndexOutOfRange
	}
	ref := a.images[index]
	a.images = append(a.images[:index], a.images[index+1:]...)
	return ref, nil
}

// CanSubmit is true with at least one variant and valid base fields
func (a *ProductAssembly) CanSubmit() bool {
	if a.variants == nil || a.variants.Len() == 0 {
		return false
	}
	return validateInfo(a.info) == nil
}

// Payload builds the submission without touching the network. It fails fast
// when the base fields are invalid, no variant exists or shopID is empty.
func (a *ProductAssembly) Payload(shopID string) (domain.ProductSubmission, error) {
	if err := validateInfo(a.info); err != nil {
		return domain.ProductSubmission{}, err
	}
	if strings.TrimSpace(shopID) == "" {
		return domain.ProductSubmission{}, ErrMissingShop
	}
	if a.variants == nil || a.variants.Len() == 0 {
		return domain.ProductSubmission{}, ErrNoVariants
	}

	return domain.ProductSubmission{
		ShopID:      shopID,
		Name:        a.info.Name,
		Category:    a.info.Category,
		Description: a.info.Description,
		Price:       a.info.Price,
		Attributes:  a.Attributes(),
		Variants:    a.variants.Variants(),
		Images:      a.Images(),
	}, nil
}

// Accept derives the summary of a successful submission and resets the wizard
// for the next product.
func (a *ProductAssembly) Accept(submission domain.ProductSubmission, created *domain.ProductCreated) domain.ProductSummary {
	summary := Summarize(submission, created)
	a.ResetForNewProduct()
	return summary
}

// Reject records a failed submission; everything entered so far is kept
func (a *ProductAssembly) Reject(err error) {
	a.lastError = err.Error()
}

// Submit validates, sends the product through creator and resets on success
func (a *ProductAssembly) Submit(ctx context.Context, shopID string, creator domain.ProductCreator) (domain.ProductSummary, error) {
	submission, err := a.Payload(shopID)
	if err != nil {
		return domain.ProductSummary{}, err
	}

	a.lastError = ""
	created, err := creator.CreateProduct(ctx, submission)
	if err != nil {
		a.Reject(err)
		return domain.ProductSummary{}, err
	}
	return a.Accept(submission, created), nil
}

// ResetForNewProduct returns to phase 1 with one empty attribute slot
func (a *ProductAssembly) ResetForNewProduct() {
	a.phase = PhaseProductInfo
	a.info = domain.ProductInfo{}
	a.builder = NewAttributeSetBuilder()
	a.attributes = nil
	a.variants = nil
	a.images = nil
	a.lastError = ""
}

// Summarize condenses a submission and the backend answer. A response without
// id gets a locally generated one.
func Summarize(submission domain.ProductSubmission, created *domain.ProductCreated) domain.ProductSummary {
	id := ""
	if created != nil {
		id = created.ID
	}
	if id == "" {
		id = uuid.NewString()
	}

	return domain.ProductSummary{
		ID:           id,
		Name:         submission.Name,
		Category:     submission.Category,
		VariantCount: len(submission.Variants),
		TotalStock:   submission.TotalStock(),
		Price:        submission.Price,
	}
}

func normalizeInfo(info domain.ProductInfo) domain.ProductInfo {
	info.Name = strings.TrimSpace(info.Name)
	info.Category = strings.TrimSpace(info.Category)
	info.Description = strings.TrimSpace(info.Description)
	return info
}

func validateInfo(info domain.ProductInfo) error {
	if math.IsNaN(info.Price) || math.IsInf(info.Price, 0) {
		return fmt.Errorf("%w: price: must be a number", ErrInvalidProductInfo)
	}
	if err := validation.Struct(info); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProductInfo, err)
	}
	return nil
}
