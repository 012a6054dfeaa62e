package wizard

import "github.com/esouk/onboarding/internal/onboarding/domain"

// VariantConstructor accumulates variants against a frozen attribute set
type VariantConstructor struct {
	attributes []domain.Attribute
	variants   []domain.Variant
	duplicate  bool
}

// NewVariantConstructor starts an empty variant list over the given attributes
func NewVariantConstructor(attrs []domain.Attribute) *VariantConstructor {
	return &VariantConstructor{attributes: attrs}
}

// Fields lists the selections a variant needs, one per attribute
func (vc *VariantConstructor) Fields() []string {
	names := make([]string, len(vc.attributes))
	for i, a := range vc.attributes {
		names[i] = a.Name
	}
	return names
}

// AddVariant validates the selection and stock, rejects exact duplicates of
// an accumulated variant and appends otherwise.
//
// Invalid input returns ErrInvalidVariant and leaves the duplicate flag as it
// was. A duplicate sets the flag and returns ErrDuplicateVariant. A successful
// add clears the flag.
func (vc *VariantConstructor) AddVariant(selection map[string]string, stock int) error {
	if stock < 0 {
		return ErrInvalidVariant
	}

	candidate := domain.Variant{
		Attributes: make(map[string]string, len(vc.attributes)),
		Stock:      stock,
	}
	for _, attr := range vc.attributes {
		value, ok := selection[attr.Name]
		if !ok || value == "" || !attr.HasValue(value) {
			return ErrInvalidVariant
		}
		candidate.Attributes[attr.Name] = value
	}

	vc.duplicate = false
	for _, existing := range vc.variants {
		if existing.SameCombination(candidate, vc.attributes) {
			vc.duplicate = true
			return ErrDuplicateVariant
		}
	}

	vc.variants = append(vc.variants, candidate)
	return nil
}

// RemoveVariant removes the variant at index and clears the duplicate flag
func (vc *VariantConstructor) RemoveVariant(index int) bool {
	if index < 0 || index >= len(vc.variants) {
		return false
	}
	vc.variants = append(vc.variants[:index], vc.variants[index+1:]...)
	vc.duplicate = false
	return true
}

// Duplicate reports whether the last AddVariant was refused as a duplicate
func (vc *VariantConstructor) Duplicate() bool {
	return vc.duplicate
}

// Len returns the number of variants
func (vc *VariantConstructor) Len() int {
	return len(vc.variants)
}

// Variants returns a copy of the accumulated variants
func (vc *VariantConstructor) Variants() []domain.Variant {
	out := make([]domain.Variant, len(vc.variants))
	for i, v := range vc.variants {
		attrs := make(map[string]string, len(v.Attributes))
		for k, val := range v.Attributes {
			attrs[k] = val
		}
		out[i] = domain.Variant{Attributes: attrs, Stock: v.Stock}
	}
	return out
}

// TotalStock sums the stock of every variant
func (vc *VariantConstructor) TotalStock() int {
	total := 0
	for _, v := range vc.variants {
		total += v.Stock
	}
	return total
}
