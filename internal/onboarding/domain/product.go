package domain

import "context"

// Attribute is a named dimension of product variation with its allowed values
type Attribute struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// HasValue reports whether v is one of the attribute's allowed values
func (a Attribute) HasValue(v string) bool {
	for _, candidate := range a.Values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Variant is one concrete attribute-value combination with its stock.
// Price lives on the product, not on the variant.
type Variant struct {
	Attributes map[string]string `json:"attributes"`
	Stock      int               `json:"stock"`
}

// SameCombination reports whether both variants select the same value for
// every attribute in attrs.
func (v Variant) SameCombination(other Variant, attrs []Attribute) bool {
	for _, attr := range attrs {
		if v.Attributes[attr.Name] != other.Attributes[attr.Name] {
			return false
		}
	}
	return true
}

// ImageRef points at an image staged in an ImageStore; the bytes never travel
// with the wizard state.
type ImageRef struct {
	Key         string `json:"key"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// ProductInfo holds the base fields entered in the first wizard phase
type ProductInfo struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Category    string  `json:"category" validate:"required,max=100"`
	Description string  `json:"description" validate:"max=2000"`
	Price       float64 `json:"price" validate:"gt=0"`
}

// ProductSubmission is the payload sent once to the product creation endpoint
type ProductSubmission struct {
	ShopID      string      `json:"shop_id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Description string      `json:"description,omitempty"`
	Price       float64     `json:"price"`
	Attributes  []Attribute `json:"attributes"`
	Variants    []Variant   `json:"variants"`
	Images      []ImageRef  `json:"images"`
}

// TotalStock sums the stock of every variant in the submission
func (p ProductSubmission) TotalStock() int {
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

// ProductCreated is the part of the backend response the wizard relies on
type ProductCreated struct {
	ID string `json:"id"`
}

// ProductSummary is the display-ready record of a submitted product
type ProductSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	VariantCount int     `json:"variantCount"`
	TotalStock   int     `json:"totalStock"`
	Price        float64 `json:"price"`
}

// ProductCreator sends a finished product to the backend
type ProductCreator interface {
	CreateProduct(ctx context.Context, submission ProductSubmission) (*ProductCreated, error)
}
