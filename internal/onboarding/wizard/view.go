package wizard

import "github.com/esouk/onboarding/internal/onboarding/domain"

// View is a read-only picture of the product wizard for rendering
type View struct {
	Phase      Phase              `json:"phase"`
	Info       domain.ProductInfo `json:"info"`
	Slots      []domain.Attribute `json:"slots"`
	Attributes []domain.Attribute `json:"attributes"`
	Fields     []string           `json:"fields"`
	Variants   []domain.Variant   `json:"variants"`
	Duplicate  bool               `json:"duplicateVariant"`
	Images     []domain.ImageRef  `json:"images"`
	TotalStock int                `json:"totalStock"`
	CanSubmit  bool               `json:"canSubmit"`
	LastError  string             `json:"lastError,omitempty"`
}

func (a *ProductAssembly) View() View {
	v := View{
		Phase:      a.phase,
		Info:       a.info,
		Slots:      a.builder.Slots(),
		Attributes: a.Attributes(),
		Fields:     []string{},
		Variants:   a.Variants(),
		Duplicate:  a.Duplicate(),
		Images:     a.Images(),
		CanSubmit:  a.CanSubmit(),
		LastError:  a.lastError,
	}
	if a.variants != nil {
		v.Fields = a.variants.Fields()
		v.TotalStock = a.variants.TotalStock()
	}
	return v
}
