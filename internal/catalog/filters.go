package catalog

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/esouk/onboarding/pkg/validation"
)

var ErrInvalidFilters = errors.New("invalid catalog filters")

// ProductFilters narrows a product listing. Nil pointers are left out of the
// backend query.
type ProductFilters struct {
	CategoryName  string   `json:"categoryName,omitempty" query:"categoryName" validate:"max=100"`
	PriceMin      *float64 `json:"priceMin,omitempty" query:"priceMin" validate:"omitempty,gte=0"`
	PriceMax      *float64 `json:"priceMax,omitempty" query:"priceMax" validate:"omitempty,gte=0"`
	SearchKeyword string   `json:"searchKeyword,omitempty" query:"searchKeyword" validate:"max=200"`
	SortBy        string   `json:"sortBy,omitempty" query:"sortBy" validate:"max=50"`
	Page          *int     `json:"page,omitempty" query:"page" validate:"omitempty,gte=0"`
	PageSize      *int     `json:"pageSize,omitempty" query:"pageSize" validate:"omitempty,gte=1,lte=100"`
}

// Validate checks field bounds and that the price range is not inverted
func (f ProductFilters) Validate() error {
	fields := validation.FieldErrors{}
	if err := validation.Struct(f); err != nil {
		var fe validation.FieldErrors
		if errors.As(err, &fe) {
			fields = fe
		}
	}
	if f.PriceMin != nil && f.PriceMax != nil && *f.PriceMin > *f.PriceMax {
		fields["priceMin"] = "must not exceed priceMax"
	}
	if len(fields) > 0 {
		return errors.Join(ErrInvalidFilters, fields)
	}
	return nil
}

// Query renders the filters as backend query parameters
func (f ProductFilters) Query() url.Values {
	q := url.Values{}
	setString(q, "categoryName", f.CategoryName)
	setFloat(q, "priceMin", f.PriceMin)
	setFloat(q, "priceMax", f.PriceMax)
	setString(q, "searchKeyword", f.SearchKeyword)
	setString(q, "sortBy", f.SortBy)
	setInt(q, "page", f.Page)
	setInt(q, "pageSize", f.PageSize)
	return q
}

// ShopFilters narrows a shop listing
type ShopFilters struct {
	CategoryName  string `json:"categoryName,omitempty" query:"categoryName" validate:"max=100"`
	Address       string `json:"address,omitempty" query:"address" validate:"max=255"`
	SearchKeyword string `json:"searchKeyword,omitempty" query:"searchKeyword" validate:"max=200"`
	SortBy        string `json:"sortBy,omitempty" query:"sortBy" validate:"max=50"`
	Page          *int   `json:"page,omitempty" query:"page" validate:"omitempty,gte=0"`
	PageSize      *int   `json:"pageSize,omitempty" query:"pageSize" validate:"omitempty,gte=1,lte=100"`
}

func (f ShopFilters) Validate() error {
	if err := validation.Struct(f); err != nil {
		return errors.Join(ErrInvalidFilters, err)
	}
	return nil
}

func (f ShopFilters) Query() url.Values {
	q := url.Values{}
	setString(q, "categoryName", f.CategoryName)
	setString(q, "address", f.Address)
	setString(q, "searchKeyword", f.SearchKeyword)
	setString(q, "sortBy", f.SortBy)
	setInt(q, "page", f.Page)
	setInt(q, "pageSize", f.PageSize)
	return q
}

// cacheKey is stable for equal filters: url.Values.Encode sorts by key
func cacheKey(kind string, q url.Values) string {
	return "catalog:" + kind + ":" + q.Encode()
}

func setString(q url.Values, key, v string) {
	if v = strings.TrimSpace(v); v != "" {
		q.Set(key, v)
	}
}

func setFloat(q url.Values, key string, v *float64) {
	if v != nil {
		q.Set(key, strconv.FormatFloat(*v, 'f', -1, 64))
	}
}

func setInt(q url.Values, key string, v *int) {
	if v != nil {
		q.Set(key, strconv.Itoa(*v))
	}
}
