package domain

import (
	"context"
	"io"
)

// Step is the onboarding wizard step. The numeric values are part of the
// persisted snapshot format.
type Step int

const (
	StepCreateShop  Step = 1
	StepAddProducts Step = 2
	StepCompleted   Step = 3
)

func (s Step) Valid() bool {
	return s >= StepCreateShop && s <= StepCompleted
}

// NeedsShop reports whether a session in this step must carry a shop id
func (s Step) NeedsShop() bool {
	return s == StepAddProducts || s == StepCompleted
}

func (s Step) String() string {
	switch s {
	case StepCreateShop:
		return "CREATE_SHOP"
	case StepAddProducts:
		return "ADD_PRODUCTS"
	case StepCompleted:
		return "COMPLETED"
	default:
		return "UNKNOWN"
	}
}

// ShopRequest is the shop creation form
type ShopRequest struct {
	BrandName     string    `json:"brandName" validate:"required,min=2,max=100,excludesall=<>\"'&"`
	Bio           string    `json:"bio,omitempty" validate:"max=1000"`
	Description   string    `json:"description,omitempty" validate:"max=1000"`
	CategoryName  string    `json:"categoryName,omitempty" validate:"max=100"`
	Address       string    `json:"address" validate:"required,max=255"`
	Phone         string    `json:"phone" validate:"max=30"`
	InstagramLink string    `json:"instagramLink,omitempty" validate:"omitempty,url"`
	FacebookLink  string    `json:"facebookLink,omitempty" validate:"omitempty,url"`
	DeliveryFee   float64   `json:"deliveryFee" validate:"gte=0,lte=100"`
	Logo          *ImageRef `json:"-"`
}

// ShopCreated is the backend's answer to a shop creation
type ShopCreated struct {
	ID string `json:"id"`
}

// State is the onboarding session state and its snapshot format
type State struct {
	CurrentStep Step             `json:"currentStep"`
	ShopID      string           `json:"shopId,omitempty"`
	ShopData    *ShopRequest     `json:"shopData,omitempty"`
	Products    []ProductSummary `json:"products"`
}

// NewState returns the fresh state a wizard starts in
func NewState() State {
	return State{CurrentStep: StepCreateShop, Products: []ProductSummary{}}
}

// Clone returns a deep copy safe to hand to subscribers
func (s State) Clone() State {
	out := s
	if s.ShopData != nil {
		shop := *s.ShopData
		shop.Logo = nil
		out.ShopData = &shop
	}
	out.Products = append([]ProductSummary{}, s.Products...)
	return out
}

// ShopCreator creates a shop on the backend
type ShopCreator interface {
	CreateShop(ctx context.Context, req ShopRequest) (*ShopCreated, error)
}

// StateKey is the storage key of a vendor's onboarding snapshot
func StateKey(vendorID string) string {
	return "onboarding_state:" + vendorID
}

// StateStore persists session snapshots under StateKey. Load returns a nil
// snapshot and no error when nothing is stored.
type StateStore interface {
	Save(ctx context.Context, vendorID string, snapshot []byte) error
	Load(ctx context.Context, vendorID string) ([]byte, error)
	Delete(ctx context.Context, vendorID string) error
}

// ImageStore stages uploaded images between wizard requests
type ImageStore interface {
	Put(ctx context.Context, r io.Reader, ref ImageRef) (ImageRef, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// EventType names the events the wizard emits for the surrounding UI
type EventType string

const (
	EventShopReady    EventType = "onboarding.shop_ready"
	EventProductAdded EventType = "onboarding.product_added"
	EventCompleted    EventType = "onboarding.completed"
)

// Event is a wizard notification
type Event struct {
	Type     EventType       `json:"type"`
	VendorID string          `json:"vendor_id"`
	ShopID   string          `json:"shop_id,omitempty"`
	Shop     *ShopRequest    `json:"shop,omitempty"`
	Product  *ProductSummary `json:"product,omitempty"`
	Products int             `json:"products"`
}

// EventPublisher delivers wizard events
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
