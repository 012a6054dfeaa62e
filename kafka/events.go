package kafka

import (
	"time"

	"github.com/esouk/onboarding/internal/onboarding/domain"
)

// OnboardingEvent is the wire form of a wizard notification
type OnboardingEvent struct {
	EventID   string                 `json:"event_id"`
	EventType string                 `json:"event_type"`
	VendorID  string                 `json:"vendor_id"`
	ShopID    string                 `json:"shop_id,omitempty"`
	ShopName  string                 `json:"shop_name,omitempty"`
	Product   *domain.ProductSummary `json:"product,omitempty"`
	Products  int                    `json:"products"`
	Timestamp time.Time              `json:"timestamp"`
}

// Event types
const (
	EventTypeShopReady    = string(domain.EventShopReady)
	EventTypeProductAdded = string(domain.EventProductAdded)
	EventTypeCompleted    = string(domain.EventCompleted)
)

// Kafka topics
const (
	TopicOnboardingEvents = "onboarding-events"
)

func fromDomain(e domain.Event) OnboardingEvent {
	out := OnboardingEvent{
		EventType: string(e.Type),
		VendorID:  e.VendorID,
		ShopID:    e.ShopID,
		Product:   e.Product,
		Products:  e.Products,
	}
	if e.Shop != nil {
		out.ShopName = e.Shop.BrandName
	}
	return out
}

// Message is the vendor-facing text of an event, shown by the notifier
func (e OnboardingEvent) Message() string {
	switch e.EventType {
	case EventTypeShopReady:
		return "Shop data ready for confirmation"
	case EventTypeProductAdded:
		if e.Product != nil {
			return "Product \"" + e.Product.Name + "\" added"
		}
		return "Product added"
	case EventTypeCompleted:
		return "Onboarding complete, your shop is live"
	default:
		return e.EventType
	}
}
