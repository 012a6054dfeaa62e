package wizard

import "errors"

var (
	ErrWrongPhase         = errors.New("operation not allowed in the current phase")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrInvalidAttributes  = errors.New("every attribute needs a unique name and at least one value")
	ErrInvalidVariant     = errors.New("variant needs one allowed value per attribute and a non-negative stock")
	ErrDuplicateVariant   = errors.New("a variant with these attribute values already exists")
	ErrInvalidProductInfo = errors.New("invalid product information")
	ErrNoVariants         = errors.New("at least one variant is required")
	ErrMissingShop        = errors.New("no shop is attached to this onboarding")
	ErrInvalidImage       = errors.New("images must be png, jpeg or webp and at most 5MB")
)
