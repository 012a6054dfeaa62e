package http

import (
	"errors"
	"net/http"

	"github.com/esouk/onboarding/internal/onboarding/session"
	"github.com/esouk/onboarding/internal/onboarding/wizard"
	"github.com/esouk/onboarding/pkg/backend"
	"github.com/esouk/onboarding/pkg/logger"
	"github.com/esouk/onboarding/pkg/validation"
)

// ErrorResponse is the envelope of a failed wizard call
type ErrorResponse struct {
	Success   bool                   `json:"success"`
	Error     string                 `json:"error"`
	Fields    validation.FieldErrors `json:"fields,omitempty"`
	Duplicate bool                   `json:"duplicate,omitempty"`
	Data      interface{}            `json:"data,omitempty"`
}

// statusFor maps a use case error to its HTTP status and user-facing message
func statusFor(err error) (int, string) {
	if apiErr, ok := backend.AsAPIError(err); ok {
		if apiErr.Status == 0 {
			return http.StatusBadGateway, apiErr.Message
		}
		return apiErr.Status, apiErr.Message
	}

	switch {
	case errors.Is(err, wizard.ErrDuplicateVariant),
		errors.Is(err, session.ErrRequestInFlight),
		errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrNoPendingShop),
		errors.Is(err, wizard.ErrWrongPhase),
		errors.Is(err, wizard.ErrMissingShop):
		return http.StatusConflict, rootMessage(err)
	case errors.Is(err, session.ErrInvalidShop),
		errors.Is(err, wizard.ErrInvalidProductInfo),
		errors.Is(err, wizard.ErrInvalidAttributes),
		errors.Is(err, wizard.ErrInvalidVariant),
		errors.Is(err, wizard.ErrIndexOutOfRange),
		errors.Is(err, wizard.ErrNoVariants),
		errors.Is(err, wizard.ErrInvalidImage),
		errors.Is(err, errMalformedBody):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, session.ErrEmptyShopID):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error. Please try again later."
	}
}

// rootMessage drops wrapping context so sentinel messages reach the vendor as is
func rootMessage(err error) string {
	for _, sentinel := range []error{
		wizard.ErrDuplicateVariant,
		session.ErrRequestInFlight,
		session.ErrInvalidTransition,
		session.ErrNoPendingShop,
		wizard.ErrWrongPhase,
		wizard.ErrMissingShop,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	respondErrorWithData(w, r, err, nil)
}

func respondErrorWithData(w http.ResponseWriter, r *http.Request, err error, data interface{}) {
	status, message := statusFor(err)

	resp := ErrorResponse{
		Success:   false,
		Error:     message,
		Duplicate: errors.Is(err, wizard.ErrDuplicateVariant),
		Data:      data,
	}
	var fields validation.FieldErrors
	if errors.As(err, &fields) {
		resp.Fields = fields
	}

	event := logger.Warn(r.Context())
	if status >= http.StatusInternalServerError {
		event = logger.Error(r.Context())
	}
	event.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("Onboarding request failed")

	respondJSON(w, status, resp)
}
