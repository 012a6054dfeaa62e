package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// GetState godoc
// @Summary Get onboarding state
// @Description Current wizard step, shop, added products and progress of the calling vendor
// @Tags Onboarding
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=object{state=object,step=string,progress=int,complete=bool}}
// @Failure 401 {object} object{error=string}
// @Router /api/onboarding [get]
func (h *OnboardingHandler) GetStateDoc() {}

// StreamState godoc
// @Summary Stream onboarding state
// @Description Server-sent events; one "state" event now and one per change
// @Tags Onboarding
// @Security BearerAuth
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /api/onboarding/stream [get]
func (h *OnboardingHandler) StreamStateDoc() {}

// GetProgress godoc
// @Summary Get onboarding progress
// @Tags Onboarding
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=object{step=string,percentage=int,products=int,complete=bool}}
// @Router /api/onboarding/progress [get]
func (h *OnboardingHandler) GetProgressDoc() {}

// CreateShop godoc
// @Summary Create the vendor shop
// @Description Accepts JSON or multipart/form-data with an optional "logo" file
// @Tags Shop
// @Security BearerAuth
// @Accept json,mpfd
// @Produce json
// @Param request body object{brandName=string,bio=string,categoryName=string,address=string,phone=string,instagramLink=string,facebookLink=string,deliveryFee=number} true "Shop data"
// @Success 201 {object} object{success=bool,data=object{id=string}}
// @Failure 400 {object} object{error=string,fields=object}
// @Failure 409 {object} object{error=string}
// @Router /api/onboarding/shop [post]
func (h *OnboardingHandler) CreateShopDoc() {}

// PrepareShop godoc
// @Summary Validate the shop form and hold it for confirmation
// @Tags Shop
// @Security BearerAuth
// @Accept json,mpfd
// @Produce json
// @Success 200 {object} object{success=bool,data=object}
// @Failure 400 {object} object{error=string,fields=object}
// @Router /api/onboarding/shop/prepare [post]
func (h *OnboardingHandler) PrepareShopDoc() {}

// ConfirmShop godoc
// @Summary Create the prepared shop
// @Tags Shop
// @Security BearerAuth
// @Produce json
// @Success 201 {object} object{success=bool,data=object{id=string}}
// @Failure 409 {object} object{error=string}
// @Router /api/onboarding/shop/confirm [post]
func (h *OnboardingHandler) ConfirmShopDoc() {}

// AddVariant godoc
// @Summary Add a product variant
// @Tags Product
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{attributes=object,stock=int} true "Variant"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 409 {object} object{error=string,duplicate=bool}
// @Router /api/onboarding/product/variants [post]
func (h *OnboardingHandler) AddVariantDoc() {}

// AttachImage godoc
// @Summary Upload a product image
// @Tags Product
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param image formData file true "PNG, JPEG or WEBP up to 5MB"
// @Success 201 {object} object{success=bool,data=object}
// @Failure 400 {object} object{error=string}
// @Router /api/onboarding/product/images [post]
func (h *OnboardingHandler) AttachImageDoc() {}

// SubmitProduct godoc
// @Summary Submit the assembled product
// @Tags Product
// @Security BearerAuth
// @Produce json
// @Success 201 {object} object{success=bool,data=object{id=string,name=string,category=string,variantCount=int,totalStock=int,price=number}}
// @Failure 400 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /api/onboarding/product/submit [post]
func (h *OnboardingHandler) SubmitProductDoc() {}

// GoToStep godoc
// @Summary Move the wizard to a step
// @Tags Onboarding
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{step=int} true "1 create shop, 2 add products, 3 completed"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 409 {object} object{error=string}
// @Router /api/onboarding/step [post]
func (h *OnboardingHandler) GoToStepDoc() {}

// Complete godoc
// @Summary Finish the onboarding
// @Tags Onboarding
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=object}
// @Failure 409 {object} object{error=string}
// @Router /api/onboarding/complete [post]
func (h *OnboardingHandler) CompleteDoc() {}

// HealthCheck godoc
// @Summary Health check
// @Description Check service health and state store connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} object{success=bool,message=string}
// @Failure 503 {object} object{success=bool,error=string}
// @Router /health [get]
func (h *OnboardingHandler) HealthCheckDoc() {}
