package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/esouk/onboarding/internal/onboarding/domain"
	"github.com/esouk/onboarding/internal/onboarding/usecase/command"
	"github.com/esouk/onboarding/internal/onboarding/usecase/query"
)

var errMalformedBody = errors.New("malformed request body")

// GetState handles GET /api/onboarding
func (h *OnboardingHandler) GetState(w http.ResponseWriter, r *http.Request) {
	result := h.getStateHandler.Handle(r.Context(), query.GetStateQuery{VendorID: vendorID(r)})
	respondJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

// GetProgress handles GET /api/onboarding/progress
func (h *OnboardingHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	result := h.getProgressHandler.Handle(r.Context(), query.GetProgressQuery{VendorID: vendorID(r)})
	respondJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

// CreateShop handles POST /api/onboarding/shop
func (h *OnboardingHandler) CreateShop(w http.ResponseWriter, r *http.Request) {
	shop, logo, done, err := readShop(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer done()

	created, err := h.createShopHandler.Handle(r.Context(), command.CreateShopCommand{VendorID: vendorID(r), Shop: shop, Logo: logo})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, Response{Success: true, Message: "Shop created successfully", Data: created})
}

// PrepareShop handles POST /api/onboarding/shop/prepare
func (h *OnboardingHandler) PrepareShop(w http.ResponseWriter, r *http.Request) {
	shop, logo, done, err := readShop(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer done()

	if err := h.prepareShopHandler.Handle(r.Context(), command.PrepareShopCommand{VendorID: vendorID(r), Shop: shop, Logo: logo}); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Shop ready for confirmation", Data: shop})
}

// ConfirmShop handles POST /api/onboarding/shop/confirm
func (h *OnboardingHandler) ConfirmShop(w http.ResponseWriter, r *http.Request) {
	created, err := h.confirmShopHandler.Handle(r.Context(), command.ConfirmShopCommand{VendorID: vendorID(r)})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, Response{Success: true, Message: "Shop created successfully", Data: created})
}

// CancelShop handles POST /api/onboarding/shop/cancel
func (h *OnboardingHandler) CancelShop(w http.ResponseWriter, r *http.Request) {
	if err := h.cancelShopHandler.Handle(r.Context(), command.CancelShopCommand{VendorID: vendorID(r)}); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Shop creation cancelled"})
}

// GetProduct handles GET /api/onboarding/product
func (h *OnboardingHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	view := h.getProductHandler.Handle(r.Context(), query.GetProductQuery{VendorID: vendorID(r)})
	respondJSON(w, http.StatusOK, Response{Success: true, Data: view})
}

// SetProductInfo handles POST /api/onboarding/product/info
func (h *OnboardingHandler) SetProductInfo(w http.ResponseWriter, r *http.Request) {
	var info domain.ProductInfo
	if err := decodeJSON(r, &info); err != nil {
		respondError(w, r, err)
		return
	}
	h.edit(w, r, command.EditProductCommand{Info: &info})
}

// DefineAttributes handles PUT /api/onboarding/product/attributes
func (h *OnboardingHandler) DefineAttributes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Attributes []domain.Attribute `json:"attributes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Attributes == nil {
		req.Attributes = []domain.Attribute{}
	}
	h.edit(w, r, command.EditProductCommand{Attributes: req.Attributes})
}

// AddVariant handles POST /api/onboarding/product/variants
func (h *OnboardingHandler) AddVariant(w http.ResponseWriter, r *http.Request) {
	var variant command.VariantInput
	if err := decodeJSON(r, &variant); err != nil {
		respondError(w, r, err)
		return
	}
	h.edit(w, r, command.EditProductCommand{Variant: &variant})
}

// RemoveVariant handles DELETE /api/onboarding/product/variants/{index}
func (h *OnboardingHandler) RemoveVariant(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.edit(w, r, command.EditProductCommand{RemoveVariant: &index})
}

// BackToAttributes handles POST /api/onboarding/product/back
func (h *OnboardingHandler) BackToAttributes(w http.ResponseWriter, r *http.Request) {
	h.edit(w, r, command.EditProductCommand{Back: true})
}

func (h *OnboardingHandler) edit(w http.ResponseWriter, r *http.Request, cmd command.EditProductCommand) {
	cmd.VendorID = vendorID(r)
	view, err := h.editProductHandler.Handle(r.Context(), cmd)
	if err != nil {
		respondErrorWithData(w, r, err, view)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: view})
}

// AttachImage handles POST /api/onboarding/product/images (multipart, field "image")
func (h *OnboardingHandler) AttachImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", errMalformedBody, err))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: image file is required", errMalformedBody))
		return
	}
	defer file.Close()

	view, err := h.attachImageHandler.Handle(r.Context(), command.AttachImageCommand{
		VendorID:    vendorID(r),
		Filename:    header.Filename,
		ContentType: partContentType(header),
		Size:        header.Size,
		Content:     file,
	})
	if err != nil {
		respondErrorWithData(w, r, err, view)
		return
	}
	respondJSON(w, http.StatusCreated, Response{Success: true, Message: "Image attached", Data: view})
}

// RemoveImage handles DELETE /api/onboarding/product/images/{index}
func (h *OnboardingHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	view, err := h.removeImageHandler.Handle(r.Context(), command.RemoveImageCommand{VendorID: vendorID(r), Index: index})
	if err != nil {
		respondErrorWithData(w, r, err, view)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: view})
}

// SubmitProduct handles POST /api/onboarding/product/submit
func (h *OnboardingHandler) SubmitProduct(w http.ResponseWriter, r *http.Request) {
	summary, err := h.submitProductHandler.Handle(r.Context(), command.SubmitProductCommand{VendorID: vendorID(r)})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: fmt.Sprintf("Product %q added", summary.Name),
		Data:    summary,
	})
}

// ResetProduct handles POST /api/onboarding/product/reset
func (h *OnboardingHandler) ResetProduct(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, func() (any, error) {
		return h.resetProductHandler.Handle(r.Context(), command.ResetProductCommand{VendorID: vendorID(r)})
	})
}

// GoToStep handles POST /api/onboarding/step with {"step": 1|2|3}
func (h *OnboardingHandler) GoToStep(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Step domain.Step `json:"step"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	h.move(w, r, command.GoToStepCommand{Step: req.Step})
}

// NextStep handles POST /api/onboarding/step/next
func (h *OnboardingHandler) NextStep(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, command.GoToStepCommand{Direction: command.DirectionNext})
}

// PreviousStep handles POST /api/onboarding/step/previous
func (h *OnboardingHandler) PreviousStep(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, command.GoToStepCommand{Direction: command.DirectionPrevious})
}

func (h *OnboardingHandler) move(w http.ResponseWriter, r *http.Request, cmd command.GoToStepCommand) {
	cmd.VendorID = vendorID(r)
	h.respondView(w, r, func() (any, error) {
		state, err := h.goToStepHandler.Handle(r.Context(), cmd)
		return query.Describe(state, nil), err
	})
}

// Complete handles POST /api/onboarding/complete
func (h *OnboardingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, func() (any, error) {
		state, err := h.completeHandler.Handle(r.Context(), command.CompleteCommand{VendorID: vendorID(r)})
		return query.Describe(state, nil), err
	})
}

// Reset handles POST /api/onboarding/reset
func (h *OnboardingHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, func() (any, error) {
		state, err := h.resetHandler.Handle(r.Context(), command.ResetCommand{VendorID: vendorID(r)})
		return query.Describe(state, nil), err
	})
}

func (h *OnboardingHandler) respondView(w http.ResponseWriter, r *http.Request, fn func() (any, error)) {
	data, err := fn()
	if err != nil {
		respondErrorWithData(w, r, err, data)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

// readShop accepts the shop form as JSON or as multipart with an optional
// "logo" file. The logo is returned unstored; done closes its upload part.
func readShop(w http.ResponseWriter, r *http.Request) (domain.ShopRequest, *command.ShopLogo, func(), error) {
	var shop domain.ShopRequest
	done := func() {}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return shop, nil, done, decodeJSON(r, &shop)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return shop, nil, done, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	shop = domain.ShopRequest{
		BrandName:     r.FormValue("brandName"),
		Bio:           r.FormValue("bio"),
		Description:   r.FormValue("description"),
		CategoryName:  r.FormValue("categoryName"),
		Address:       r.FormValue("address"),
		Phone:         r.FormValue("phone"),
		InstagramLink: r.FormValue("instagramLink"),
		FacebookLink:  r.FormValue("facebookLink"),
	}
	if fee := r.FormValue("deliveryFee"); fee != "" {
		v, err := strconv.ParseFloat(fee, 64)
		if err != nil {
			return shop, nil, done, fmt.Errorf("%w: deliveryFee must be a number", errMalformedBody)
		}
		shop.DeliveryFee = v
	}

	file, header, err := r.FormFile("logo")
	if errors.Is(err, http.ErrMissingFile) {
		return shop, nil, done, nil
	}
	if err != nil {
		return shop, nil, done, fmt.Errorf("%w: %v", errMalformedBody, err)
	}

	logo := &command.ShopLogo{
		Filename:    header.Filename,
		ContentType: partContentType(header),
		Size:        header.Size,
		Content:     file,
	}
	return shop, logo, func() { file.Close() }, nil
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

func pathIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		return 0, fmt.Errorf("%w: index must be a number", errMalformedBody)
	}
	return index, nil
}

func partContentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
