package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/esouk/onboarding/internal/onboarding/domain"
	"github.com/esouk/onboarding/pkg/backend"
)

// BackendClient creates shops and products on the E-Souk REST backend
type BackendClient struct {
	api    *backend.Client
	images domain.ImageStore
}

func NewBackendClient(api *backend.Client, images domain.ImageStore) *BackendClient {
	return &BackendClient{api: api, images: images}
}

// CreateShop posts the shop form to /shops
func (c *BackendClient) CreateShop(ctx context.Context, req domain.ShopRequest) (*domain.ShopCreated, error) {
	form := newForm()
	form.field("brandName", req.BrandName)
	form.optional("description", firstNonEmpty(req.Bio, req.Description))
	form.optional("categoryName", req.CategoryName)
	form.field("address", req.Address)
	form.field("phone", req.Phone)
	form.optional("instagramLink", req.InstagramLink)
	form.optional("facebookLink", req.FacebookLink)
	form.field("deliveryFee", strconv.FormatFloat(req.DeliveryFee, 'f', -1, 64))
	if req.Logo != nil {
		if err := c.attach(ctx, form, "logoPicture", *req.Logo); err != nil {
			return nil, err
		}
	}

	body, contentType, err := form.close()
	if err != nil {
		return nil, err
	}

	var created domain.ShopCreated
	err = c.api.Do(ctx, backend.Request{
		Method:      http.MethodPost,
		Path:        "/shops",
		Body:        body,
		ContentType: contentType,
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

type attributeValue struct {
	AttributeName string `json:"attributeName"`
	Value         string `json:"value"`
}

type variantPayload struct {
	AttributeValues []attributeValue `json:"attributeValues"`
	Stock           int              `json:"stock"`
}

// CreateProduct posts a product with its attributes and variants to
// /products/add?shopId=<id>
func (c *BackendClient) CreateProduct(ctx context.Context, submission domain.ProductSubmission) (*domain.ProductCreated, error) {
	attributesJSON, err := json.Marshal(submission.Attributes)
	if err != nil {
		return nil, err
	}
	variantsJSON, err := json.Marshal(variantsPayload(submission))
	if err != nil {
		return nil, err
	}

	form := newForm()
	form.field("name", submission.Name)
	form.field("categoryName", submission.Category)
	form.optional("description", submission.Description)
	form.field("price", strconv.FormatFloat(submission.Price, 'f', -1, 64))
	form.field("attributesJson", string(attributesJSON))
	form.field("variantsJson", string(variantsJSON))
	for _, img := range submission.Images {
		if err := c.attach(ctx, form, "imageUrl", img); err != nil {
			return nil, err
		}
	}

	body, contentType, err := form.close()
	if err != nil {
		return nil, err
	}

	var created domain.ProductCreated
	err = c.api.Do(ctx, backend.Request{
		Method:      http.MethodPost,
		Path:        "/products/add",
		Query:       url.Values{"shopId": {submission.ShopID}},
		Body:        body,
		ContentType: contentType,
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// variantsPayload lists attribute values in attribute order so the backend
// sees a stable layout
func variantsPayload(submission domain.ProductSubmission) []variantPayload {
	out := make([]variantPayload, 0, len(submission.Variants))
	for _, v := range submission.Variants {
		values := make([]attributeValue, 0, len(submission.Attributes))
		for _, attr := range submission.Attributes {
			values = append(values, attributeValue{AttributeName: attr.Name, Value: v.Attributes[attr.Name]})
		}
		out = append(out, variantPayload{AttributeValues: values, Stock: v.Stock})
	}
	return out
}

func (c *BackendClient) attach(ctx context.Context, form *multipartForm, field string, ref domain.ImageRef) error {
	if c.images == nil {
		return fmt.Errorf("no image store configured for %s", ref.Key)
	}
	rc, err := c.images.Open(ctx, ref.Key)
	if err != nil {
		return fmt.Errorf("open staged image %s: %w", ref.Key, err)
	}
	defer rc.Close()
	return form.file(field, ref, rc)
}

type multipartForm struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func newForm() *multipartForm {
	f := &multipartForm{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

func (f *multipartForm) field(name, value string) {
	if f.err != nil {
		return
	}
	f.err = f.w.WriteField(name, value)
}

func (f *multipartForm) optional(name, value string) {
	if value != "" {
		f.field(name, value)
	}
}

func (f *multipartForm) file(field string, ref domain.ImageRef, r io.Reader) error {
	if f.err != nil {
		return f.err
	}

	filename := ref.Filename
	if filename == "" {
		filename = ref.Key
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", ref.ContentType)

	part, err := f.w.CreatePart(h)
	if err != nil {
		f.err = err
		return err
	}
	_, f.err = io.Copy(part, r)
	return f.err
}

func (f *multipartForm) close() ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	if err := f.w.Close(); err != nil {
		return nil, "", err
	}
	return f.buf.Bytes(), f.w.FormDataContentType(), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
