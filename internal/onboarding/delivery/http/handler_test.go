package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esouk/onboarding/internal/onboarding/domain"
	"github.com/esouk/onboarding/internal/onboarding/imagestore"
	"github.com/esouk/onboarding/internal/onboarding/repository"
	"github.com/esouk/onboarding/internal/onboarding/session"
	"github.com/esouk/onboarding/pkg/auth"
	"github.com/esouk/onboarding/pkg/backend"
)

type fakeBackend struct {
	shopErr    error
	productErr error
	lastShop   domain.ShopRequest
}

func (b *fakeBackend) CreateShop(ctx context.Context, req domain.ShopRequest) (*domain.ShopCreated, error) {
	b.lastShop = req
	if b.shopErr != nil {
		return nil, b.shopErr
	}
	return &domain.ShopCreated{ID: "shop-42"}, nil
}

func (b *fakeBackend) CreateProduct(ctx context.Context, submission domain.ProductSubmission) (*domain.ProductCreated, error) {
	if b.productErr != nil {
		return nil, b.productErr
	}
	return &domain.ProductCreated{ID: "prod-7"}, nil
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

type testEnv struct {
	router   *mux.Router
	backend  *fakeBackend
	token    string
	imageDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	auth.SetSecret("handler-test-secret")
	token, err := auth.GenerateToken("vendor-1", "atlas", "vendor", time.Hour)
	require.NoError(t, err)

	b := &fakeBackend{}
	store := repository.NewMemoryStateStore()
	dir := t.TempDir()
	images := imagestore.NewLocal(dir)
	sessions := session.NewRegistry(session.Dependencies{Shops: b, Products: b, Store: store, Images: images})
	h := NewOnboardingHandler(sessions, images)

	router := mux.NewRouter()
	h.RegisterRoutes(router)
	h.RegisterHealthCheck(router, store)
	return &testEnv{router: router, backend: b, token: token, imageDir: dir}
}

func (e *testEnv) stagedImages(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(e.imageDir)
	if errors.Is(err, os.ErrNotExist) {
		return 0
	}
	require.NoError(t, err)
	return len(entries)
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	return e.serve(t, req)
}

func (e *testEnv) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func validShopBody() map[string]any {
	return map[string]any{
		"brandName":   "Atlas Crafts",
		"bio":         "Handmade ceramics",
		"address":     "12 Rue Souk, Tunis",
		"phone":       "+21612345678",
		"deliveryFee": 7,
	}
}

func TestHandler_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/onboarding", nil)
	rec, body := env.serve(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authorization header required", body["error"])

	req = httptest.NewRequest(http.MethodGet, "/api/onboarding", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec, _ = env.serve(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_FullWizard(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/onboarding", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CREATE_SHOP", body["data"].(map[string]any)["step"])

	rec, body = env.do(t, http.MethodPost, "/api/onboarding/shop", validShopBody())
	require.Equal(t, http.StatusCreated, rec.Code, body)
	assert.Equal(t, "shop-42", body["data"].(map[string]any)["id"])
	assert.Equal(t, "Handmade ceramics", env.backend.lastShop.Bio)

	rec, _ = env.do(t, http.MethodPost, "/api/onboarding/product/info", map[string]any{"name": "Mug", "category": "Home", "price": 12.5})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = env.do(t, http.MethodPut, "/api/onboarding/product/attributes", map[string]any{
		"attributes": []map[string]any{{"name": "Color", "values": []string{"Red", "Blue"}}},
	})
	require.Equal(t, http.StatusOK, rec.Code, body)
	assert.Equal(t, []any{"Color"}, body["data"].(map[string]any)["fields"])

	variant := map[string]any{"attributes": map[string]string{"Color": "Red"}, "stock": 5}
	rec, _ = env.do(t, http.MethodPost, "/api/onboarding/product/variants", variant)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = env.do(t, http.MethodPost, "/api/onboarding/product/variants", variant)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, true, body["duplicate"])
	assert.Equal(t, true, body["data"].(map[string]any)["duplicateVariant"])

	rec, body = env.do(t, http.MethodPost, "/api/onboarding/product/submit", nil)
	require.Equal(t, http.StatusCreated, rec.Code, body)
	assert.Equal(t, "prod-7", body["data"].(map[string]any)["id"])
	assert.EqualValues(t, 5, body["data"].(map[string]any)["totalStock"])

	rec, body = env.do(t, http.MethodGet, "/api/onboarding/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 60, body["data"].(map[string]any)["percentage"])

	rec, body = env.do(t, http.MethodPost, "/api/onboarding/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["data"].(map[string]any)["complete"])
	assert.EqualValues(t, 100, body["data"].(map[string]any)["progress"])
}

func TestHandler_ShopValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	shop := validShopBody()
	shop["brandName"] = "<b>"
	shop["deliveryFee"] = 500
	rec, body := env.do(t, http.MethodPost, "/api/onboarding/shop", shop)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	fields := body["fields"].(map[string]any)
	assert.Contains(t, fields, "brandName")
	assert.Contains(t, fields, "deliveryFee")

	req := httptest.NewRequest(http.MethodPost, "/api/onboarding/shop", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+env.token)
	rec, _ = env.serve(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_BackendErrorsKeepTheirStatus(t *testing.T) {
	env := newTestEnv(t)
	env.backend.shopErr = &backend.APIError{Kind: backend.KindRejected, Status: http.StatusConflict, Message: "A shop with this name already exists."}

	rec, body := env.do(t, http.MethodPost, "/api/onboarding/shop", validShopBody())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "A shop with this name already exists.", body["error"])

	env.backend.shopErr = &backend.APIError{Kind: backend.KindTransport, Message: "Client error: connection refused"}
	rec, body = env.do(t, http.MethodPost, "/api/onboarding/shop", validShopBody())
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Client error: connection refused", body["error"])
}

func TestHandler_PrepareConfirmCancel(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPost, "/api/onboarding/shop/confirm", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/onboarding/shop/prepare", validShopBody())
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := env.do(t, http.MethodGet, "/api/onboarding", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, body["data"].(map[string]any)["pendingShop"])

	rec, _ = env.do(t, http.MethodPost, "/api/onboarding/shop/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = env.do(t, http.MethodPost, "/api/onboarding/shop/confirm", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/onboarding/shop/prepare", validShopBody())
	require.Equal(t, http.StatusOK, rec.Code)
	rec, body = env.do(t, http.MethodPost, "/api/onboarding/shop/confirm", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "shop-42", body["data"].(map[string]any)["id"])
}

func TestHandler_StepNavigation(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/onboarding/step", map[string]any{"step": 2})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, session.ErrInvalidTransition.Error(), body["error"])

	rec, _ = env.do(t, http.MethodPost, "/api/onboarding/shop", validShopBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body = env.do(t, http.MethodPost, "/api/onboarding/step/previous", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "CREATE_SHOP", data["step"])
	assert.Nil(t, data["state"].(map[string]any)["shopId"])

	rec, _ = env.do(t, http.MethodPost, "/api/onboarding/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func multipartImage(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func multipartShop(t *testing.T, fields map[string]string, filename, contentType string, logo []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="logo"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(logo)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (e *testEnv) postShop(t *testing.T, path string, fields map[string]string, filename, contentType string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	buf, formType := multipartShop(t, fields, filename, contentType, []byte("logo bytes"))
	req := httptest.NewRequest(http.MethodPost, path, buf)
	req.Header.Set("Content-Type", formType)
	req.Header.Set("Authorization", "Bearer "+e.token)
	return e.serve(t, req)
}

func TestHandler_ShopLogoUpload(t *testing.T) {
	env := newTestEnv(t)
	fields := map[string]string{
		"brandName":   "Atlas Crafts",
		"address":     "12 Rue Souk, Tunis",
		"phone":       "+21612345678",
		"deliveryFee": "7",
	}

	rec, body := env.postShop(t, "/api/onboarding/shop", map[string]string{"brandName": "<b>"}, "logo.png", "image/png")
	assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	assert.Zero(t, env.stagedImages(t), "invalid form stages nothing")

	rec, body = env.postShop(t, "/api/onboarding/shop", fields, "setup.exe", "application/x-msdownload")
	assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	assert.Zero(t, env.stagedImages(t))

	rec, _ = env.postShop(t, "/api/onboarding/shop/prepare", fields, "logo.png", "image/png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.stagedImages(t))

	rec, _ = env.postShop(t, "/api/onboarding/shop/prepare", fields, "logo.webp", "image/webp")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.stagedImages(t))

	rec, _ = env.do(t, http.MethodPost, "/api/onboarding/shop/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, env.stagedImages(t))

	env.backend.shopErr = &backend.APIError{Kind: backend.KindRejected, Status: http.StatusConflict, Message: "A shop with this name already exists."}
	rec, _ = env.postShop(t, "/api/onboarding/shop", fields, "logo.png", "image/png")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NotNil(t, env.backend.lastShop.Logo)
	assert.Zero(t, env.stagedImages(t))

	env.backend.shopErr = nil
	rec, _ = env.postShop(t, "/api/onboarding/shop", fields, "logo.png", "image/png")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Zero(t, env.stagedImages(t))
}

func TestHandler_ImageUpload(t *testing.T) {
	env := newTestEnv(t)

	buf, contentType := multipartImage(t, "mug.png", "image/png", []byte("\x89PNG fake"))
	req := httptest.NewRequest(http.MethodPost, "/api/onboarding/product/images", buf)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+env.token)
	rec, body := env.serve(t, req)
	require.Equal(t, http.StatusCreated, rec.Code, body)
	images := body["data"].(map[string]any)["images"].([]any)
	require.Len(t, images, 1)
	assert.Equal(t, "mug.png", images[0].(map[string]any)["filename"])

	buf, contentType = multipartImage(t, "doc.pdf", "application/pdf", []byte("%PDF"))
	req = httptest.NewRequest(http.MethodPost, "/api/onboarding/product/images", buf)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+env.token)
	rec, _ = env.serve(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = env.do(t, http.MethodDelete, "/api/onboarding/product/images/0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["data"].(map[string]any)["images"])

	rec, _ = env.do(t, http.MethodDelete, "/api/onboarding/product/images/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_StreamSendsCurrentState(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/onboarding/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	var data string
	for data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(strings.TrimSpace(line), "data: ")
		}
	}

	var event map[string]any
	require.NoError(t, json.Unmarshal([]byte(data), &event))
	assert.Equal(t, "CREATE_SHOP", event["step"])
}

func TestHandler_HealthCheck(t *testing.T) {
	env := newTestEnv(t)
	rec, body := env.serve(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	router := mux.NewRouter()
	NewOnboardingHandler(session.NewRegistry(session.Dependencies{}), nil).RegisterHealthCheck(router, failingPinger{})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
