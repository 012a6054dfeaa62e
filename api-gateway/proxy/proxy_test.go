package proxy

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esouk/onboarding/internal/config"
)

func newApp(p *ReverseProxy) *fiber.App {
	app := fiber.New()
	app.All("/api/onboarding/*", func(c *fiber.Ctx) error {
		return p.ProxyRequest(c, "onboarding")
	})
	return app
}

func TestReverseProxy_ForwardsRequest(t *testing.T) {
	var gotPath, gotQuery, gotAuth, gotForwarded string
	var gotBody []byte
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotForwarded = r.Header.Get("X-Forwarded-Proto")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Upstream", "onboarding")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer upstream.Close()

	p := NewReverseProxy(map[string]config.ServiceConfig{
		"onboarding": {Name: "onboarding-service", BaseURL: upstream.URL, Timeout: time.Second},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/onboarding/shop?draft=1", strings.NewReader(`{"brandName":"Atlas"}`))
	req.Header.Set("Authorization", "Bearer tok")
	resp, err := newApp(p).Test(req)
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(body))
	assert.Equal(t, "onboarding", resp.Header.Get("X-Upstream"))
	assert.Equal(t, "/api/onboarding/shop", gotPath)
	assert.Equal(t, "draft=1", gotQuery)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "http", gotForwarded)
	assert.JSONEq(t, `{"brandName":"Atlas"}`, string(gotBody))
}

func TestReverseProxy_RotatesInstances(t *testing.T) {
	var hits [2]int
	servers := make([]string, 2)
	for i := range servers {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits[i]++
		}))
		defer srv.Close()
		servers[i] = srv.URL
	}

	p := NewReverseProxy(map[string]config.ServiceConfig{
		"onboarding": {Instances: servers, Timeout: time.Second},
	})
	app := newApp(p)
	for i := 0; i < 4; i++ {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/onboarding/progress", nil))
		require.NoError(t, err)
	}
	assert.Equal(t, [2]int{2, 2}, hits)
}

func TestReverseProxy_UpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	p := NewReverseProxy(map[string]config.ServiceConfig{
		"onboarding": {BaseURL: upstream.URL, Timeout: time.Second},
	})
	resp, err := newApp(p).Test(httptest.NewRequest(http.MethodGet, "/api/onboarding/progress", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestReverseProxy_UnknownService(t *testing.T) {
	p := NewReverseProxy(nil)
	resp, err := newApp(p).Test(httptest.NewRequest(http.MethodGet, "/api/onboarding/progress", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestReverseProxy_RelaysEventStream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for i := 1; i <= 2; i++ {
			fmt.Fprintf(w, "event: state\ndata: {\"step\":%d}\n\n", i)
			flusher.Flush()
		}
	}))
	defer upstream.Close()

	p := NewReverseProxy(map[string]config.ServiceConfig{
		"onboarding": {BaseURL: upstream.URL, Timeout: time.Second},
	})
	resp, err := newApp(p).Test(httptest.NewRequest(http.MethodGet, "/api/onboarding/stream", nil), 5000)
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, 2, strings.Count(string(body), "event: state"))
}

func TestIsStream(t *testing.T) {
	assert.True(t, IsStream("/api/onboarding/stream"))
	assert.True(t, IsStream("/api/onboarding/stream/"))
	assert.False(t, IsStream("/api/onboarding/streams"))
}
