package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/esouk/onboarding/internal/onboarding/domain"
	"github.com/esouk/onboarding/internal/onboarding/session"
	"github.com/esouk/onboarding/internal/onboarding/usecase/command"
	"github.com/esouk/onboarding/internal/onboarding/usecase/query"
	"github.com/esouk/onboarding/pkg/logger"
)

// maxUploadSize bounds multipart bodies: several 5MB images plus form fields
const maxUploadSize = 32 << 20

var (
	requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_service_requests_total",
			Help: "Total number of requests to onboarding service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onboarding_service_request_duration_seconds",
			Help:    "Duration of onboarding service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Summary metric for percentile calculation (p50, p90, p95, p99)
	requestSummary = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "onboarding_service_request_duration_summary",
			Help: "Summary of request durations with percentiles (client-side quantiles)",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.95: 0.01,
				0.99: 0.001,
			},
			MaxAge: 10 * time.Minute,
		},
		[]string{"method", "endpoint"},
	)

	activeStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "onboarding_service_active_streams",
			Help: "Number of open onboarding state streams",
		},
	)
)

func init() {
	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(requestSummary)
	prometheus.MustRegister(activeStreams)
}

// OnboardingHandler handles HTTP requests for the vendor onboarding wizard
type OnboardingHandler struct {
	// Command handlers
	createShopHandler    *command.CreateShopHandler
	prepareShopHandler   *command.PrepareShopHandler
	confirmShopHandler   *command.ConfirmShopHandler
	cancelShopHandler    *command.CancelShopHandler
	editProductHandler   *command.EditProductHandler
	attachImageHandler   *command.AttachImageHandler
	removeImageHandler   *command.RemoveImageHandler
	submitProductHandler *command.SubmitProductHandler
	resetProductHandler  *command.ResetProductHandler
	goToStepHandler      *command.GoToStepHandler
	completeHandler      *command.CompleteHandler
	resetHandler         *command.ResetHandler

	// Query handlers
	getStateHandler    *query.GetStateHandler
	getProgressHandler *query.GetProgressHandler
	getProductHandler  *query.GetProductHandler

	sessions *session.Registry
}

// NewOnboardingHandler wires every use case over the session registry
func NewOnboardingHandler(sessions *session.Registry, images domain.ImageStore) *OnboardingHandler {
	return NewOnboardingHandlerWithDI(
		command.NewCreateShopHandler(sessions, images),
		command.NewPrepareShopHandler(sessions, images),
		command.NewConfirmShopHandler(sessions),
		command.NewCancelShopHandler(sessions),
		command.NewEditProductHandler(sessions),
		command.NewAttachImageHandler(sessions, images),
		command.NewRemoveImageHandler(sessions, images),
		command.NewSubmitProductHandler(sessions, images),
		command.NewResetProductHandler(sessions, images),
		command.NewGoToStepHandler(sessions),
		command.NewCompleteHandler(sessions),
		command.NewResetHandler(sessions, images),
		query.NewGetStateHandler(sessions),
		query.NewGetProgressHandler(sessions),
		query.NewGetProductHandler(sessions),
		sessions,
	)
}

// NewOnboardingHandlerWithDI is the constructor used by Wire
func NewOnboardingHandlerWithDI(
	createShopHandler *command.CreateShopHandler,
	prepareShopHandler *command.PrepareShopHandler,
	confirmShopHandler *command.ConfirmShopHandler,
	cancelShopHandler *command.CancelShopHandler,
	editProductHandler *command.EditProductHandler,
	attachImageHandler *command.AttachImageHandler,
	removeImageHandler *command.RemoveImageHandler,
	submitProductHandler *command.SubmitProductHandler,
	resetProductHandler *command.ResetProductHandler,
	goToStepHandler *command.GoToStepHandler,
	completeHandler *command.CompleteHandler,
	resetHandler *command.ResetHandler,
	getStateHandler *query.GetStateHandler,
	getProgressHandler *query.GetProgressHandler,
	getProductHandler *query.GetProductHandler,
	sessions *session.Registry,
) *OnboardingHandler {
	return &OnboardingHandler{
		createShopHandler:    createShopHandler,
		prepareShopHandler:   prepareShopHandler,
		confirmShopHandler:   confirmShopHandler,
		cancelShopHandler:    cancelShopHandler,
		editProductHandler:   editProductHandler,
		attachImageHandler:   attachImageHandler,
		removeImageHandler:   removeImageHandler,
		submitProductHandler: submitProductHandler,
		resetProductHandler:  resetProductHandler,
		goToStepHandler:      goToStepHandler,
		completeHandler:      completeHandler,
		resetHandler:         resetHandler,
		getStateHandler:      getStateHandler,
		getProgressHandler:   getProgressHandler,
		getProductHandler:    getProductHandler,
		sessions:             sessions,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *OnboardingHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		requestSummary.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

// RegisterRoutes registers the wizard routes; all of them need a vendor token
func (h *OnboardingHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/onboarding").Subrouter()

	route := func(method, path string, fn http.HandlerFunc) {
		endpoint := "/api/onboarding" + path
		api.HandleFunc(path, h.metricsMiddleware(endpoint, AuthMiddleware(fn))).Methods(method)
	}

	route(http.MethodGet, "", h.GetState)
	route(http.MethodGet, "/stream", h.StreamState)
	route(http.MethodGet, "/progress", h.GetProgress)

	route(http.MethodPost, "/shop", h.CreateShop)
	route(http.MethodPost, "/shop/prepare", h.PrepareShop)
	route(http.MethodPost, "/shop/confirm", h.ConfirmShop)
	route(http.MethodPost, "/shop/cancel", h.CancelShop)

	route(http.MethodGet, "/product", h.GetProduct)
	route(http.MethodPost, "/product/info", h.SetProductInfo)
	route(http.MethodPut, "/product/attributes", h.DefineAttributes)
	route(http.MethodPost, "/product/variants", h.AddVariant)
	route(http.MethodDelete, "/product/variants/{index}", h.RemoveVariant)
	route(http.MethodPost, "/product/back", h.BackToAttributes)
	route(http.MethodPost, "/product/images", h.AttachImage)
	route(http.MethodDelete, "/product/images/{index}", h.RemoveImage)
	route(http.MethodPost, "/product/submit", h.SubmitProduct)
	route(http.MethodPost, "/product/reset", h.ResetProduct)

	route(http.MethodPost, "/step", h.GoToStep)
	route(http.MethodPost, "/step/next", h.NextStep)
	route(http.MethodPost, "/step/previous", h.PreviousStep)
	route(http.MethodPost, "/complete", h.Complete)
	route(http.MethodPost, "/reset", h.Reset)
}

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterHealthCheck registers health check endpoint
func (h *OnboardingHandler) RegisterHealthCheck(router *mux.Router, store Pinger) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			logger.Warn(r.Context()).Err(err).Msg("State store unreachable")
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "State store unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Onboarding service is healthy",
			Data:    map[string]int{"sessions": h.sessions.Len()},
		})
	}).Methods("GET")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
