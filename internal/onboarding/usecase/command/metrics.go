package command

import "github.com/prometheus/client_golang/prometheus"

// Onboarding funnel metrics
var (
	shopsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "onboarding_shops_created_total",
			Help: "Total number of shops created through the onboarding wizard",
		},
	)

	productsAdded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "onboarding_products_added_total",
			Help: "Total number of products added through the onboarding wizard",
		},
	)

	duplicateVariants = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "onboarding_duplicate_variants_total",
			Help: "Total number of variants rejected as duplicates",
		},
	)

	completions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "onboarding_completions_total",
			Help: "Total number of completed onboardings",
		},
	)

	backendFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_backend_failures_total",
			Help: "Total number of failed backend calls by operation",
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(shopsCreated)
	prometheus.MustRegister(productsAdded)
	prometheus.MustRegister(duplicateVariants)
	prometheus.MustRegister(completions)
	prometheus.MustRegister(backendFailures)
}
