package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/esouk/onboarding/internal/config"
	"github.com/esouk/onboarding/kafka"
	"github.com/esouk/onboarding/pkg/logger"
	"github.com/esouk/onboarding/pkg/tracing"
)

// notifier prints the vendor-facing message of every onboarding event
func main() {
	cfg := config.Load()
	cfg.Tracing.ServiceName = "onboarding-notifier"

	logger.Init("onboarding-notifier", cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	if len(cfg.Kafka.Brokers) == 0 {
		logger.Logger.Fatal().Msg("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if tp, err := tracing.InitTracer(cfg.Tracing); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() { _ = tracing.Shutdown(context.Background(), tp) }()
	}

	consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, []string{kafka.TopicOnboardingEvents})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka consumer")
	}
	defer consumer.Close()

	notify := func(ctx context.Context, event kafka.OnboardingEvent) error {
		logger.ForVendor(ctx, event.VendorID).Info().
			Str("event_type", event.EventType).
			Str("shop_id", event.ShopID).
			Int("products", event.Products).
			Msg(event.Message())
		return nil
	}
	for _, eventType := range []string{kafka.EventTypeShopReady, kafka.EventTypeProductAdded, kafka.EventTypeCompleted} {
		consumer.RegisterHandler(eventType, notify)
	}

	if err := consumer.Start(ctx); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start Kafka consumer")
	}

	<-ctx.Done()
	logger.Logger.Info().Msg("Shutting down notifier...")
}
