package main

import (
	"context"
	"os/signal"
	"syscall"

	"cardealer-backend/config"
	"cardealer-backend/internal/infrastructure/messaging"
	"cardealer-backend/internal/usecase"
	"cardealer-backend/pkg/logger"
)

const serviceName = "cardealer-notifier"

var version = "dev"

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	if cfg.RabbitMQURL == "" {
		log.Fatal().Msg("RABBITMQ_URL is required for the notifier")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	uc := usecase.NewNotificationUsecase(usecase.LogNotifier{})

	consumer, err := messaging.NewConsumer(cfg.RabbitMQURL, cfg.OrderQueue, cfg.NotifyWorkers, uc.HandleOrderEvent)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
	}

	logger.ServiceStart(serviceName, version, cfg.OrderQueue)
	if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("Consumer stopped")
	}
	logger.ServiceStop(serviceName)
}
