package main

import (
	"context"

	bookingrepo "resort/internal/bookings/repository"
	commissionrepo "resort/internal/commissions/repository"
	commissionservice "resort/internal/commissions/service"
	commissionvalidator "resort/internal/commissions/validator"
	"resort/internal/reports/accrual"
	"resort/internal/reports/handler"
	"resort/internal/reports/service"
	"resort/pkg/app"
	"resort/pkg/config"
	"resort/pkg/kafka"
	kafka_config "resort/pkg/kafka/config"
	kafkamw "resort/pkg/kafka/middleware"
)

const ServiceName = "reports"

// @title Resort Reports API
// @version 1.0
// @description Commission reports derived from confirmed bookings.
// @BasePath /
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Reports service")
	serverApp := app.NewApplication(cfg)

	commissionService := commissionservice.NewCommissionService(
		commissionrepo.NewMongoCommissionRepository(cfg),
		commissionvalidator.NewCommissionValidator(cfg.Log),
		cfg,
	)
	reportService := service.NewReportService(bookingrepo.NewMongoBookingRepository(cfg), commissionService, cfg)

	live, stats := initAccrual(cfg, serverApp, commissionService)

	serverApp.SetApp(handler.NewReportHandler(reportService, live, stats, cfg.Log))
	serverApp.Run()
}

// initAccrual starts the booking events consumer that keeps the live
// commission totals. Without Kafka only the derived report is served.
func initAccrual(cfg *config.Config, serverApp *app.Application, commissions commissionservice.CommissionService) (*accrual.Accrual, func() *handler.ConsumerStats) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, live commission accrual is off")
		return nil, nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	live := accrual.New(commissions, cfg.Log)
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.Log,
		cfg.BookingEventsTopic,
		kafkaCfg.ReportsGroupID,
		kafkaCfg.DLQTopic(cfg.BookingEventsTopic),
		live.Handle,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	metrics := kafkamw.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafkamw.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(metrics.ConsumerMiddleware())
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			cfg.Log.Error("Kafka consumer stopped", "topic", cfg.BookingEventsTopic, "error", err)
		}
	}()

	serverApp.OnShutdown("kafka-consumer", func(context.Context) error {
		cancel()
		return consumer.Close()
	})

	cfg.Log.Info("Commission accrual consumer started",
		"topic", cfg.BookingEventsTopic,
		"group_id", kafkaCfg.ReportsGroupID,
	)

	return live, func() *handler.ConsumerStats {
		return &handler.ConsumerStats{
			Metrics: metrics.Snapshot(),
			Lag:     consumer.Lag(),
		}
	}
}
