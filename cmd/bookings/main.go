package main

import (
	"context"

	"resort/internal/bookings/events"
	"resort/internal/bookings/handler"
	bookingrepo "resort/internal/bookings/repository"
	"resort/internal/bookings/scheduler"
	"resort/internal/bookings/service"
	"resort/internal/bookings/validator"
	commissionrepo "resort/internal/commissions/repository"
	commissionservice "resort/internal/commissions/service"
	commissionvalidator "resort/internal/commissions/validator"
	inventoryrepo "resort/internal/inventory/repository"
	inventoryservice "resort/internal/inventory/service"
	pricingservice "resort/internal/pricing/service"
	promorepo "resort/internal/promotions/repository"
	promoservice "resort/internal/promotions/service"
	promovalidator "resort/internal/promotions/validator"
	raterepo "resort/internal/rates/repository"
	rateservice "resort/internal/rates/service"
	ratevalidator "resort/internal/rates/validator"
	resortrepo "resort/internal/resorts/repository"
	resortservice "resort/internal/resorts/service"
	resortvalidator "resort/internal/resorts/validator"
	"resort/pkg/app"
	"resort/pkg/config"
	"resort/pkg/kafka"
	kafka_config "resort/pkg/kafka/config"
	kafkamw "resort/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)

	publisher := initPublisher(cfg, serverApp)
	bookingService := initServices(cfg, publisher)

	expiry, err := scheduler.NewExpiryScheduler(bookingService, cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to create expiry scheduler", "error", err)
	}
	expiry.Start()
	serverApp.OnShutdown("expiry-scheduler", func(context.Context) error {
		return expiry.Shutdown()
	})

	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

// initPublisher publishes lifecycle events to Kafka when enabled and to the
// log otherwise.
func initPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events are logged only")
		return events.NewLogPublisher(cfg.Log)
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, cfg.BookingEventsTopic, kafkaCfg.DLQTopic(cfg.BookingEventsTopic))
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafkamw.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafkamw.NewMetrics().ProducerMiddleware())
	}

	serverApp.OnShutdown("kafka-producer", func(context.Context) error {
		return producer.Close()
	})
	cfg.Log.Info("Kafka producer initialized", "topic", cfg.BookingEventsTopic)
	return events.NewKafkaPublisher(producer)
}

func initServices(cfg *config.Config, publisher events.Publisher) service.BookingService {
	resortValidator := resortvalidator.NewResortValidator(cfg.Log)
	resortService := resortservice.NewResortService(resortrepo.NewMongoResortRepository(cfg), resortValidator, cfg)
	transferService := resortservice.NewTransferService(resortrepo.NewMongoTransferRepository(cfg), resortService, resortValidator, cfg)
	settingService := resortservice.NewSettingService(resortrepo.NewMongoSettingRepository(cfg), resortValidator, cfg)

	seasonalRateRepo := raterepo.NewMongoSeasonalRateRepository(cfg)
	ratePlanService := rateservice.NewRatePlanService(
		raterepo.NewMongoRatePlanRepository(cfg),
		seasonalRateRepo,
		ratevalidator.NewRatePlanValidator(cfg.Log),
		cfg,
	)
	rateResolver := rateservice.NewRateResolver(seasonalRateRepo, cfg)

	promotionService := promoservice.NewPromotionService(
		promorepo.NewMongoPromotionRepository(cfg),
		promovalidator.NewPromotionValidator(cfg.Log),
		cfg,
	)
	commissionService := commissionservice.NewCommissionService(
		commissionrepo.NewMongoCommissionRepository(cfg),
		commissionvalidator.NewCommissionValidator(cfg.Log),
		cfg,
	)
	inventoryService := inventoryservice.NewInventoryService(
		inventoryrepo.NewMongoInventoryRepository(cfg),
		inventoryrepo.NewMongoLockRepository(cfg),
		cfg,
	)

	quoteService := pricingservice.NewQuoteService(
		ratePlanService,
		rateResolver,
		resortService,
		transferService,
		settingService,
		promotionService,
		cfg,
	)

	bookingService := service.NewBookingService(
		bookingrepo.NewMongoBookingRepository(cfg),
		quoteService,
		inventoryService,
		promotionService,
		commissionService,
		publisher,
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}
