package main

import (
	commissionhandler "resort/internal/commissions/handler"
	commissionrepo "resort/internal/commissions/repository"
	commissionservice "resort/internal/commissions/service"
	commissionvalidator "resort/internal/commissions/validator"
	inventoryhandler "resort/internal/inventory/handler"
	inventoryrepo "resort/internal/inventory/repository"
	inventoryservice "resort/internal/inventory/service"
	inventoryvalidator "resort/internal/inventory/validator"
	promohandler "resort/internal/promotions/handler"
	promorepo "resort/internal/promotions/repository"
	promoservice "resort/internal/promotions/service"
	promovalidator "resort/internal/promotions/validator"
	ratehandler "resort/internal/rates/handler"
	raterepo "resort/internal/rates/repository"
	rateservice "resort/internal/rates/service"
	ratevalidator "resort/internal/rates/validator"
	resorthandler "resort/internal/resorts/handler"
	resortrepo "resort/internal/resorts/repository"
	resortservice "resort/internal/resorts/service"
	resortvalidator "resort/internal/resorts/validator"
	"resort/pkg/app"
	"resort/pkg/config"
	"resort/pkg/contracts"
)

const ServiceName = "catalog"

// @title Resort Catalog API
// @version 1.0
// @description Resorts, rate plans, seasonal rates, inventory, promotions and commission rules.
// @BasePath /
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Catalog service")
	handlers := initHandlers(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handlers...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config) []contracts.Handler {
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

	inventoryService := inventoryservice.NewInventoryService(
		inventoryrepo.NewMongoInventoryRepository(cfg),
		inventoryrepo.NewMongoLockRepository(cfg),
		cfg,
	)
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

	cfg.Log.Info("Catalog services initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		resorthandler.NewResortHandler(resortService, transferService, settingService, cfg.Log),
		ratehandler.NewRatePlanHandler(ratePlanService, rateResolver, cfg.Log),
		inventoryhandler.NewInventoryHandler(inventoryService, inventoryvalidator.NewInventoryValidator(cfg.Log), cfg.Log),
		promohandler.NewPromotionHandler(promotionService, cfg.Log),
		commissionhandler.NewCommissionHandler(commissionService, cfg.Log),
	}
}
