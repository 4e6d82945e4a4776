package main

import (
	"log"

	"mall/internal/config"
	"mall/internal/domain/model"
	"mall/internal/handler"
	"mall/internal/infra/db"
	"mall/internal/infra/logger"
	infraRepo "mall/internal/infra/repository"
	"mall/internal/server"
	"mall/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.GoEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		zlog.Fatal("db connect", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Address{},
		&model.Collection{},
		&model.Product{},
		&model.ProductSpec{},
		&model.Order{},
		&model.OrderItem{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
		&model.Banner{},
		&model.Course{},
		&model.Activity{},
		&model.Prize{},
		&model.LotteryTicket{},
	); err != nil {
		zlog.Fatal("migrate", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	bannerRepo := infraRepo.NewBannerGormRepository(gormDB)
	collectionRepo := infraRepo.NewCollectionGormRepository(gormDB)
	courseRepo := infraRepo.NewCourseGormRepository(gormDB)
	lotteryRepo := infraRepo.NewLotteryGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo)
	userUC := usecase.NewUserUsecase(userRepo)
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, auditRepo)
	orderUC := usecase.NewOrderUsecase(txManager, orderRepo, orderItemRepo, addressRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, orderRepo, orderItemRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	marketingUC := usecase.NewMarketingUsecase(bannerRepo, collectionRepo, courseRepo)
	lotteryUC := usecase.NewLotteryUsecase(txManager, lotteryRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:         handler.NewAuthHandler(authUC, cfg),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		Address:      handler.NewAddressHandler(addressUC),
		AdminUser:    handler.NewAdminUserHandler(userUC, authUC),
		Marketing:    handler.NewMarketingHandler(marketingUC),
		Lottery:      handler.NewLotteryHandler(lotteryUC),
	}

	e := server.New(cfg, zlog, userRepo, handlers)

	zlog.Info("starting api", zap.String("port", cfg.Port), zap.String("env", cfg.GoEnv))
	if err := server.Start(e, cfg.Port); err != nil {
		zlog.Fatal("server", zap.Error(err))
	}
}
