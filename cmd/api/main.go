package main

import (
	"limpopo-api/internal/config"
	"limpopo-api/internal/domain/model"
	"limpopo-api/internal/handler"
	"limpopo-api/internal/infra/cache"
	"limpopo-api/internal/infra/db"
	infraRepo "limpopo-api/internal/infra/repository"
	"limpopo-api/internal/logging"
	"limpopo-api/internal/middleware"
	"limpopo-api/internal/payment"
	"limpopo-api/internal/server"
	"limpopo-api/internal/usecase"
	"limpopo-api/internal/validator"

	auth "limpopo-api/internal/auth"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

func main() {
	//.envがあれば読む（無くてもいい）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logging.Init("limpopo-api", "./logs/app.log")

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.MarketItem{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	itemRepo := infraRepo.NewMarketItemGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}

	//JWT。シークレットは初回利用時に一度だけ解決される
	tokens := auth.NewTokenService(nil, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	//一覧キャッシュ（REDIS_ADDR未設定なら無し）
	var listingCache usecase.ListingCache
	if cfg.RedisAddr != "" {
		listingCache = cache.NewMarketListingCache(cache.NewRedis(cfg.RedisAddr), 0)
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, tokens, validator.NewAuthValidator(), idGen)
	orderUC := usecase.NewOrderUsecase(txManager, orderRepo, idGen, payment.NewStubService(log))
	itemUC := usecase.NewMarketItemUsecase(itemRepo, listingCache, idGen)

	//Handler生成
	authH := handler.NewAuthHandler(authUC)
	orderH := handler.NewOrderHandler(orderUC)
	itemH := handler.NewMarketItemHandler(itemUC)

	guard := middleware.NewAuthGuard(tokens, userRepo)

	//Server起動
	e := server.New(log)
	server.RegisterRoutes(e, guard, authH, orderH, itemH)

	addr := ":" + cfg.Port
	log.Info("starting api", "addr", addr, "env", cfg.GoEnv)
	if err := server.Start(e, addr); err != nil {
		panic(err)
	}
}
