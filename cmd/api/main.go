package main

import (
	"log/slog"
	"os"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/event"
	"app/internal/handler"
	"app/internal/infra/db"
	"app/internal/infra/gateway"
	infraRepo "app/internal/infra/repository"
	"app/internal/notifier"
	"app/internal/server"
	"app/internal/telemetry"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// .envが無ければ環境変数をそのまま使う
	_ = godotenv.Load()

	telemetry.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		slog.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.CartLine{},
		&model.Order{},
		&model.OrderDetail{},
		&model.Payment{},
		&model.ProductLike{},
	); err != nil {
		slog.Error("migrate failed", "error", err)
		os.Exit(1)
	}

	//Repository（GORM実装）生成
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	paymentRepo := infraRepo.NewPaymentGormRepository(gormDB)
	likeRepo := infraRepo.NewLikeGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//イベントバス（REDIS_ADDRがあればredis pub/sub、無ければインメモリ）
	var bus event.Bus
	if cfg.RedisAddr != "" {
		bus = event.NewRedisBus(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	} else {
		bus = event.NewMemoryBus()
	}

	//在庫僅少アラート
	dispatcher := notifier.NewStockAlertDispatcher(
		productRepo,
		likeRepo,
		notifier.NewSlogMailer(slog.Default()),
		cfg.LowStockThreshold,
		slog.Default(),
	)
	bus.Subscribe(dispatcher.HandleStockUpdated)

	//外部決済ゲートウェイ
	gw := gateway.NewHTTPGateway(cfg.PaymentGatewayURL, cfg.PaymentGatewayKey, cfg.WebhookSecret)

	//Usecase生成
	orderUC := usecase.NewOrderUsecase(txm, cartRepo, productRepo, orderRepo, bus)
	paymentUC := usecase.NewPaymentUsecase(txm, orderRepo, paymentRepo, gw, cfg.DefaultCurrency)

	//Handler生成
	orderH := handler.NewOrderHandler(orderUC)
	paymentH := handler.NewPaymentHandler(paymentUC)

	//Server起動
	e := server.New(cfg, orderH, paymentH)

	addr := ":" + cfg.Port
	if cfg.Port[0] == ':' {
		addr = cfg.Port
	}

	if err := server.Start(e, addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
