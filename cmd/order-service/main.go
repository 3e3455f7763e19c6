// cmd/order-service/main.go
package main

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"
	zlog "github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"almacen/internal/pkg/bootstrap"
	"almacen/internal/pkg/database"
	"almacen/internal/pkg/httpclient"
	"almacen/internal/pkg/integrity"
	"almacen/internal/pkg/logger"
	"almacen/internal/service/order/application"
	"almacen/internal/service/order/domain"
	"almacen/internal/service/order/infrastructure"
	"almacen/internal/service/order/infrastructure/adapter"
	"almacen/internal/service/order/interfaces"
)

const serviceName = "order-service"

// main 是订单服务的组装根 (Composition Root)。
// 核心职责：创建并组装所有依赖项，然后启动应用。
func main() {
	logger.Init(serviceName)

	cfg, err := bootstrap.LoadConfig("")
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}

	tracer := otel.Tracer(serviceName)

	var orderRepo domain.OrderRepository
	if os.Getenv("REPO_BACKEND") == "memory" {
		orderRepo = infrastructure.NewMemoryOrderRepository()
		zlog.Warn().Msg("using in-memory order repository, data will not survive restarts")
	} else {
		db, err := database.OpenMySQL(cfg)
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to connect to mysql")
		}
		if err := db.AutoMigrate(&infrastructure.PedidoModel{}, &infrastructure.ProductoPedidoModel{}); err != nil {
			zlog.Fatal().Err(err).Msg("failed to migrate pedido schema")
		}
		orderRepo = infrastructure.NewGormOrderRepository(db)
	}

	// saga 日志：订单 saga 没有分布式事务，这份日志是崩溃后
	// 找回已提交预占的唯一线索
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	sagaLog := adapter.NewSagaLogRedisAdapter(redisClient)

	// 出站端口：签名 + 单次 HTTP 调用的预占客户端
	verifier := integrity.NewVerifier(cfg.HashKey)
	reservations := adapter.NewInventoryHTTPAdapter(
		httpclient.NewClient(tracer),
		verifier,
		cfg.Services.InventoryURL,
		cfg.Order.ReservationTimeout,
	)

	notifier := adapter.NewNotificationKafkaAdapter(&kafka.Writer{
		Addr:     kafka.TCP(cfg.Kafka.Brokers...),
		Topic:    cfg.Kafka.NotificationTopic,
		Balancer: &kafka.Hash{},
	})

	service := application.NewOrderApplicationService(
		orderRepo,
		reservations,
		notifier,
		sagaLog,
		tracer,
		cfg.Order.CompensateReservations,
	)
	handler := interfaces.NewOrderHandler(service)

	bootstrap.StartService(cfg, bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8081,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) error {
			if err := notifier.Close(); err != nil {
				zlog.Error().Err(err).Msg("error closing kafka writer")
			}
			return redisClient.Close()
		},
	})
}
