// cmd/inventory-service/main.go
package main

import (
	"os"

	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"almacen/internal/pkg/bootstrap"
	"almacen/internal/pkg/database"
	"almacen/internal/pkg/integrity"
	"almacen/internal/pkg/logger"
	"almacen/internal/service/inventory/application"
	"almacen/internal/service/inventory/domain"
	"almacen/internal/service/inventory/infrastructure"
	"almacen/internal/service/inventory/interfaces"
)

const serviceName = "inventory-service"

// main 是库存服务的组装根：创建并组装所有依赖项，然后启动应用。
func main() {
	logger.Init(serviceName)

	cfg, err := bootstrap.LoadConfig("")
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}

	// 存储后端：默认 MySQL，REPO_BACKEND=memory 时用内存实现（本地联调）
	var repo domain.RecordRepository
	if os.Getenv("REPO_BACKEND") == "memory" {
		repo = infrastructure.NewMemoryRepository()
		zlog.Warn().Msg("using in-memory inventory repository, data will not survive restarts")
	} else {
		db, err := database.OpenMySQL(cfg)
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to connect to mysql")
		}
		if err := db.AutoMigrate(&infrastructure.InventarioModel{}); err != nil {
			zlog.Fatal().Err(err).Msg("failed to migrate inventario schema")
		}
		repo = infrastructure.NewGormRecordRepository(db)
	}

	verifier := integrity.NewVerifier(cfg.HashKey)
	service := application.NewLedgerService(repo, otel.Tracer(serviceName))
	handler := interfaces.NewInventoryHandler(service, verifier)

	bootstrap.StartService(cfg, bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8082,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
	})
}
