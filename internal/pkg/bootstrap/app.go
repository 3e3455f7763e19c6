// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"almacen/internal/pkg/tracing"
)

// AppCtx 传递给各服务的路由注册函数。
type AppCtx struct {
	Mux    *http.ServeMux
	Config *Config
}

// AppInfo 包含了启动一个微服务所需的所有特定信息。
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx) // 每个服务注册自己独特的 HTTP 路由
	OnShutdown       func(ctx context.Context) error
}

// StartService 封装了所有微服务的通用启动和优雅关停逻辑。
func StartService(cfg *Config, info AppInfo) {
	// 1. 初始化 Tracer
	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Jaeger.Endpoint)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	// 2. 端口允许用环境变量覆盖，便于同机跑多个实例
	port := info.Port
	if v := getEnv("PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			port = p
		}
	}

	// 3. 创建并启动 HTTP Server
	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Config: cfg})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(port), Handler: mux}

	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		zlog.Info().Str("service", info.ServiceName).Int("port", port).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// 4. 阻塞直到收到退出信号，或 server 异常退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		zlog.Info().Str("service", info.ServiceName).Str("signal", sig.String()).Msg("shutting down")
	case <-gctx.Done():
	}

	// 5. 关停流程（后进先出），统一 10s 超时
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if info.OnShutdown != nil {
		if err := info.OnShutdown(ctx); err != nil {
			zlog.Error().Err(err).Msg("error running shutdown hook")
		}
	}

	// 关闭 Tracer Provider，确保缓冲中的 trace 都被发送出去
	if err := tp.Shutdown(ctx); err != nil {
		zlog.Error().Err(err).Msg("error shutting down tracer provider")
	}

	if err := server.Shutdown(ctx); err != nil {
		zlog.Error().Err(err).Msg("error shutting down http server")
	}

	if err := g.Wait(); err != nil {
		zlog.Error().Err(err).Msg("http server exited with error")
	}
	zlog.Info().Str("service", info.ServiceName).Msg("gracefully shut down")
}
