// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"almacen/internal/pkg/tracing"
)

// Init 配置全局 zerolog Logger，所有服务在启动时调用一次。
func Init(serviceName string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zlog.Logger = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Ctx 从 context 中取出 logger；如果 context 携带了有效的 trace，
// 会自动附加 trace_id 字段，方便在日志系统里和 Jaeger 关联。
func Ctx(ctx context.Context) *zerolog.Logger {
	l := zlog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		l = &zlog.Logger
	}
	if traceID := tracing.GetTraceIDFromContext(ctx); traceID != "" {
		traced := l.With().Str("trace_id", traceID).Logger()
		return &traced
	}
	return l
}

// WithContext 把带 trace_id 的 logger 写回 context，下游 handler 直接取用。
func WithContext(ctx context.Context) context.Context {
	return Ctx(ctx).WithContext(ctx)
}
