// internal/service/order/infrastructure/adapter/sagalog_redis_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"almacen/internal/service/order/domain/port"
)

// sagaLogTTL 给每条日志一个足够长的保底过期时间，
// 防止对账流程缺位时键无限堆积。
const sagaLogTTL = 24 * time.Hour

// SagaLogRedisAdapter 是 port.SagaLog 的 Redis 实现。
// 每个订单一个 list，按提交顺序 RPUSH，读取时恢复同样的顺序。
type SagaLogRedisAdapter struct {
	client *redis.Client
}

func NewSagaLogRedisAdapter(client *redis.Client) *SagaLogRedisAdapter {
	return &SagaLogRedisAdapter{client: client}
}

func sagaLogKey(orderID string) string {
	return fmt.Sprintf("saga:pedido:%s", orderID)
}

func (a *SagaLogRedisAdapter) Append(ctx context.Context, step port.ReservationStep) error {
	payload, err := json.Marshal(step)
	if err != nil {
		return fmt.Errorf("failed to marshal saga step: %w", err)
	}
	key := sagaLogKey(step.OrderID)

	pipe := a.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.Expire(ctx, key, sagaLogTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append saga step: %w", err)
	}
	return nil
}

func (a *SagaLogRedisAdapter) Steps(ctx context.Context, orderID string) ([]port.ReservationStep, error) {
	raw, err := a.client.LRange(ctx, sagaLogKey(orderID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read saga log: %w", err)
	}
	steps := make([]port.ReservationStep, 0, len(raw))
	for _, entry := range raw {
		var step port.ReservationStep
		if err := json.Unmarshal([]byte(entry), &step); err != nil {
			return nil, fmt.Errorf("corrupt saga log entry for order %s: %w", orderID, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func (a *SagaLogRedisAdapter) Clear(ctx context.Context, orderID string) error {
	return a.client.Del(ctx, sagaLogKey(orderID)).Err()
}
