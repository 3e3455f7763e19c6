// internal/service/order/domain/port/sagalog.go
package port

import (
	"context"
	"time"
)

// ReservationStep 是 saga 日志中的一条已提交预占记录。
type ReservationStep struct {
	OrderID     string    `json:"order_id"`
	RecordID    string    `json:"record_id"`
	ProductID   string    `json:"product_id"`
	WarehouseID string    `json:"warehouse_id"`
	Quantity    int       `json:"quantity"`
	CommittedAt time.Time `json:"committed_at"`
}

// SagaLog 记录单个订单 saga 里每一步已提交的预占。
// 每次预占成功后、发起下一次网络调用之前必须先落日志，
// 这样进程崩溃后留下的预占至少有案可查，而不是彻底成为孤儿。
type SagaLog interface {
	Append(ctx context.Context, step ReservationStep) error

	// Steps 返回某订单按提交顺序排列的全部步骤。
	Steps(ctx context.Context, orderID string) ([]ReservationStep, error)

	// Clear 在 saga 正常完成或补偿完成后清除日志。
	Clear(ctx context.Context, orderID string) error
}
