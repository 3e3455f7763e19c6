// internal/service/order/domain/port/inventory.go
package port

import (
	"context"
)

// Reservation 是一次成功预占的结果。
type Reservation struct {
	RecordID    string
	ProductID   string
	WarehouseID string
	Quantity    int
	Available   int
	Reserved    int
}

// ReservationError 是预占失败的统一形态。
// 连接失败、超时、非 2xx、应用层 success=false 都折叠进来，
// 调用方不区分失败原因，只把 Reason 原样上抛。
type ReservationError struct {
	Reason string
}

func (e *ReservationError) Error() string { return e.Reason }

// ReservationService 是库存服务的出站端口。
// 实现必须是单次请求语义：不重试、不退避。
type ReservationService interface {
	// Reserve 为一个行项预占库存，失败时返回 *ReservationError。
	Reserve(ctx context.Context, productID, warehouseID string, quantity int) (*Reservation, error)

	// Release 是 Reserve 的补偿操作，按台账 ID 释放预占。
	Release(ctx context.Context, recordID string, quantity int) error
}
