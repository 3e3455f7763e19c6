// internal/service/order/domain/port/notification.go
package port

import (
	"context"

	"almacen/internal/service/order/domain"
)

// NotificationProducer 是订单事件通知的出站端口。
// 通知失败不应让主流程失败，调用方只记录错误。
type NotificationProducer interface {
	SendOrderPlaced(ctx context.Context, order *domain.Order) error
	SendOrderAborted(ctx context.Context, orderID, reason string) error
	Close() error
}
