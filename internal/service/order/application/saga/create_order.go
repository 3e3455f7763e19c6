// internal/service/order/application/saga/create_order.go
package saga

import (
	"fmt"
)

// CreateOrderHandler 负责持久化订单头。
// 必须是链上的第一个节点：订单先拿到标识，后续预占调用才能带上它。
type CreateOrderHandler struct {
	NextHandler
}

func NewCreateOrderHandler() *CreateOrderHandler {
	return &CreateOrderHandler{}
}

func (h *CreateOrderHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.CreateOrder")
	defer span.End()

	if err := orderCtx.OrderRepo.Save(ctx, orderCtx.Order); err != nil {
		return fmt.Errorf("failed to save order header: %w", err)
	}
	span.AddEvent("Order header saved.")

	return h.executeNext(orderCtx)
}
