// internal/service/order/application/saga/finalize.go
package saga

import (
	"fmt"
)

// FinalizeOrderHandler 在所有预占成功后保存最终的订单聚合
// （行项和计算价都已经填好），此后订单才被视为有效。
type FinalizeOrderHandler struct {
	NextHandler
}

func (h *FinalizeOrderHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.FinalizeOrder")
	defer span.End()

	if err := orderCtx.OrderRepo.Save(ctx, orderCtx.Order); err != nil {
		return fmt.Errorf("failed to save finalized order: %w", err)
	}
	span.AddEvent("Order finalized with all line items.")

	return h.executeNext(orderCtx)
}
