// internal/service/order/application/saga/reserve_items.go
package saga

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"almacen/internal/pkg/logger"
	"almacen/internal/service/order/domain/port"
)

// ReserveItemsHandler 负责库存预占步骤。
// 行项严格按输入顺序逐个走网络调用，不批量、不并发；
// 第一个失败立即中断，后面的行项不再处理。
type ReserveItemsHandler struct {
	NextHandler
}

func (h *ReserveItemsHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.ReserveItems")
	defer span.End()
	span.SetAttributes(attribute.Int("items.count", len(orderCtx.Requests)))

	for _, req := range orderCtx.Requests {
		res, err := orderCtx.Reservations.Reserve(ctx, req.ProductID, req.WarehouseID, req.Quantity)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "inventory reservation failed")
			return err
		}

		// 预占已提交：先落 saga 日志再做任何后续调用，
		// 崩溃后留下的预占至少能被对账流程找到
		step := port.ReservationStep{
			OrderID:     orderCtx.Order.ID,
			RecordID:    res.RecordID,
			ProductID:   req.ProductID,
			WarehouseID: req.WarehouseID,
			Quantity:    req.Quantity,
			CommittedAt: time.Now(),
		}
		if logErr := orderCtx.SagaLog.Append(ctx, step); logErr != nil {
			// 日志失败不中断主流程，但必须可见
			logger.Ctx(ctx).Error().Err(logErr).
				Str("order_id", orderCtx.Order.ID).
				Msg("failed to append reservation to saga log")
			span.RecordError(logErr)
		}

		orderCtx.Order.AppendLineItem(req.ProductID, req.WarehouseID, req.Quantity, req.UnitPrice, res.RecordID)

		// 注册释放补偿。默认模式下协调器不会触发它（保持旧系统的
		// 行为基线），只有开启逐项补偿的部署才会真正执行。
		recordID, qty := res.RecordID, req.Quantity
		orderCtx.AddCompensation(func(compCtx context.Context) {
			compCtx, compSpan := orderCtx.Tracer.Start(compCtx, "saga.compensation.ReleaseStock")
			defer compSpan.End()
			compSpan.SetAttributes(attribute.String("record.id", recordID), attribute.Int("quantity", qty))

			// 补偿失败需要记录严重错误，并可能需要人工介入
			if err := orderCtx.Reservations.Release(compCtx, recordID, qty); err != nil {
				compSpan.RecordError(err)
				logger.Ctx(compCtx).Error().Err(err).
					Str("order_id", orderCtx.Order.ID).
					Str("record_id", recordID).
					Msg("compensating release failed")
			}
		})
	}

	span.AddEvent("All line items reserved successfully")
	return h.executeNext(orderCtx)
}
