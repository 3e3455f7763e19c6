// internal/service/order/application/service.go
package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"almacen/internal/pkg/logger"
	"almacen/internal/service/order/application/saga"
	"almacen/internal/service/order/domain"
	"almacen/internal/service/order/domain/port"
)

// SagaAbortError 表示订单级补偿已触发：订单头被删除，
// 失败原因原样上抛给调用方。
type SagaAbortError struct {
	OrderID string
	Reason  string
}

func (e *SagaAbortError) Error() string { return e.Reason }

// OrderApplicationService 只关注下单流程编排。
//
// 关于补偿语义的一个重要说明：默认情况下（compensateReservations=false），
// 某个行项预占失败时只删除订单头，前面行项已经提交的预占不会被释放，
// 会一直留在台账的预占池里。这是从旧系统继承下来的已知缺陷，作为行为
// 基线保留；开启 compensateReservations 后才会在删除订单前逐项释放。
// 两种行为由配置显式切换，绝不静默混用。
type OrderApplicationService struct {
	orderRepo              domain.OrderRepository
	reservations           port.ReservationService
	notifier               port.NotificationProducer
	sagaLog                port.SagaLog
	tracer                 trace.Tracer
	compensateReservations bool
}

func NewOrderApplicationService(
	orderRepo domain.OrderRepository,
	reservations port.ReservationService,
	notifier port.NotificationProducer,
	sagaLog port.SagaLog,
	tracer trace.Tracer,
	compensateReservations bool,
) *OrderApplicationService {
	return &OrderApplicationService{
		orderRepo:              orderRepo,
		reservations:           reservations,
		notifier:               notifier,
		sagaLog:                sagaLog,
		tracer:                 tracer,
		compensateReservations: compensateReservations,
	}
}

// CreateOrder 驱动完整的下单 saga：
// 持久化订单头 → 逐行项预占 → 保存最终聚合。
// 第一个失败中断流程、删除订单头并返回 *SagaAbortError。
func (s *OrderApplicationService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.CreateOrder")
	defer span.End()

	if req.CustomerID == "" || req.AddressID == "" {
		return nil, errors.New("cliente_id and direccion_id are required")
	}
	if len(req.Items) == 0 {
		return nil, errors.New("order must contain at least one line item")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, errors.New("line item quantity must be greater than 0")
		}
	}

	orderEntity, err := domain.NewOrder(uuid.New().String(), req.CustomerID, req.AddressID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.id", orderEntity.ID),
		attribute.Int("order.items", len(req.Items)),
	)

	requests := make([]saga.LineItemRequest, len(req.Items))
	for i, item := range req.Items {
		requests[i] = saga.LineItemRequest{
			ProductID:   item.ProductID,
			WarehouseID: item.WarehouseID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}

	orderContext := &saga.OrderContext{
		Ctx:          ctx,
		Order:        orderEntity,
		Tracer:       s.tracer,
		Requests:     requests,
		OrderRepo:    s.orderRepo,
		Reservations: s.reservations,
		SagaLog:      s.sagaLog,
	}

	chain := s.buildChain()
	if err := chain.Handle(orderContext); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order processing chain failed")
		return nil, s.abort(ctx, orderContext, err)
	}

	// saga 正常完成，日志使命结束
	if err := s.sagaLog.Clear(ctx, orderEntity.ID); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("order_id", orderEntity.ID).Msg("failed to clear saga log")
	}
	sagaResults.WithLabelValues("completed").Inc()

	if s.notifier != nil {
		if err := s.notifier.SendOrderPlaced(ctx, orderEntity); err != nil {
			// 通知失败不影响主流程
			logger.Ctx(ctx).Error().Err(err).Str("order_id", orderEntity.ID).Msg("failed to send order notification")
		}
	}

	logger.Ctx(ctx).Info().
		Str("order_id", orderEntity.ID).
		Float64("computed_price", orderEntity.ComputedPrice).
		Msg("order placed, all line items reserved")
	return &CreateOrderResponse{
		OrderID:       orderEntity.ID,
		ComputedPrice: orderEntity.ComputedPrice,
	}, nil
}

// abort 执行订单级补偿：删除订单头，失败原因原样上抛。
// 已提交的预占仅在 compensateReservations 开启时逐项释放。
func (s *OrderApplicationService) abort(ctx context.Context, orderCtx *saga.OrderContext, cause error) error {
	orderID := orderCtx.Order.ID
	logger.Ctx(ctx).Error().Err(cause).Str("order_id", orderID).Msg("saga failed, aborting order")

	if s.compensateReservations {
		orderCtx.TriggerCompensation(ctx)
		if err := s.sagaLog.Clear(ctx, orderID); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("order_id", orderID).Msg("failed to clear saga log after compensation")
		}
		sagaResults.WithLabelValues("compensated").Inc()
	} else {
		// 行为基线：已提交的预占不释放，留在台账的预占池里。
		// saga 日志保留，孤儿预占靠它对账。
		sagaResults.WithLabelValues("aborted").Inc()
	}

	// 删除是尽力而为的：订单删不掉也不能吞掉原始失败原因
	if err := s.orderRepo.Delete(ctx, orderID); err != nil && !errors.Is(err, domain.ErrOrderNotFound) {
		logger.Ctx(ctx).Error().Err(err).Str("order_id", orderID).Msg("failed to delete aborted order")
	}

	if s.notifier != nil {
		if err := s.notifier.SendOrderAborted(ctx, orderID, cause.Error()); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("order_id", orderID).Msg("failed to send abort notification")
		}
	}

	return &SagaAbortError{OrderID: orderID, Reason: cause.Error()}
}

func (s *OrderApplicationService) buildChain() saga.Handler {
	head := saga.NewCreateOrderHandler()
	head.
		SetNext(&saga.ReserveItemsHandler{}).
		SetNext(&saga.FinalizeOrderHandler{})
	return head
}

// GetOrder 按 ID 读取订单。
func (s *OrderApplicationService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetOrder")
	defer span.End()
	return s.orderRepo.FindByID(ctx, id)
}
