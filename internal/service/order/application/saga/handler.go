// internal/service/order/application/saga/handler.go
package saga

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"almacen/internal/pkg/logger"
	"almacen/internal/service/order/domain"
	"almacen/internal/service/order/domain/port"
)

// OrderContext 在 Saga 流程中传递上下文数据。
// 所有外部依赖都是抽象接口，链上的每个节点只依赖自己需要的端口。
type OrderContext struct {
	Ctx    context.Context
	Order  *domain.Order
	Tracer trace.Tracer

	// 待预占的行项请求，按输入顺序逐个处理
	Requests []LineItemRequest

	// 依赖出站端口 (Interfaces)
	OrderRepo    domain.OrderRepository
	Reservations port.ReservationService
	SagaLog      port.SagaLog

	// 补偿函数栈，LIFO：后注册的补偿先执行
	compensations []func(ctx context.Context)
	compLock      sync.Mutex
}

// LineItemRequest 是一个还没有被预占确认的行项。
type LineItemRequest struct {
	ProductID   string
	WarehouseID string
	Quantity    int
	UnitPrice   float64
}

// AddCompensation 将一个补偿函数推入栈中。
func (c *OrderContext) AddCompensation(comp func(ctx context.Context)) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	c.compensations = append([]func(context.Context){comp}, c.compensations...)
}

// TriggerCompensation 执行所有已注册的补偿函数。
// 只在开启了逐项补偿模式时由协调器调用；默认模式下这些补偿
// 不会被触发（见 OrderApplicationService 的说明）。
func (c *OrderContext) TriggerCompensation(ctx context.Context) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	logger.Ctx(ctx).Info().
		Str("order_id", c.Order.ID).
		Int("count", len(c.compensations)).
		Msg("executing compensation functions")
	for _, comp := range c.compensations {
		comp(ctx)
	}
	c.compensations = nil
}

// Handler 定义了责任链中每个节点的接口。
type Handler interface {
	SetNext(handler Handler) Handler
	Handle(orderCtx *OrderContext) error
}

// NextHandler 是一个辅助结构，嵌入到具体的处理器中以减少重复代码。
type NextHandler struct {
	next Handler
}

func (h *NextHandler) SetNext(handler Handler) Handler {
	h.next = handler
	return handler
}

func (h *NextHandler) executeNext(orderCtx *OrderContext) error {
	if h.next != nil {
		return h.next.Handle(orderCtx)
	}
	return nil
}
