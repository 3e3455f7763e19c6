// internal/service/order/infrastructure/memory.go
package infrastructure

import (
	"context"
	"sync"

	"almacen/internal/service/order/domain"
	"almacen/internal/service/order/domain/port"
)

// MemoryOrderRepository 是 OrderRepository 的内存实现，用于测试和本地联调。
type MemoryOrderRepository struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string]*domain.Order)}
}

func (m *MemoryOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *order
	cp.Items = append([]domain.LineItem(nil), order.Items...)
	m.orders[order.ID] = &cp
	return nil
}

func (m *MemoryOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *order
	cp.Items = append([]domain.LineItem(nil), order.Items...)
	return &cp, nil
}

func (m *MemoryOrderRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}

// MemorySagaLog 是 port.SagaLog 的内存实现。
type MemorySagaLog struct {
	mu    sync.Mutex
	steps map[string][]port.ReservationStep
}

func NewMemorySagaLog() *MemorySagaLog {
	return &MemorySagaLog{steps: make(map[string][]port.ReservationStep)}
}

func (m *MemorySagaLog) Append(ctx context.Context, step port.ReservationStep) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps[step.OrderID] = append(m.steps[step.OrderID], step)
	return nil
}

func (m *MemorySagaLog) Steps(ctx context.Context, orderID string) ([]port.ReservationStep, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]port.ReservationStep(nil), m.steps[orderID]...), nil
}

func (m *MemorySagaLog) Clear(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.steps, orderID)
	return nil
}
