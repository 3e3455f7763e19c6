// internal/service/inventory/infrastructure/memory.go
package infrastructure

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"almacen/internal/service/inventory/domain"
)

// MemoryRepository 是 RecordRepository 的内存实现，用于测试和本地联调。
// 一把互斥锁覆盖整个 map，条件更新在锁内完成，天然满足原子性要求。
type MemoryRepository struct {
	mu      sync.Mutex
	records map[string]*domain.Record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]*domain.Record)}
}

func (m *MemoryRepository) Get(ctx context.Context, id string) (*domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *MemoryRepository) FindByProductWarehouse(ctx context.Context, productID, warehouseID string) (*domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found *domain.Record
	for _, rec := range m.records {
		if rec.ProductID == productID && rec.WarehouseID == warehouseID {
			if found != nil {
				return nil, domain.ErrDuplicateRecord
			}
			found = rec
		}
	}
	if found == nil {
		return nil, domain.ErrRecordNotFound
	}
	cp := *found
	return &cp, nil
}

func (m *MemoryRepository) Create(ctx context.Context, rec *domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.records {
		if existing.ProductID == rec.ProductID && existing.WarehouseID == rec.WarehouseID {
			return domain.ErrDuplicateRecord
		}
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *MemoryRepository) Update(ctx context.Context, rec *domain.Record, expectedAvailable, expectedReserved int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.records[rec.ID]
	if !ok {
		return domain.ErrRecordNotFound
	}
	if current.Available != expectedAvailable || current.Reserved != expectedReserved {
		return domain.ErrVersionConflict
	}
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}
