// internal/service/inventory/domain/repository.go
package domain

import (
	"context"
	"errors"
)

var (
	ErrRecordNotFound = errors.New("inventory record not found")
	// ErrDuplicateRecord 表示同一 (product, warehouse) 存在多条台账。
	// 查找必须返回唯一记录，出现重复直接报错而不是取不确定的一条。
	ErrDuplicateRecord = errors.New("duplicate inventory record for product/warehouse")
	// ErrVersionConflict 表示条件更新没有命中：读和写之间计数器被并发修改。
	ErrVersionConflict = errors.New("inventory record was concurrently modified")
)

// RecordRepository 定义了台账的持久化接口，位于领域层，由基础设施层实现。
//
// Update 是带条件的原子更新：只有当存储中的两个计数器仍等于
// expectedAvailable/expectedReserved 时才写入 rec 的新值，否则返回
// ErrVersionConflict。check-then-write 的原子性全部压在这一个方法上，
// 这是台账防超卖的核心。
type RecordRepository interface {
	Get(ctx context.Context, id string) (*Record, error)

	// FindByProductWarehouse 按 (product, warehouse) 查找唯一台账。
	// 多于一条时返回 ErrDuplicateRecord。
	FindByProductWarehouse(ctx context.Context, productID, warehouseID string) (*Record, error)

	Create(ctx context.Context, rec *Record) error

	Update(ctx context.Context, rec *Record, expectedAvailable, expectedReserved int) error
}
