// internal/service/inventory/domain/record.go
package domain

import (
	"errors"
	"time"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOverRelease       = errors.New("cannot release more than reserved")
	ErrOverConfirm       = errors.New("cannot confirm more than reserved")
	ErrInvalidQuantity   = errors.New("quantity must be greater than 0")
)

// Record 是某个商品在某个仓库的库存台账。
// 两个计数器隐式地给每一件库存编码了状态：可用、预占、已消耗。
// 计数器永不为负；唯一的修改入口是下面三个操作，每次成功修改
// 都同时更新两个计数器和时间戳，不存在部分更新。
type Record struct {
	ID          string
	ProductID   string
	WarehouseID string
	LocationID  string // 子库位，可为空，只做描述不参与唯一键
	Available   int
	Reserved    int
	UpdatedAt   time.Time
}

// Reserve 把 qty 件库存从可用移入预占。
// 前置条件不满足时记录保持原样并返回对应错误。
func (r *Record) Reserve(qty int, now time.Time) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > r.Available {
		return ErrInsufficientStock
	}
	r.Available -= qty
	r.Reserved += qty
	r.UpdatedAt = now
	return nil
}

// Release 把 qty 件预占库存退回可用。
func (r *Record) Release(qty int, now time.Time) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > r.Reserved {
		return ErrOverRelease
	}
	r.Available += qty
	r.Reserved -= qty
	r.UpdatedAt = now
	return nil
}

// Confirm 永久消耗 qty 件预占库存（发货出库），不回到可用池。
func (r *Record) Confirm(qty int, now time.Time) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > r.Reserved {
		return ErrOverConfirm
	}
	r.Reserved -= qty
	r.UpdatedAt = now
	return nil
}
