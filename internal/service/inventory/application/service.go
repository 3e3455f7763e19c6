// internal/service/inventory/application/service.go
package application

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"almacen/internal/pkg/logger"
	"almacen/internal/service/inventory/domain"
)

// casMaxRetries 限制乐观并发冲突时的重试次数。
// 冲突重读后前置条件会重新校验，重试不会放大超卖风险。
const casMaxRetries = 5

// LedgerService 编排台账操作：读取、领域校验、条件更新。
// 每个操作对调用方是全有或全无的。
type LedgerService struct {
	repo   domain.RecordRepository
	tracer trace.Tracer
	now    func() time.Time
}

func NewLedgerService(repo domain.RecordRepository, tracer trace.Tracer) *LedgerService {
	return &LedgerService{repo: repo, tracer: tracer, now: time.Now}
}

// Reserve 按 (product, warehouse) 定位台账并预占 qty 件库存。
func (s *LedgerService) Reserve(ctx context.Context, productID, warehouseID string, qty int) (*domain.Record, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Reserve")
	defer span.End()
	span.SetAttributes(
		attribute.String("product.id", productID),
		attribute.String("warehouse.id", warehouseID),
		attribute.Int("quantity", qty),
	)

	rec, err := s.repo.FindByProductWarehouse(ctx, productID, warehouseID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.mutate(ctx, span, rec.ID, func(r *domain.Record) error {
		return r.Reserve(qty, s.now())
	})
}

// Release 把 qty 件预占库存退回可用。
func (s *LedgerService) Release(ctx context.Context, recordID string, qty int) (*domain.Record, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Release")
	defer span.End()
	span.SetAttributes(attribute.String("record.id", recordID), attribute.Int("quantity", qty))

	return s.mutate(ctx, span, recordID, func(r *domain.Record) error {
		return r.Release(qty, s.now())
	})
}

// Confirm 永久消耗 qty 件预占库存。
func (s *LedgerService) Confirm(ctx context.Context, recordID string, qty int) (*domain.Record, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Confirm")
	defer span.End()
	span.SetAttributes(attribute.String("record.id", recordID), attribute.Int("quantity", qty))

	return s.mutate(ctx, span, recordID, func(r *domain.Record) error {
		return r.Confirm(qty, s.now())
	})
}

// mutate 执行 读取 → 领域校验 → 条件更新 的循环。
// 条件更新落空说明有并发写入，重读后重试；领域校验失败立即返回，
// 此时存储未被触碰。
func (s *LedgerService) mutate(ctx context.Context, span trace.Span, recordID string, op func(*domain.Record) error) (*domain.Record, error) {
	for attempt := 0; attempt < casMaxRetries; attempt++ {
		rec, err := s.repo.Get(ctx, recordID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		expectedAvailable, expectedReserved := rec.Available, rec.Reserved
		if err := op(rec); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		err = s.repo.Update(ctx, rec, expectedAvailable, expectedReserved)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			span.RecordError(err)
			return nil, err
		}
		logger.Ctx(ctx).Debug().
			Str("record_id", recordID).
			Int("attempt", attempt+1).
			Msg("ledger update conflict, retrying")
	}
	span.SetStatus(codes.Error, "ledger update retries exhausted")
	return nil, domain.ErrVersionConflict
}

// CreateRecord 创建一条新的台账，由外部的铺货流程调用。
func (s *LedgerService) CreateRecord(ctx context.Context, rec *domain.Record) (*domain.Record, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.CreateRecord")
	defer span.End()

	if rec.Available < 0 || rec.Reserved < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	rec.UpdatedAt = s.now()
	if err := s.repo.Create(ctx, rec); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return rec, nil
}

// GetRecord 按 ID 读取台账，只读操作不做完整性校验。
func (s *LedgerService) GetRecord(ctx context.Context, id string) (*domain.Record, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.GetRecord")
	defer span.End()
	return s.repo.Get(ctx, id)
}
