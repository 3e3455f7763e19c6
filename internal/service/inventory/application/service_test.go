package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"almacen/internal/service/inventory/domain"
	"almacen/internal/service/inventory/infrastructure"
)

func newTestService(t *testing.T, available, reserved int) (*LedgerService, *domain.Record) {
	t.Helper()
	repo := infrastructure.NewMemoryRepository()
	svc := NewLedgerService(repo, noop.NewTracerProvider().Tracer("test"))

	rec, err := svc.CreateRecord(context.Background(), &domain.Record{
		ProductID:   "prod-77",
		WarehouseID: "bodega-3",
		Available:   available,
		Reserved:    reserved,
	})
	require.NoError(t, err)
	return svc, rec
}

func TestReserveByProductWarehouse(t *testing.T) {
	svc, _ := newTestService(t, 50, 0)

	rec, err := svc.Reserve(context.Background(), "prod-77", "bodega-3", 30)

	require.NoError(t, err)
	assert.Equal(t, 20, rec.Available)
	assert.Equal(t, 30, rec.Reserved)
}

func TestReserveUnknownProduct(t *testing.T) {
	svc, _ := newTestService(t, 50, 0)

	_, err := svc.Reserve(context.Background(), "prod-desconocido", "bodega-3", 1)

	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestReserveInsufficientDoesNotMutate(t *testing.T) {
	svc, created := newTestService(t, 50, 0)

	_, err := svc.Reserve(context.Background(), "prod-77", "bodega-3", 51)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	rec, err := svc.GetRecord(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, rec.Available)
	assert.Equal(t, 0, rec.Reserved)
}

func TestReleaseAndConfirmByID(t *testing.T) {
	svc, created := newTestService(t, 50, 0)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, "prod-77", "bodega-3", 30)
	require.NoError(t, err)

	rec, err := svc.Release(ctx, created.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 30, rec.Available)
	assert.Equal(t, 20, rec.Reserved)

	rec, err = svc.Confirm(ctx, created.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, 30, rec.Available)
	assert.Equal(t, 0, rec.Reserved)
}

func TestReleaseUnknownRecord(t *testing.T) {
	svc, _ := newTestService(t, 50, 0)

	_, err := svc.Release(context.Background(), "inv-fantasma", 1)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)

	_, err = svc.Confirm(context.Background(), "inv-fantasma", 1)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestCreateDuplicateProductWarehouse(t *testing.T) {
	svc, _ := newTestService(t, 50, 0)

	_, err := svc.CreateRecord(context.Background(), &domain.Record{
		ProductID:   "prod-77",
		WarehouseID: "bodega-3",
		Available:   10,
	})

	assert.ErrorIs(t, err, domain.ErrDuplicateRecord)
}

func TestCreateNegativeCounters(t *testing.T) {
	svc, _ := newTestService(t, 50, 0)

	_, err := svc.CreateRecord(context.Background(), &domain.Record{
		ProductID:   "prod-88",
		WarehouseID: "bodega-3",
		Available:   -1,
	})

	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

// 并发预占不得超卖：两个同时到达的 reserve(30) 打在 (50,0) 上,
// 必须恰好一个成功，另一个因库存不足被拒。
func TestConcurrentReserveNoOversell(t *testing.T) {
	svc, created := newTestService(t, 50, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Reserve(ctx, "prod-77", "bodega-3", 30)
		}(i)
	}
	wg.Wait()

	var successes, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
			insufficient++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, insufficient)

	rec, err := svc.GetRecord(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, rec.Available)
	assert.Equal(t, 30, rec.Reserved)
}

// 高并发下可用+已预占的总量守恒。
func TestConcurrentMixedOperationsConserveStock(t *testing.T) {
	svc, created := newTestService(t, 1000, 0)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	var confirmed sync.Map
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.Reserve(ctx, "prod-77", "bodega-3", 10); err != nil {
				return
			}
			if i%2 == 0 {
				if _, err := svc.Release(ctx, created.ID, 10); err == nil {
					return
				}
				return
			}
			if _, err := svc.Confirm(ctx, created.ID, 10); err == nil {
				confirmed.Store(i, 10)
			}
		}(i)
	}
	wg.Wait()

	totalConfirmed := 0
	confirmed.Range(func(_, v interface{}) bool {
		totalConfirmed += v.(int)
		return true
	})

	rec, err := svc.GetRecord(ctx, created.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rec.Available, 0)
	assert.GreaterOrEqual(t, rec.Reserved, 0)
	assert.Equal(t, 1000, rec.Available+rec.Reserved+totalConfirmed)
}
