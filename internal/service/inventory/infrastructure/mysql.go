// internal/service/inventory/infrastructure/mysql.go
package infrastructure

import (
	"context"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"almacen/internal/service/inventory/domain"
)

// InventarioModel 是台账的数据库模型。
// (producto_id, bodega_id) 上有唯一索引，把重复台账挡在存储边界。
type InventarioModel struct {
	ID                  string    `gorm:"primaryKey;size:36"`
	ProductoID          string    `gorm:"size:36;uniqueIndex:idx_producto_bodega"`
	BodegaID            string    `gorm:"size:36;uniqueIndex:idx_producto_bodega"`
	UbicacionID         string    `gorm:"size:36"`
	CantidadDisponible  int       `gorm:"not null"`
	CantidadReservada   int       `gorm:"not null"`
	UltimaActualizacion time.Time `gorm:"not null"`
}

func (InventarioModel) TableName() string { return "inventarios" }

// GormRecordRepository 是 RecordRepository 的 GORM 实现。
// 条件更新用一条带计数器谓词的 UPDATE 完成，不依赖事务级锁。
type GormRecordRepository struct {
	db *gorm.DB
}

func NewGormRecordRepository(db *gorm.DB) *GormRecordRepository {
	return &GormRecordRepository{db: db}
}

func (r *GormRecordRepository) Get(ctx context.Context, id string) (*domain.Record, error) {
	var model InventarioModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, errors.Wrap(err, "query inventario")
	}
	return toDomainRecord(&model), nil
}

func (r *GormRecordRepository) FindByProductWarehouse(ctx context.Context, productID, warehouseID string) (*domain.Record, error) {
	var models []InventarioModel
	err := r.db.WithContext(ctx).
		Where("producto_id = ? AND bodega_id = ?", productID, warehouseID).
		Limit(2).
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "query inventario by producto/bodega")
	}
	switch len(models) {
	case 0:
		return nil, domain.ErrRecordNotFound
	case 1:
		return toDomainRecord(&models[0]), nil
	default:
		return nil, domain.ErrDuplicateRecord
	}
}

func (r *GormRecordRepository) Create(ctx context.Context, rec *domain.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Create(fromDomainRecord(rec)).Error
	if err != nil {
		if isDuplicateKey(err) {
			return domain.ErrDuplicateRecord
		}
		return errors.Wrap(err, "insert inventario")
	}
	return nil
}

// isDuplicateKey 同时识别 gorm 翻译后的哨兵和原始的 MySQL 1062：
// 前者依赖连接开启 TranslateError，后者兜住没走翻译的路径。
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// Update 只在两个计数器仍等于期望值时写入新状态。
// RowsAffected == 0 意味着读写之间有并发修改（或记录被删），
// 调用方据此重读重试。
func (r *GormRecordRepository) Update(ctx context.Context, rec *domain.Record, expectedAvailable, expectedReserved int) error {
	result := r.db.WithContext(ctx).
		Model(&InventarioModel{}).
		Where("id = ? AND cantidad_disponible = ? AND cantidad_reservada = ?",
			rec.ID, expectedAvailable, expectedReserved).
		Updates(map[string]interface{}{
			"cantidad_disponible":  rec.Available,
			"cantidad_reservada":   rec.Reserved,
			"ultima_actualizacion": rec.UpdatedAt,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "update inventario")
	}
	if result.RowsAffected == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}

func toDomainRecord(m *InventarioModel) *domain.Record {
	return &domain.Record{
		ID:          m.ID,
		ProductID:   m.ProductoID,
		WarehouseID: m.BodegaID,
		LocationID:  m.UbicacionID,
		Available:   m.CantidadDisponible,
		Reserved:    m.CantidadReservada,
		UpdatedAt:   m.UltimaActualizacion,
	}
}

func fromDomainRecord(rec *domain.Record) *InventarioModel {
	return &InventarioModel{
		ID:                  rec.ID,
		ProductoID:          rec.ProductID,
		BodegaID:            rec.WarehouseID,
		UbicacionID:         rec.LocationID,
		CantidadDisponible:  rec.Available,
		CantidadReservada:   rec.Reserved,
		UltimaActualizacion: rec.UpdatedAt,
	}
}
