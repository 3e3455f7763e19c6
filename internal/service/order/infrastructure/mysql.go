// internal/service/order/infrastructure/mysql.go
package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"almacen/internal/service/order/domain"
)

// PedidoModel 是订单头的数据库模型。
type PedidoModel struct {
	ID              string  `gorm:"primaryKey;size:36"`
	ClienteID       string  `gorm:"size:36;index"`
	DireccionID     string  `gorm:"size:36"`
	PrecioCalculado float64 `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items []ProductoPedidoModel `gorm:"foreignKey:PedidoID;constraint:OnDelete:CASCADE"`
}

func (PedidoModel) TableName() string { return "pedidos" }

// ProductoPedidoModel 是订单行项的数据库模型。
type ProductoPedidoModel struct {
	ID             uint    `gorm:"primaryKey;autoIncrement"`
	PedidoID       string  `gorm:"size:36;index"`
	ProductoID     string  `gorm:"size:36"`
	BodegaID       string  `gorm:"size:36"`
	Cantidad       int     `gorm:"not null"`
	PrecioUnitario float64 `gorm:"not null"`
	Subtotal       float64 `gorm:"not null"`
	InventarioID   string  `gorm:"size:36"`
	Posicion       int     `gorm:"not null"` // 保持行项的输入顺序
}

func (ProductoPedidoModel) TableName() string { return "productos_pedido" }

// GormOrderRepository 是 OrderRepository 的 GORM 实现。
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Save 在一个事务里写入订单头并整体替换行项。
func (r *GormOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header := &PedidoModel{
			ID:              order.ID,
			ClienteID:       order.CustomerID,
			DireccionID:     order.AddressID,
			PrecioCalculado: order.ComputedPrice,
			CreatedAt:       order.CreatedAt,
			UpdatedAt:       order.UpdatedAt,
		}
		if err := tx.Save(header).Error; err != nil {
			return errors.Wrap(err, "save pedido header")
		}
		if err := tx.Where("pedido_id = ?", order.ID).Delete(&ProductoPedidoModel{}).Error; err != nil {
			return errors.Wrap(err, "clear pedido items")
		}
		for i, item := range order.Items {
			model := &ProductoPedidoModel{
				PedidoID:       order.ID,
				ProductoID:     item.ProductID,
				BodegaID:       item.WarehouseID,
				Cantidad:       item.Quantity,
				PrecioUnitario: item.UnitPrice,
				Subtotal:       item.Subtotal,
				InventarioID:   item.ReservationID,
				Posicion:       i,
			}
			if err := tx.Create(model).Error; err != nil {
				return errors.Wrap(err, "save pedido item")
			}
		}
		return nil
	})
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var model PedidoModel
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("posicion ASC") }).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "query pedido")
	}

	order := &domain.Order{
		ID:            model.ID,
		CustomerID:    model.ClienteID,
		AddressID:     model.DireccionID,
		ComputedPrice: model.PrecioCalculado,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
	for _, item := range model.Items {
		order.Items = append(order.Items, domain.LineItem{
			ProductID:     item.ProductoID,
			WarehouseID:   item.BodegaID,
			Quantity:      item.Cantidad,
			UnitPrice:     item.PrecioUnitario,
			Subtotal:      item.Subtotal,
			ReservationID: item.InventarioID,
		})
	}
	return order, nil
}

// Delete 整体删除订单头及行项。
func (r *GormOrderRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pedido_id = ?", id).Delete(&ProductoPedidoModel{}).Error; err != nil {
			return errors.Wrap(err, "delete pedido items")
		}
		result := tx.Where("id = ?", id).Delete(&PedidoModel{})
		if result.Error != nil {
			return errors.Wrap(result.Error, "delete pedido")
		}
		if result.RowsAffected == 0 {
			return domain.ErrOrderNotFound
		}
		return nil
	})
}
