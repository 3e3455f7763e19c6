// internal/service/order/domain/order.go
package domain

import (
	"errors"
	"time"
)

// Order 是订单聚合的根实体。
// 只有当每一个行项的库存预占都成功后，订单才算有效；
// 任何一个行项失败，整个订单头会被删除（粗粒度补偿）。
type Order struct {
	ID            string
	CustomerID    string
	AddressID     string
	ComputedPrice float64
	Items         []LineItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LineItem 是订单的一个行项，subtotal = cantidad × precio_unitario。
type LineItem struct {
	ProductID   string
	WarehouseID string
	Quantity    int
	UnitPrice   float64
	Subtotal    float64

	// ReservationID 是库存服务回报的台账 ID，预占成功后填入
	ReservationID string
}

// NewOrder 创建一个新的订单实例，此时还没有任何行项被确认。
func NewOrder(id, customerID, addressID string) (*Order, error) {
	if id == "" || customerID == "" || addressID == "" {
		return nil, errors.New("cannot create order with empty required fields")
	}
	now := time.Now()
	return &Order{
		ID:         id,
		CustomerID: customerID,
		AddressID:  addressID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// AppendLineItem 在预占成功后把行项追加进订单，并累加计算价。
func (o *Order) AppendLineItem(productID, warehouseID string, quantity int, unitPrice float64, reservationID string) {
	subtotal := float64(quantity) * unitPrice
	o.Items = append(o.Items, LineItem{
		ProductID:     productID,
		WarehouseID:   warehouseID,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		Subtotal:      subtotal,
		ReservationID: reservationID,
	})
	o.ComputedPrice += subtotal
	o.UpdatedAt = time.Now()
}
