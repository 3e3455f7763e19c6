// internal/service/order/application/dto.go
package application

// CreateOrderRequest 是接口层传入的下单请求。
type CreateOrderRequest struct {
	CustomerID string
	AddressID  string
	Items      []LineItemRequest
}

// LineItemRequest 描述一个待预占的行项，数量和单价来自请求。
type LineItemRequest struct {
	ProductID   string  `json:"producto_id"`
	WarehouseID string  `json:"bodega_id"`
	Quantity    int     `json:"cantidad"`
	UnitPrice   float64 `json:"precio_unitario"`
}

// CreateOrderResponse 在 saga 成功后返回。
type CreateOrderResponse struct {
	OrderID       string  `json:"pedido_id"`
	ComputedPrice float64 `json:"precio_calculado"`
}
