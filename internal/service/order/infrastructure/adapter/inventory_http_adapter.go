// internal/service/order/infrastructure/adapter/inventory_http_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"almacen/internal/pkg/httpclient"
	"almacen/internal/pkg/integrity"
	"almacen/internal/service/order/domain/port"
)

const (
	reservePath = "/inventario/reservar"
	releasePath = "/inventario/liberar"
)

// defaultTimeout 是单次预占调用的上限，到点即按失败处理。
const defaultTimeout = 5 * time.Second

// InventoryHTTPAdapter 实现了 port.ReservationService 接口。
// 每次调用先用共享密钥对表单字段签名，再发起单次 POST；
// 所有失败形态统一折叠成 *port.ReservationError。
type InventoryHTTPAdapter struct {
	client   *httpclient.Client
	verifier *integrity.Verifier
	baseURL  string
	timeout  time.Duration
}

func NewInventoryHTTPAdapter(client *httpclient.Client, verifier *integrity.Verifier, baseURL string, timeout time.Duration) *InventoryHTTPAdapter {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &InventoryHTTPAdapter{client: client, verifier: verifier, baseURL: baseURL, timeout: timeout}
}

// reservationResponse 是库存服务的应答体，成功失败共用一个形态。
type reservationResponse struct {
	Success      bool   `json:"success"`
	InventarioID string `json:"inventario_id"`
	Disponible   int    `json:"disponible"`
	Reservado    int    `json:"reservado"`
	Error        string `json:"error"`
}

// Reserve 为一个行项预占库存。数值按字符串传输并参与签名，
// 与服务端的规范化载荷逐位一致。
func (a *InventoryHTTPAdapter) Reserve(ctx context.Context, productID, warehouseID string, quantity int) (*port.Reservation, error) {
	fields := map[string]string{
		"producto_id": productID,
		"cantidad":    strconv.Itoa(quantity),
		"bodega_id":   warehouseID,
	}

	body, rerr := a.post(ctx, reservePath, fields)
	if rerr != nil {
		return nil, rerr
	}
	return &port.Reservation{
		RecordID:    body.InventarioID,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    quantity,
		Available:   body.Disponible,
		Reserved:    body.Reservado,
	}, nil
}

// Release 释放已预占的库存，补偿路径同样是单次请求语义。
func (a *InventoryHTTPAdapter) Release(ctx context.Context, recordID string, quantity int) error {
	fields := map[string]string{
		"inventario_id": recordID,
		"cantidad":      strconv.Itoa(quantity),
	}
	_, rerr := a.post(ctx, releasePath, fields)
	if rerr != nil {
		return rerr
	}
	return nil
}

// post 签名、发送并归一化所有失败形态。
// 连接失败、超时、非 2xx、应用层 success=false 对调用方没有区别，
// 都只携带一个可读的 Reason。
func (a *InventoryHTTPAdapter) post(ctx context.Context, path string, fields map[string]string) (*reservationResponse, *port.ReservationError) {
	params := url.Values{}
	for k, v := range fields {
		params.Set(k, v)
	}
	params.Set("hash", a.verifier.HMAC(integrity.Fields(fields)))

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.PostForm(callCtx, a.baseURL+path, params)
	if err != nil {
		return nil, &port.ReservationError{Reason: fmt.Sprintf("inventory service unreachable: %v", err)}
	}

	var body reservationResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, &port.ReservationError{Reason: fmt.Sprintf("inventory service returned malformed response (status %d)", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK || !body.Success {
		reason := body.Error
		if reason == "" {
			reason = fmt.Sprintf("inventory service returned status %d", resp.StatusCode)
		}
		return nil, &port.ReservationError{Reason: reason}
	}
	return &body, nil
}
