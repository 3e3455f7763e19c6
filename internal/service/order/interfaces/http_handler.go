// internal/service/order/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"almacen/internal/pkg/logger"
	"almacen/internal/service/order/application"
)

const serviceName = "order-service"

// OrderHandler 封装了订单服务的 HTTP 处理器。
type OrderHandler struct {
	service *application.OrderApplicationService
}

func NewOrderHandler(service *application.OrderApplicationService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/pedidos/crear", h.handleCrearPedido)
	mux.HandleFunc("/pedidos/detalle", h.handleDetallePedido)
}

func (h *OrderHandler) handleCrearPedido(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx = logger.WithContext(ctx)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "order-service.CrearPedido")
	defer span.End()

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{"success": false, "error": "method not allowed"})
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "invalid form body"})
		return
	}

	// 行项以 JSON 数组传输：[{producto_id, bodega_id, cantidad, precio_unitario}]
	var items []application.LineItemRequest
	productosRaw := r.PostFormValue("productos")
	if productosRaw == "" {
		productosRaw = "[]"
	}
	if err := json.Unmarshal([]byte(productosRaw), &items); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "invalid productos payload"})
		return
	}

	resp, err := h.service.CreateOrder(ctx, &application.CreateOrderRequest{
		CustomerID: r.PostFormValue("cliente_id"),
		AddressID:  r.PostFormValue("direccion_id"),
		Items:      items,
	})
	if err != nil {
		span.RecordError(err)
		var abort *application.SagaAbortError
		if errors.As(err, &abort) {
			// 预占失败：订单已被删除，失败原因原样返回
			writeJSON(w, http.StatusConflict, map[string]interface{}{"success": false, "error": abort.Reason})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"pedido_id":        resp.OrderID,
		"precio_calculado": resp.ComputedPrice,
	})
}

func (h *OrderHandler) handleDetallePedido(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "order-service.DetallePedido")
	defer span.End()

	order, err := h.service.GetOrder(ctx, r.URL.Query().Get("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": err.Error()})
		return
	}

	items := make([]map[string]interface{}, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]interface{}{
			"producto_id":     item.ProductID,
			"bodega_id":       item.WarehouseID,
			"cantidad":        item.Quantity,
			"precio_unitario": item.UnitPrice,
			"subtotal":        item.Subtotal,
			"inventario_id":   item.ReservationID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":               order.ID,
		"cliente_id":       order.CustomerID,
		"direccion_id":     order.AddressID,
		"precio_calculado": order.ComputedPrice,
		"productos":        items,
	})
}

func writeJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
