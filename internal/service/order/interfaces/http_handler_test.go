package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"almacen/internal/service/order/application"
	"almacen/internal/service/order/domain"
	"almacen/internal/service/order/domain/port"
	"almacen/internal/service/order/infrastructure"
)

// fakeReservations 可配置某个商品预占失败，其余一律成功。
type fakeReservations struct {
	failProduct string
	failReason  string
	nextID      int
}

func (f *fakeReservations) Reserve(ctx context.Context, productID, warehouseID string, quantity int) (*port.Reservation, error) {
	if productID == f.failProduct {
		return nil, &port.ReservationError{Reason: f.failReason}
	}
	f.nextID++
	return &port.Reservation{RecordID: "inv-x", ProductID: productID, WarehouseID: warehouseID, Quantity: quantity}, nil
}

func (f *fakeReservations) Release(ctx context.Context, recordID string, quantity int) error {
	return nil
}

type nopNotifier struct{}

func (nopNotifier) SendOrderPlaced(ctx context.Context, order *domain.Order) error {
	return nil
}

func (nopNotifier) SendOrderAborted(ctx context.Context, orderID, reason string) error {
	return nil
}

func (nopNotifier) Close() error { return nil }

func newTestMux(reservations port.ReservationService) *http.ServeMux {
	service := application.NewOrderApplicationService(
		infrastructure.NewMemoryOrderRepository(),
		reservations,
		nopNotifier{},
		infrastructure.NewMemorySagaLog(),
		noop.NewTracerProvider().Tracer("test"),
		false,
	)
	mux := http.NewServeMux()
	NewOrderHandler(service).RegisterRoutes(mux)
	return mux
}

func postCrearPedido(mux *http.ServeMux, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/pedidos/crear", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func validForm() url.Values {
	form := url.Values{}
	form.Set("cliente_id", "cliente-9")
	form.Set("direccion_id", "dir-1")
	form.Set("productos", `[
		{"producto_id":"prod-a","bodega_id":"bodega-1","cantidad":2,"precio_unitario":10.5},
		{"producto_id":"prod-b","bodega_id":"bodega-1","cantidad":1,"precio_unitario":4.0}
	]`)
	return form
}

func TestCrearPedidoSuccess(t *testing.T) {
	mux := newTestMux(&fakeReservations{})

	rr := postCrearPedido(mux, validForm())

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["pedido_id"])
	assert.InDelta(t, 25.0, body["precio_calculado"].(float64), 1e-9)
}

func TestCrearPedidoReservationFailureIs409(t *testing.T) {
	mux := newTestMux(&fakeReservations{
		failProduct: "prod-b",
		failReason:  "Insufficient stock available",
	})

	rr := postCrearPedido(mux, validForm())

	require.Equal(t, http.StatusConflict, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, false, body["success"])
	// 下游的失败原因原样透传
	assert.Equal(t, "Insufficient stock available", body["error"])
}

func TestCrearPedidoValidationIs400(t *testing.T) {
	mux := newTestMux(&fakeReservations{})

	form := validForm()
	form.Del("cliente_id")
	rr := postCrearPedido(mux, form)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	form = validForm()
	form.Set("productos", `[]`)
	rr = postCrearPedido(mux, form)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	form = validForm()
	form.Set("productos", `no es json`)
	rr = postCrearPedido(mux, form)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid productos payload", decodeBody(t, rr)["error"])
}

func TestDetallePedido(t *testing.T) {
	mux := newTestMux(&fakeReservations{})

	rr := postCrearPedido(mux, validForm())
	require.Equal(t, http.StatusOK, rr.Code)
	orderID := decodeBody(t, rr)["pedido_id"].(string)

	req := httptest.NewRequest(http.MethodGet, "/pedidos/detalle?id="+orderID, nil)
	getRR := httptest.NewRecorder()
	mux.ServeHTTP(getRR, req)

	require.Equal(t, http.StatusOK, getRR.Code)
	body := decodeBody(t, getRR)
	assert.Equal(t, "cliente-9", body["cliente_id"])
	productos := body["productos"].([]interface{})
	require.Len(t, productos, 2)
	first := productos[0].(map[string]interface{})
	assert.Equal(t, "prod-a", first["producto_id"])
	assert.Equal(t, "inv-x", first["inventario_id"])
}

func TestDetallePedidoNotFound(t *testing.T) {
	mux := newTestMux(&fakeReservations{})

	req := httptest.NewRequest(http.MethodGet, "/pedidos/detalle?id=pedido-fantasma", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCrearPedidoMethodNotAllowed(t *testing.T) {
	mux := newTestMux(&fakeReservations{})

	req := httptest.NewRequest(http.MethodGet, "/pedidos/crear", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
