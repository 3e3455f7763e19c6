// internal/service/inventory/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"almacen/internal/pkg/integrity"
	"almacen/internal/pkg/logger"
	"almacen/internal/service/inventory/application"
	"almacen/internal/service/inventory/domain"
)

const serviceName = "inventory-service"

// InventoryHandler 封装了库存服务的 HTTP 处理器。
// 所有写操作都是表单编码，数值一律按字符串传输，并携带 hash 字段；
// 完整性和参数校验失败的请求在触碰台账之前就被拒绝。
type InventoryHandler struct {
	service  *application.LedgerService
	verifier *integrity.Verifier
}

func NewInventoryHandler(service *application.LedgerService, verifier *integrity.Verifier) *InventoryHandler {
	return &InventoryHandler{service: service, verifier: verifier}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *InventoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/inventario/reservar", h.handleReservar)
	mux.HandleFunc("/inventario/liberar", h.handleLiberar)
	mux.HandleFunc("/inventario/confirmar", h.handleConfirmar)
	mux.HandleFunc("/inventario/crear", h.handleCrear)
	mux.HandleFunc("/inventario/detalle", h.handleDetalle)
}

func (h *InventoryHandler) handleReservar(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx = logger.WithContext(ctx)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "inventory-service.Reservar")
	defer span.End()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	receivedHash := r.PostFormValue("hash")
	if receivedHash == "" {
		ledgerResults.WithLabelValues("missing_hash").Inc()
		writeError(w, http.StatusBadRequest, "Missing hash parameter")
		return
	}

	// 规范化载荷：字段全部按字符串参与签名，和客户端逐位一致
	fields := map[string]string{
		"producto_id": r.PostFormValue("producto_id"),
		"cantidad":    r.PostFormValue("cantidad"),
		"bodega_id":   r.PostFormValue("bodega_id"),
	}
	if !h.verifier.Verify(receivedHash, integrity.Fields(fields)) {
		ledgerResults.WithLabelValues("integrity_failure").Inc()
		span.SetStatus(codes.Error, "hash verification failed")
		writeError(w, http.StatusForbidden, "Hash verification failed")
		return
	}

	rec, err := h.service.Reserve(ctx, fields["producto_id"], fields["bodega_id"], mustAtoi(fields["cantidad"]))
	if err != nil {
		h.writeLedgerError(w, span, "reserve", err)
		return
	}

	ledgerResults.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"inventario_id": rec.ID,
		"disponible":    rec.Available,
		"reservado":     rec.Reserved,
	})
}

func (h *InventoryHandler) handleLiberar(w http.ResponseWriter, r *http.Request) {
	h.handleReservedMutation(w, r, "inventory-service.Liberar", "release",
		func(r *http.Request, id string, qty int) (*domain.Record, error) {
			return h.service.Release(r.Context(), id, qty)
		},
		func(rec *domain.Record) map[string]interface{} {
			return map[string]interface{}{
				"success":       true,
				"inventario_id": rec.ID,
				"disponible":    rec.Available,
				"reservado":     rec.Reserved,
			}
		})
}

func (h *InventoryHandler) handleConfirmar(w http.ResponseWriter, r *http.Request) {
	h.handleReservedMutation(w, r, "inventory-service.Confirmar", "confirm",
		func(r *http.Request, id string, qty int) (*domain.Record, error) {
			return h.service.Confirm(r.Context(), id, qty)
		},
		func(rec *domain.Record) map[string]interface{} {
			// 确认不触碰可用数，响应里也不回报它
			return map[string]interface{}{
				"success":       true,
				"inventario_id": rec.ID,
				"reservado":     rec.Reserved,
			}
		})
}

// handleReservedMutation 统一处理 liberar/confirmar：
// 两者签名载荷相同（inventario_id + cantidad），校验失败返回 400。
func (h *InventoryHandler) handleReservedMutation(
	w http.ResponseWriter, r *http.Request,
	spanName, operation string,
	mutate func(r *http.Request, id string, qty int) (*domain.Record, error),
	respond func(rec *domain.Record) map[string]interface{},
) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx = logger.WithContext(ctx)
	ctx, span := otel.Tracer(serviceName).Start(ctx, spanName)
	defer span.End()
	r = r.WithContext(ctx)

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	receivedHash := r.PostFormValue("hash")
	if receivedHash == "" {
		writeError(w, http.StatusBadRequest, "Missing hash parameter")
		return
	}

	fields := map[string]string{
		"inventario_id": r.PostFormValue("inventario_id"),
		"cantidad":      r.PostFormValue("cantidad"),
	}
	if !h.verifier.Verify(receivedHash, integrity.Fields(fields)) {
		span.SetStatus(codes.Error, "hash verification failed")
		writeError(w, http.StatusBadRequest, "Hash verification failed - Data integrity compromised")
		return
	}

	qty := mustAtoi(fields["cantidad"])
	if qty <= 0 {
		writeError(w, http.StatusBadRequest, "Quantity must be greater than 0")
		return
	}

	rec, err := mutate(r, fields["inventario_id"], qty)
	if err != nil {
		h.writeLedgerError(w, span, operation, err)
		return
	}
	writeJSON(w, http.StatusOK, respond(rec))
}

func (h *InventoryHandler) handleCrear(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx = logger.WithContext(ctx)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "inventory-service.Crear")
	defer span.End()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	receivedHash := r.PostFormValue("hash")
	if receivedHash == "" {
		writeError(w, http.StatusBadRequest, "Missing hash parameter")
		return
	}

	fields := map[string]string{
		"producto_id":         r.PostFormValue("producto_id"),
		"bodega_id":           r.PostFormValue("bodega_id"),
		"ubicacion_id":        r.PostFormValue("ubicacion_id"),
		"cantidad_disponible": formValueDefault(r, "cantidad_disponible", "0"),
		"cantidad_reservada":  formValueDefault(r, "cantidad_reservada", "0"),
	}
	if !h.verifier.Verify(receivedHash, integrity.Fields(fields)) {
		span.SetStatus(codes.Error, "hash verification failed")
		writeError(w, http.StatusBadRequest, "Hash verification failed - Data integrity compromised")
		return
	}
	if fields["producto_id"] == "" || fields["bodega_id"] == "" {
		writeError(w, http.StatusBadRequest, "Missing producto_id or bodega_id")
		return
	}

	rec := &domain.Record{
		ProductID:   fields["producto_id"],
		WarehouseID: fields["bodega_id"],
		LocationID:  fields["ubicacion_id"],
		Available:   mustAtoi(fields["cantidad_disponible"]),
		Reserved:    mustAtoi(fields["cantidad_reservada"]),
	}
	created, err := h.service.CreateRecord(ctx, rec)
	if err != nil {
		h.writeLedgerError(w, span, "create", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"inventario_id": created.ID,
	})
}

func (h *InventoryHandler) handleDetalle(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "inventory-service.Detalle")
	defer span.End()

	// 只读操作不做完整性校验
	rec, err := h.service.GetRecord(ctx, r.URL.Query().Get("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":                  rec.ID,
		"producto_id":         rec.ProductID,
		"bodega_id":           rec.WarehouseID,
		"ubicacion_id":        rec.LocationID,
		"cantidad_disponible": rec.Available,
		"cantidad_reservada":  rec.Reserved,
	})
}

// writeLedgerError 把台账错误翻译成 HTTP 状态码。
// 领域前置条件失败一律 400，记录不存在 404；此时存储必然未被修改。
func (h *InventoryHandler) writeLedgerError(w http.ResponseWriter, span trace.Span, operation string, err error) {
	span.SetStatus(codes.Error, err.Error())
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		ledgerResults.WithLabelValues("not_found").Inc()
		writeError(w, http.StatusNotFound, "Inventory not found")
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, "Quantity must be > 0")
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrOverRelease),
		errors.Is(err, domain.ErrOverConfirm),
		errors.Is(err, domain.ErrDuplicateRecord):
		ledgerResults.WithLabelValues(operation + "_rejected").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "error": msg})
}

func formValueDefault(r *http.Request, key, fallback string) string {
	if v := r.PostFormValue(key); v != "" {
		return v
	}
	return fallback
}

// mustAtoi 把字符串字段转成整数，非法输入归零，由领域校验统一拒绝。
func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
