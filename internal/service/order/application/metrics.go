// internal/service/order/application/metrics.go
package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// sagaResults 统计下单 saga 的结局分布。
// aborted 表示默认模式下的订单级补偿（预占未释放），
// compensated 表示逐项补偿模式下的完整回滚。
var sagaResults = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pedido_saga_total",
		Help: "Order placement saga outcomes.",
	},
	[]string{"result"},
)
