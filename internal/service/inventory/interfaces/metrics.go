// internal/service/inventory/interfaces/metrics.go
package interfaces

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ledgerResults 统计台账操作的结果分布，/metrics 暴露。
var ledgerResults = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inventario_operations_total",
		Help: "Inventory ledger operation outcomes by result.",
	},
	[]string{"result"},
)
