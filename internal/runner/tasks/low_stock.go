// Package tasks holds the scheduled jobs run by the inventory server.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/TayyabaHussain58/InventoryApp/internal/inventory"
)

const LowStockTaskName = "low-stock-report"

var lowStockItems = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "inventory",
	Name:      "low_stock_items",
	Help:      "Products below the low stock threshold at the last report",
})

// LowStockSource lists the products currently low on stock.
type LowStockSource interface {
	LowStock(ctx context.Context) ([]inventory.Product, error)
}

// LowStockReport logs a warning for every product below
// inventory.LowStockThreshold and publishes the count as a gauge.
type LowStockReport struct {
	source   LowStockSource
	schedule string
	logger   *zap.Logger
}

func NewLowStockReport(source LowStockSource, schedule string, logger *zap.Logger) *LowStockReport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LowStockReport{source: source, schedule: schedule, logger: logger}
}

func (t *LowStockReport) Name() string           { return LowStockTaskName }
func (t *LowStockReport) Schedule() string       { return t.schedule }
func (t *LowStockReport) Timeout() time.Duration { return 30 * time.Second }

func (t *LowStockReport) Run(ctx context.Context) error {
	products, err := t.source.LowStock(ctx)
	if err != nil {
		return fmt.Errorf("list low stock: %w", err)
	}
	lowStockItems.Set(float64(len(products)))
	for _, p := range products {
		t.logger.Warn("low stock",
			zap.String("product_id", p.ID),
			zap.String("name", p.Name),
			zap.Int("quantity", p.Quantity),
			zap.String("location", p.Location))
	}
	return nil
}
