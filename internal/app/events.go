package app

import (
	"time"

	"go.uber.org/zap"

	"github.com/cashtill/tillgate/internal/store"
	"github.com/cashtill/tillgate/pkg/metrics"
)

// initEvents subscribes the metrics and log sinks to store events, keeping
// observability out of the store itself.
func (a *Application) initEvents() {
	_ = a.bus.Subscribe(store.TopicCartUpdated, func(op string, lines int) {
		metrics.IncrCartOp(op)
		zap.S().Debugf("cart %s, %d lines", op, lines)
	})
	_ = a.bus.Subscribe(store.TopicCatalogLoaded, func(count int, elapsed time.Duration) {
		metrics.RecordFetchDuration("products", elapsed)
		zap.S().Infof("catalog loaded, %d products in %s", count, elapsed)
	})
	_ = a.bus.Subscribe(store.TopicCategoriesLoaded, func(count int) {
		zap.S().Debugf("categories loaded, %d entries", count)
	})
}
