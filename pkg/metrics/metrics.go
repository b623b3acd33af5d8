// Package metrics records terminal-local operational series (fetch
// latencies, cart operation counts) in an embedded tstorage partition under
// the workdir.
package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

const (
	MetricFetchDuration = "backend_fetch_duration_ms"
	MetricCartOps       = "cart_ops"
)

var (
	mu      sync.Mutex
	storage tstorage.Storage
)

// InitMetrics opens the metrics partition under workdir.
func InitMetrics(workdir string) error {
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithPartitionDuration(time.Hour),
	)
	if err != nil {
		return err
	}
	mu.Lock()
	storage = s
	mu.Unlock()
	return nil
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}

func insert(rows []tstorage.Row) {
	mu.Lock()
	s := storage
	mu.Unlock()
	if s == nil {
		return
	}
	_ = s.InsertRows(rows)
}

// RecordFetchDuration records one backend fetch latency for an endpoint.
func RecordFetchDuration(endpoint string, d time.Duration) {
	insert([]tstorage.Row{{
		Metric: MetricFetchDuration,
		Labels: []tstorage.Label{{Name: "endpoint", Value: endpoint}},
		DataPoint: tstorage.DataPoint{
			Timestamp: time.Now().Unix(),
			Value:     float64(d.Milliseconds()),
		},
	}})
}

// IncrCartOp counts one cart operation (add, update, remove, clear).
func IncrCartOp(op string) {
	insert([]tstorage.Row{{
		Metric: MetricCartOps,
		Labels: []tstorage.Label{{Name: "op", Value: op}},
		DataPoint: tstorage.DataPoint{
			Timestamp: time.Now().Unix(),
			Value:     1,
		},
	}})
}

// Select returns data points for metric/labels between start and end unix
// seconds. A closed or uninitialized storage yields an empty result.
func Select(metric string, labels []tstorage.Label, start, end int64) []*tstorage.DataPoint {
	mu.Lock()
	s := storage
	mu.Unlock()
	if s == nil {
		return nil
	}
	points, err := s.Select(metric, labels, start, end)
	if err != nil {
		return nil
	}
	return points
}
