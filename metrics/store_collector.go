package metrics

import (
	"context"
	"fmt"
	"time"
)

// DeliverySource provides aggregate delivery counts from a storage backend
type DeliverySource interface {
	GlobalDeliveryStats(ctx context.Context) (map[string]int64, error)
	CountDue(ctx context.Context, now time.Time) (int64, error)
}

// WorkerSource provides worker heartbeat data. Optional: backends without
// heartbeat support report no workers.
type WorkerSource interface {
	ActiveWorkers(ctx context.Context) ([]WorkerInfo, error)
}

// StoreCollector implements Collector on top of the delivery store
type StoreCollector struct {
	deliveries DeliverySource
	workers    WorkerSource
}

// NewStoreCollector creates a new store-backed metrics collector.
// workers may be nil.
func NewStoreCollector(deliveries DeliverySource, workers WorkerSource) *StoreCollector {
	return &StoreCollector{
		deliveries: deliveries,
		workers:    workers,
	}
}

// Collect gathers all metrics from the store
func (c *StoreCollector) Collect(ctx context.Context) (Metrics, error) {
	statusCounts, err := c.GetStatusCounts(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting status counts: %w", err)
	}

	dueBacklog, err := c.GetDueBacklog(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting due backlog: %w", err)
	}

	workers, err := c.GetActiveWorkers(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting active workers: %w", err)
	}

	return Metrics{
		StatusCounts: statusCounts,
		DueBacklog:   dueBacklog,
		Workers:      workers,
		Timestamp:    time.Now(),
	}, nil
}

// GetStatusCounts returns delivery counts grouped by status
func (c *StoreCollector) GetStatusCounts(ctx context.Context) (map[string]int64, error) {
	counts, err := c.deliveries.GlobalDeliveryStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregating status counts: %w", err)
	}

	// Always report all three statuses, even when zero
	for _, status := range []string{"pending", "success", "failed"} {
		if _, ok := counts[status]; !ok {
			counts[status] = 0
		}
	}

	return counts, nil
}

// GetDueBacklog returns the number of deliveries eligible for processing now
func (c *StoreCollector) GetDueBacklog(ctx context.Context) (int64, error) {
	return c.deliveries.CountDue(ctx, time.Now())
}

// GetActiveWorkers returns workers with a live heartbeat
func (c *StoreCollector) GetActiveWorkers(ctx context.Context) ([]WorkerInfo, error) {
	if c.workers == nil {
		return nil, nil
	}
	return c.workers.ActiveWorkers(ctx)
}
