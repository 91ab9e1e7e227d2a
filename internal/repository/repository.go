package repository

import (
	"time"

	"github.com/clinicore/scheduler/pkg/metrics"
)

// observe records query latency when a collector is wired in. Repositories
// work fine without one (tests, seed tool).
func observe(c *metrics.Collector, op, table string, start time.Time) {
	if c == nil {
		return
	}
	c.DBQueryDuration.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
}
