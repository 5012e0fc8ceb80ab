package collector

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/de-tools/posture-exporter/pkg/metrics"
	"github.com/de-tools/posture-exporter/pkg/models/domain"
	"github.com/de-tools/posture-exporter/pkg/services/posture"
	"github.com/rs/zerolog"
)

// ErrCycleInFlight is returned when a collection cycle is requested while
// another one is still running.
var ErrCycleInFlight = errors.New("collection cycle already in flight")

// Fetcher retrieves the latest compliance records from the posture API.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.ComplianceRecord, error)
}

// Collector drives the fetch → map → publish cycle on a fixed interval.
// Fetch failures leave the previously published snapshot in place; a
// successful cycle always publishes, even when the staleness guard leaves
// nothing to report.
type Collector struct {
	fetcher  Fetcher
	mapper   posture.Mapper
	registry *metrics.Registry
	inst     *metrics.Instrumentation
	interval time.Duration
	inFlight atomic.Bool
}

func NewCollector(
	fetcher Fetcher,
	mapper posture.Mapper,
	registry *metrics.Registry,
	inst *metrics.Instrumentation,
	interval time.Duration,
) *Collector {
	return &Collector{
		fetcher:  fetcher,
		mapper:   mapper,
		registry: registry,
		inst:     inst,
		interval: interval,
	}
}

// Run performs one cycle immediately, then one per interval tick until ctx
// is done. A cycle that outlasts the interval causes the ticker to drop the
// intervening ticks rather than queue them.
func (c *Collector) Run(ctx context.Context) {
	_ = c.Collect(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zerolog.Ctx(ctx).Info().Msg("collector stopped")
			return
		case <-ticker.C:
			_ = c.Collect(ctx)
		}
	}
}

// Collect runs a single collection cycle. At most one cycle is in flight at
// a time; a concurrent call returns ErrCycleInFlight without touching the
// registry. All failures are contained here and logged.
func (c *Collector) Collect(ctx context.Context) error {
	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrCycleInFlight
	}
	defer c.inFlight.Store(false)

	logger := zerolog.Ctx(ctx)
	logger.Info().Msg("collecting posture data")

	start := time.Now()
	records, err := c.fetcher.Fetch(ctx)
	c.inst.FetchDuration.Set(time.Since(start).Seconds())
	if err != nil {
		c.inst.Up.Set(0)
		c.inst.FetchErrors.Inc()
		logger.Error().Err(err).Msg("posture fetch failed, previous snapshot stays published")
		return err
	}

	now := time.Now().UTC()
	samples, dropped := c.mapper.Map(records, now)
	if dropped > 0 {
		c.inst.StaleRecords.Add(float64(dropped))
		logger.Warn().
			Int("dropped", dropped).
			Dur("threshold", c.mapper.NoDataThreshold).
			Msg("excluded records older than the no-data threshold")
	}

	c.registry.Replace(&domain.CollectionSnapshot{Samples: samples, CompletedAt: now})
	c.inst.Up.Set(1)
	c.inst.LastSuccess.Set(float64(now.Unix()))
	c.inst.Samples.Set(float64(len(samples)))

	logger.Info().
		Int("records", len(records)).
		Int("samples", len(samples)).
		Int("stale_dropped", dropped).
		Msg("published posture snapshot")
	return nil
}
