package metrics

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// CountFunc returns the current number of stored records of one entity.
type CountFunc func(ctx context.Context) (int64, error)

// PoolSnapshot is the subset of pool statistics exported as gauges.
type PoolSnapshot struct {
	Total    int32
	Idle     int32
	Acquired int32
	Max      int32
}

// Refresher periodically samples entity counts and pool statistics into
// gauges and runs any extra housekeeping jobs on the same schedule.
type Refresher struct {
	logger    zerolog.Logger
	interval  time.Duration
	timeout   time.Duration
	scheduler *gocron.Scheduler

	mu     sync.Mutex
	counts map[string]CountFunc
	pool   func() PoolSnapshot
	jobs   []func()
}

func NewRefresher(logger zerolog.Logger, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Refresher{
		logger:    logger.With().Str("component", "metrics").Logger(),
		interval:  interval,
		timeout:   10 * time.Second,
		scheduler: gocron.NewScheduler(time.UTC),
		counts:    make(map[string]CountFunc),
	}
}

// TrackEntity registers a count source for the entity gauge.
func (r *Refresher) TrackEntity(entity string, fn CountFunc) {
	r.mu.Lock()
	r.counts[entity] = fn
	r.mu.Unlock()
}

// TrackPool registers a source for the pool gauges.
func (r *Refresher) TrackPool(fn func() PoolSnapshot) {
	r.mu.Lock()
	r.pool = fn
	r.mu.Unlock()
}

// AddJob runs fn on every tick after the gauges are refreshed.
func (r *Refresher) AddJob(fn func()) {
	r.mu.Lock()
	r.jobs = append(r.jobs, fn)
	r.mu.Unlock()
}

// Refresh samples every registered source once. Failed counts are logged and
// leave the previous gauge value in place.
func (r *Refresher) Refresh(ctx context.Context) {
	r.mu.Lock()
	entities := make([]string, 0, len(r.counts))
	for name := range r.counts {
		entities = append(entities, name)
	}
	sort.Strings(entities)
	counts := make([]CountFunc, len(entities))
	for i, name := range entities {
		counts[i] = r.counts[name]
	}
	pool := r.pool
	jobs := append([]func(){}, r.jobs...)
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	for i, name := range entities {
		n, err := counts[i](ctx)
		if err != nil {
			r.logger.Warn().Err(err).Str("entity", name).Msg("entity count refresh failed")
			continue
		}
		EntityCount.WithLabelValues(name).Set(float64(n))
	}

	if pool != nil {
		s := pool()
		DBPoolConnections.WithLabelValues("total").Set(float64(s.Total))
		DBPoolConnections.WithLabelValues("idle").Set(float64(s.Idle))
		DBPoolConnections.WithLabelValues("acquired").Set(float64(s.Acquired))
		DBPoolConnections.WithLabelValues("max").Set(float64(s.Max))
	}

	for _, job := range jobs {
		job()
	}
}

// Start refreshes immediately and then on every interval until Stop.
func (r *Refresher) Start() error {
	_, err := r.scheduler.Every(r.interval).SingletonMode().StartImmediately().Do(func() {
		r.Refresh(context.Background())
	})
	if err != nil {
		return fmt.Errorf("schedule metrics refresh: %w", err)
	}
	r.scheduler.StartAsync()
	r.logger.Info().Dur("interval", r.interval).Msg("metrics refresher started")
	return nil
}

func (r *Refresher) Stop() {
	r.scheduler.Stop()
}
