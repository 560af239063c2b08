package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/joao-cbj/silowatch/internal/gateway"
	"github.com/joao-cbj/silowatch/pkg/timeseries"
)

// Poller keeps a cached snapshot of the latest reading per device,
// refreshed on a fixed interval for the lifetime of the controller. A
// failed refresh keeps the previous snapshot so the dashboard degrades
// instead of going blank.
type Poller struct {
	ctx      context.Context
	wg       *sync.WaitGroup
	gateway  *gateway.Client
	interval time.Duration
	logger   *zap.SugaredLogger

	mu        sync.RWMutex
	latest    []timeseries.Reading
	updatedAt time.Time
}

// NewPoller creates a poller; call Start to begin refreshing.
func NewPoller(ctx context.Context, wg *sync.WaitGroup, gw *gateway.Client, interval time.Duration, logger *zap.SugaredLogger) *Poller {
	return &Poller{
		ctx:      ctx,
		wg:       wg,
		gateway:  gw,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the refresh loop. The loop exits when the controller
// context is cancelled; the ticker is released unconditionally.
func (p *Poller) Start() {
	p.wg.Add(1)
	go p.run()
}

func (p *Poller) run() {
	defer p.wg.Done()

	// time.Ticker only begins to fire after the interval has elapsed, so
	// refresh once up front.
	p.refresh()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.refresh()
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Poller) refresh() {
	ctx, cancel := context.WithTimeout(p.ctx, p.interval)
	defer cancel()

	readings, err := p.gateway.LatestReadings(ctx)
	if err != nil {
		p.logger.Warnf("latest readings refresh failed, keeping previous snapshot: %v", err)
		return
	}

	p.mu.Lock()
	p.latest = readings
	p.updatedAt = time.Now()
	p.mu.Unlock()
}

// Snapshot returns the cached readings, the time they were fetched, and
// whether any refresh has succeeded yet.
func (p *Poller) Snapshot() ([]timeseries.Reading, time.Time, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest, p.updatedAt, !p.updatedAt.IsZero()
}
