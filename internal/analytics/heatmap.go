package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wedding-invitations/internal/models"
)

const (
	DefaultBatchSize     = 50
	DefaultFlushInterval = 5 * time.Second
)

// HeatmapSender posts a batch of points
type HeatmapSender interface {
	LogHeatmap(ctx context.Context, batch models.HeatmapBatch) error
}

// Tracker buffers mouse positions and flushes them when the buffer is full
// or on every interval tick. Delivery is best-effort.
type Tracker struct {
	sender        HeatmapSender
	sessionID     string
	batchSize     int
	flushInterval time.Duration
	log           zerolog.Logger
	now           func() time.Time

	mu      sync.Mutex
	points  []models.HeatmapPoint
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewTracker creates a tracker; non-positive sizes fall back to the defaults
func NewTracker(sender HeatmapSender, sessionID string, batchSize int, flushInterval time.Duration, log zerolog.Logger) *Tracker {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if flushInterval <= 0 {
		flushInterval = DefaultFlushInterval
	}
	return &Tracker{
		sender:        sender,
		sessionID:     sessionID,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		log:           log.With().Str("component", "Heatmap").Logger(),
		now:           time.Now,
	}
}

// Start runs the periodic flush until ctx is cancelled or Stop is called
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	if t.stopped || t.cancel != nil {
		t.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	done := t.done
	t.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(t.flushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.Flush(ctx)
			}
		}
	}()
}

// Record buffers one mouse position
func (t *Tracker) Record(ctx context.Context, x, y, viewportW, viewportH int) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.points = append(t.points, models.HeatmapPoint{X: x, Y: y, ViewportW: viewportW, ViewportH: viewportH, At: t.now()})
	full := len(t.points) >= t.batchSize
	t.mu.Unlock()

	if full {
		t.Flush(ctx)
	}
}

// Flush sends the buffered points. Errors are logged and the batch dropped.
func (t *Tracker) Flush(ctx context.Context) {
	t.mu.Lock()
	if len(t.points) == 0 {
		t.mu.Unlock()
		return
	}
	batch := models.HeatmapBatch{SessionID: t.sessionID, Points: t.points}
	t.points = nil
	t.mu.Unlock()

	if err := t.sender.LogHeatmap(ctx, batch); err != nil {
		t.log.Debug().Err(err).Int("points", len(batch.Points)).Msg("Heatmap batch dropped")
	}
}

// Stop ends tracking for good; buffered and later points are discarded
func (t *Tracker) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.points = nil
	cancel, done := t.cancel, t.done
	t.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Stopped reports whether Stop was called
func (t *Tracker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Pending returns how many points wait for the next flush
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.points)
}
