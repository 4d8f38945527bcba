package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"ichinichi/internal/amqp"
	"ichinichi/internal/core"
	"ichinichi/internal/cost"
	applog "ichinichi/internal/log"
	"ichinichi/internal/sheets"
)

// ItemLister is the read side the exporter needs from storage.
type ItemLister interface {
	List(ctx context.Context) ([]core.Item, error)
}

// ExportConfig holds the timing of the export loop.
type ExportConfig struct {
	// FlushInterval is how often pending item events are turned into an
	// export (default: 10s).
	FlushInterval time.Duration

	// FullInterval forces an export even without events, to recover from
	// lost messages (default: 15m).
	FullInterval time.Duration

	// Target names the destination in logs, e.g. the spreadsheet id.
	Target string
}

// DefaultExportConfig returns the default timings.
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		FlushInterval: 10 * time.Second,
		FullInterval:  15 * time.Minute,
	}
}

// ExportWorker keeps an external spreadsheet in step with the item store.
// Item events only mark the snapshot dirty; a burst of writes becomes a
// single export on the next flush.
type ExportWorker struct {
	items  ItemLister
	writer sheets.SnapshotWriter
	config ExportConfig
	now    func() time.Time

	dirty    atomic.Bool
	exportMu sync.Mutex
	lastOK   atomic.Int64

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewExportWorker(items ItemLister, writer sheets.SnapshotWriter, config ExportConfig) *ExportWorker {
	def := DefaultExportConfig()
	if config.FlushInterval <= 0 {
		config.FlushInterval = def.FlushInterval
	}
	if config.FullInterval <= 0 {
		config.FullInterval = def.FullInterval
	}
	return &ExportWorker{
		items:  items,
		writer: writer,
		config: config,
		now:    time.Now,
	}
}

// HandleItemEvent is the AMQP consumer callback.
func (w *ExportWorker) HandleItemEvent(ctx context.Context, event *amqp.ItemEvent) error {
	slog.DebugContext(ctx, "Item event received",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldItemID, event.ID,
		"action", event.Action)
	w.dirty.Store(true)
	return nil
}

// Dirty reports whether events arrived since the last successful export.
func (w *ExportWorker) Dirty() bool {
	return w.dirty.Load()
}

// LastExport returns the time of the last successful export, zero if none.
func (w *ExportWorker) LastExport() time.Time {
	ns := w.lastOK.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// ExportNow reads every item, summarizes them and writes the snapshot.
// Concurrent calls are serialized.
func (w *ExportWorker) ExportNow(ctx context.Context) error {
	w.exportMu.Lock()
	defer w.exportMu.Unlock()

	start := w.now()
	// Events arriving from here on trigger another export
	w.dirty.Store(false)

	items, err := w.items.List(ctx)
	if err != nil {
		w.dirty.Store(true)
		return fmt.Errorf("list items: %w", err)
	}
	snap := sheets.Snapshot{
		Items:      items,
		Summary:    cost.Summarize(items),
		ExportedAt: start,
	}
	if err := w.writer.WriteSnapshot(ctx, snap); err != nil {
		w.dirty.Store(true)
		return fmt.Errorf("write snapshot: %w", err)
	}

	w.lastOK.Store(start.UnixNano())
	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogExport(ctx, w.config.Target, len(items), w.now().Sub(start).Milliseconds())
	return nil
}

// Start begins the export loop. Returns an error if already running.
func (w *ExportWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("export worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	slog.InfoContext(ctx, "Export worker started",
		applog.FieldComponent, applog.ComponentWorker,
		"flush_interval", w.config.FlushInterval,
		"full_interval", w.config.FullInterval)
	return nil
}

// Stop signals the loop and waits for the export in flight to finish.
func (w *ExportWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	select {
	case <-stopCh:
	default:
		close(stopCh)
	}

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Export worker stopped gracefully", applog.FieldComponent, applog.ComponentWorker)
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Export worker stop timed out", applog.FieldComponent, applog.ComponentWorker)
		return ctx.Err()
	}
}

// IsRunning returns whether the loop is active.
func (w *ExportWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ExportWorker) runLoop(ctx context.Context) {
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	flushTicker := time.NewTicker(w.config.FlushInterval)
	defer flushTicker.Stop()
	fullTicker := time.NewTicker(w.config.FullInterval)
	defer fullTicker.Stop()

	// Export immediately on startup
	w.export(ctx, "startup")

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-flushTicker.C:
			if w.dirty.Load() {
				w.export(ctx, "events")
			}
		case <-fullTicker.C:
			w.export(ctx, "interval")
		}
	}
}

func (w *ExportWorker) export(ctx context.Context, reason string) {
	if err := w.ExportNow(ctx); err != nil {
		slog.ErrorContext(ctx, "Export failed",
			applog.FieldComponent, applog.ComponentWorker,
			applog.FieldOperation, applog.OpExport,
			"reason", reason,
			applog.FieldError, err)
	}
}
