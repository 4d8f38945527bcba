package memory

import (
	"context"
	"sync"

	"ichinichi/internal/sheets"
)

// Writer keeps exported snapshots in memory. It backs the worker when no
// spreadsheet is configured and doubles as a test double.
type Writer struct {
	mu    sync.Mutex
	snaps []sheets.Snapshot
	err   error
}

var _ sheets.SnapshotWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

// WriteSnapshot records a copy of snap.
func (w *Writer) WriteSnapshot(ctx context.Context, snap sheets.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	snap.Items = append(snap.Items[:0:0], snap.Items...)
	w.snaps = append(w.snaps, snap)
	return nil
}

// FailWith makes subsequent writes return err. nil restores normal behaviour.
func (w *Writer) FailWith(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.err = err
}

// Last returns the most recent snapshot.
func (w *Writer) Last() (sheets.Snapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.snaps) == 0 {
		return sheets.Snapshot{}, false
	}
	return w.snaps[len(w.snaps)-1], true
}

// Count is the number of snapshots written so far.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.snaps)
}
