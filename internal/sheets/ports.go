package sheets

import (
	"context"
	"time"

	"ichinichi/internal/core"
)

// Snapshot is the full state pushed to an external spreadsheet on each
// export. Writers replace what they wrote last time.
type Snapshot struct {
	Items      []core.Item
	Summary    core.SummaryData
	ExportedAt time.Time
}

// SnapshotWriter publishes snapshots to an outbound target.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, snap Snapshot) error
}
