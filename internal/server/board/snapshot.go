package board

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jeranbbs/jeran/internal/filex"
	"github.com/jeranbbs/jeran/internal/logging"
)

const snapshotTimeFormat = "2006-01-02-15-04-05"

// Snapshotter periodically persists the full post history to timestamped
// files. A tick whose rendered history matches the previous successful
// write is skipped, so idle periods produce no disk I/O. Old snapshot
// files are never removed or rotated here.
type Snapshotter struct {
	board  *Board
	dir    string
	period time.Duration
	last   string
	logger logging.Logger
}

func NewSnapshotter(b *Board, dir string, period time.Duration, logger logging.Logger) *Snapshotter {
	return &Snapshotter{
		board:  b,
		dir:    dir,
		period: period,
		logger: logger.With("module", "snapshot"),
	}
}

// Run drives the snapshot schedule until the context is cancelled, then
// makes one final snapshot attempt.
func (s *Snapshotter) Run(ctx context.Context) {
	s.logger.Info(ctx, "starting post snapshot service", "dir", s.dir, "period", s.period.String())

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "running final post snapshot")
			if err := s.Snapshot(ctx); err != nil {
				s.logger.Error(ctx, "final snapshot failed", "error", err.Error())
			}
			return
		case <-ticker.C:
			if err := s.Snapshot(ctx); err != nil {
				s.logger.Error(ctx, "snapshot failed", "error", err.Error())
			}
		}
	}
}

// Snapshot writes the rendered history to a fresh timestamped file unless
// it is byte-identical to the last successful write. A write fault leaves
// the baseline untouched so the next tick retries the same content.
func (s *Snapshotter) Snapshot(ctx context.Context) error {
	blob := s.board.renderAll()
	if blob == s.last {
		s.logger.Info(ctx, "skipping snapshot, post history unchanged")
		return nil
	}

	if err := filex.EnsureDir(s.dir); err != nil {
		return err
	}

	name := fmt.Sprintf("POST BACKUP-%s.txt", time.Now().Format(snapshotTimeFormat))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(blob), 0o660); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	s.last = blob
	s.logger.Info(ctx, "saved post snapshot", "file", name)
	return nil
}
