package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"question-bank/internal/domain"

	"github.com/robfig/cron/v3"
)

// UploadSweeper periodically removes uploaded files older than the retention
// window. Ingestion leaves files behind when it fails.
type UploadSweeper struct {
	dir       string
	retention time.Duration
	cron      *cron.Cron
	logger    domain.Logger
	now       func() time.Time
}

func NewUploadSweeper(dir string, retention time.Duration, logger domain.Logger) *UploadSweeper {
	return &UploadSweeper{
		dir:       dir,
		retention: retention,
		cron:      cron.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// Start schedules the sweep. A non-positive retention disables it.
func (s *UploadSweeper) Start(schedule string) error {
	if s.retention <= 0 {
		s.logger.Info("Upload sweeper disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.Sweep(); err != nil {
			s.logger.Error("Upload sweep failed", err, "dir", s.dir)
		}
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	s.logger.Info("Upload sweeper started", "schedule", schedule, "retention", s.retention.String())
	return nil
}

// Stop halts scheduling and waits for a running sweep, bounded by ctx.
func (s *UploadSweeper) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Sweep deletes regular files whose modification time is past retention and
// returns how many it removed.
func (s *UploadSweeper) Sweep() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := s.now().Add(-s.retention)
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("Failed to remove stale upload", "path", path, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("Stale uploads removed", "count", removed)
	}
	return removed, nil
}
