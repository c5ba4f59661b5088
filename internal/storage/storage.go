// Package storage lays out the output tree: one directory per day with
// json batch snapshots and rendered txt/html reports.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/trendradar/trendradar/internal/crawler"
	"github.com/trendradar/trendradar/internal/logger"
)

const (
	dayFormat  = "2006-01-02"
	fileFormat = "1504" // HHMM snapshot name within a day

	jsonDir = "json"
	txtDir  = "txt"
	htmlDir = "html"
)

// Store reads and writes the output tree rooted at a base directory.
type Store struct {
	root     string
	location *time.Location
	logger   *logger.Logger
}

// New builds a store rooted at root. Timestamps in file and directory
// names use the given location.
func New(root string, location *time.Location, log *logger.Logger) *Store {
	if location == nil {
		location = time.Local
	}
	return &Store{root: root, location: location, logger: log}
}

// Root returns the output base directory.
func (s *Store) Root() string { return s.root }

func (s *Store) dayDir(day time.Time) string {
	return filepath.Join(s.root, day.In(s.location).Format(dayFormat))
}

// SaveBatch writes the batch snapshot to <root>/<date>/json/<HHMM>.json.
// The write is atomic: data goes to a temp file first and is renamed
// into place.
func (s *Store) SaveBatch(batch *crawler.Batch) (string, error) {
	at := batch.CrawledAt.In(s.location)
	dir := filepath.Join(s.dayDir(at), jsonDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode batch: %w", err)
	}

	path := filepath.Join(dir, at.Format(fileFormat)+".json")
	if err := writeAtomic(path, data); err != nil {
		return "", err
	}

	s.logger.Debug("batch snapshot saved",
		logger.Field{Key: "path", Value: path},
		logger.Field{Key: "items", Value: batch.TotalItems()})
	return path, nil
}

// SaveReport writes a rendered report next to the day's snapshots.
// Kind selects the subdirectory ("txt" or "html").
func (s *Store) SaveReport(at time.Time, kind, ext string, data []byte) (string, error) {
	local := at.In(s.location)
	dir := filepath.Join(s.dayDir(local), kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}

	path := filepath.Join(dir, local.Format(fileFormat)+ext)
	if err := writeAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// LoadBatch reads one snapshot file.
func (s *Store) LoadBatch(path string) (*crawler.Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var batch crawler.Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &batch, nil
}

// LoadLatest returns the most recent snapshot across all days, or nil
// when nothing has been crawled yet.
func (s *Store) LoadLatest() (*crawler.Batch, error) {
	days, err := s.Days()
	if err != nil || len(days) == 0 {
		return nil, err
	}

	for i := len(days) - 1; i >= 0; i-- {
		paths, err := s.snapshotPaths(days[i])
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			continue
		}
		return s.LoadBatch(paths[len(paths)-1])
	}
	return nil, nil
}

// LoadDay returns every snapshot of the given date (YYYY-MM-DD),
// chronological order.
func (s *Store) LoadDay(date string) ([]*crawler.Batch, error) {
	if _, err := time.ParseInLocation(dayFormat, date, s.location); err != nil {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
	}

	paths, err := s.snapshotPaths(date)
	if err != nil {
		return nil, err
	}

	batches := make([]*crawler.Batch, 0, len(paths))
	for _, path := range paths {
		batch, err := s.LoadBatch(path)
		if err != nil {
			s.logger.Warn("skipping unreadable snapshot",
				logger.Field{Key: "path", Value: path},
				logger.Field{Key: "error", Value: err.Error()})
			continue
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// Days lists the day directories present under the output root, sorted
// ascending.
func (s *Store) Days() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read output root: %w", err)
	}

	var days []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := time.ParseInLocation(dayFormat, e.Name(), s.location); err != nil {
			continue
		}
		days = append(days, e.Name())
	}
	sort.Strings(days)
	return days, nil
}

func (s *Store) snapshotPaths(date string) ([]string, error) {
	dir := filepath.Join(s.root, date, jsonDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Prune removes day directories older than keepDays, counting back from
// now. keepDays <= 0 disables pruning.
func (s *Store) Prune(now time.Time, keepDays int) (int, error) {
	if keepDays <= 0 {
		return 0, nil
	}

	cutoff := now.In(s.location).AddDate(0, 0, -keepDays).Format(dayFormat)
	days, err := s.Days()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, day := range days {
		if day >= cutoff {
			break
		}
		if err := os.RemoveAll(filepath.Join(s.root, day)); err != nil {
			return removed, fmt.Errorf("failed to prune %s: %w", day, err)
		}
		removed++
		s.logger.Info("pruned output day", logger.Field{Key: "day", Value: day})
	}
	return removed, nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return nil
}
