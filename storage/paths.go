package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Layout resolves artifact paths under the data directory:
// raw/ for JSON, processed/ for CSV and backups/ for dated copies.
type Layout struct {
	DataDir string
}

// NewLayout creates the directory tree and returns a Layout rooted at dataDir.
func NewLayout(dataDir string) (Layout, error) {
	l := Layout{DataDir: dataDir}
	for _, dir := range []string{l.RawDir(), l.ProcessedDir(), l.BackupDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return Layout{}, fmt.Errorf("storage: create %s: %w", dir, err)
		}
	}
	return l, nil
}

func (l Layout) RawDir() string       { return filepath.Join(l.DataDir, "raw") }
func (l Layout) ProcessedDir() string { return filepath.Join(l.DataDir, "processed") }
func (l Layout) BackupDir() string    { return filepath.Join(l.DataDir, "backups") }

func (l Layout) Raw(name string) string       { return filepath.Join(l.RawDir(), name) }
func (l Layout) Processed(name string) string { return filepath.Join(l.ProcessedDir(), name) }
func (l Layout) Backup(name string) string    { return filepath.Join(l.BackupDir(), name) }

// DatedName turns "all_venues.json" into "all_venues_20250101.json".
func DatedName(name string, t time.Time) string {
	return stamp(name, t.Format("20060102"))
}

// StampedName turns "venue_all_details.json" into "venue_all_details_20250101_153000.json".
func StampedName(name string, t time.Time) string {
	return stamp(name, t.Format("20060102_150405"))
}

func stamp(name, suffix string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + suffix + ext
}
