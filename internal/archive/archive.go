// Package archive persists tiering plan snapshots as Parquet files.
//
// Each completed sweep can archive its recommendation set as one file
// under the archive directory, named by plan time so a plain directory
// listing is also a chronology. Pruning enforces an age cutoff and a
// total size cap, oldest files first.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Config holds archive configuration options.
type Config struct {
	// Dir is the directory snapshots are written to.
	Dir string

	// Algorithm selects the Parquet compression codec:
	// snappy, zstd, lz4, gzip or none.
	Algorithm string

	// Level is the codec level for algorithms that support one
	// (zstd: 1-22, gzip: 1-9). Zero selects the codec default.
	Level int

	// Retention is how long snapshots are kept. Zero disables
	// age-based pruning.
	Retention time.Duration

	// MaxTotalSize caps the archive directory size in bytes. When the
	// cap is exceeded the oldest snapshots are removed first. Zero
	// disables the cap.
	MaxTotalSize int64
}

// Archive writes and prunes plan snapshots in one directory.
//
// Archive is safe for concurrent use.
type Archive struct {
	mu    sync.Mutex
	cfg   Config
	stats Stats
}

// Stats holds archive statistics.
type Stats struct {
	SnapshotsWritten int64     `json:"snapshots_written"`
	RowsWritten      int64     `json:"rows_written"`
	FilesPruned      int64     `json:"files_pruned"`
	BytesFreed       int64     `json:"bytes_freed"`
	LastPruneTime    time.Time `json:"last_prune_time"`
}

// DiskUsage holds disk usage information for the archive directory.
type DiskUsage struct {
	FileCount int   `json:"file_count"`
	TotalSize int64 `json:"total_size"`
}

// New creates an Archive and ensures its directory exists.
func New(cfg Config) (*Archive, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("archive directory is required")
	}
	if _, err := codecFor(cfg.Algorithm, cfg.Level); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &Archive{cfg: cfg}, nil
}

// Stats returns current statistics.
func (a *Archive) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// GetDiskUsage returns file count and total size of the archive.
func (a *Archive) GetDiskUsage() (DiskUsage, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	files, err := a.listSnapshots()
	if err != nil {
		return DiskUsage{}, err
	}

	var total int64
	for _, f := range files {
		total += f.size
	}
	return DiskUsage{FileCount: len(files), TotalSize: total}, nil
}

// snapshotFile holds information about one archived file.
type snapshotFile struct {
	name string
	path string
	size int64
}

// listSnapshots lists all Parquet files in the archive directory,
// sorted by name. Names start with the plan timestamp, so name order
// is oldest first.
func (a *Archive) listSnapshots() ([]snapshotFile, error) {
	entries, err := os.ReadDir(a.cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("list archive: %w", err)
	}

	var files []snapshotFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".parquet" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, snapshotFile{
			name: name,
			path: filepath.Join(a.cfg.Dir, name),
			size: info.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].name < files[j].name
	})

	return files, nil
}
