package archive

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// PruneResult holds the result of one pruning pass.
type PruneResult struct {
	FilesDeleted int
	BytesFreed   int64
	FilesSkipped int
	Errors       []error
}

// Prune removes snapshots older than the retention cutoff, then removes
// the oldest remaining snapshots until the directory fits the size cap.
func (a *Archive) Prune() PruneResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.LastPruneTime = time.Now()

	result := a.prune(time.Now(), false)

	a.stats.FilesPruned += int64(result.FilesDeleted)
	a.stats.BytesFreed += result.BytesFreed

	return result
}

// DryRun simulates pruning without deleting files.
func (a *Archive) DryRun() PruneResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.prune(time.Now(), true)
}

// prune performs one pass. Files whose names don't parse as snapshots
// are skipped: they can't be ordered, so neither rule touches them.
func (a *Archive) prune(now time.Time, dryRun bool) PruneResult {
	var result PruneResult

	files, err := a.listSnapshots()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			result.Errors = append(result.Errors, err)
		}
		return result
	}

	cutoff := now.Add(-a.cfg.Retention)

	// Age pass
	var kept []snapshotFile
	for _, file := range files {
		fileTime, err := parseSnapshotTime(file.name)
		if err != nil {
			result.FilesSkipped++
			continue
		}

		if a.cfg.Retention <= 0 || fileTime.After(cutoff) {
			kept = append(kept, file)
			continue
		}

		if !dryRun {
			if err := os.Remove(file.path); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("delete %s: %w", file.path, err))
				kept = append(kept, file)
				continue
			}
		}
		result.FilesDeleted++
		result.BytesFreed += file.size
	}

	// Size pass, oldest first
	if a.cfg.MaxTotalSize > 0 {
		var total int64
		for _, f := range kept {
			total += f.size
		}

		for _, f := range kept {
			if total <= a.cfg.MaxTotalSize {
				break
			}
			if !dryRun {
				if err := os.Remove(f.path); err != nil {
					result.Errors = append(result.Errors, fmt.Errorf("delete %s: %w", f.path, err))
					continue
				}
			}
			result.FilesDeleted++
			result.BytesFreed += f.size
			total -= f.size
		}
	}

	return result
}
