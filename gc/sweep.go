package gc

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// StaleAge is the age threshold for removing orphaned staging directories
// left behind by a release compile or provisioning run that was aborted or
// crashed before cleaning up after itself.
const StaleAge = 24 * time.Hour

// SweepStaleTemp removes entries under dir older than StaleAge. Used by the
// global `scs gc` verb to reclaim space from interrupted compiles/provisions;
// it never touches the repository itself, only scratch directories
// (SCS_TEMP, SCS_TEMP_LARGE, per-release staging roots).
func SweepStaleTemp(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	cutoff := time.Now().Add(-StaleAge)
	var removed []string
	for _, e := range entries {
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.RemoveAll(path); err == nil {
			removed = append(removed, path)
		}
	}
	return removed, nil
}
