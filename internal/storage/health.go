package storage

import (
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// MinFreeSpace is the free space below which the database is reported unhealthy (10MB).
const MinFreeSpace = 10 * 1024 * 1024

// CheckIntegrity reads back a sample of values and reports the first failure.
func (d *DB) CheckIntegrity() error {
	if d == nil || d.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 10
		it := txn.NewIterator(opts)
		defer it.Close()

		count := 0
		for it.Rewind(); it.Valid() && count < 100; it.Next() {
			item := it.Item()
			if err := item.Value(func([]byte) error { return nil }); err != nil {
				return fmt.Errorf("corrupted value at key %s: %w", item.Key(), err)
			}
			count++
		}
		return nil
	})
}

// DiskSpaceInfo contains information about available disk space.
type DiskSpaceInfo struct {
	Path       string `json:"path"`
	TotalBytes uint64 `json:"total_bytes"`
	FreeBytes  uint64 `json:"free_bytes"`
}

// FreePercent returns the percentage of free space.
func (d *DiskSpaceInfo) FreePercent() float64 {
	if d.TotalBytes == 0 {
		return 0
	}
	return float64(d.FreeBytes) / float64(d.TotalBytes) * 100
}

// CheckDiskSpace fails when the database filesystem is nearly full.
// An in-memory database always passes.
func (d *DB) CheckDiskSpace() error {
	if d.path == "" {
		return nil
	}
	info, err := GetDiskSpace(d.path)
	if err != nil {
		return err
	}
	if info.FreeBytes < MinFreeSpace {
		return fmt.Errorf("low disk space: %d MB free", info.FreeBytes/(1024*1024))
	}
	return nil
}
