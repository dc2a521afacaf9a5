package cloudcache

import (
	"encoding/json"
	"path/filepath"
	"time"
)

// cacheVersion is the on-disk format version. Files carrying any other
// version are treated as absent.
const cacheVersion = "1.0"

// cacheMetadata is the metadata block of the persisted cache file.
type cacheMetadata struct {
	LastUpdated string   `json:"last_updated"`
	Version     string   `json:"cache_version"`
	BucketNames []string `json:"bucket_names"`
}

// cacheFile is the persisted cache document.
type cacheFile struct {
	Metadata cacheMetadata `json:"metadata"`
	Snapshot *Snapshot     `json:"snapshot"`
}

// loadFromDisk restores the snapshot from the cache file if one exists
// and is usable. A missing, corrupt, version-mismatched, or
// bucket-mismatched file is logged and ignored; the service must never
// crash on a bad cache file.
func (c *Cache) loadFromDisk() {
	exists, err := c.fsys.Exists(c.path)
	if err != nil || !exists {
		return
	}

	data, err := c.fsys.ReadFile(c.path)
	if err != nil {
		c.logger.Warn("failed to read cache file, treating as absent", "path", c.path, "error", err)
		return
	}

	var doc cacheFile
	if err := json.Unmarshal(data, &doc); err != nil {
		c.logger.Warn("cache file corrupt, treating as absent", "path", c.path, "error", err)
		return
	}

	if doc.Metadata.Version != cacheVersion {
		c.logger.Warn("cache version mismatch, treating as absent",
			"path", c.path, "version", doc.Metadata.Version, "want", cacheVersion)
		return
	}
	if !sameBuckets(doc.Metadata.BucketNames, []string{c.rawBucket, c.mlBucket}) {
		c.logger.Warn("cache bucket mismatch, treating as absent",
			"path", c.path, "buckets", doc.Metadata.BucketNames)
		return
	}
	if doc.Snapshot == nil || doc.Snapshot.Raw == nil || doc.Snapshot.ML == nil {
		c.logger.Warn("cache file incomplete, treating as absent", "path", c.path)
		return
	}

	lastUpdated, err := time.Parse(time.RFC3339, doc.Metadata.LastUpdated)
	if err != nil {
		c.logger.Warn("cache timestamp unparseable, treating as absent", "path", c.path, "error", err)
		return
	}

	c.mu.Lock()
	c.snapshot = doc.Snapshot
	c.lastUpdated = lastUpdated
	c.mu.Unlock()

	c.logger.Debug("cache loaded",
		"path", c.path,
		"coordinates", doc.Snapshot.Coordinates(),
		"last_updated", lastUpdated)
}

// saveToDisk persists the snapshot with its metadata block.
func (c *Cache) saveToDisk(snap *Snapshot, updatedAt time.Time) error {
	doc := cacheFile{
		Metadata: cacheMetadata{
			LastUpdated: updatedAt.Format(time.RFC3339),
			Version:     cacheVersion,
			BucketNames: []string{c.rawBucket, c.mlBucket},
		},
		Snapshot: snap,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(c.path); dir != "." && dir != "/" {
		if err := c.fsys.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return c.fsys.WriteFile(c.path, data, 0o644)
}

func sameBuckets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
