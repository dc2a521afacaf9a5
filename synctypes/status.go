// Package synctypes provides shared type definitions for the fieldsync module.
package synctypes

import "time"

// FileType distinguishes the two halves of an ML sample.
type FileType string

// Predefined ML file types
const (
	// FileTypeFrames holds the captured frame images
	FileTypeFrames FileType = "frames"

	// FileTypeLabels holds the annotation files; one label defines one sample
	FileTypeLabels FileType = "labels"
)

// AllFileTypes lists both ML file types in canonical order.
var AllFileTypes = []FileType{FileTypeFrames, FileTypeLabels}

// CloudRawStatus describes the raw recordings present in cloud storage
// for one coordinate.
type CloudRawStatus struct {
	// Exists reports whether the coordinate has any raw data in the cloud
	Exists bool

	// BagCount is the number of bag files
	BagCount int

	// BagNames lists the cloud-convention bag names in sorted order
	BagNames []string

	// BagSizes maps each bag name to its size in bytes
	BagSizes map[string]int64

	// TotalSize is the sum of all bag sizes in bytes
	TotalSize int64
}

// LocalRawStatus describes the raw recordings present on the local
// filesystem for one coordinate.
type LocalRawStatus struct {
	// Downloaded reports whether the coordinate has any raw data locally
	Downloaded bool

	// BagCount is the number of bag files
	BagCount int

	// BagNames lists the local-convention bag filenames in sorted order
	BagNames []string

	// BagSizes maps each bag filename to its size in bytes
	BagSizes map[string]int64

	// TotalSize is the sum of all bag sizes in bytes
	TotalSize int64
}

// BagSampleCounts summarizes the ML samples derived from one bag.
type BagSampleCounts struct {
	// FrameCount is the number of frame files
	FrameCount int `json:"frame_count"`

	// LabelCount is the number of label files; labels define samples
	LabelCount int `json:"label_count"`
}

// BagFiles maps file type to the per-file byte sizes for one bag.
type BagFiles map[FileType]map[string]int64

// CloudMLStatus describes the ML samples present in cloud storage for
// one coordinate.
type CloudMLStatus struct {
	// Exists reports whether the coordinate has any ML data in the cloud
	Exists bool

	// TotalSamples is the total label-file count across all bags
	TotalSamples int

	// BagSamples maps each bag name to its frame/label counts
	BagSamples map[string]BagSampleCounts

	// BagFiles maps each bag name to its per-type file listings
	BagFiles map[string]BagFiles
}

// LocalMLStatus describes the ML samples present on the local
// filesystem for one coordinate.
type LocalMLStatus struct {
	// Downloaded reports whether the coordinate has any ML data locally
	Downloaded bool

	// TotalSamples is the total label-file count across all bags
	TotalSamples int

	// BagSamples maps each bag name to its frame/label counts
	BagSamples map[string]BagSampleCounts

	// BagFiles maps each bag name to its per-type file listings
	BagFiles map[string]BagFiles
}

// SyncStatus is the reconciliation verdict for one coordinate's data
// kind (raw or ML).
type SyncStatus string

// Predefined sync statuses
const (
	// SyncStatusSynced means both sides are present and deep-equal
	SyncStatusSynced SyncStatus = "synced"

	// SyncStatusCloudOnly means only cloud storage has data
	SyncStatusCloudOnly SyncStatus = "cloud_only"

	// SyncStatusLocalOnly means only the local filesystem has data
	SyncStatusLocalOnly SyncStatus = "local_only"

	// SyncStatusMismatch means both sides have data but they differ
	SyncStatusMismatch SyncStatus = "mismatch"

	// SyncStatusMissing means neither side has data
	SyncStatusMissing SyncStatus = "missing"

	// SyncStatusUnknown means the status could not be determined
	SyncStatusUnknown SyncStatus = "unknown"
)

// InventoryItem is one coordinate's combined cloud/local view with the
// reconciliation verdicts. Built fresh on each inventory rebuild; never
// persisted.
type InventoryItem struct {
	// Coordinate addresses the run this item describes
	Coordinate Coordinate

	// CloudRaw is the cloud-side raw status
	CloudRaw CloudRawStatus

	// LocalRaw is the local-side raw status
	LocalRaw LocalRawStatus

	// CloudML is the cloud-side ML status
	CloudML CloudMLStatus

	// LocalML is the local-side ML status
	LocalML LocalMLStatus

	// RawSyncStatus is the reconciliation verdict for raw data
	RawSyncStatus SyncStatus

	// MLSyncStatus is the reconciliation verdict for ML data
	MLSyncStatus SyncStatus

	// RawIssues names the first-order raw discrepancies, if any
	RawIssues []string

	// MLIssues names the first-order ML discrepancies, if any
	MLIssues []string
}

// InventoryMetrics aggregates simple totals across an inventory slice.
type InventoryMetrics struct {
	// CloudBags is the total cloud-side bag count
	CloudBags int

	// LocalBags is the total local-side bag count
	LocalBags int

	// CloudSamples is the total cloud-side sample count
	CloudSamples int

	// LocalSamples is the total local-side sample count
	LocalSamples int
}

// TimelinePoint is the per-timestamp aggregate used by coverage queries.
type TimelinePoint struct {
	// Timestamp is the run timestamp directory name
	Timestamp string

	// BagCount is the raw bag count aggregated below the query prefix
	BagCount int

	// SampleCount is the ML sample count aggregated below the query prefix
	SampleCount int
}

// TimelineData is the result of a temporal coverage query.
type TimelineData struct {
	// Points holds one entry per timestamp, sorted by timestamp
	Points []TimelinePoint
}

// CacheInfo describes the persisted cloud inventory cache.
type CacheInfo struct {
	// Exists reports whether a snapshot is currently held
	Exists bool

	// LastUpdated is when the snapshot was last rebuilt
	LastUpdated time.Time

	// Stale reports whether the snapshot has been marked stale
	Stale bool

	// StaleReason is the reason given to the most recent invalidation
	StaleReason string

	// Coordinates is the number of distinct coordinates in the snapshot
	Coordinates int

	// Path is the cache file location
	Path string
}

// ExportInfo describes one produced export batch, read from the export
// tracking sidecar.
type ExportInfo struct {
	// ID is the export identifier
	ID string `json:"-"`

	// CreatedAt is the export creation time, as recorded in the sidecar
	CreatedAt string `json:"created_at"`

	// SampleCount is the number of samples included in the export
	SampleCount int `json:"sample_count"`

	// Coordinates lists the contributing coordinate paths
	Coordinates []string `json:"coordinates"`
}
