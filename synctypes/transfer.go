package synctypes

import "time"

// OperationType identifies which transfer specialization a job runs.
type OperationType string

// Predefined transfer operation types
const (
	// OpRawDownload moves raw bags from cloud storage to the local filesystem
	OpRawDownload OperationType = "raw_download"

	// OpMLDownload moves ML samples from cloud storage to the local filesystem
	OpMLDownload OperationType = "ml_download"

	// OpMLUpload moves ML samples from the local filesystem to cloud storage
	OpMLUpload OperationType = "ml_upload"
)

// ConflictPolicy decides what happens when a selected file already
// exists on the target side.
type ConflictPolicy string

// Predefined conflict policies
const (
	// PolicySkip leaves identical existing files alone. A size mismatch
	// still transfers: skip only suppresses overwriting identical files.
	PolicySkip ConflictPolicy = "skip"

	// PolicyOverwrite always re-transfers matched files
	PolicyOverwrite ConflictPolicy = "overwrite"
)

// ConflictReasonSizeMismatch marks a conflict caused by differing byte
// counts between source and target.
const ConflictReasonSizeMismatch = "size_mismatch"

// SkipReasonExists marks a file skipped because an identical copy
// already exists on the target.
const SkipReasonExists = "already_exists"

// SelectionCriteria narrows a job to a subset of the source listing.
// Exactly one of All, BagNames, or BagIndices should select bags; when
// none does, the selection is empty and the plan is empty. FileTypes
// further narrows ML operations and defaults to both types.
type SelectionCriteria struct {
	// All selects every bag in the source listing
	All bool

	// BagNames selects bags by their source-convention names
	BagNames []string

	// BagIndices selects bags by position in the sorted source listing.
	// Out-of-range indices are logged and ignored. Raw operations only.
	BagIndices []int

	// FileTypes restricts ML operations to the given sample halves.
	// Empty means both frames and labels.
	FileTypes []FileType
}

// TransferJob is a single transfer request. Jobs are stateless and
// disposable: one job produces at most one plan per evaluation.
type TransferJob struct {
	// ID uniquely identifies the job
	ID string

	// Coordinate addresses the run the job operates on
	Coordinate Coordinate

	// Operation selects the transfer specialization
	Operation OperationType

	// Criteria selects which files the job covers
	Criteria SelectionCriteria

	// Policy is the conflict-resolution mode
	Policy ConflictPolicy

	// DryRun makes evaluation stop after planning, touching no storage
	DryRun bool

	// CreatedAt is when the job was created
	CreatedAt time.Time
}

// PlannedFile is one file the planner has resolved: its identity on
// both sides and its size on the source.
type PlannedFile struct {
	// Name is the file's source-convention name
	Name string

	// TargetName is the file's name translated to the target convention
	TargetName string

	// Bag is the owning bag for ML files; for raw files the bag is the file
	Bag string

	// FileType is set for ML files only
	FileType FileType

	// Size is the source-side size in bytes
	Size int64
}

// SkippedFile records a file the plan leaves alone, with the reason.
type SkippedFile struct {
	// File is the skipped file
	File PlannedFile

	// Reason explains the skip (e.g. "already_exists")
	Reason string
}

// Conflict flags a file whose target-side counterpart exists and either
// differs in size or is being overwritten by policy. A conflict entry
// does not imply the file is skipped.
type Conflict struct {
	// File is the conflicting file
	File PlannedFile

	// Reason is "size_mismatch" or the policy name
	Reason string

	// SourceSize is the source-side size in bytes
	SourceSize int64

	// TargetSize is the target-side size in bytes
	TargetSize int64
}

// TransferPlan is the deterministic output of evaluating a job against
// current source and target state.
type TransferPlan struct {
	// Files lists everything scheduled to transfer
	Files []PlannedFile

	// Skips lists everything deliberately left alone
	Skips []SkippedFile

	// Conflicts flags overwrites and size mismatches for visibility
	Conflicts []Conflict

	// TotalFiles is len(Files); skips and conflicts never count
	TotalFiles int

	// TotalSize is the byte sum over Files only
	TotalSize int64
}

// FileResult records the outcome of one file's execution.
type FileResult struct {
	// File is the file that was attempted
	File PlannedFile

	// Success reports whether the transfer completed and verified
	Success bool

	// Error holds the failure message when Success is false
	Error string

	// Bytes is the number of bytes moved
	Bytes int64

	// Duration is the wall-clock time spent on this file
	Duration time.Duration
}

// TransferSummary aggregates an execution run.
type TransferSummary struct {
	// TotalFiles is the number of files attempted
	TotalFiles int

	// Successful is the number of files that transferred and verified
	Successful int

	// Failed is the number of files that did not
	Failed int

	// TotalBytes is the byte count moved by successful files
	TotalBytes int64

	// Duration is the wall-clock time for the whole run
	Duration time.Duration

	// AvgSpeedMBps is TotalBytes over Duration in megabytes per second
	AvgSpeedMBps float64
}

// OperationResult is the job-level outcome returned to callers.
type OperationResult struct {
	// Success is true when the job completed with zero failed files
	Success bool

	// Message is an informational note (e.g. "No files to transfer")
	Message string

	// Plan is the evaluated plan; always set on structural success
	Plan *TransferPlan

	// Files holds per-file execution records; nil for dry runs
	Files []FileResult

	// Summary aggregates the execution; nil for dry runs
	Summary *TransferSummary

	// Error describes a job-level failure
	Error string

	// Warning reports non-fatal partial failures
	Warning string

	// Critical distinguishes job-level failures from per-file ones
	Critical bool
}
