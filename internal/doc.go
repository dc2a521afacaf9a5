// Package internal contains private implementation details for the
// fieldsync module. These packages are not intended for external use
// and may change without notice.
//
// The internal packages are organized as follows:
//   - cloudcache: Persisted snapshot of cloud bucket contents
//   - localstate: Live local filesystem scanning
//   - transfer: Transfer planning and execution
//   - reconcile: Cloud/local sync-status reconciliation
//   - s3api: S3 client interface for testability
//   - testutil: Shared test fakes and mocks
package internal
