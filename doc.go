// Package fieldsync synchronizes robot field recordings between cloud
// object storage and a local working tree.
//
// Recordings are addressed by a six-part coordinate
// (client/region/field/time-window/box/timestamp) and come in two
// kinds: raw rosbag files and the ML samples (frames and labels)
// derived from them. Cloud state is served from a persisted inventory
// cache; local state is always read live from disk. The two are
// reconciled into a per-coordinate sync verdict, and transfer jobs move
// the differences in either direction with plan-before-execute
// semantics.
//
// Key features:
//   - Cached cloud inventory with lazy, atomic full refresh
//   - Hierarchy and timeline queries over the coordinate tree
//   - Deterministic transfer planning with skip/overwrite policies
//   - Per-file execution isolation with size verification
//   - Bag-name translation between cloud and local conventions
//
// Example usage:
//
//	client, err := fieldsync.New(
//	    fieldsync.WithRegion("eu-central-1"),
//	    fieldsync.WithBuckets("robot-raw", "robot-ml"),
//	)
//	if err != nil {
//	    return err
//	}
//	svc := client.Service()
//
//	job := svc.CreateJob(coord, synctypes.OpRawDownload,
//	    synctypes.SelectionCriteria{All: true}, synctypes.PolicySkip)
//	result := svc.Execute(ctx, job)
package fieldsync
