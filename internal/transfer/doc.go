// Package transfer plans and executes file transfers between cloud
// object storage and the local working tree.
//
// Evaluation always follows the same shape: discover the source and
// target listings, select candidates, build a deterministic plan, and
// (outside dry runs) execute it file by file with size verification.
// Per-operation behavior lives in Strategy implementations; the Engine
// orchestrates them.
package transfer
