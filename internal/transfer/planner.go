package transfer

import "github.com/nbarbarousis/fieldsync/synctypes"

// buildPlan classifies every candidate against the target index.
//
// The decision table, per candidate:
//   - absent on target: transfer, never a conflict
//   - present with equal size: skip under the skip policy; transfer and
//     flag a policy conflict under overwrite
//   - present with differing size: transfer and flag a size_mismatch
//     conflict under either policy, because a size mismatch cannot be
//     silently skipped
//
// TotalFiles and TotalSize derive strictly from the transfer list.
func buildPlan(
	strategy Strategy,
	policy synctypes.ConflictPolicy,
	candidates []fileEntry,
	target targetIndex,
) *synctypes.TransferPlan {
	plan := &synctypes.TransferPlan{}

	for _, entry := range candidates {
		identity := strategy.TranslateIdentity(entry)
		file := synctypes.PlannedFile{
			Name:       entry.name,
			TargetName: identity,
			Bag:        entry.bag,
			FileType:   entry.fileType,
			Size:       entry.size,
		}

		targetSize, present := target[identity]
		switch {
		case !present:
			plan.Files = append(plan.Files, file)

		case targetSize != entry.size:
			plan.Files = append(plan.Files, file)
			plan.Conflicts = append(plan.Conflicts, synctypes.Conflict{
				File:       file,
				Reason:     synctypes.ConflictReasonSizeMismatch,
				SourceSize: entry.size,
				TargetSize: targetSize,
			})

		case policy == synctypes.PolicyOverwrite:
			plan.Files = append(plan.Files, file)
			plan.Conflicts = append(plan.Conflicts, synctypes.Conflict{
				File:       file,
				Reason:     string(policy),
				SourceSize: entry.size,
				TargetSize: targetSize,
			})

		default:
			plan.Skips = append(plan.Skips, synctypes.SkippedFile{
				File:   file,
				Reason: synctypes.SkipReasonExists,
			})
		}
	}

	plan.TotalFiles = len(plan.Files)
	for _, file := range plan.Files {
		plan.TotalSize += file.Size
	}
	return plan
}
